package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// hmacMethods are the only algorithms Verify accepts.
var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// TokenClaims is the payload carried by an issued token.
type TokenClaims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into a request identity.
func (c *TokenClaims) Identity() *Identity {
	id := &Identity{
		Username: c.Username,
		Role:     c.Role,
		Method:   AuthMethodBearer,
		TokenID:  c.ID,
		Claims:   c,
	}
	if c.IssuedAt != nil {
		id.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		id.ExpiresAt = c.ExpiresAt.Time
	}
	return id
}

// CodecConfig configures the token codec.
type CodecConfig struct {
	// Secret is the HMAC signing key. Required.
	Secret []byte

	// TTL is the token lifetime.
	// Default: 24h
	TTL time.Duration

	// Issuer is written to and required in the iss claim when set.
	Issuer string

	// Now overrides the clock used for iat, exp and expiry checks.
	// Default: time.Now
	Now func() time.Time
}

// TokenCodec issues and verifies signed, expiring tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenCodec creates a codec. A codec with an empty secret is valid to
// construct but fails every Issue and Verify call.
func NewTokenCodec(config CodecConfig) *TokenCodec {
	// Apply defaults
	if config.TTL <= 0 {
		config.TTL = DefaultTokenTTL
	}
	if config.Now == nil {
		config.Now = time.Now
	}

	return &TokenCodec{
		secret: append([]byte(nil), config.Secret...),
		ttl:    config.TTL,
		issuer: config.Issuer,
		now:    config.Now,
	}
}

// TTL returns the lifetime given to issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// HasKey reports whether a signing key is configured.
func (c *TokenCodec) HasKey() bool {
	return len(c.secret) > 0
}

// Issue signs a token for username and role, valid from now for the codec TTL.
func (c *TokenCodec) Issue(_ context.Context, username string, role Role) (string, error) {
	if !c.HasKey() {
		return "", ErrMissingSigningKey
	}

	now := c.now()
	claims := &TokenClaims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   username,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify checks structure, signature and expiry of tokenString.
//
// Rejections are *TokenError values matching ErrTokenMalformed,
// ErrInvalidSignature or ErrTokenExpired. Any other error (for example a
// missing signing key) is an internal fault.
func (c *TokenCodec) Verify(_ context.Context, tokenString string) (*TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(hmacMethods),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := &TokenClaims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, c.keyFunc, opts...); err != nil {
		return nil, classifyTokenError(err)
	}
	return claims, nil
}

func (c *TokenCodec) keyFunc(_ *jwt.Token) (any, error) {
	if !c.HasKey() {
		return nil, ErrMissingSigningKey
	}
	return c.secret, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, ErrMissingSigningKey):
		return err
	case errors.Is(err, jwt.ErrTokenExpired):
		return &TokenError{Kind: ErrTokenExpired, Cause: err}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return &TokenError{Kind: ErrInvalidSignature, Cause: err}
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return &TokenError{Kind: ErrTokenMalformed, Cause: err}
	default:
		return fmt.Errorf("auth: verify token: %w", err)
	}
}

// BearerConfig configures the bearer-token authenticator.
type BearerConfig struct {
	// HeaderName is the header containing the token.
	// Default: "Authorization"
	HeaderName string

	// TokenPrefix is the prefix before the token in the header.
	// Default: "Bearer "
	TokenPrefix string
}

// TokenVerifier verifies a raw token string.
type TokenVerifier interface {
	Verify(ctx context.Context, tokenString string) (*TokenClaims, error)
}

// BearerAuthenticator validates bearer tokens with a TokenVerifier.
type BearerAuthenticator struct {
	config   BearerConfig
	verifier TokenVerifier
}

// NewBearerAuthenticator creates a new bearer-token authenticator.
func NewBearerAuthenticator(config BearerConfig, verifier TokenVerifier) *BearerAuthenticator {
	// Apply defaults
	if config.HeaderName == "" {
		config.HeaderName = "Authorization"
	}
	if config.TokenPrefix == "" {
		config.TokenPrefix = "Bearer "
	}

	return &BearerAuthenticator{
		config:   config,
		verifier: verifier,
	}
}

// Name returns "bearer".
func (a *BearerAuthenticator) Name() string {
	return "bearer"
}

// Supports returns true if the request carries a bearer token.
func (a *BearerAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return strings.HasPrefix(req.GetHeader(a.config.HeaderName), a.config.TokenPrefix)
}

// Authenticate validates the bearer token.
func (a *BearerAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	header := req.GetHeader(a.config.HeaderName)

	tokenString, found := strings.CutPrefix(header, a.config.TokenPrefix)
	if !found {
		return AuthFailure(ErrMissingCredentials, a.Name()), nil
	}

	claims, err := a.verifier.Verify(ctx, tokenString)
	if err != nil {
		var tokenErr *TokenError
		if errors.As(err, &tokenErr) {
			return AuthFailure(err, a.Name()), nil
		}
		return nil, err
	}

	return AuthSuccess(claims.Identity()), nil
}

// Ensure BearerAuthenticator implements Authenticator
var _ Authenticator = (*BearerAuthenticator)(nil)

// Ensure TokenCodec implements TokenVerifier
var _ TokenVerifier = (*TokenCodec)(nil)
