package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/rolegate/auth"
)

// probeSubject is the username carried by the signing-key probe token.
const probeSubject = "health-probe"

// SigningKeyChecker issues and verifies a throwaway token to prove the
// codec can both sign and validate.
type SigningKeyChecker struct {
	codec *auth.TokenCodec
}

// NewSigningKeyChecker creates a checker for codec.
func NewSigningKeyChecker(codec *auth.TokenCodec) *SigningKeyChecker {
	return &SigningKeyChecker{codec: codec}
}

// Name returns the name of this checker.
func (c *SigningKeyChecker) Name() string { return "signing_key" }

// Check performs the round trip.
func (c *SigningKeyChecker) Check(ctx context.Context) Result {
	if c.codec == nil || !c.codec.HasKey() {
		return Unhealthy("signing key not configured", auth.ErrMissingSigningKey)
	}

	token, err := c.codec.Issue(ctx, probeSubject, auth.RoleUser)
	if err != nil {
		return Unhealthy("token issue failed", err)
	}
	claims, err := c.codec.Verify(ctx, token)
	if err != nil {
		return Unhealthy("token verify failed", err)
	}
	if claims.Username != probeSubject {
		return Unhealthy("token round trip mismatch", ErrCheckFailed)
	}
	return Healthy("sign and verify ok").WithDetails(map[string]any{
		"ttl": c.codec.TTL().String(),
	})
}

// UserCounter reports how many accounts a user store holds.
type UserCounter interface {
	Len() int
}

// UserStoreChecker reports unhealthy when no account could log in.
type UserStoreChecker struct {
	store UserCounter
}

// NewUserStoreChecker creates a checker for store.
func NewUserStoreChecker(store UserCounter) *UserStoreChecker {
	return &UserStoreChecker{store: store}
}

// Name returns the name of this checker.
func (c *UserStoreChecker) Name() string { return "users" }

// Check counts the registered users.
func (c *UserStoreChecker) Check(ctx context.Context) Result {
	if c.store == nil {
		return Unhealthy("user store not configured", ErrCheckFailed)
	}
	n := c.store.Len()
	if n == 0 {
		return Unhealthy("user store is empty", ErrCheckFailed)
	}
	return Healthy(fmt.Sprintf("%d users loaded", n)).WithDetails(map[string]any{
		"count": n,
	})
}

var (
	_ Checker = (*SigningKeyChecker)(nil)
	_ Checker = (*UserStoreChecker)(nil)
)
