package auth

import "errors"

// Sentinel errors for authentication and authorization.
var (
	// Authentication errors
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidToken       = errors.New("auth: invalid token")
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrInvalidSignature   = errors.New("auth: invalid token signature")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrMissingSigningKey  = errors.New("auth: signing key not configured")
	ErrBadRequest         = errors.New("auth: bad request")

	// Authorization errors
	ErrUnauthenticated = errors.New("auth: not authenticated")
	ErrForbidden       = errors.New("auth: access denied")
)

// TokenError reports why a token was rejected.
//
// Kind is one of ErrTokenMalformed, ErrInvalidSignature or ErrTokenExpired.
// Malformed and bad-signature tokens also match ErrInvalidToken.
type TokenError struct {
	Kind  error
	Cause error
}

// Error returns the underlying parser message, or the kind when there is none.
func (e *TokenError) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Kind.Error()
}

// Unwrap returns the cause error for errors.Is/As support.
func (e *TokenError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target.
func (e *TokenError) Is(target error) bool {
	if target == e.Kind {
		return true
	}
	return target == ErrInvalidToken && e.Kind != ErrTokenExpired
}
