package auth

import "time"

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodNone   AuthMethod = "none"
	AuthMethodBearer AuthMethod = "bearer"
)

// Identity is the per-request view of a verified token.
// It lives only as long as the request context it is attached to.
type Identity struct {
	// Username is the authenticated user.
	Username string

	// Role is the role claim from the token.
	Role Role

	// Method indicates how authentication was performed.
	Method AuthMethod

	// TokenID is the jti claim, useful for log correlation.
	TokenID string

	// IssuedAt is when the token was issued.
	IssuedAt time.Time

	// ExpiresAt is when the token stops being accepted.
	ExpiresAt time.Time

	// Claims holds the decoded token claims.
	Claims *TokenClaims
}

// HasRole checks if the identity carries a specific role.
func (id *Identity) HasRole(role Role) bool {
	if id == nil {
		return false
	}
	return id.Role == role
}

// IsExpired checks if the identity has expired as of now.
func (id *Identity) IsExpired(now time.Time) bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(id.ExpiresAt)
}
