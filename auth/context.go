package auth

import (
	"context"
)

// Context keys for auth-related values.
type contextKey int

const (
	identityKey contextKey = iota
)

// WithIdentity returns a new context with the given identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the identity from the context.
// Returns nil if no identity is present.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// UsernameFromContext retrieves the username from the context.
// Returns empty string if no identity is present.
func UsernameFromContext(ctx context.Context) string {
	id := IdentityFromContext(ctx)
	if id == nil {
		return ""
	}
	return id.Username
}

// RoleFromContext retrieves the role from the context.
// Returns empty string if no identity is present.
func RoleFromContext(ctx context.Context) Role {
	id := IdentityFromContext(ctx)
	if id == nil {
		return ""
	}
	return id.Role
}
