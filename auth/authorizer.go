package auth

import (
	"context"
	"fmt"
)

// Authorizer determines if an identity is allowed to reach a resource.
type Authorizer interface {
	// Authorize checks if the request is permitted.
	// Returns nil if authorized, ErrUnauthenticated if there is no subject,
	// or an error matching ErrForbidden (typically *AuthzError) if denied.
	Authorize(ctx context.Context, req *AuthzRequest) error

	// Name returns a unique identifier for this authorizer.
	Name() string
}

// AuthzRequest contains the information needed for authorization.
type AuthzRequest struct {
	// Subject is the identity making the request. Nil if unauthenticated.
	Subject *Identity

	// Resource is the target resource (e.g., the request path).
	Resource string
}

// AuthzError represents an authorization failure.
type AuthzError struct {
	// Subject is the username that was denied.
	Subject string

	// Role is the subject's role.
	Role Role

	// Required lists the roles that would have been admitted.
	Required RoleSet

	// Resource is the resource that was denied access to.
	Resource string

	// Reason explains why access was denied.
	Reason string
}

// Error returns the error message.
func (e *AuthzError) Error() string {
	return fmt.Sprintf("authorization denied: subject=%q role=%q required=%q resource=%q reason=%q",
		e.Subject, e.Role, e.Required.String(), e.Resource, e.Reason)
}

// Is reports whether this error matches the target.
func (e *AuthzError) Is(target error) bool {
	return target == ErrForbidden
}

// AuthorizerFunc is an adapter to allow use of ordinary functions as Authorizers.
type AuthorizerFunc func(ctx context.Context, req *AuthzRequest) error

// Authorize calls the function.
func (f AuthorizerFunc) Authorize(ctx context.Context, req *AuthzRequest) error {
	return f(ctx, req)
}

// Name returns "func" for function-based authorizers.
func (f AuthorizerFunc) Name() string {
	return "func"
}
