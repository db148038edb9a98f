package auth

import (
	"context"
	"fmt"
	"strings"
)

// Role is a closed set of access levels carried in the token's role claim.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// AllRoles lists every known role, most privileged first.
var AllRoles = RoleSet{RoleAdmin, RoleModerator, RoleUser}

// ParseRole converts a wire value into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("auth: unknown role %q", s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleUser:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// RoleSet is an ordered allow-list of roles.
// Order has no effect on membership; it is kept for error messages.
type RoleSet []Role

// Contains reports whether role is a member of the set.
func (s RoleSet) Contains(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// String joins the roles with ", ".
func (s RoleSet) String() string {
	parts := make([]string, len(s))
	for i, r := range s {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// RoleAuthorizer admits identities whose role is in a fixed allow-list.
type RoleAuthorizer struct {
	allowed RoleSet
}

// NewRoleAuthorizer creates an authorizer for the given roles.
func NewRoleAuthorizer(allowed ...Role) *RoleAuthorizer {
	return &RoleAuthorizer{allowed: append(RoleSet(nil), allowed...)}
}

// Name returns "role".
func (a *RoleAuthorizer) Name() string {
	return "role"
}

// Allowed returns a copy of the allow-list.
func (a *RoleAuthorizer) Allowed() RoleSet {
	return append(RoleSet(nil), a.allowed...)
}

// Authorize checks the subject's role against the allow-list.
// A nil subject yields ErrUnauthenticated; a non-member yields *AuthzError.
func (a *RoleAuthorizer) Authorize(_ context.Context, req *AuthzRequest) error {
	if req.Subject == nil {
		return ErrUnauthenticated
	}

	if a.allowed.Contains(req.Subject.Role) {
		return nil
	}

	return &AuthzError{
		Subject:  req.Subject.Username,
		Role:     req.Subject.Role,
		Required: a.Allowed(),
		Resource: req.Resource,
		Reason:   "role not permitted",
	}
}

// Ensure RoleAuthorizer implements Authorizer
var _ Authorizer = (*RoleAuthorizer)(nil)
