package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is a complete JSON error response.
// It is written by the interceptors and by handlers that share their
// error envelope: {"message": ..., "error": ..., "userRole": ...}.
type HTTPError struct {
	Status   int    `json:"-"`
	Message  string `json:"message"`
	Detail   string `json:"error"`
	UserRole Role   `json:"userRole,omitempty"`
	Err      error  `json:"-"`
}

// Error returns the error message.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Message, e.Detail)
}

// Unwrap returns the cause error for errors.Is/As support.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ErrorResponse maps an error from the auth taxonomy to its HTTP response.
// Errors outside the taxonomy become a 500 carrying the fault text.
func ErrorResponse(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var authzErr *AuthzError
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return &HTTPError{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized: No token provided",
			Detail:  "Authentication required",
			Err:     err,
		}
	case errors.Is(err, ErrTokenExpired):
		return &HTTPError{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized: Token expired",
			Detail:  err.Error(),
			Err:     err,
		}
	case errors.Is(err, ErrInvalidToken):
		return &HTTPError{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized: Invalid token",
			Detail:  err.Error(),
			Err:     err,
		}
	case errors.Is(err, ErrUnauthenticated):
		return &HTTPError{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized: User not authenticated",
			Detail:  "Please log in first",
			Err:     err,
		}
	case errors.As(err, &authzErr):
		return &HTTPError{
			Status:   http.StatusForbidden,
			Message:  "Forbidden: Access denied",
			Detail:   "You do not have permission to access this resource. Required roles: " + authzErr.Required.String(),
			UserRole: authzErr.Role,
			Err:      err,
		}
	case errors.Is(err, ErrForbidden):
		return &HTTPError{
			Status:  http.StatusForbidden,
			Message: "Forbidden: Access denied",
			Detail:  err.Error(),
			Err:     err,
		}
	case errors.Is(err, ErrBadRequest):
		return &HTTPError{
			Status:  http.StatusBadRequest,
			Message: "Bad Request",
			Detail:  "Username and password are required",
			Err:     err,
		}
	case errors.Is(err, ErrInvalidCredentials):
		return &HTTPError{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
			Detail:  "Invalid username or password",
			Err:     err,
		}
	default:
		detail := "unknown error"
		if err != nil {
			detail = err.Error()
		}
		return &HTTPError{
			Status:  http.StatusInternalServerError,
			Message: "Internal server error",
			Detail:  detail,
			Err:     err,
		}
	}
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes e as a JSON error response.
func WriteError(w http.ResponseWriter, e *HTTPError) {
	WriteJSON(w, e.Status, e)
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithErrorHook registers fn to observe every rejection before it is written.
func WithErrorHook(fn func(r *http.Request, e *HTTPError)) GateOption {
	return func(g *Gate) {
		g.onError = fn
	}
}

// Gate builds the authentication and authorization interceptors for
// net/http handlers.
//
// Usage:
//
//	gate := auth.NewGate(authenticator)
//	mux.Handle("/admin", gate.Protect(auth.RoleAdmin)(adminHandler))
type Gate struct {
	authn   Authenticator
	onError func(r *http.Request, e *HTTPError)
}

// NewGate creates a Gate that authenticates with authn.
func NewGate(authn Authenticator, opts ...GateOption) *Gate {
	g := &Gate{authn: authn}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate verifies the request's credentials and attaches the
// resulting Identity to the request context. It never ends a successful
// chain itself.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &AuthRequest{Headers: r.Header, Resource: r.URL.Path}

		result, err := g.authn.Authenticate(r.Context(), req)
		if err != nil {
			g.reject(w, r, err)
			return
		}
		if !result.Authenticated {
			cause := result.Error
			if cause == nil {
				cause = ErrMissingCredentials
			}
			g.reject(w, r, cause)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), result.Identity)))
	})
}

// Authorize admits the request only if authz permits the identity that
// Authenticate attached. It must run after Authenticate.
func (g *Gate) Authorize(authz Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			req := &AuthzRequest{Subject: identity, Resource: r.URL.Path}

			if err := safeAuthorize(r, authz, req); err != nil {
				resp := ErrorResponse(err)
				if resp.Status == http.StatusForbidden && resp.UserRole == "" && identity != nil {
					resp.UserRole = identity.Role
				}
				g.reject(w, r, resp)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoles is Authorize with a RoleAuthorizer over roles.
func (g *Gate) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return g.Authorize(NewRoleAuthorizer(roles...))
}

// Protect chains Authenticate and RequireRoles.
func (g *Gate) Protect(roles ...Role) func(http.Handler) http.Handler {
	authorize := g.RequireRoles(roles...)
	return func(next http.Handler) http.Handler {
		return g.Authenticate(authorize(next))
	}
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, err error) {
	resp := ErrorResponse(err)
	if g.onError != nil {
		g.onError(r, resp)
	}
	WriteError(w, resp)
}

// safeAuthorize turns a panicking authorizer into an internal error.
func safeAuthorize(r *http.Request, authz Authorizer, req *AuthzRequest) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("auth: authorizer %s panicked: %v", authz.Name(), p)
		}
	}()
	return authz.Authorize(r.Context(), req)
}
