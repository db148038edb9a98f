package server

import (
	"errors"
	"net/http"

	"github.com/jonwraymond/rolegate/auth"
	"github.com/jonwraymond/rolegate/observe"
)

// handlers holds the dependencies shared by the route handlers.
type handlers struct {
	codec   *auth.TokenCodec
	users   auth.UserStore
	metrics observe.Metrics
	logger  observe.Logger
}

// IndexResponse lists the public endpoints.
type IndexResponse struct {
	Message   string         `json:"message"`
	Endpoints IndexEndpoints `json:"endpoints"`
}

// IndexEndpoints names one endpoint per resource.
type IndexEndpoints struct {
	Login     string `json:"login"`
	Admin     string `json:"admin"`
	Moderator string `json:"moderator"`
	User      string `json:"user"`
}

func handleIndex(w http.ResponseWriter, _ *http.Request) {
	auth.WriteJSON(w, http.StatusOK, IndexResponse{
		Message: "Welcome to Express RBAC JWT API",
		Endpoints: IndexEndpoints{
			Login:     http.MethodPost + " " + PathLogin,
			Admin:     http.MethodGet + " " + PathAdmin,
			Moderator: http.MethodGet + " " + PathModerator,
			User:      http.MethodGet + " " + PathProfile,
		},
	})
}

// ResourceResponse is the body of every role-gated resource.
type ResourceResponse struct {
	Message string            `json:"message"`
	User    *auth.TokenClaims `json:"user"`
	Data    any               `json:"data"`
}

// AdminData is the payload of the admin dashboard.
type AdminData struct {
	Description   string   `json:"description"`
	AdminFeatures []string `json:"adminFeatures"`
}

// FeatureData is the payload of the moderator and user resources.
type FeatureData struct {
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

func handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	writeResource(w, r, "Welcome to Admin Dashboard", AdminData{
		Description:   "This is a protected route accessible only by Admin users",
		AdminFeatures: []string{"User Management", "System Configuration", "Full Access"},
	})
}

func handleModeratorPanel(w http.ResponseWriter, r *http.Request) {
	writeResource(w, r, "Welcome to Moderator Management Panel", FeatureData{
		Description: "This route is accessible by Moderators and Admins",
		Features:    []string{"Content Moderation", "User Reports", "Community Management"},
	})
}

func handleUserProfile(w http.ResponseWriter, r *http.Request) {
	writeResource(w, r, "Welcome to User Profile", FeatureData{
		Description: "This route is accessible by any authenticated user",
		Features:    []string{"View Profile", "Edit Settings", "View Dashboard"},
	})
}

// writeResource echoes the verified claims of the caller next to data.
func writeResource(w http.ResponseWriter, r *http.Request, message string, data any) {
	var claims *auth.TokenClaims
	if id := auth.IdentityFromContext(r.Context()); id != nil {
		claims = id.Claims
	}
	auth.WriteJSON(w, http.StatusOK, ResourceResponse{
		Message: message,
		User:    claims,
		Data:    data,
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	auth.WriteError(w, &auth.HTTPError{
		Status:  http.StatusNotFound,
		Message: "Not Found",
		Detail:  "Cannot " + r.Method + " " + r.URL.Path,
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	auth.WriteError(w, &auth.HTTPError{
		Status:  http.StatusMethodNotAllowed,
		Message: "Method Not Allowed",
		Detail:  "Cannot " + r.Method + " " + r.URL.Path,
	})
}

// recordAllowed counts a request that passed both interceptors.
func (h *handlers) recordAllowed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.recordDecision(r, observe.OutcomeAllowed)
		next.ServeHTTP(w, r)
	})
}

// recordRejection is the gate's error hook.
func (h *handlers) recordRejection(r *http.Request, e *auth.HTTPError) {
	outcome := rejectionOutcome(e)
	h.recordDecision(r, outcome)

	fields := []observe.Field{
		observe.F("path", r.URL.Path),
		observe.F("outcome", outcome),
		observe.F("status", e.Status),
		observe.F("reason", e.Detail),
	}
	if e.UserRole != "" {
		fields = append(fields, observe.F("user_role", string(e.UserRole)))
	}
	if e.Status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "auth check failed", fields...)
		return
	}
	h.logger.Debug(r.Context(), "auth check rejected", fields...)
}

func (h *handlers) recordDecision(r *http.Request, outcome string) {
	meta := observe.RouteMeta{
		Method: r.Method,
		Route:  observe.RoutePattern(r),
		Path:   r.URL.Path,
	}
	h.metrics.RecordAuthDecision(r.Context(), meta, outcome)
}

func rejectionOutcome(e *auth.HTTPError) string {
	switch {
	case errors.Is(e, auth.ErrMissingCredentials):
		return observe.OutcomeMissingToken
	case errors.Is(e, auth.ErrTokenExpired):
		return observe.OutcomeExpiredToken
	case errors.Is(e, auth.ErrInvalidToken):
		return observe.OutcomeInvalidToken
	case errors.Is(e, auth.ErrUnauthenticated):
		return observe.OutcomeUnauthenticated
	case e.Status == http.StatusForbidden:
		return observe.OutcomeForbidden
	default:
		return observe.OutcomeError
	}
}
