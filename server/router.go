package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jonwraymond/rolegate/auth"
	"github.com/jonwraymond/rolegate/health"
	"github.com/jonwraymond/rolegate/observe"
)

// Route paths served by the gateway.
const (
	PathIndex     = "/"
	PathLogin     = "/api/auth/login"
	PathAdmin     = "/api/admin/dashboard"
	PathModerator = "/api/moderator/manage"
	PathProfile   = "/api/user/profile"
	PathMetrics   = "/metrics"
)

// RouterOptions controls the construction of the gateway router.
// Codec and Users are required; every other field may be left zero.
type RouterOptions struct {
	Codec *auth.TokenCodec
	Users auth.UserStore

	// Telemetry wraps every request with a span, request metrics and an
	// access log line. Auth decisions are recorded through its Metrics.
	Telemetry *observe.Middleware

	// Health mounts /healthz, /readyz and /health when set.
	Health *health.Aggregator

	// MetricsHandler is mounted at /metrics when set.
	MetricsHandler http.Handler

	// CORSOrigins overrides the allowed origins of DefaultCORSOptions.
	CORSOrigins []string
}

// DefaultCORSOptions returns the CORS policy applied to every route.
func DefaultCORSOptions() cors.Options {
	return cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}
}

// NewRouter assembles a chi.Router with the shared middleware, CORS policy,
// login endpoint and role-gated resources mounted.
func NewRouter(opts RouterOptions) chi.Router {
	telemetry := opts.Telemetry
	if telemetry == nil {
		telemetry = observe.NewMiddleware(nil, nil, nil)
	}
	h := &handlers{
		codec:   opts.Codec,
		users:   opts.Users,
		metrics: telemetry.Metrics(),
		logger:  telemetry.Logger(),
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(telemetry.Handler)
	r.Use(recoverer(h.logger))

	corsCfg := DefaultCORSOptions()
	if len(opts.CORSOrigins) > 0 {
		corsCfg.AllowedOrigins = opts.CORSOrigins
	}
	r.Use(cors.Handler(corsCfg))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get(PathIndex, handleIndex)
	r.Post(PathLogin, h.handleLogin)

	gate := auth.NewGate(
		auth.NewBearerAuthenticator(auth.BearerConfig{}, opts.Codec),
		auth.WithErrorHook(h.recordRejection),
	)
	r.Group(func(r chi.Router) {
		r.With(gate.Protect(auth.RoleAdmin), h.recordAllowed).
			Get(PathAdmin, handleAdminDashboard)
		r.With(gate.Protect(auth.RoleModerator, auth.RoleAdmin), h.recordAllowed).
			Get(PathModerator, handleModeratorPanel)
		r.With(gate.Protect(auth.RoleUser, auth.RoleModerator, auth.RoleAdmin), h.recordAllowed).
			Get(PathProfile, handleUserProfile)
	})

	if opts.Health != nil {
		health.RegisterHandlers(r, opts.Health)
	}
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, PathMetrics, opts.MetricsHandler)
	}

	return r
}
