package observe

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Middleware wraps HTTP handling with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Handler() returns a handler safe for concurrent use.
//   - Context: the request context carries the server span downstream.
//   - Ownership: request and response bodies pass through unmodified.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware. Nil components become no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = &noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}
	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Metrics returns the recorder used by the middleware.
func (m *Middleware) Metrics() Metrics { return m.metrics }

// Logger returns the logger used by the middleware.
func (m *Middleware) Logger() Logger { return m.logger }

// Handler traces, measures and logs each request.
//
// The route label is read from chi's routing context after the request has
// been served, so it reflects the matched pattern rather than the raw path.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := RouteMeta{Method: r.Method, Path: r.URL.Path}

		ctx, span := m.tracer.StartSpan(r.Context(), meta)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		duration := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		meta.Route = RoutePattern(r)

		m.tracer.EndSpan(span, meta, status, nil)
		m.metrics.RecordRequest(ctx, meta, status, duration)

		fields := []Field{
			F("method", meta.Method),
			F("route", meta.RouteName()),
			F("path", meta.Path),
			F("status", status),
			F("bytes", ww.BytesWritten()),
			F("duration_ms", float64(duration.Microseconds())/1000),
			F("remote_addr", r.RemoteAddr),
		}
		switch {
		case status >= http.StatusInternalServerError:
			m.logger.Error(ctx, "request failed", fields...)
		case status >= http.StatusBadRequest:
			m.logger.Warn(ctx, "request rejected", fields...)
		default:
			m.logger.Info(ctx, "request completed", fields...)
		}
	})
}

// RoutePattern returns the chi route pattern matched for r, or "" when r
// was not routed by chi.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
