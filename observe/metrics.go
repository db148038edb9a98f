package observe

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Auth decision outcomes recorded by RecordAuthDecision.
const (
	OutcomeAllowed         = "allowed"
	OutcomeIssued          = "issued"
	OutcomeMissingToken    = "missing_token"
	OutcomeInvalidToken    = "invalid_token"
	OutcomeExpiredToken    = "expired_token"
	OutcomeUnauthenticated = "unauthenticated"
	OutcomeForbidden       = "forbidden"
	OutcomeBadRequest      = "bad_request"
	OutcomeBadCredentials  = "invalid_credentials"
	OutcomeError           = "error"
)

// Metrics records request and auth metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordRequest records a served request with its status and duration.
	RecordRequest(ctx context.Context, meta RouteMeta, status int, duration time.Duration)

	// RecordAuthDecision counts one authentication or authorization outcome.
	RecordAuthDecision(ctx context.Context, meta RouteMeta, outcome string)
}

type metricsImpl struct {
	requestCount  metric.Int64Counter
	errorCount    metric.Int64Counter
	durationHist  metric.Float64Histogram
	decisionCount metric.Int64Counter
}

// NewMetrics creates the gateway instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	if meter == nil {
		return &noopMetrics{}, nil
	}

	requestCount, err := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of HTTP requests served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"http.server.errors",
		metric.WithDescription("Total number of HTTP requests answered with a 5xx status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"http.server.duration_ms",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	decisionCount, err := meter.Int64Counter(
		"auth.decisions",
		metric.WithDescription("Authentication and authorization outcomes"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		requestCount:  requestCount,
		errorCount:    errorCount,
		durationHist:  durationHist,
		decisionCount: decisionCount,
	}, nil
}

func (m *metricsImpl) RecordRequest(ctx context.Context, meta RouteMeta, status int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("http.request.method", meta.Method),
		attribute.String("http.route", meta.RouteName()),
		attribute.Int("http.response.status_code", status),
	)

	m.requestCount.Add(ctx, 1, opt)
	if status >= http.StatusInternalServerError {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordAuthDecision(ctx context.Context, meta RouteMeta, outcome string) {
	m.decisionCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.route", meta.RouteName()),
		attribute.String("auth.outcome", outcome),
	))
}

type noopMetrics struct{}

func (m *noopMetrics) RecordRequest(ctx context.Context, meta RouteMeta, status int, duration time.Duration) {
}

func (m *noopMetrics) RecordAuthDecision(ctx context.Context, meta RouteMeta, outcome string) {}
