package observe

import (
	"context"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// RouteMeta describes a served request for telemetry purposes.
type RouteMeta struct {
	Method string // HTTP method (required)
	Route  string // Route pattern, e.g. /api/admin/dashboard. Falls back to Path.
	Path   string // Raw request path
}

// RouteName returns the low-cardinality route label.
func (m RouteMeta) RouteName() string {
	if m.Route != "" {
		return m.Route
	}
	if m.Path != "" {
		return m.Path
	}
	return "unknown"
}

// SpanName returns the span name: "<METHOD> <route>".
func (m RouteMeta) SpanName() string {
	return m.Method + " " + m.RouteName()
}

// Tracer wraps OpenTelemetry tracing with request span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a server span for a request.
	StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span)

	// EndSpan records the final route and status and ends the span.
	// A 5xx status or non-nil err marks the span as failed.
	EndSpan(span trace.Span, meta RouteMeta, status int, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return newNoopTracer()
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		semconv.HTTPRequestMethodKey.String(meta.Method),
	}
	if meta.Path != "" {
		attrs = append(attrs, semconv.URLPath(meta.Path))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, meta RouteMeta, status int, err error) {
	span.SetName(meta.SpanName())
	span.SetAttributes(
		semconv.HTTPRoute(meta.RouteName()),
		semconv.HTTPResponseStatusCode(status),
	)

	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case status >= http.StatusInternalServerError:
		span.SetStatus(codes.Error, strconv.Itoa(status))
	default:
		// Server spans leave 4xx unset.
		span.SetStatus(codes.Unset, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta RouteMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, meta RouteMeta, status int, err error) {
	span.End()
}
