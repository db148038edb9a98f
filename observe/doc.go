// Package observe provides observability primitives for the gateway's HTTP
// surface: a tracer, request and auth-decision metrics, and a JSON
// structured logger with field redaction.
//
// It does no routing and no authentication of its own. The server wires
// Middleware.Handler around the router and reports auth outcomes through
// Metrics.RecordAuthDecision.
package observe
