// Package server mounts the gateway's HTTP surface on a chi router.
//
// Routes:
//
//	GET  /                      endpoint index
//	POST /api/auth/login        exchange username and password for a token
//	GET  /api/admin/dashboard   admin
//	GET  /api/moderator/manage  moderator, admin
//	GET  /api/user/profile      user, moderator, admin
//	GET  /healthz /readyz /health /health/{name}
//	GET  /metrics               when a Prometheus exporter is configured
//
// Every error, including unknown routes and handler panics, is written as
// the JSON envelope {"message": ..., "error": ...}.
package server
