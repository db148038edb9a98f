// Package auth issues and verifies role-bearing tokens and gates HTTP
// handlers on them.
//
// The pieces compose into a two-stage filter chain:
//
//	codec := auth.NewTokenCodec(auth.CodecConfig{Secret: secret})
//	gate := auth.NewGate(auth.NewBearerAuthenticator(auth.BearerConfig{}, codec))
//
//	r.With(
//	    gate.Authenticate,
//	    gate.RequireRoles(auth.RoleAdmin),
//	).Get("/api/admin/dashboard", dashboard)
//
// Gate.Authenticate verifies the bearer token and attaches an Identity to the
// request context. Gate.RequireRoles (or Gate.Authorize with any Authorizer) reads
// that Identity and admits or rejects the request. Both stages write a
// complete JSON error response and stop the chain on failure.
//
// Tokens are stateless: nothing is stored server-side, and every request
// is authenticated from its token alone.
package auth
