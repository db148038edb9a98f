// Package secret resolves configuration values that carry secrets, such as
// the token signing key.
//
// A value is first expanded against the environment (see ExpandEnvStrict)
// and then, if it is a secret reference, handed to a Provider:
//
//	JWT_SECRET=${ROLEGATE_SIGNING_KEY}
//	JWT_SECRET=secretref:env:ROLEGATE_SIGNING_KEY
//	JWT_SECRET=secretref:file:/run/secrets/jwt
//
// Any other value is returned as-is after expansion. Providers never log
// the values they resolve.
package secret
