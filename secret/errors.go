package secret

import "errors"

var (
	// ErrMissingEnv is returned when ${VAR} references an unset variable.
	ErrMissingEnv = errors.New("secret: missing environment variable")

	// ErrUnknownProvider is returned for a secretref naming no registered provider.
	ErrUnknownProvider = errors.New("secret: unknown provider")

	// ErrInvalidRef is returned for a malformed secretref value.
	ErrInvalidRef = errors.New("secret: invalid reference")

	// ErrEmpty is returned in strict mode when a provider yields an empty value.
	ErrEmpty = errors.New("secret: empty value")
)
