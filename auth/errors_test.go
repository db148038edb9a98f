package auth

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrMissingCredentials", ErrMissingCredentials},
		{"ErrInvalidCredentials", ErrInvalidCredentials},
		{"ErrInvalidToken", ErrInvalidToken},
		{"ErrTokenMalformed", ErrTokenMalformed},
		{"ErrInvalidSignature", ErrInvalidSignature},
		{"ErrTokenExpired", ErrTokenExpired},
		{"ErrMissingSigningKey", ErrMissingSigningKey},
		{"ErrBadRequest", ErrBadRequest},
		{"ErrUnauthenticated", ErrUnauthenticated},
		{"ErrForbidden", ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatalf("%s is nil", tt.name)
			}
			if tt.err.Error() == "" {
				t.Errorf("%s has empty message", tt.name)
			}
		})
	}
}

func TestTokenError_Is(t *testing.T) {
	tests := []struct {
		name        string
		kind        error
		wantInvalid bool
		wantExpired bool
	}{
		{"malformed", ErrTokenMalformed, true, false},
		{"bad signature", ErrInvalidSignature, true, false},
		{"expired", ErrTokenExpired, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("verify: %w", &TokenError{Kind: tt.kind})

			if !errors.Is(err, tt.kind) {
				t.Errorf("errors.Is(err, %v) = false", tt.kind)
			}
			if got := errors.Is(err, ErrInvalidToken); got != tt.wantInvalid {
				t.Errorf("errors.Is(err, ErrInvalidToken) = %v, want %v", got, tt.wantInvalid)
			}
			if got := errors.Is(err, ErrTokenExpired); got != tt.wantExpired {
				t.Errorf("errors.Is(err, ErrTokenExpired) = %v, want %v", got, tt.wantExpired)
			}
		})
	}
}

func TestTokenError_Message(t *testing.T) {
	cause := errors.New("token has invalid claims: token is expired")
	err := &TokenError{Kind: ErrTokenExpired, Cause: cause}

	if err.Error() != cause.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), cause.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}

	bare := &TokenError{Kind: ErrTokenMalformed}
	if bare.Error() != ErrTokenMalformed.Error() {
		t.Errorf("Error() = %q, want %q", bare.Error(), ErrTokenMalformed.Error())
	}
}
