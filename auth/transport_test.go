package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type errorBody struct {
	Message  string `json:"message"`
	Error    string `json:"error"`
	UserRole string `json:"userRole"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

// okHandler records the identity it saw.
func okHandler(seen **Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func serve(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGate_Authenticate(t *testing.T) {
	codec := NewTokenCodec(CodecConfig{Secret: testSecret})
	gate := NewGate(NewBearerAuthenticator(BearerConfig{}, codec))

	valid, _ := codec.Issue(context.Background(), "user", RoleUser)
	past := NewTokenCodec(CodecConfig{Secret: testSecret, Now: fixedClock(time.Now().Add(-48 * time.Hour))})
	expired, _ := past.Issue(context.Background(), "user", RoleUser)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantMessage   string
		wantIdentity  bool
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, "", true},
		{"no header", "", http.StatusUnauthorized, "Unauthorized: No token provided", false},
		{"basic scheme", "Basic dXNlcjp1c2VyMTIz", http.StatusUnauthorized, "Unauthorized: No token provided", false},
		{"no space after scheme", "Bearer" + valid, http.StatusUnauthorized, "Unauthorized: No token provided", false},
		{"garbage token", "Bearer abc.def", http.StatusUnauthorized, "Unauthorized: Invalid token", false},
		{"tampered token", "Bearer " + valid + "x", http.StatusUnauthorized, "Unauthorized: Invalid token", false},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, "Unauthorized: Token expired", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *Identity
			rec := serve(gate.Authenticate(okHandler(&seen)), tt.authorization)

			if rec.Code != tt.wantStatus {
				t.Fatalf("Status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantIdentity {
				if seen == nil || seen.Username != "user" || seen.Role != RoleUser {
					t.Errorf("identity = %+v, want user/user", seen)
				}
				return
			}
			if seen != nil {
				t.Error("next handler ran on rejection")
			}
			body := decodeError(t, rec)
			if body.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMessage)
			}
			if body.Error == "" {
				t.Error("error detail is empty")
			}
			if rec.Header().Get("Content-Type") != "application/json; charset=utf-8" {
				t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestGate_Authenticate_MissingTokenDetail(t *testing.T) {
	gate := NewGate(NewBearerAuthenticator(BearerConfig{}, NewTokenCodec(CodecConfig{Secret: testSecret})))

	var seen *Identity
	body := decodeError(t, serve(gate.Authenticate(okHandler(&seen)), ""))
	if body.Error != "Authentication required" {
		t.Errorf("error = %q, want %q", body.Error, "Authentication required")
	}
}

func TestGate_Authenticate_InternalError(t *testing.T) {
	t.Run("authenticator fault", func(t *testing.T) {
		authn := NewAuthenticatorFunc("broken",
			func(context.Context, *AuthRequest) bool { return true },
			func(context.Context, *AuthRequest) (*AuthResult, error) {
				return nil, errors.New("key store unavailable")
			},
		)
		var seen *Identity
		rec := serve(NewGate(authn).Authenticate(okHandler(&seen)), "Bearer x")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("Status = %d, want 500", rec.Code)
		}
		body := decodeError(t, rec)
		if body.Message != "Internal server error" || body.Error != "key store unavailable" {
			t.Errorf("body = %+v", body)
		}
	})

	t.Run("missing signing key", func(t *testing.T) {
		token, _ := NewTokenCodec(CodecConfig{Secret: testSecret}).Issue(context.Background(), "user", RoleUser)
		gate := NewGate(NewBearerAuthenticator(BearerConfig{}, NewTokenCodec(CodecConfig{})))

		var seen *Identity
		rec := serve(gate.Authenticate(okHandler(&seen)), "Bearer "+token)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("Status = %d, want 500", rec.Code)
		}
	})

	t.Run("failure without cause", func(t *testing.T) {
		authn := NewAuthenticatorFunc("empty",
			func(context.Context, *AuthRequest) bool { return true },
			func(context.Context, *AuthRequest) (*AuthResult, error) {
				return &AuthResult{}, nil
			},
		)
		var seen *Identity
		rec := serve(NewGate(authn).Authenticate(okHandler(&seen)), "Bearer x")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("Status = %d, want 401", rec.Code)
		}
	})
}

func TestGate_Authorize(t *testing.T) {
	gate := NewGate(nil)

	withIdentity := func(id *Identity, h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id != nil {
				r = r.WithContext(WithIdentity(r.Context(), id))
			}
			h.ServeHTTP(w, r)
		})
	}

	t.Run("member passes unchanged", func(t *testing.T) {
		var seen *Identity
		id := &Identity{Username: "mod", Role: RoleModerator}
		rec := serve(withIdentity(id, gate.RequireRoles(RoleModerator, RoleAdmin)(okHandler(&seen))), "")

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200", rec.Code)
		}
		if seen != id {
			t.Error("identity not passed through")
		}
	})

	t.Run("non-member is forbidden", func(t *testing.T) {
		var seen *Identity
		id := &Identity{Username: "user", Role: RoleUser}
		rec := serve(withIdentity(id, gate.RequireRoles(RoleModerator, RoleAdmin)(okHandler(&seen))), "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("Status = %d, want 403", rec.Code)
		}
		body := decodeError(t, rec)
		if body.Message != "Forbidden: Access denied" {
			t.Errorf("message = %q", body.Message)
		}
		want := "You do not have permission to access this resource. Required roles: moderator, admin"
		if body.Error != want {
			t.Errorf("error = %q, want %q", body.Error, want)
		}
		if body.UserRole != "user" {
			t.Errorf("userRole = %q, want user", body.UserRole)
		}
		if seen != nil {
			t.Error("next handler ran on rejection")
		}
	})

	t.Run("missing identity", func(t *testing.T) {
		var seen *Identity
		rec := serve(gate.RequireRoles(RoleUser)(okHandler(&seen)), "")

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("Status = %d, want 401", rec.Code)
		}
		body := decodeError(t, rec)
		if body.Error != "Please log in first" {
			t.Errorf("error = %q, want %q", body.Error, "Please log in first")
		}
		if body.UserRole != "" {
			t.Errorf("userRole = %q, want empty on 401", body.UserRole)
		}
	})

	t.Run("custom forbidden error gets user role", func(t *testing.T) {
		authz := AuthorizerFunc(func(context.Context, *AuthzRequest) error { return ErrForbidden })
		var seen *Identity
		id := &Identity{Username: "admin", Role: RoleAdmin}
		rec := serve(withIdentity(id, gate.Authorize(authz)(okHandler(&seen))), "")

		if rec.Code != http.StatusForbidden {
			t.Fatalf("Status = %d, want 403", rec.Code)
		}
		if body := decodeError(t, rec); body.UserRole != "admin" {
			t.Errorf("userRole = %q, want admin", body.UserRole)
		}
	})

	t.Run("panicking authorizer", func(t *testing.T) {
		authz := AuthorizerFunc(func(context.Context, *AuthzRequest) error { panic("policy table corrupt") })
		var seen *Identity
		id := &Identity{Username: "admin", Role: RoleAdmin}
		rec := serve(withIdentity(id, gate.Authorize(authz)(okHandler(&seen))), "")

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("Status = %d, want 500", rec.Code)
		}
		if body := decodeError(t, rec); body.Message != "Internal server error" {
			t.Errorf("message = %q", body.Message)
		}
	})
}

func TestGate_Protect(t *testing.T) {
	codec := NewTokenCodec(CodecConfig{Secret: testSecret})

	var hooked []*HTTPError
	gate := NewGate(NewBearerAuthenticator(BearerConfig{}, codec), WithErrorHook(func(_ *http.Request, e *HTTPError) {
		hooked = append(hooked, e)
	}))

	adminToken, _ := codec.Issue(context.Background(), "admin", RoleAdmin)
	userToken, _ := codec.Issue(context.Background(), "user", RoleUser)

	var seen *Identity
	h := gate.Protect(RoleAdmin)(okHandler(&seen))

	if rec := serve(h, "Bearer "+adminToken); rec.Code != http.StatusOK {
		t.Errorf("admin Status = %d, want 200", rec.Code)
	}
	if rec := serve(h, "Bearer "+userToken); rec.Code != http.StatusForbidden {
		t.Errorf("user Status = %d, want 403", rec.Code)
	}
	if rec := serve(h, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous Status = %d, want 401", rec.Code)
	}

	if len(hooked) != 2 {
		t.Fatalf("error hook saw %d rejections, want 2", len(hooked))
	}
	if hooked[0].Status != http.StatusForbidden || hooked[1].Status != http.StatusUnauthorized {
		t.Errorf("hooked statuses = %d, %d", hooked[0].Status, hooked[1].Status)
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"missing credentials", ErrMissingCredentials, 401, "Unauthorized: No token provided"},
		{"malformed", &TokenError{Kind: ErrTokenMalformed}, 401, "Unauthorized: Invalid token"},
		{"bad signature", &TokenError{Kind: ErrInvalidSignature}, 401, "Unauthorized: Invalid token"},
		{"expired", &TokenError{Kind: ErrTokenExpired}, 401, "Unauthorized: Token expired"},
		{"unauthenticated", ErrUnauthenticated, 401, "Unauthorized: User not authenticated"},
		{"forbidden", &AuthzError{Role: RoleUser, Required: RoleSet{RoleAdmin}}, 403, "Forbidden: Access denied"},
		{"bad request", ErrBadRequest, 400, "Bad Request"},
		{"invalid credentials", ErrInvalidCredentials, 401, "Unauthorized"},
		{"unexpected", errors.New("boom"), 500, "Internal server error"},
		{"nil", nil, 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ErrorResponse(tt.err)
			if resp.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", resp.Status, tt.wantStatus)
			}
			if resp.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", resp.Message, tt.wantMessage)
			}
			if resp.Detail == "" {
				t.Error("Detail is empty")
			}
		})
	}
}

func TestErrorResponse_PassesThroughHTTPError(t *testing.T) {
	orig := &HTTPError{Status: http.StatusTeapot, Message: "m", Detail: "d"}
	if got := ErrorResponse(orig); got != orig {
		t.Errorf("ErrorResponse() = %+v, want the same *HTTPError", got)
	}
}

func TestWriteError_OmitsEmptyUserRole(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, ErrorResponse(ErrMissingCredentials))

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["userRole"]; ok {
		t.Error("userRole present on a 401 body")
	}
	if len(raw) != 2 {
		t.Errorf("body keys = %v, want message and error only", raw)
	}
}
