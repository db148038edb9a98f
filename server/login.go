package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/jonwraymond/rolegate/auth"
	"github.com/jonwraymond/rolegate/observe"
)

// maxLoginBody bounds the size of a login request body.
const maxLoginBody = 1 << 20

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Message string    `json:"message"`
	Token   string    `json:"token"`
	User    LoginUser `json:"user"`
}

// LoginUser describes the account a token was issued for.
type LoginUser struct {
	Username string    `json:"username"`
	Role     auth.Role `json:"role"`
}

// handleLogin exchanges a username and password for a signed token.
//
// The body is JSON or form-encoded. Absent or empty fields are a bad
// request. Present values that are not strings never match an account.
func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username, password, err := readCredentials(w, r)
	if err == nil {
		var rec *auth.UserRecord
		rec, err = auth.CheckCredentials(ctx, h.users, username, password)
		if err == nil {
			h.issue(w, r, rec)
			return
		}
	}

	resp := auth.ErrorResponse(err)
	outcome := observe.OutcomeError
	switch {
	case errors.Is(err, auth.ErrBadRequest):
		outcome = observe.OutcomeBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials):
		outcome = observe.OutcomeBadCredentials
	}
	h.recordDecision(r, outcome)
	h.logger.Warn(ctx, "login rejected",
		observe.F("username", username),
		observe.F("outcome", outcome),
		observe.F("reason", err.Error()),
	)
	auth.WriteError(w, resp)
}

func (h *handlers) issue(w http.ResponseWriter, r *http.Request, rec *auth.UserRecord) {
	ctx := r.Context()

	token, err := h.codec.Issue(ctx, rec.Username, rec.Role)
	if err != nil {
		h.recordDecision(r, observe.OutcomeError)
		h.logger.Error(ctx, "token issue failed",
			observe.F("username", rec.Username),
			observe.F("error", err),
		)
		auth.WriteError(w, auth.ErrorResponse(err))
		return
	}

	h.recordDecision(r, observe.OutcomeIssued)
	h.logger.Info(ctx, "login succeeded",
		observe.F("username", rec.Username),
		observe.F("role", string(rec.Role)),
	)
	auth.WriteJSON(w, http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    LoginUser{Username: rec.Username, Role: rec.Role},
	})
}

// readCredentials extracts the username and password from the request body.
func readCredentials(w http.ResponseWriter, r *http.Request) (string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLoginBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return "", "", fmt.Errorf("%w: %v", auth.ErrBadRequest, err)
		}
		username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
		if username == "" || password == "" {
			return "", "", auth.ErrBadRequest
		}
		return username, password, nil
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return "", "", fmt.Errorf("%w: %v", auth.ErrBadRequest, err)
	}

	username, userOK := credentialValue(body["username"])
	password, passOK := credentialValue(body["password"])
	if !truthy(body["username"]) || !truthy(body["password"]) {
		return "", "", auth.ErrBadRequest
	}
	if !userOK || !passOK {
		return "", "", auth.ErrInvalidCredentials
	}
	return username, password, nil
}

// credentialValue reports whether v is a usable string credential.
func credentialValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}

// truthy reports whether a decoded JSON value counts as supplied.
// null, false, 0 and "" do not.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
