package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/virgil-assistant/virgil/internal/api"
)

type Handler struct {
	issuer   *TokenIssuer
	verifier CredentialVerifier
}

func NewHandler(issuer *TokenIssuer, verifier CredentialVerifier) *Handler {
	return &Handler{issuer: issuer, verifier: verifier}
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// IssueToken handles POST /auth/token. Both JSON and form-encoded bodies
// are accepted, for compatibility with OAuth-style form clients.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	username, password := credentialsFromRequest(r)
	if username == "" || password == "" {
		api.HandleError(w, api.NewBadRequestError("username and password required"))
		return
	}

	if err := h.verifier.Verify(username, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			api.HandleError(w, api.ErrUnauthorized)
			return
		}
		slog.Error("verifying credentials", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	token, err := h.issuer.Issue(username)
	if err != nil {
		slog.Error("issuing token", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, token)
}

func credentialsFromRequest(r *http.Request) (string, string) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || strings.HasPrefix(ct, "application/json") {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			return req.Username, req.Password
		}
		return "", ""
	}
	if err := r.ParseForm(); err != nil {
		return "", ""
	}
	return r.PostFormValue("username"), r.PostFormValue("password")
}
