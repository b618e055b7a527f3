package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *TokenIssuer) {
	t.Helper()
	issuer := NewTokenIssuer("a-secret-that-is-at-least-32-chars!!", "virgil", time.Hour)
	return NewHandler(issuer, DemoVerifier{}), issuer
}

func TestIssueToken_JSONBody(t *testing.T) {
	h, issuer := newTestHandler(t)

	req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(`{"username":"alice","password":"pw"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.IssueToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var token Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))
	assert.Equal(t, "bearer", token.TokenType)

	subject, err := issuer.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestIssueToken_FormBody(t *testing.T) {
	h, _ := newTestHandler(t)

	form := url.Values{"username": {"bob"}, "password": {"pw"}}
	req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.IssueToken(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIssueToken_MissingCredentials(t *testing.T) {
	h, _ := newTestHandler(t)

	for _, body := range []string{`{}`, `{"username":"alice"}`, `{"password":"pw"}`, `not json`} {
		req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.IssueToken(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body: %s", body)
	}
}

func TestIssueToken_RejectedCredentials(t *testing.T) {
	issuer := NewTokenIssuer("a-secret-that-is-at-least-32-chars!!", "virgil", time.Hour)
	hash, err := HashPassword("right")
	require.NoError(t, err)
	h := NewHandler(issuer, NewStaticVerifier(map[string]string{"alice": hash}))

	req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.IssueToken(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("a-secret-that-is-at-least-32-chars!!", "virgil", time.Hour)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := GetIdentity(r.Context()); id != nil {
			w.Write([]byte(id.Subject))
			return
		}
		w.Write([]byte("anonymous"))
	})

	t.Run("valid bearer token", func(t *testing.T) {
		token, err := issuer.Issue("alice")
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/history", nil)
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		rec := httptest.NewRecorder()
		IdentityMiddleware(issuer, false)(echo).ServeHTTP(rec, req)

		assert.Equal(t, "alice", rec.Body.String())
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/history", nil)
		req.Header.Set("Authorization", "Bearer bogus")
		rec := httptest.NewRecorder()
		IdentityMiddleware(issuer, false)(echo).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("legacy header only when enabled", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/history", nil)
		req.Header.Set("X-User-Id", "bob")

		rec := httptest.NewRecorder()
		IdentityMiddleware(issuer, false)(echo).ServeHTTP(rec, req)
		assert.Equal(t, "anonymous", rec.Body.String())

		rec = httptest.NewRecorder()
		IdentityMiddleware(issuer, true)(echo).ServeHTTP(rec, req)
		assert.Equal(t, "bob", rec.Body.String())
	})

	t.Run("require auth blocks anonymous", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/history", nil)
		rec := httptest.NewRecorder()
		IdentityMiddleware(issuer, false)(RequireAuth(echo)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
