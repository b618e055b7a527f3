package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virgil-assistant/virgil/internal/auth"
)

type fakeReminderEraser struct {
	deleted []string
	err     error
}

func (f *fakeReminderEraser) DeleteByUser(_ context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, userID)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *fakeRepo, *fakeReminderEraser) {
	t.Helper()
	repo := newFakeRepo()
	eraser := &fakeReminderEraser{}
	svc := newTestService(&fakeProvider{reply: "guidance"}, repo)
	return NewHandler(svc, eraser), repo, eraser
}

func asIdentity(r *http.Request, subject string) *http.Request {
	return r.WithContext(auth.WithIdentity(r.Context(), &auth.Identity{Subject: subject}))
}

func TestGuideHandler(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/guide", strings.NewReader(`{"message":"hello","session_id":"s1"}`))
	rec := httptest.NewRecorder()
	h.Guide(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp GuideResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "guidance", resp.Reply)
	assert.Equal(t, "s1", resp.SessionID)
}

func TestGuideHandler_MissingMessage(t *testing.T) {
	h, _, _ := newTestHandler(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty message", `{"message":""}`},
		{"absent message", `{"session_id":"s1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/guide", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.Guide(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "missing message")
		})
	}
}

func TestGuideHandler_MalformedJSON(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/guide", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Guide(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuickGuideHandler(t *testing.T) {
	h, repo, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/quick-guide", strings.NewReader(`{"message":"hello"}`))
	rec := httptest.NewRecorder()
	h.QuickGuide(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp GuideResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "quick-response", resp.SessionID)
	assert.Empty(t, repo.rows)
}

func TestTonesHandler(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Tones(rec, httptest.NewRequest(http.MethodGet, "/tones", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"default", "friendly", "professional"}, resp["tones"])
}

func TestHistoryHandler(t *testing.T) {
	h, repo, _ := newTestHandler(t)
	require.NoError(t, repo.SaveTurn(context.Background(), "alice", "hi", "hello"))

	req := asIdentity(httptest.NewRequest(http.MethodGet, "/history", nil), "alice")
	rec := httptest.NewRecorder()
	h.History(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]Conversation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp["history"], 1)
	assert.Equal(t, "hi", resp["history"][0].Message)
}

func TestHistoryHandler_EmptyIsArray(t *testing.T) {
	h, _, _ := newTestHandler(t)

	req := asIdentity(httptest.NewRequest(http.MethodGet, "/history", nil), "nobody")
	rec := httptest.NewRecorder()
	h.History(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"history":[]}`, rec.Body.String())
}

func TestHistoryHandler_Anonymous(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.History(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteUserHandler(t *testing.T) {
	h, repo, eraser := newTestHandler(t)
	require.NoError(t, repo.SaveTurn(context.Background(), "alice", "hi", "hello"))

	t.Run("unconfirmed is rejected", func(t *testing.T) {
		req := asIdentity(httptest.NewRequest(http.MethodDelete, "/user-data", nil), "alice")
		rec := httptest.NewRecorder()
		h.DeleteUser(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, repo.rows["alice"])
	})

	t.Run("confirmed via header", func(t *testing.T) {
		req := asIdentity(httptest.NewRequest(http.MethodDelete, "/user-data", nil), "alice")
		req.Header.Set("X-Confirm-Delete", "true")
		rec := httptest.NewRecorder()
		h.DeleteUser(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, repo.rows["alice"])
		assert.Equal(t, []string{"alice"}, eraser.deleted)
		assert.JSONEq(t, `{"status":"deleted","user_id":"alice"}`, rec.Body.String())
	})

	t.Run("confirmed via query param", func(t *testing.T) {
		require.NoError(t, repo.SaveTurn(context.Background(), "bob", "hi", "hello"))
		req := asIdentity(httptest.NewRequest(http.MethodDelete, "/user-data?confirm=true", nil), "bob")
		rec := httptest.NewRecorder()
		h.DeleteUser(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, repo.rows["bob"])
	})

	t.Run("anonymous is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/user-data", nil)
		req.Header.Set("X-Confirm-Delete", "true")
		rec := httptest.NewRecorder()
		h.DeleteUser(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
