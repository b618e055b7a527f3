package notify

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/virgil-assistant/virgil/internal/auth"
)

type Handler struct {
	registry    *Registry
	issuer      *auth.TokenIssuer
	allowLegacy bool
	upgrader    websocket.Upgrader
}

func NewHandler(registry *Registry, issuer *auth.TokenIssuer, allowLegacy bool) *Handler {
	return &Handler{
		registry:    registry,
		issuer:      issuer,
		allowLegacy: allowLegacy,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The channel is bound to a verified user id below; cross-origin
			// browser pages gain nothing without a token.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws/notify/{user_id}. The caller must prove it owns
// the path user id before the upgrade; rejection is a plain HTTP 403.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	if !h.authorized(r, userID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	h.registry.Connect(userID, ws)
	defer h.registry.Disconnect(userID, ws)
	slog.Info("notification channel opened", "user_id", userID)

	for {
		msgType, _, err := ws.ReadMessage()
		if err != nil {
			slog.Info("notification channel closed", "user_id", userID)
			return
		}
		if msgType == websocket.TextMessage {
			// Ack through the registry so writes stay serialized with
			// poller pushes.
			if err := h.registry.SendTo(userID, map[string]string{"type": "ack"}); err != nil {
				return
			}
		}
	}
}

// authorized checks that the caller may listen on the user's channel: a
// valid token whose subject matches the path id, the legacy unverified
// header when that mode is on, or the shared guest id with nothing at all.
func (h *Handler) authorized(r *http.Request, userID string) bool {
	token := auth.BearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token != "" {
		subject, err := h.issuer.Validate(token)
		return err == nil && subject == userID
	}

	if h.allowLegacy && r.Header.Get("X-User-Id") == userID {
		return true
	}

	return userID == "guest"
}
