package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/virgil-assistant/virgil/internal/api"
	"github.com/virgil-assistant/virgil/internal/auth"
)

// ReminderEraser is the slice of the reminders store the user-data erasure
// endpoint needs.
type ReminderEraser interface {
	DeleteByUser(ctx context.Context, userID string) error
}

type Handler struct {
	svc       *Service
	reminders ReminderEraser
	validate  *validator.Validate
}

func NewHandler(svc *Service, reminders ReminderEraser) *Handler {
	return &Handler{
		svc:       svc,
		reminders: reminders,
		validate:  validator.New(),
	}
}

func (h *Handler) Guide(w http.ResponseWriter, r *http.Request) {
	var req GuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.ErrMissingMessage)
		return
	}

	api.JSON(w, http.StatusOK, h.svc.Guide(r.Context(), req))
}

func (h *Handler) QuickGuide(w http.ResponseWriter, r *http.Request) {
	var req QuickGuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.ErrMissingMessage)
		return
	}

	api.JSON(w, http.StatusOK, h.svc.QuickGuide(r.Context(), req))
}

func (h *Handler) Tones(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusOK, map[string][]string{"tones": Tones()})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetIdentity(r.Context())
	if identity == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	history, err := h.svc.History(r.Context(), identity.Subject)
	if err != nil {
		slog.Error("listing history", "user_id", identity.Subject, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if history == nil {
		history = []Conversation{}
	}

	api.JSON(w, http.StatusOK, map[string][]Conversation{"history": history})
}

// DeleteUser handles DELETE /user-data. Destructive, so it fails closed:
// authentication alone is not enough, the caller must also send an
// explicit confirmation signal.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity := auth.GetIdentity(r.Context())
	if identity == nil {
		api.HandleError(w, api.ErrUnauthorized)
		return
	}

	if !deleteConfirmed(r) {
		api.HandleError(w, api.ErrConfirmationRequired)
		return
	}

	if err := h.svc.Erase(r.Context(), identity.Subject); err != nil {
		slog.Error("erasing conversations", "user_id", identity.Subject, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if err := h.reminders.DeleteByUser(r.Context(), identity.Subject); err != nil {
		slog.Error("erasing reminders", "user_id", identity.Subject, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"status": "deleted", "user_id": identity.Subject})
}

func deleteConfirmed(r *http.Request) bool {
	if strings.EqualFold(r.Header.Get("X-Confirm-Delete"), "true") {
		return true
	}
	return strings.EqualFold(r.URL.Query().Get("confirm"), "true")
}
