package reminders

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/virgil-assistant/virgil/internal/api"
	"github.com/virgil-assistant/virgil/internal/auth"
	"github.com/virgil-assistant/virgil/internal/metrics"
)

type Handler struct {
	repo     Repository
	validate *validator.Validate
}

func NewHandler(repo Repository) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
	}
}

// Schedule handles POST /reminder.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	remindAt, err := parseRemindAt(req.RemindAt)
	if err != nil {
		api.JSONErrorMessage(w, http.StatusBadRequest, "invalid remind_at, expected ISO 8601 timestamp")
		return
	}

	rem, err := h.repo.Create(r.Context(), requestUser(r), req.Message, remindAt)
	if err != nil {
		slog.Error("scheduling reminder", "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"status":   "scheduled",
		"reminder": rem,
	})
}

// Pull handles GET /reminders: due reminders are marked delivered in the
// same statement that selects them, then delivered rows are swept.
func (h *Handler) Pull(w http.ResponseWriter, r *http.Request) {
	userID := requestUser(r)

	due, err := h.repo.PullDue(r.Context(), userID)
	if err != nil {
		slog.Error("pulling reminders", "user_id", userID, "error", err)
		api.HandleError(w, api.ErrInternalServer)
		return
	}
	if len(due) > 0 {
		metrics.RemindersDeliveredTotal.WithLabelValues("pull").Add(float64(len(due)))
	}
	if due == nil {
		due = []Reminder{}
	}

	if err := h.repo.DeleteDelivered(r.Context(), userID); err != nil {
		slog.Warn("sweeping delivered reminders", "user_id", userID, "error", err)
	}

	api.JSON(w, http.StatusOK, map[string][]Reminder{"reminders": due})
}

// requestUser resolves the reminder owner: the authenticated identity if
// one was established, otherwise the shared guest identity.
func requestUser(r *http.Request) string {
	if id := auth.GetIdentity(r.Context()); id != nil {
		return id.Subject
	}
	return "guest"
}

// parseRemindAt accepts RFC 3339 timestamps, with or without an explicit
// offset (a bare timestamp is taken as UTC).
func parseRemindAt(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}
