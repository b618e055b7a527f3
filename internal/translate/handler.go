package translate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/virgil-assistant/virgil/internal/api"
)

// Translator is implemented by Client.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

type Handler struct {
	translator Translator
}

func NewHandler(translator Translator) *Handler {
	return &Handler{translator: translator}
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Translate handles POST /translate. Unlike chat, upstream failures are
// surfaced to the caller: there is no sensible fallback translation.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if req.Text == "" {
		api.JSONErrorMessage(w, http.StatusBadRequest, "missing text")
		return
	}
	if req.Target == "" {
		api.JSONErrorMessage(w, http.StatusBadRequest, "missing target language")
		return
	}

	translated, err := h.translator.Translate(r.Context(), req.Text, req.Source, req.Target)
	if err != nil {
		slog.Error("translation failed", "target", req.Target, "error", err)
		api.HandleError(w, api.ErrTranslationUpstream)
		return
	}

	api.JSON(w, http.StatusOK, map[string]string{"translated": translated})
}
