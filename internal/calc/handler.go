package calc

import (
	"encoding/json"
	"net/http"

	"github.com/virgil-assistant/virgil/internal/api"
)

type calculateRequest struct {
	Expression string `json:"expression"`
}

// maxBodyBytes caps the request body; no legitimate expression comes
// anywhere near it.
const maxBodyBytes = 64 << 10

// Handler serves POST /calculate.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.HandleError(w, api.ErrBadRequest)
		return
	}
	if req.Expression == "" {
		api.JSONErrorMessage(w, http.StatusBadRequest, "missing expression")
		return
	}

	result, err := Eval(req.Expression)
	if err != nil {
		api.JSONErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	api.JSON(w, http.StatusOK, map[string]float64{"result": result})
}
