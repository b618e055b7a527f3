package api

import (
	"encoding/json"
	"net/http"
)

// JSON writes the payload as-is. Virgil's endpoints return flat response
// shapes ({"reply": ...}, {"tones": [...]}) rather than an envelope, for
// compatibility with the existing frontend.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func JSONError(w http.ResponseWriter, status int, err error) {
	JSONErrorMessage(w, status, err.Error())
}

func JSONErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
