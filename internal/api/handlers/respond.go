package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError sends {"error": msg} and, when cause is set, its text under
// "details".
func writeError(w http.ResponseWriter, status int, msg string, cause error) {
	body := map[string]string{"error": msg}
	if cause != nil {
		body["details"] = cause.Error()
	}
	writeJSON(w, status, body)
}

// decodeJSON reports false after writing the error response itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large", nil)
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid request body", err)
	return false
}
