package server

import (
	"encoding/json"
	"net/http"

	"github.com/authcore-io/authcore/oauth2"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code, description string, status int) {
	writeJSON(w, status, map[string]string{
		"error":             code,
		"error_description": description,
	})
}

func writeTokenError(w http.ResponseWriter, tokenErr *oauth2.TokenError) {
	writeJSON(w, tokenErr.Status, tokenErr)
}
