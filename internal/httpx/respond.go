package httpx

import (
	"encoding/json"
	"net/http"
)

type errorEnvelope struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteErr writes the standard JSON error envelope for an Error.
func WriteErr(w http.ResponseWriter, err *Error) {
	WriteJSON(w, err.Status, errorEnvelope{Error: err.Message, Fields: err.Fields})
}
