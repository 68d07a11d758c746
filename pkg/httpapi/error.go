package httpapi

import (
	"encoding/json"
	"net/http"
)

// ErrorEnvelope is the uniform JSON error body across all API namespaces.
// Meta carries request correlation and per-field validation details.
type ErrorEnvelope struct {
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Meta    map[string]string `json:"meta,omitempty"`
}

// WriteJSON writes payload with the given status. A nil payload produces an
// empty body. Marshal failures are reported before any bytes hit the wire,
// so a broken payload never produces a half-written 200.
func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	if w == nil {
		return nil
	}
	if payload == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"message":"encoding failure","code":"INTERNAL"}`, http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(body)
	return err
}

// WriteError writes a coded error envelope.
func WriteError(w http.ResponseWriter, status int, code, message string, meta map[string]string) error {
	return WriteJSON(w, status, &ErrorEnvelope{
		Code:    code,
		Message: message,
		Meta:    meta,
	})
}
