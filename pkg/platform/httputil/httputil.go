// Package httputil holds response helpers shared by all handlers.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "archiva/pkg/domain-errors"
)

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON serializes payload with the given status. Encoding failures are
// silent; the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// WriteError maps a domain error to its HTTP status. Internal errors omit
// the description so storage details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.Description = dErrors.MessageOf(err)
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), body)
}

// Decode reads a JSON body into T, reporting malformed input as a
// bad-request domain error.
func Decode[T any](r *http.Request) (T, error) {
	var payload T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return payload, dErrors.New(dErrors.CodeBadRequest, "malformed JSON body")
	}
	return payload, nil
}
