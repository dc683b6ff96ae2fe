package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dErrors "archiva/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("validation error includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeValidation, "missing communities"))

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "validation_error" {
			t.Fatalf("expected error code validation_error, got %q", body["error"])
		}
		if body["error_description"] != "missing communities" {
			t.Fatalf("expected error_description to be returned, got %q", body["error_description"])
		}
	})
}

func TestDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"astro"}`))
		got, err := Decode[payload](r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Name != "astro" {
			t.Fatalf("expected astro, got %q", got.Name)
		}
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"astro","extra":1}`))
		if _, err := Decode[payload](r); !dErrors.HasCode(err, dErrors.CodeBadRequest) {
			t.Fatalf("expected bad_request, got %v", err)
		}
	})
}
