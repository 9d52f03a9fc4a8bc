package checkout

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emeraldlabs/storefront/internal/validation"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(nil, nil, nil, validation.New(), "admin@example.com", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleCheckoutRequiresUser(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.HandleCheckout(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestHandleCheckoutRejectsInvalidForm(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: "{"},
		{
			name: "missing name",
			body: `{"email":"a@b.com","phone":"9876543210","address":"12 Main St","city":"Pune","state":"MH","pincode":"411001"}`,
		},
		{
			name: "bad pincode",
			body: `{"name":"Asha","email":"a@b.com","phone":"9876543210","address":"12 Main St","city":"Pune","state":"MH","pincode":"41100"}`,
		},
		{
			name: "bad email",
			body: `{"name":"Asha","email":"not-an-email","phone":"9876543210","address":"12 Main St","city":"Pune","state":"MH","pincode":"411001"}`,
		},
	}

	h := newTestHandler(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(tt.body))
			req.Header.Set("X-User-ID", "u1")
			rec := httptest.NewRecorder()
			h.HandleCheckout(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}

			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["error"] == "" {
				t.Fatal("expected an error message in the response")
			}
		})
	}
}
