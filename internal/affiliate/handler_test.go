package affiliate

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

func newTestHandler() *Handler {
	return NewHandler(nil, nil, validation.New(), "http://localhost:8080", "admin@example.com",
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleSignupRequiresUser(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/affiliate/signup", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.HandleSignup(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestHandleWithdrawRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: "{"},
		{name: "missing amount", body: `{"payment_method": "bank"}`},
		{name: "bad payment method", body: `{"amount": "600.00", "payment_method": "cash"}`},
		{name: "non numeric amount", body: `{"amount": "lots", "payment_method": "upi"}`},
	}

	h := newTestHandler()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/affiliate/withdraw", strings.NewReader(tt.body))
			req.Header.Set("X-User-ID", "u1")
			rec := httptest.NewRecorder()
			h.HandleWithdraw(rec, req)

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

func TestHandleProcessWithdrawalRejectsBadStatus(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/admin/withdrawals/w1/process", strings.NewReader(`{"status": "pending"}`))
	rec := httptest.NewRecorder()
	h.HandleProcessWithdrawal(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
