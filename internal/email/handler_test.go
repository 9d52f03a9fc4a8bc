package email

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleSend(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "valid request",
			body:   `{"to": "asha@example.com", "subject": "Order confirmed", "body": "Thanks!"}`,
			status: http.StatusOK,
		},
		{
			name:   "missing recipient",
			body:   `{"subject": "Order confirmed", "body": "Thanks!"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "missing subject",
			body:   `{"to": "asha@example.com"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "invalid json",
			body:   "{",
			status: http.StatusBadRequest,
		},
	}

	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/send", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.HandleSend(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}
