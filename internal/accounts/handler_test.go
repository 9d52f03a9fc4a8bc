package accounts

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/emeraldlabs/storefront/internal/domain"
	"github.com/emeraldlabs/storefront/internal/validation"
)

type fakePublisher struct {
	events []domain.NotificationEvent
}

func (f *fakePublisher) Publish(_ context.Context, event domain.NotificationEvent) error {
	f.events = append(f.events, event)
	return nil
}

func newTestHandler(events EventPublisher) *Handler {
	return NewHandler(nil, events, validation.New(), "contact@storefront.local", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHandleCreateUserRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: "{"},
		{name: "missing email", body: `{"name": "Asha"}`},
		{name: "bad email", body: `{"email": "nope", "name": "Asha"}`},
		{name: "missing name", body: `{"email": "asha@example.com"}`},
	}

	h := newTestHandler(nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.HandleCreateUser(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}
}

func TestHandleContactFormPublishesEvent(t *testing.T) {
	publisher := &fakePublisher{}
	h := newTestHandler(publisher)

	body := `{"name": "Asha", "email": "asha@example.com", "subject": "Sizing", "message": "Does the large run big?"}`
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleContactForm(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status %d, got %d", http.StatusAccepted, rec.Code)
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(publisher.events))
	}

	event := publisher.events[0]
	if event.Kind != domain.EventContactForm {
		t.Errorf("expected kind %q, got %q", domain.EventContactForm, event.Kind)
	}
	if event.Contact == nil || event.Contact.Subject != "Sizing" {
		t.Fatalf("expected contact payload with subject, got %+v", event.Contact)
	}
	if event.Contact.Recipient != "contact@storefront.local" {
		t.Errorf("expected the company inbox as recipient, got %q", event.Contact.Recipient)
	}
	if event.Contact.Email != "asha@example.com" {
		t.Errorf("expected the submitter address in the payload, got %q", event.Contact.Email)
	}
}

func TestHandleContactFormRejectsInvalidForm(t *testing.T) {
	h := newTestHandler(&fakePublisher{})

	body := `{"name": "Asha", "email": "not-an-email", "subject": "Hi", "message": "hello"}`
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleContactForm(rec, req)

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
}
