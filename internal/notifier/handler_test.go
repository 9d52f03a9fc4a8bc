package notifier

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/emeraldlabs/storefront/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func orderEvent() domain.NotificationEvent {
	return domain.NotificationEvent{
		Kind:       domain.EventOrderConfirmation,
		OccurredAt: time.Now().UTC(),
		Order: &domain.OrderNotice{
			OrderNumber: "A1B2C3D4E5F6",
			Name:        "Asha",
			Email:       "asha@example.com",
			TotalAmount: "299.00",
			ItemCount:   2,
		},
	}
}

func TestHandlePostsToEmailService(t *testing.T) {
	var received Email
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/send" {
			t.Errorf("expected /send, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode email: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	h := NewHandler(server.URL, discardLogger())
	if err := h.Handle(context.Background(), orderEvent()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if received.To != "asha@example.com" {
		t.Errorf("expected recipient asha@example.com, got %q", received.To)
	}
	if !strings.Contains(received.Subject, "A1B2C3D4E5F6") {
		t.Errorf("expected subject to reference the order number, got %q", received.Subject)
	}
	if !strings.Contains(received.Body, "299.00") {
		t.Errorf("expected body to include the total, got %q", received.Body)
	}
}

func TestHandleReturnsErrorOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	h := NewHandler(server.URL, discardLogger())
	if err := h.Handle(context.Background(), orderEvent()); err == nil {
		t.Fatal("expected an error when the email service fails")
	}
}

func TestHandleDropsPayloadlessEvents(t *testing.T) {
	h := NewHandler("http://email.invalid", discardLogger())

	// No Order payload attached, so the handler must not attempt a send.
	event := domain.NotificationEvent{Kind: domain.EventOrderConfirmation}
	if err := h.Handle(context.Background(), event); err != nil {
		t.Fatalf("expected payloadless event to be dropped, got %v", err)
	}
}

func TestRenderCoversAllKinds(t *testing.T) {
	tests := []struct {
		name    string
		event   domain.NotificationEvent
		to      string
		subject string
	}{
		{
			name: "commission earned",
			event: domain.NotificationEvent{
				Kind: domain.EventAffiliateCommissionEarned,
				Affiliate: &domain.AffiliateNotice{
					Email:            "aff@example.com",
					Name:             "Ravi",
					CommissionAmount: "50.00",
					OrderNumber:      "A1B2C3D4E5F6",
				},
			},
			to:      "aff@example.com",
			subject: "commission",
		},
		{
			name: "affiliate signup",
			event: domain.NotificationEvent{
				Kind:      domain.EventAffiliateSignup,
				Affiliate: &domain.AffiliateNotice{Email: "aff@example.com", Name: "Ravi", AffiliateCode: "AFF12345678"},
			},
			to:      "aff@example.com",
			subject: "affiliate program",
		},
		{
			name: "withdrawal requested",
			event: domain.NotificationEvent{
				Kind:       domain.EventWithdrawalRequested,
				Withdrawal: &domain.WithdrawalNotice{Email: "aff@example.com", Amount: "600.00", Status: "pending"},
			},
			to:      "aff@example.com",
			subject: "Withdrawal request",
		},
		{
			name: "withdrawal processed",
			event: domain.NotificationEvent{
				Kind:       domain.EventWithdrawalProcessed,
				Withdrawal: &domain.WithdrawalNotice{Email: "aff@example.com", Amount: "600.00", Status: "completed"},
			},
			to:      "aff@example.com",
			subject: "completed",
		},
		{
			name: "contact form",
			event: domain.NotificationEvent{
				Kind:    domain.EventContactForm,
				Contact: &domain.ContactFormNotice{Recipient: "contact@storefront.local", Name: "Asha", Email: "asha@example.com", Subject: "Sizing", Message: "Hi"},
			},
			to:      "contact@storefront.local",
			subject: "Sizing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, ok := Render(tt.event)
			if !ok {
				t.Fatal("expected event to render")
			}
			if email.To != tt.to {
				t.Errorf("expected recipient %q, got %q", tt.to, email.To)
			}
			if !strings.Contains(strings.ToLower(email.Subject), strings.ToLower(tt.subject)) {
				t.Errorf("expected subject to contain %q, got %q", tt.subject, email.Subject)
			}
		})
	}
}

func TestRenderContactFormGoesToCompanyInbox(t *testing.T) {
	email, ok := Render(domain.NotificationEvent{
		Kind: domain.EventContactForm,
		Contact: &domain.ContactFormNotice{
			Recipient: "contact@storefront.local",
			Name:      "Asha",
			Email:     "asha@example.com",
			Subject:   "Sizing",
			Message:   "Does the large run big?",
		},
	})
	if !ok {
		t.Fatal("expected event to render")
	}
	if email.To != "contact@storefront.local" {
		t.Errorf("expected the company inbox as recipient, got %q", email.To)
	}
	if email.To == "asha@example.com" {
		t.Error("contact form must not be delivered to the submitter")
	}
	if !strings.Contains(email.Body, "asha@example.com") {
		t.Errorf("expected the submitter address in the body, got %q", email.Body)
	}
}

func TestRenderRejectsUnknownKind(t *testing.T) {
	if _, ok := Render(domain.NotificationEvent{Kind: "carrier_pigeon"}); ok {
		t.Fatal("expected unknown kind not to render")
	}
}
