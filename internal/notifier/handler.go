package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/emeraldlabs/storefront/internal/domain"
)

type Handler struct {
	emailServiceURL string
	client          *http.Client
	logger          *slog.Logger
}

func NewHandler(emailServiceURL string, logger *slog.Logger) *Handler {
	return &Handler{
		emailServiceURL: emailServiceURL,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// Handle renders the event and posts it to the email service. Malformed
// events are logged and dropped rather than retried forever.
func (h *Handler) Handle(ctx context.Context, event domain.NotificationEvent) error {
	email, ok := Render(event)
	if !ok {
		h.logger.Warn("dropping event with no renderable payload", "kind", event.Kind)
		return nil
	}

	if err := h.send(ctx, email); err != nil {
		return fmt.Errorf("send %s notification: %w", event.Kind, err)
	}

	h.logger.Info("notification dispatched", "kind", event.Kind, "to", email.To)
	return nil
}

func (h *Handler) send(ctx context.Context, email Email) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}
	return nil
}
