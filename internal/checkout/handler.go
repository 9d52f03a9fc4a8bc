package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/emeraldlabs/storefront/internal/domain"
	"github.com/emeraldlabs/storefront/internal/session"
	"github.com/emeraldlabs/storefront/internal/validation"
)

// AttributionStore resolves and clears the affiliate code recorded for a
// visitor's session.
type AttributionStore interface {
	AffiliateCode(ctx context.Context, sid string) (string, error)
	Clear(ctx context.Context, sid string) error
}

// EventPublisher delivers notification events to the dispatcher. Publish
// failures are logged, never surfaced to the customer.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent) error
}

type Handler struct {
	repo       *CheckoutRepository
	sessions   AttributionStore
	events     EventPublisher
	validate   *validator.Validate
	adminEmail string
	logger     *slog.Logger
}

func NewHandler(repo *CheckoutRepository, sessions AttributionStore, events EventPublisher, validate *validator.Validate, adminEmail string, logger *slog.Logger) *Handler {
	return &Handler{
		repo:       repo,
		sessions:   sessions,
		events:     events,
		validate:   validate,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req validation.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	var sid string
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		sid = cookie.Value
	}

	var affiliateCode string
	if sid != "" {
		code, err := h.sessions.AffiliateCode(r.Context(), sid)
		if err != nil {
			// Attribution is best effort; the order goes through without it.
			h.logger.Error("failed to read session attribution", "error", err, "sid", sid)
		} else {
			affiliateCode = code
		}
	}

	shipping := domain.ShippingDetails{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		Pincode: req.Pincode,
	}

	placed, err := h.repo.PlaceOrder(r.Context(), userID, shipping, affiliateCode)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			h.writeError(w, http.StatusBadRequest, "your cart is empty")
		case errors.Is(err, ErrInsufficientStock):
			h.writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("failed to place order", "error", err, "user_id", userID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	order := placed.Order
	h.logger.Info("order placed",
		"order_number", order.OrderNumber,
		"user_id", userID,
		"total_amount", order.TotalAmount.StringFixed(2),
		"affiliate_code", order.AffiliateCode,
	)

	if sid != "" && placed.Referral != nil {
		if err := h.sessions.Clear(r.Context(), sid); err != nil {
			h.logger.Error("failed to clear session attribution", "error", err, "sid", sid)
		}
	}

	h.publishOrderEvents(r.Context(), placed)

	h.writeJSON(w, http.StatusCreated, order)
}

// publishOrderEvents is fire and forget: the order is already committed, so
// failures here are only logged.
func (h *Handler) publishOrderEvents(ctx context.Context, placed *PlacedOrder) {
	order := placed.Order
	now := time.Now().UTC()

	notice := &domain.OrderNotice{
		OrderNumber: order.OrderNumber,
		Name:        order.Shipping.Name,
		Email:       order.Shipping.Email,
		TotalAmount: order.TotalAmount.StringFixed(2),
		ItemCount:   len(order.Items),
	}

	events := []domain.NotificationEvent{
		{Kind: domain.EventOrderConfirmation, OccurredAt: now, Order: notice},
		{Kind: domain.EventAdminOrderNotice, OccurredAt: now, Order: &domain.OrderNotice{
			OrderNumber: notice.OrderNumber,
			Name:        notice.Name,
			Email:       h.adminEmail,
			TotalAmount: notice.TotalAmount,
			ItemCount:   notice.ItemCount,
		}},
	}

	if ref := placed.Referral; ref != nil {
		events = append(events, domain.NotificationEvent{
			Kind:       domain.EventAffiliateCommissionEarned,
			OccurredAt: now,
			Affiliate: &domain.AffiliateNotice{
				AffiliateCode:    ref.AffiliateCode,
				Name:             ref.AffiliateName,
				Email:            ref.AffiliateEmail,
				CommissionAmount: ref.CommissionAmount,
				OrderNumber:      order.OrderNumber,
			},
		})
	}

	for _, event := range events {
		if err := h.events.Publish(ctx, event); err != nil {
			h.logger.Error("failed to publish notification event", "error", err, "kind", event.Kind, "order_number", order.OrderNumber)
		}
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
