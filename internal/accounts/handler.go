package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/emeraldlabs/storefront/internal/domain"
	"github.com/emeraldlabs/storefront/internal/validation"
)

// EventPublisher delivers notification events to the dispatcher.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent) error
}

type Handler struct {
	repo       *AccountRepository
	events     EventPublisher
	validate   *validator.Validate
	adminEmail string
	logger     *slog.Logger
}

func NewHandler(repo *AccountRepository, events EventPublisher, validate *validator.Validate, adminEmail string, logger *slog.Logger) *Handler {
	return &Handler{
		repo:       repo,
		events:     events,
		validate:   validate,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req validation.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	agg, err := h.repo.CreateUser(r.Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			h.writeError(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("failed to create user", "error", err, "email", req.Email)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("user created", "user_id", agg.User.ID)
	h.writeJSON(w, http.StatusCreated, agg)
}

func (h *Handler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	user, err := h.repo.UserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load user", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if user == nil {
		h.writeError(w, http.StatusNotFound, "user not found")
		return
	}

	preferences, err := h.repo.Preferences(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load preferences", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"user":        user,
		"preferences": preferences,
	})
}

func (h *Handler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req struct {
		EmailMarketing    bool `json:"email_marketing"`
		EmailOrderUpdates bool `json:"email_order_updates"`
		SMSNotifications  bool `json:"sms_notifications"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	prefs := &domain.UserPreferences{
		UserID:            userID,
		EmailMarketing:    req.EmailMarketing,
		EmailOrderUpdates: req.EmailOrderUpdates,
		SMSNotifications:  req.SMSNotifications,
	}
	if err := h.repo.UpdatePreferences(r.Context(), prefs); err != nil {
		h.logger.Error("failed to update preferences", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) HandleListAddresses(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	addresses, err := h.repo.ListAddresses(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list addresses", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"addresses": addresses})
}

func (h *Handler) addressFromRequest(w http.ResponseWriter, r *http.Request, userID string) *domain.Address {
	var req validation.AddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return nil
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validation.Message(err))
		return nil
	}

	return &domain.Address{
		UserID:       userID,
		Type:         domain.AddressType(req.Type),
		Name:         req.Name,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		Pincode:      req.Pincode,
		IsDefault:    req.IsDefault,
	}
}

func (h *Handler) HandleCreateAddress(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	address := h.addressFromRequest(w, r, userID)
	if address == nil {
		return
	}

	if err := h.repo.CreateAddress(r.Context(), address); err != nil {
		h.logger.Error("failed to create address", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusCreated, address)
}

func (h *Handler) HandleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	address := h.addressFromRequest(w, r, userID)
	if address == nil {
		return
	}
	address.ID = r.PathValue("addressId")

	if err := h.repo.UpdateAddress(r.Context(), address); err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			h.writeError(w, http.StatusNotFound, "address not found")
			return
		}
		h.logger.Error("failed to update address", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, address)
}

func (h *Handler) HandleSetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	addressID := r.PathValue("addressId")
	if err := h.repo.SetDefaultAddress(r.Context(), userID, addressID); err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			h.writeError(w, http.StatusNotFound, "address not found")
			return
		}
		h.logger.Error("failed to set default address", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"address_id": addressID, "is_default": true})
}

func (h *Handler) HandleDeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	addressID := r.PathValue("addressId")
	if err := h.repo.DeleteAddress(r.Context(), userID, addressID); err != nil {
		if errors.Is(err, ErrAddressNotFound) {
			h.writeError(w, http.StatusNotFound, "address not found")
			return
		}
		h.logger.Error("failed to delete address", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleWishlist(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	items, err := h.repo.Wishlist(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load wishlist", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) HandleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	productID := r.PathValue("productId")
	if err := h.repo.AddToWishlist(r.Context(), userID, productID); err != nil {
		h.logger.Error("failed to add to wishlist", "error", err, "user_id", userID, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"product_id": productID, "wishlisted": true})
}

func (h *Handler) HandleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	productID := r.PathValue("productId")
	if err := h.repo.RemoveFromWishlist(r.Context(), userID, productID); err != nil {
		h.logger.Error("failed to remove from wishlist", "error", err, "user_id", userID, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleSubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var req validation.NewsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	sub, err := h.repo.SubscribeNewsletter(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to subscribe", "error", err, "email", req.Email)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) HandleUnsubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var req validation.NewsletterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	found, err := h.repo.UnsubscribeNewsletter(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("failed to unsubscribe", "error", err, "email", req.Email)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		h.writeError(w, http.StatusNotFound, "no active subscription for this email")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"email": req.Email, "unsubscribed": true})
}

func (h *Handler) HandleContactForm(w http.ResponseWriter, r *http.Request) {
	var req validation.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	event := domain.NotificationEvent{
		Kind:       domain.EventContactForm,
		OccurredAt: time.Now().UTC(),
		Contact: &domain.ContactFormNotice{
			Recipient: h.adminEmail,
			Name:      req.Name,
			Email:     req.Email,
			Subject:   req.Subject,
			Message:   req.Message,
		},
	}
	if err := h.events.Publish(r.Context(), event); err != nil {
		h.logger.Error("failed to publish contact form event", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusAccepted, map[string]string{"message": "thanks, we will get back to you"})
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
