package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

type Handler struct {
	repo   *CartRepository
	logger *slog.Logger
}

func NewHandler(repo *CartRepository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleViewCart(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	cart, err := h.repo.Contents(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"cart":        cart,
		"total_price": cart.TotalPrice(),
		"total_items": cart.TotalItems(),
	})
}

func (h *Handler) HandleAddToCart(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	productID := r.PathValue("productId")
	result, err := h.repo.AddItem(r.Context(), userID, productID)
	if err != nil {
		h.logger.Error("failed to add to cart", "error", err, "user_id", userID, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if result == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	// Browser fetch calls get the compact payload the storefront script expects.
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		h.writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"cart_count": result.CartCount,
		})
		return
	}

	message := fmt.Sprintf("%s added to your cart", result.ProductName)
	if result.Clamped {
		message = fmt.Sprintf("only %d of %s available", result.Stock, result.ProductName)
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":    message,
		"cart_count": result.CartCount,
	})
}

func (h *Handler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Action {
	case "increase", "decrease", "remove":
	default:
		h.writeError(w, http.StatusBadRequest, "action must be increase, decrease or remove")
		return
	}

	itemID := r.PathValue("itemId")
	if err := h.repo.UpdateItem(r.Context(), userID, itemID, req.Action); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			h.writeError(w, http.StatusNotFound, "cart item not found")
			return
		}
		h.logger.Error("failed to update cart item", "error", err, "user_id", userID, "item_id", itemID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	cart, err := h.repo.Contents(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"cart":        cart,
		"total_price": cart.TotalPrice(),
		"total_items": cart.TotalItems(),
	})
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
