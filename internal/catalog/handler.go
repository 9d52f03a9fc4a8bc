package catalog

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/emeraldlabs/storefront/internal/domain"
	"github.com/emeraldlabs/storefront/internal/validation"
)

// The home page shows a short strip of featured products above the most
// recent arrivals.
const (
	homeFeaturedLimit = 6
	homeLatestLimit   = 8
)

type Handler struct {
	repo     *CatalogRepository
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(repo *CatalogRepository, validate *validator.Validate, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		validate: validate,
		logger:   logger,
	}
}

func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	featured, err := h.repo.Products(r.Context(), ProductFilter{FeaturedOnly: true, Sort: "newest", Limit: homeFeaturedLimit})
	if err != nil {
		h.logger.Error("failed to load featured products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	latest, err := h.repo.Products(r.Context(), ProductFilter{Sort: "newest", Limit: homeLatestLimit})
	if err != nil {
		h.logger.Error("failed to load latest products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	categories, err := h.repo.Categories(r.Context())
	if err != nil {
		h.logger.Error("failed to load categories", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"featured_products": featured,
		"latest_products":   latest,
		"categories":        categories,
	})
}

func (h *Handler) HandleShop(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	filter := ProductFilter{
		CategorySlug: q.Get("category"),
		Search:       q.Get("search"),
		Sort:         q.Get("sort"),
		Page:         page,
	}

	if filter.CategorySlug != "" {
		category, err := h.repo.CategoryBySlug(r.Context(), filter.CategorySlug)
		if err != nil {
			h.logger.Error("failed to load category", "error", err, "slug", filter.CategorySlug)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if category == nil {
			h.writeError(w, http.StatusNotFound, "category not found")
			return
		}
	}

	products, err := h.repo.Products(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"page":     max(page, 1),
	})
}

func (h *Handler) HandleProductDetail(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		h.writeError(w, http.StatusBadRequest, "missing product slug")
		return
	}

	product, err := h.repo.ProductBySlug(r.Context(), slug)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "slug", slug)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	reviews, err := h.repo.ReviewsForProduct(r.Context(), product.ID)
	if err != nil {
		h.logger.Error("failed to load reviews", "error", err, "product_id", product.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	related, err := h.repo.RelatedProducts(r.Context(), product, 4)
	if err != nil {
		h.logger.Error("failed to load related products", "error", err, "product_id", product.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"product":             product,
		"discount_percentage": product.DiscountPercentage(),
		"reviews":             reviews,
		"average_rating":      domain.AverageRating(reviews),
		"related_products":    related,
	})
}

func (h *Handler) HandleCategoryProducts(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		h.writeError(w, http.StatusBadRequest, "missing category slug")
		return
	}

	category, err := h.repo.CategoryBySlug(r.Context(), slug)
	if err != nil {
		h.logger.Error("failed to get category", "error", err, "slug", slug)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if category == nil {
		h.writeError(w, http.StatusNotFound, "category not found")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	products, err := h.repo.Products(r.Context(), ProductFilter{CategorySlug: slug, Page: page})
	if err != nil {
		h.logger.Error("failed to list category products", "error", err, "slug", slug)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"products": products,
	})
}

func (h *Handler) HandleAddReview(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	slug := r.PathValue("slug")
	product, err := h.repo.ProductBySlug(r.Context(), slug)
	if err != nil {
		h.logger.Error("failed to get product", "error", err, "slug", slug)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if product == nil {
		h.writeError(w, http.StatusNotFound, "product not found")
		return
	}

	var req validation.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	review := &domain.Review{
		ProductID: product.ID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.repo.AddReview(r.Context(), review); err != nil {
		if errors.Is(err, ErrAlreadyReviewed) {
			h.writeError(w, http.StatusConflict, "you have already reviewed this product")
			return
		}
		h.logger.Error("failed to add review", "error", err, "product_id", product.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("review added", "product_id", product.ID, "user_id", userID, "rating", review.Rating)
	h.writeJSON(w, http.StatusCreated, review)
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
