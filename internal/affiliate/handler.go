package affiliate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/emeraldlabs/storefront/internal/domain"
	"github.com/emeraldlabs/storefront/internal/validation"
)

// EventPublisher delivers notification events to the dispatcher.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.NotificationEvent) error
}

type Handler struct {
	repo       *AffiliateRepository
	events     EventPublisher
	validate   *validator.Validate
	baseURL    string
	adminEmail string
	logger     *slog.Logger
}

func NewHandler(repo *AffiliateRepository, events EventPublisher, validate *validator.Validate, baseURL, adminEmail string, logger *slog.Logger) *Handler {
	return &Handler{
		repo:       repo,
		events:     events,
		validate:   validate,
		baseURL:    baseURL,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req validation.AffiliateSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	profile, err := h.repo.CreateProfile(r.Context(), userID, domain.AffiliateProfile{
		BankAccountName:   req.BankAccountName,
		BankAccountNumber: req.BankAccountNumber,
		BankIFSCCode:      req.BankIFSCCode,
		UPIID:             req.UPIID,
	})
	if err != nil {
		if errors.Is(err, ErrProfileExists) {
			h.writeError(w, http.StatusConflict, "you are already enrolled in the affiliate program")
			return
		}
		h.logger.Error("failed to create affiliate profile", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("affiliate signed up", "user_id", userID, "affiliate_code", profile.AffiliateCode)
	h.publishSignupEvents(r.Context(), userID, profile)

	h.writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) publishSignupEvents(ctx context.Context, userID string, profile *domain.AffiliateProfile) {
	name, email, err := h.repo.UserContact(ctx, userID)
	if err != nil {
		h.logger.Error("failed to load user contact", "error", err, "user_id", userID)
		return
	}

	now := time.Now().UTC()
	events := []domain.NotificationEvent{
		{Kind: domain.EventAffiliateSignup, OccurredAt: now, Affiliate: &domain.AffiliateNotice{
			AffiliateCode: profile.AffiliateCode,
			Name:          name,
			Email:         email,
		}},
		{Kind: domain.EventAffiliateSignup, OccurredAt: now, Affiliate: &domain.AffiliateNotice{
			AffiliateCode: profile.AffiliateCode,
			Name:          name,
			Email:         h.adminEmail,
		}},
	}
	for _, event := range events {
		if err := h.events.Publish(ctx, event); err != nil {
			h.logger.Error("failed to publish notification event", "error", err, "kind", event.Kind)
		}
	}
}

// requireProfile loads the caller's profile or writes the error response,
// returning nil when the request has already been answered.
func (h *Handler) requireProfile(w http.ResponseWriter, r *http.Request) *domain.AffiliateProfile {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return nil
	}

	profile, err := h.repo.ProfileByUserID(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to load affiliate profile", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return nil
	}
	if profile == nil {
		h.writeError(w, http.StatusNotFound, "affiliate profile not found")
		return nil
	}
	return profile
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	profile := h.requireProfile(w, r)
	if profile == nil {
		return
	}

	stats, err := h.repo.Stats(r.Context(), profile.ID)
	if err != nil {
		h.logger.Error("failed to load affiliate stats", "error", err, "affiliate_id", profile.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	referrals, err := h.repo.ListReferrals(r.Context(), profile.ID)
	if err != nil {
		h.logger.Error("failed to list referrals", "error", err, "affiliate_id", profile.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(referrals) > 10 {
		referrals = referrals[:10]
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"profile":          profile,
		"stats":            stats,
		"recent_referrals": referrals,
	})
}

func (h *Handler) HandleReferrals(w http.ResponseWriter, r *http.Request) {
	profile := h.requireProfile(w, r)
	if profile == nil {
		return
	}

	referrals, err := h.repo.ListReferrals(r.Context(), profile.ID)
	if err != nil {
		h.logger.Error("failed to list referrals", "error", err, "affiliate_id", profile.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"referrals": referrals})
}

func (h *Handler) HandleLinks(w http.ResponseWriter, r *http.Request) {
	profile := h.requireProfile(w, r)
	if profile == nil {
		return
	}

	code := profile.AffiliateCode
	h.writeJSON(w, http.StatusOK, map[string]string{
		"affiliate_code": code,
		"home":           h.baseURL + "/?ref=" + code,
		"shop":           h.baseURL + "/shop?ref=" + code,
	})
}

func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		h.writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var req validation.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, validation.Message(err))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "amount must be a decimal number")
		return
	}

	withdrawal, err := h.repo.CreateWithdrawal(r.Context(), userID, amount, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBelowMinimumWithdrawal):
			h.writeError(w, http.StatusBadRequest, "minimum withdrawal amount is "+domain.MinWithdrawalAmount.StringFixed(2))
		case errors.Is(err, domain.ErrInsufficientEarnings):
			h.writeError(w, http.StatusBadRequest, "withdrawal amount exceeds pending earnings")
		case errors.Is(err, ErrProfileNotFound):
			h.writeError(w, http.StatusNotFound, "affiliate profile not found")
		default:
			h.logger.Error("failed to create withdrawal", "error", err, "user_id", userID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.logger.Info("withdrawal requested", "withdrawal_id", withdrawal.ID, "amount", amount.StringFixed(2))
	h.publishWithdrawalEvent(r.Context(), domain.EventWithdrawalRequested, withdrawal.ID)

	h.writeJSON(w, http.StatusCreated, withdrawal)
}

func (h *Handler) HandleWithdrawals(w http.ResponseWriter, r *http.Request) {
	profile := h.requireProfile(w, r)
	if profile == nil {
		return
	}

	withdrawals, err := h.repo.ListWithdrawals(r.Context(), profile.ID)
	if err != nil {
		h.logger.Error("failed to list withdrawals", "error", err, "affiliate_id", profile.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"withdrawals": withdrawals})
}

func (h *Handler) publishWithdrawalEvent(ctx context.Context, kind domain.EventKind, withdrawalID string) {
	notice, err := h.repo.WithdrawalNotice(ctx, withdrawalID)
	if err != nil {
		h.logger.Error("failed to assemble withdrawal notice", "error", err, "withdrawal_id", withdrawalID)
		return
	}
	event := domain.NotificationEvent{Kind: kind, OccurredAt: time.Now().UTC(), Withdrawal: notice}
	if err := h.events.Publish(ctx, event); err != nil {
		h.logger.Error("failed to publish notification event", "error", err, "kind", kind)
	}
}

// referralTransition runs one admin transition and reports whether it
// applied. An ignored transition is a 200 with applied=false, not an error.
func (h *Handler) referralTransition(w http.ResponseWriter, r *http.Request, action string, run func(context.Context, string) (bool, error)) {
	referralID := r.PathValue("referralId")
	applied, err := run(r.Context(), referralID)
	if err != nil {
		if errors.Is(err, ErrReferralNotFound) {
			h.writeError(w, http.StatusNotFound, "referral not found")
			return
		}
		h.logger.Error("failed to transition referral", "error", err, "referral_id", referralID, "action", action)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !applied {
		h.logger.Info("referral transition ignored", "referral_id", referralID, "action", action)
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"referral_id": referralID, "applied": applied})
}

func (h *Handler) HandleApproveReferral(w http.ResponseWriter, r *http.Request) {
	h.referralTransition(w, r, "approve", h.repo.ApproveReferral)
}

func (h *Handler) HandleMarkReferralPaid(w http.ResponseWriter, r *http.Request) {
	h.referralTransition(w, r, "pay", h.repo.MarkReferralPaid)
}

func (h *Handler) HandleRejectReferral(w http.ResponseWriter, r *http.Request) {
	h.referralTransition(w, r, "reject", h.repo.RejectReferral)
}

func (h *Handler) HandleProcessWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status domain.WithdrawalStatus `json:"status"`
		Notes  string                  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Status {
	case domain.WithdrawalStatusProcessing, domain.WithdrawalStatusCompleted, domain.WithdrawalStatusRejected:
	default:
		h.writeError(w, http.StatusBadRequest, "status must be processing, completed or rejected")
		return
	}

	withdrawalID := r.PathValue("withdrawalId")
	applied, err := h.repo.ProcessWithdrawal(r.Context(), withdrawalID, req.Status, req.Notes)
	if err != nil {
		if errors.Is(err, ErrWithdrawalNotFound) {
			h.writeError(w, http.StatusNotFound, "withdrawal not found")
			return
		}
		h.logger.Error("failed to process withdrawal", "error", err, "withdrawal_id", withdrawalID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if !applied {
		h.logger.Info("withdrawal transition ignored", "withdrawal_id", withdrawalID, "status", req.Status)
	} else if req.Status == domain.WithdrawalStatusCompleted || req.Status == domain.WithdrawalStatusRejected {
		h.publishWithdrawalEvent(r.Context(), domain.EventWithdrawalProcessed, withdrawalID)
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"withdrawal_id": withdrawalID, "applied": applied})
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
