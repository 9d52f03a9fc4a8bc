package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrBelowMinimumWithdrawal = errors.New("withdrawal amount below minimum")
	ErrInsufficientEarnings   = errors.New("insufficient pending earnings")
)

// MinWithdrawalAmount is the smallest payout an affiliate may request.
var MinWithdrawalAmount = decimal.NewFromInt(500)

type AffiliateProfile struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	AffiliateCode     string          `json:"affiliate_code"`
	CommissionRate    decimal.Decimal `json:"commission_rate"`
	TotalEarnings     decimal.Decimal `json:"total_earnings"`
	PendingEarnings   decimal.Decimal `json:"pending_earnings"`
	WithdrawnEarnings decimal.Decimal `json:"withdrawn_earnings"`
	BankAccountName   string          `json:"bank_account_name,omitempty"`
	BankAccountNumber string          `json:"bank_account_number,omitempty"`
	BankIFSCCode      string          `json:"bank_ifsc_code,omitempty"`
	UPIID             string          `json:"upi_id,omitempty"`
	IsApproved        bool            `json:"is_approved"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CanRefer reports whether the profile may be credited for new clicks and
// referrals.
func (p AffiliateProfile) CanRefer() bool {
	return p.IsActive && p.IsApproved
}

// ValidateWithdrawal checks a requested payout against the minimum threshold
// and the pending balance. No record is created for an invalid request.
func (p AffiliateProfile) ValidateWithdrawal(amount decimal.Decimal) error {
	if amount.LessThan(MinWithdrawalAmount) {
		return ErrBelowMinimumWithdrawal
	}
	if amount.GreaterThan(p.PendingEarnings) {
		return ErrInsufficientEarnings
	}
	return nil
}

// Commission computes the commission owed on an order total.
func (p AffiliateProfile) Commission(orderTotal decimal.Decimal) decimal.Decimal {
	return orderTotal.Mul(p.CommissionRate).Div(decimal.NewFromInt(100)).Round(2)
}

type AffiliateClick struct {
	ID          string    `json:"id"`
	AffiliateID string    `json:"affiliate_id"`
	ProductID   string    `json:"product_id,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	Referrer    string    `json:"referrer,omitempty"`
	ClickedAt   time.Time `json:"clicked_at"`
}

type ReferralStatus string

const (
	ReferralStatusPending  ReferralStatus = "pending"
	ReferralStatusApproved ReferralStatus = "approved"
	ReferralStatusPaid     ReferralStatus = "paid"
	ReferralStatusRejected ReferralStatus = "rejected"
)

// AffiliateReferral links exactly one order to the affiliate credited for it.
// Status moves pending→approved→paid, or pending→rejected; transitions from
// any other state are silently ignored.
type AffiliateReferral struct {
	ID               string          `json:"id"`
	AffiliateID      string          `json:"affiliate_id"`
	OrderID          string          `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	Status           ReferralStatus  `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
}

// Approve moves the commission into the affiliate's pending and lifetime
// earnings. Legal only from pending; otherwise a no-op returning false.
func (r *AffiliateReferral) Approve(p *AffiliateProfile, now time.Time) bool {
	if r.Status != ReferralStatusPending {
		return false
	}
	r.Status = ReferralStatusApproved
	r.ApprovedAt = &now
	p.PendingEarnings = p.PendingEarnings.Add(r.CommissionAmount)
	p.TotalEarnings = p.TotalEarnings.Add(r.CommissionAmount)
	return true
}

// MarkAsPaid moves the commission out of pending into withdrawn earnings.
// Legal only from approved; otherwise a no-op returning false.
func (r *AffiliateReferral) MarkAsPaid(p *AffiliateProfile, now time.Time) bool {
	if r.Status != ReferralStatusApproved {
		return false
	}
	r.Status = ReferralStatusPaid
	r.PaidAt = &now
	p.PendingEarnings = p.PendingEarnings.Sub(r.CommissionAmount)
	p.WithdrawnEarnings = p.WithdrawnEarnings.Add(r.CommissionAmount)
	return true
}

// Reject is terminal and legal only from pending.
func (r *AffiliateReferral) Reject() bool {
	if r.Status != ReferralStatusPending {
		return false
	}
	r.Status = ReferralStatusRejected
	return true
}

type WithdrawalStatus string

const (
	WithdrawalStatusPending    WithdrawalStatus = "pending"
	WithdrawalStatusProcessing WithdrawalStatus = "processing"
	WithdrawalStatusCompleted  WithdrawalStatus = "completed"
	WithdrawalStatusRejected   WithdrawalStatus = "rejected"
)

type AffiliateWithdrawal struct {
	ID            string           `json:"id"`
	AffiliateID   string           `json:"affiliate_id"`
	Amount        decimal.Decimal  `json:"amount"`
	PaymentMethod string           `json:"payment_method"`
	Status        WithdrawalStatus `json:"status"`
	RequestedAt   time.Time        `json:"requested_at"`
	ProcessedAt   *time.Time       `json:"processed_at,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}
