package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfile(pending, total, withdrawn string) *AffiliateProfile {
	return &AffiliateProfile{
		ID:                "aff-1",
		AffiliateCode:     "AFF1A2B3C4D",
		CommissionRate:    decimal.RequireFromString("5.00"),
		PendingEarnings:   decimal.RequireFromString(pending),
		TotalEarnings:     decimal.RequireFromString(total),
		WithdrawnEarnings: decimal.RequireFromString(withdrawn),
		IsApproved:        true,
		IsActive:          true,
	}
}

func TestCommission(t *testing.T) {
	p := newProfile("0", "0", "0")
	got := p.Commission(decimal.RequireFromString("1000.00"))
	assert.True(t, got.Equal(decimal.RequireFromString("50.00")), "got %s", got)

	p.CommissionRate = decimal.RequireFromString("7.50")
	got = p.Commission(decimal.RequireFromString("299.99"))
	assert.True(t, got.Equal(decimal.RequireFromString("22.50")), "got %s", got)
}

func TestReferralApprove(t *testing.T) {
	now := time.Now().UTC()
	p := newProfile("100.00", "250.00", "150.00")
	r := &AffiliateReferral{
		ID:               "ref-1",
		AffiliateID:      p.ID,
		OrderID:          "order-1",
		CommissionAmount: decimal.RequireFromString("50.00"),
		Status:           ReferralStatusPending,
	}

	require.True(t, r.Approve(p, now))
	assert.Equal(t, ReferralStatusApproved, r.Status)
	require.NotNil(t, r.ApprovedAt)
	assert.True(t, p.PendingEarnings.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, p.TotalEarnings.Equal(decimal.RequireFromString("300.00")))

	// second call is a no-op, earnings unchanged
	require.False(t, r.Approve(p, now))
	assert.True(t, p.PendingEarnings.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, p.TotalEarnings.Equal(decimal.RequireFromString("300.00")))
}

func TestReferralMarkAsPaid(t *testing.T) {
	now := time.Now().UTC()
	p := newProfile("0", "0", "0")
	r := &AffiliateReferral{
		CommissionAmount: decimal.RequireFromString("50.00"),
		Status:           ReferralStatusPending,
	}

	// paying a pending referral is ignored
	require.False(t, r.MarkAsPaid(p, now))
	assert.Equal(t, ReferralStatusPending, r.Status)

	require.True(t, r.Approve(p, now))
	require.True(t, r.MarkAsPaid(p, now))
	assert.Equal(t, ReferralStatusPaid, r.Status)
	require.NotNil(t, r.PaidAt)
	assert.True(t, p.PendingEarnings.IsZero(), "pending %s", p.PendingEarnings)
	assert.True(t, p.WithdrawnEarnings.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, p.TotalEarnings.Equal(decimal.RequireFromString("50.00")))

	require.False(t, r.MarkAsPaid(p, now))
	assert.True(t, p.WithdrawnEarnings.Equal(decimal.RequireFromString("50.00")))
}

func TestReferralReject(t *testing.T) {
	r := &AffiliateReferral{Status: ReferralStatusPending}
	require.True(t, r.Reject())
	assert.Equal(t, ReferralStatusRejected, r.Status)

	approved := &AffiliateReferral{Status: ReferralStatusApproved}
	require.False(t, approved.Reject())
	assert.Equal(t, ReferralStatusApproved, approved.Status)
}

func TestValidateWithdrawal(t *testing.T) {
	tests := []struct {
		name    string
		pending string
		amount  string
		wantErr error
	}{
		{"below minimum even with balance", "1000.00", "499.00", ErrBelowMinimumWithdrawal},
		{"exceeds pending balance", "500.00", "600.00", ErrInsufficientEarnings},
		{"exactly at minimum and balance", "500.00", "500.00", nil},
		{"well funded", "2000.00", "750.00", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProfile(tt.pending, tt.pending, "0")
			err := p.ValidateWithdrawal(decimal.RequireFromString(tt.amount))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCanRefer(t *testing.T) {
	p := newProfile("0", "0", "0")
	assert.True(t, p.CanRefer())

	p.IsApproved = false
	assert.False(t, p.CanRefer())

	p.IsApproved = true
	p.IsActive = false
	assert.False(t, p.CanRefer())
}
