package affiliate

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/emeraldlabs/storefront/internal/domain"
)

var (
	ErrProfileExists      = errors.New("affiliate profile already exists")
	ErrProfileNotFound    = errors.New("affiliate profile not found")
	ErrReferralNotFound   = errors.New("referral not found")
	ErrWithdrawalNotFound = errors.New("withdrawal not found")
)

type AffiliateRepository struct {
	db *sql.DB
}

func NewAffiliateRepository(db *sql.DB) *AffiliateRepository {
	return &AffiliateRepository{db: db}
}

const profileColumns = `
	id, user_id, affiliate_code, commission_rate,
	total_earnings, pending_earnings, withdrawn_earnings,
	bank_account_name, bank_account_number, bank_ifsc_code, upi_id,
	is_approved, is_active, created_at, updated_at
`

func scanProfile(row interface{ Scan(...any) error }) (*domain.AffiliateProfile, error) {
	var p domain.AffiliateProfile
	var bankName, bankNumber, bankIFSC, upi sql.NullString
	err := row.Scan(
		&p.ID, &p.UserID, &p.AffiliateCode, &p.CommissionRate,
		&p.TotalEarnings, &p.PendingEarnings, &p.WithdrawnEarnings,
		&bankName, &bankNumber, &bankIFSC, &upi,
		&p.IsApproved, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.BankAccountName = bankName.String
	p.BankAccountNumber = bankNumber.String
	p.BankIFSCCode = bankIFSC.String
	p.UPIID = upi.String
	return &p, nil
}

// ProfileByUserID returns the user's affiliate profile, or nil when they have
// not signed up.
func (r *AffiliateRepository) ProfileByUserID(ctx context.Context, userID string) (*domain.AffiliateProfile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM affiliate_profiles WHERE user_id = $1
	`, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ProfileByCode resolves a referral code to its profile regardless of status;
// callers gate on CanRefer.
func (r *AffiliateRepository) ProfileByCode(ctx context.Context, code string) (*domain.AffiliateProfile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM affiliate_profiles WHERE affiliate_code = $1
	`, code))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// CreateProfile signs a user up to the program with a fresh code. The profile
// starts unapproved and must be activated by an admin before it can refer.
func (r *AffiliateRepository) CreateProfile(ctx context.Context, userID string, payout domain.AffiliateProfile) (*domain.AffiliateProfile, error) {
	for {
		profile, err := scanProfile(r.db.QueryRowContext(ctx, `
			INSERT INTO affiliate_profiles (
				id, user_id, affiliate_code,
				bank_account_name, bank_account_number, bank_ifsc_code, upi_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+profileColumns+`
		`, uuid.New().String(), userID, NewAffiliateCode(),
			payout.BankAccountName, payout.BankAccountNumber, payout.BankIFSCCode, payout.UPIID))
		if err == nil {
			return profile, nil
		}

		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "affiliate_profiles_affiliate_code_key" {
				continue // code collision, mint another
			}
			return nil, ErrProfileExists
		}
		return nil, err
	}
}

func (r *AffiliateRepository) RecordClick(ctx context.Context, click *domain.AffiliateClick) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO affiliate_clicks (id, affiliate_id, product_id, ip_address, user_agent, referrer)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New().String(), click.AffiliateID, nullString(click.ProductID),
		click.IPAddress, click.UserAgent, click.Referrer)
	return err
}

func (r *AffiliateRepository) ListReferrals(ctx context.Context, affiliateID string) ([]domain.AffiliateReferral, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ar.id, ar.affiliate_id, ar.order_id, o.order_number,
		       ar.commission_amount, ar.status, ar.created_at, ar.approved_at, ar.paid_at
		FROM affiliate_referrals ar
		JOIN orders o ON o.id = ar.order_id
		WHERE ar.affiliate_id = $1
		ORDER BY ar.created_at DESC
	`, affiliateID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	referrals := []domain.AffiliateReferral{}
	for rows.Next() {
		var ref domain.AffiliateReferral
		if err := rows.Scan(&ref.ID, &ref.AffiliateID, &ref.OrderID, &ref.OrderNumber,
			&ref.CommissionAmount, &ref.Status, &ref.CreatedAt, &ref.ApprovedAt, &ref.PaidAt); err != nil {
			return nil, err
		}
		referrals = append(referrals, ref)
	}
	return referrals, rows.Err()
}

// transition locks the referral and its profile, applies the domain
// transition, and persists both only when it applied. Illegal transitions
// commit nothing and report applied=false.
func (r *AffiliateRepository) transition(ctx context.Context, referralID string, apply func(*domain.AffiliateReferral, *domain.AffiliateProfile) bool) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var ref domain.AffiliateReferral
	err = tx.QueryRowContext(ctx, `
		SELECT id, affiliate_id, order_id, commission_amount, status, created_at, approved_at, paid_at
		FROM affiliate_referrals
		WHERE id = $1
		FOR UPDATE
	`, referralID).Scan(&ref.ID, &ref.AffiliateID, &ref.OrderID, &ref.CommissionAmount,
		&ref.Status, &ref.CreatedAt, &ref.ApprovedAt, &ref.PaidAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrReferralNotFound
		}
		return false, err
	}

	profile, err := scanProfile(tx.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM affiliate_profiles WHERE id = $1 FOR UPDATE
	`, ref.AffiliateID))
	if err != nil {
		return false, err
	}

	if !apply(&ref, profile) {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE affiliate_referrals
		SET status = $1, approved_at = $2, paid_at = $3
		WHERE id = $4
	`, ref.Status, ref.ApprovedAt, ref.PaidAt, ref.ID)
	if err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE affiliate_profiles
		SET total_earnings = $1, pending_earnings = $2, withdrawn_earnings = $3, updated_at = NOW()
		WHERE id = $4
	`, profile.TotalEarnings, profile.PendingEarnings, profile.WithdrawnEarnings, profile.ID)
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (r *AffiliateRepository) ApproveReferral(ctx context.Context, referralID string) (bool, error) {
	now := time.Now().UTC()
	return r.transition(ctx, referralID, func(ref *domain.AffiliateReferral, p *domain.AffiliateProfile) bool {
		return ref.Approve(p, now)
	})
}

func (r *AffiliateRepository) MarkReferralPaid(ctx context.Context, referralID string) (bool, error) {
	now := time.Now().UTC()
	return r.transition(ctx, referralID, func(ref *domain.AffiliateReferral, p *domain.AffiliateProfile) bool {
		return ref.MarkAsPaid(p, now)
	})
}

func (r *AffiliateRepository) RejectReferral(ctx context.Context, referralID string) (bool, error) {
	return r.transition(ctx, referralID, func(ref *domain.AffiliateReferral, _ *domain.AffiliateProfile) bool {
		return ref.Reject()
	})
}

// CreateWithdrawal validates the request against the locked profile and
// records a pending payout. The pending balance is only debited once an admin
// completes the withdrawal.
func (r *AffiliateRepository) CreateWithdrawal(ctx context.Context, userID string, amount decimal.Decimal, paymentMethod string) (*domain.AffiliateWithdrawal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	profile, err := scanProfile(tx.QueryRowContext(ctx, `
		SELECT `+profileColumns+` FROM affiliate_profiles WHERE user_id = $1 FOR UPDATE
	`, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	if err := profile.ValidateWithdrawal(amount); err != nil {
		return nil, err
	}

	w := &domain.AffiliateWithdrawal{
		ID:            uuid.New().String(),
		AffiliateID:   profile.ID,
		Amount:        amount,
		PaymentMethod: paymentMethod,
		Status:        domain.WithdrawalStatusPending,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO affiliate_withdrawals (id, affiliate_id, amount, payment_method, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING requested_at
	`, w.ID, w.AffiliateID, w.Amount, w.PaymentMethod, w.Status).Scan(&w.RequestedAt)
	if err != nil {
		return nil, err
	}

	return w, tx.Commit()
}

// ProcessWithdrawal moves a pending or processing withdrawal to its final
// status. Completing debits pending earnings and credits withdrawn earnings;
// rejecting leaves the balances alone. Returns applied=false when the
// withdrawal is already settled.
func (r *AffiliateRepository) ProcessWithdrawal(ctx context.Context, withdrawalID string, status domain.WithdrawalStatus, notes string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var w domain.AffiliateWithdrawal
	err = tx.QueryRowContext(ctx, `
		SELECT id, affiliate_id, amount, status
		FROM affiliate_withdrawals
		WHERE id = $1
		FOR UPDATE
	`, withdrawalID).Scan(&w.ID, &w.AffiliateID, &w.Amount, &w.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, ErrWithdrawalNotFound
		}
		return false, err
	}

	if w.Status == domain.WithdrawalStatusCompleted || w.Status == domain.WithdrawalStatusRejected {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE affiliate_withdrawals
		SET status = $1, notes = $2, processed_at = NOW()
		WHERE id = $3
	`, status, notes, w.ID)
	if err != nil {
		return false, err
	}

	if status == domain.WithdrawalStatusCompleted {
		_, err = tx.ExecContext(ctx, `
			UPDATE affiliate_profiles
			SET pending_earnings = pending_earnings - $1,
			    withdrawn_earnings = withdrawn_earnings + $1,
			    updated_at = NOW()
			WHERE id = $2
		`, w.Amount, w.AffiliateID)
		if err != nil {
			return false, err
		}
	}

	return true, tx.Commit()
}

func (r *AffiliateRepository) ListWithdrawals(ctx context.Context, affiliateID string) ([]domain.AffiliateWithdrawal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, affiliate_id, amount, payment_method, status, requested_at, processed_at, COALESCE(notes, '')
		FROM affiliate_withdrawals
		WHERE affiliate_id = $1
		ORDER BY requested_at DESC
	`, affiliateID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	withdrawals := []domain.AffiliateWithdrawal{}
	for rows.Next() {
		var w domain.AffiliateWithdrawal
		if err := rows.Scan(&w.ID, &w.AffiliateID, &w.Amount, &w.PaymentMethod,
			&w.Status, &w.RequestedAt, &w.ProcessedAt, &w.Notes); err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}

// DashboardStats is the affiliate's program summary over all time and the
// trailing 30 days.
type DashboardStats struct {
	TotalClicks       int             `json:"total_clicks"`
	MonthlyClicks     int             `json:"monthly_clicks"`
	TotalReferrals    int             `json:"total_referrals"`
	ApprovedReferrals int             `json:"approved_referrals"`
	MonthlyEarnings   decimal.Decimal `json:"monthly_earnings"`
}

func (r *AffiliateRepository) Stats(ctx context.Context, affiliateID string) (*DashboardStats, error) {
	var s DashboardStats

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE clicked_at >= NOW() - INTERVAL '30 days')
		FROM affiliate_clicks
		WHERE affiliate_id = $1
	`, affiliateID).Scan(&s.TotalClicks, &s.MonthlyClicks)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status IN ('approved', 'paid')),
			COALESCE(SUM(commission_amount) FILTER (
				WHERE status IN ('approved', 'paid') AND created_at >= NOW() - INTERVAL '30 days'
			), 0)
		FROM affiliate_referrals
		WHERE affiliate_id = $1
	`, affiliateID).Scan(&s.TotalReferrals, &s.ApprovedReferrals, &s.MonthlyEarnings)
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// UserContact returns the name and email behind a user ID, for notification
// payloads.
func (r *AffiliateRepository) UserContact(ctx context.Context, userID string) (name, email string, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT name, email FROM users WHERE id = $1
	`, userID).Scan(&name, &email)
	return name, email, err
}

// WithdrawalNotice assembles the notification payload for a withdrawal,
// joined through to the affiliate's user record.
func (r *AffiliateRepository) WithdrawalNotice(ctx context.Context, withdrawalID string) (*domain.WithdrawalNotice, error) {
	var notice domain.WithdrawalNotice
	var amount decimal.Decimal
	err := r.db.QueryRowContext(ctx, `
		SELECT ap.affiliate_code, u.email, aw.amount, aw.status
		FROM affiliate_withdrawals aw
		JOIN affiliate_profiles ap ON ap.id = aw.affiliate_id
		JOIN users u ON u.id = ap.user_id
		WHERE aw.id = $1
	`, withdrawalID).Scan(&notice.AffiliateCode, &notice.Email, &amount, &notice.Status)
	if err != nil {
		return nil, err
	}
	notice.Amount = amount.StringFixed(2)
	return &notice, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
