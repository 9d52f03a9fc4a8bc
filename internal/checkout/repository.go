package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/emeraldlabs/storefront/internal/domain"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type CheckoutRepository struct {
	db *sql.DB
}

func NewCheckoutRepository(db *sql.DB) *CheckoutRepository {
	return &CheckoutRepository{db: db}
}

// ReferralCredit describes the commission recorded for the affiliate whose
// code was attached to the order, for notification purposes.
type ReferralCredit struct {
	AffiliateCode    string
	AffiliateName    string
	AffiliateEmail   string
	CommissionAmount string
}

// PlacedOrder is the result of a successful checkout.
type PlacedOrder struct {
	Order    *domain.Order
	Referral *ReferralCredit
}

// PlaceOrder turns the user's cart into an order in a single transaction:
// order and item rows are inserted with price snapshots, stock is decremented
// conditionally so two concurrent checkouts can never oversell, the cart is
// cleared, and a pending referral is recorded when the attributed affiliate
// is active and approved. Any failure rolls back the whole pipeline.
func (r *CheckoutRepository) PlaceOrder(ctx context.Context, userID string, shipping domain.ShippingDetails, affiliateCode string) (*PlacedOrder, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, `
		SELECT ci.product_id, p.name, p.price, ci.quantity
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		JOIN products p ON p.id = ci.product_id
		WHERE c.user_id = $1
		ORDER BY ci.created_at
	`, userID)
	if err != nil {
		return nil, err
	}

	type line struct {
		item domain.OrderItem
		name string
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.item.ProductID, &l.name, &l.item.Price, &l.item.Quantity); err != nil {
			_ = rows.Close()
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	_ = rows.Close()

	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	order := &domain.Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		OrderNumber:   NewOrderNumber(),
		Status:        domain.OrderStatusPending,
		AffiliateCode: affiliateCode,
		Shipping:      shipping,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, order_number, status, total_amount, affiliate_code,
			ship_name, ship_email, ship_phone, ship_address, ship_city, ship_state, ship_pincode
		) VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $8, $9, $10, $11, $12)
	`, order.ID, order.UserID, order.OrderNumber, order.Status, nullString(affiliateCode),
		shipping.Name, shipping.Email, shipping.Phone, shipping.Address, shipping.City, shipping.State, shipping.Pincode)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		item := l.item
		item.ID = uuid.New().String()
		item.OrderID = order.ID

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
		`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price)
		if err != nil {
			return nil, err
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1
		`, item.Quantity, item.ProductID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, fmt.Errorf("%w: %s", ErrInsufficientStock, l.name)
		}

		order.Items = append(order.Items, item)
	}

	order.TotalAmount = domain.OrderTotal(order.Items)
	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET total_amount = $1 WHERE id = $2
	`, order.TotalAmount, order.ID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM cart_items WHERE cart_id = (SELECT id FROM carts WHERE user_id = $1)
	`, userID)
	if err != nil {
		return nil, err
	}

	placed := &PlacedOrder{Order: order}

	if affiliateCode != "" {
		credit, err := r.recordReferral(ctx, tx, order, affiliateCode)
		if err != nil {
			return nil, err
		}
		placed.Referral = credit
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return placed, nil
}

// recordReferral credits the affiliate behind the attributed code. A code
// that no longer resolves to an active, approved affiliate is dropped
// silently; the order itself is unaffected either way.
func (r *CheckoutRepository) recordReferral(ctx context.Context, tx *sql.Tx, order *domain.Order, code string) (*ReferralCredit, error) {
	var profile domain.AffiliateProfile
	var name, email string
	err := tx.QueryRowContext(ctx, `
		SELECT ap.id, ap.affiliate_code, ap.commission_rate, u.name, u.email
		FROM affiliate_profiles ap
		JOIN users u ON u.id = ap.user_id
		WHERE ap.affiliate_code = $1 AND ap.is_active AND ap.is_approved
	`, code).Scan(&profile.ID, &profile.AffiliateCode, &profile.CommissionRate, &name, &email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	commission := profile.Commission(order.TotalAmount)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO affiliate_referrals (id, affiliate_id, order_id, commission_amount, status)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New().String(), profile.ID, order.ID, commission, domain.ReferralStatusPending)
	if err != nil {
		return nil, err
	}

	return &ReferralCredit{
		AffiliateCode:    profile.AffiliateCode,
		AffiliateName:    name,
		AffiliateEmail:   email,
		CommissionAmount: commission.StringFixed(2),
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
