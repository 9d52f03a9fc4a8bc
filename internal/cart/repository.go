package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/emeraldlabs/storefront/internal/domain"
)

var ErrItemNotFound = errors.New("cart item not found")

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

// AddResult reports what an add-to-cart actually did. Clamped means the line
// already sat at the available stock and the increment was refused; that is a
// warning for the user, not a failure.
type AddResult struct {
	ProductName string
	Added       bool
	Clamped     bool
	Stock       int
	CartCount   int
}

func (r *CartRepository) getOrCreate(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, userID string) (string, error) {
	var cartID string
	err := q.QueryRowContext(ctx, `
		INSERT INTO carts (id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`, uuid.New().String(), userID).Scan(&cartID)
	return cartID, err
}

// AddItem creates a quantity-1 line for the product, or increments an
// existing line clamped to available stock. A missing or inactive product
// yields (nil, nil).
func (r *CartRepository) AddItem(ctx context.Context, userID, productID string) (*AddResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var name string
	var stock int
	err = tx.QueryRowContext(ctx, `
		SELECT name, stock FROM products WHERE id = $1 AND is_active
	`, productID).Scan(&name, &stock)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	cartID, err := r.getOrCreate(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	result := &AddResult{ProductName: name, Stock: stock}

	insert, err := tx.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (cart_id, product_id) DO NOTHING
	`, uuid.New().String(), cartID, productID)
	if err != nil {
		return nil, err
	}
	inserted, err := insert.RowsAffected()
	if err != nil {
		return nil, err
	}

	if inserted > 0 {
		result.Added = true
	} else {
		update, err := tx.ExecContext(ctx, `
			UPDATE cart_items SET quantity = quantity + 1
			WHERE cart_id = $1 AND product_id = $2 AND quantity < $3
		`, cartID, productID, stock)
		if err != nil {
			return nil, err
		}
		updated, err := update.RowsAffected()
		if err != nil {
			return nil, err
		}
		result.Clamped = updated == 0
	}

	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE cart_id = $1
	`, cartID).Scan(&result.CartCount)
	if err != nil {
		return nil, err
	}

	return result, tx.Commit()
}

// UpdateItem applies increase (stock-clamped), decrease (floors at 1) or
// remove to a line owned by the user.
func (r *CartRepository) UpdateItem(ctx context.Context, userID, itemID, action string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var owned bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM cart_items ci
			JOIN carts c ON c.id = ci.cart_id
			WHERE ci.id = $1 AND c.user_id = $2
		)
	`, itemID, userID).Scan(&owned)
	if err != nil {
		return err
	}
	if !owned {
		return ErrItemNotFound
	}

	switch action {
	case "increase":
		_, err = tx.ExecContext(ctx, `
			UPDATE cart_items ci SET quantity = ci.quantity + 1
			FROM products p
			WHERE ci.id = $1 AND p.id = ci.product_id AND ci.quantity < p.stock
		`, itemID)
	case "decrease":
		_, err = tx.ExecContext(ctx, `
			UPDATE cart_items SET quantity = quantity - 1
			WHERE id = $1 AND quantity > 1
		`, itemID)
	case "remove":
		_, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	default:
		return errors.New("unknown cart action: " + action)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Contents loads the cart with its lines joined to the current catalog rows,
// so totals computed from it always reflect current prices.
func (r *CartRepository) Contents(ctx context.Context, userID string) (*domain.Cart, error) {
	cart := &domain.Cart{UserID: userID}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at, updated_at FROM carts WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return cart, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT ci.id, ci.product_id, p.name, p.slug, p.price, ci.quantity, p.stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at
	`, cart.ID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.ProductName, &l.ProductSlug, &l.UnitPrice, &l.Quantity, &l.Stock); err != nil {
			return nil, err
		}
		cart.Lines = append(cart.Lines, l)
	}

	return cart, rows.Err()
}
