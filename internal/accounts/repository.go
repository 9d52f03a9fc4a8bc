package accounts

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/emeraldlabs/storefront/internal/domain"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrAddressNotFound = errors.New("address not found")
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// CreateUser inserts the user together with an empty cart and default
// preferences in one transaction, so a freshly created account is always
// fully initialized.
func (r *AccountRepository) CreateUser(ctx context.Context, email, name string) (*domain.UserAggregate, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	agg := &domain.UserAggregate{}
	agg.User.ID = uuid.New().String()
	agg.User.Email = email
	agg.User.Name = name

	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, agg.User.ID, email, name).Scan(&agg.User.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	agg.Cart.ID = uuid.New().String()
	agg.Cart.UserID = agg.User.ID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO carts (id, user_id)
		VALUES ($1, $2)
		RETURNING created_at, updated_at
	`, agg.Cart.ID, agg.Cart.UserID).Scan(&agg.Cart.CreatedAt, &agg.Cart.UpdatedAt)
	if err != nil {
		return nil, err
	}

	agg.Preferences = domain.UserPreferences{
		UserID:            agg.User.ID,
		EmailMarketing:    true,
		EmailOrderUpdates: true,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_preferences (user_id, email_marketing, email_order_updates, sms_notifications)
		VALUES ($1, $2, $3, $4)
	`, agg.Preferences.UserID, agg.Preferences.EmailMarketing,
		agg.Preferences.EmailOrderUpdates, agg.Preferences.SMSNotifications)
	if err != nil {
		return nil, err
	}

	return agg, tx.Commit()
}

// UserByID returns nil when the user does not exist.
func (r *AccountRepository) UserByID(ctx context.Context, userID string) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at FROM users WHERE id = $1
	`, userID).Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *AccountRepository) Preferences(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	var p domain.UserPreferences
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, email_marketing, email_order_updates, sms_notifications
		FROM user_preferences WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.EmailMarketing, &p.EmailOrderUpdates, &p.SMSNotifications)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *AccountRepository) UpdatePreferences(ctx context.Context, p *domain.UserPreferences) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE user_preferences
		SET email_marketing = $1, email_order_updates = $2, sms_notifications = $3
		WHERE user_id = $4
	`, p.EmailMarketing, p.EmailOrderUpdates, p.SMSNotifications, p.UserID)
	return err
}

const addressColumns = `
	id, user_id, type, name, address_line1, COALESCE(address_line2, ''),
	city, state, pincode, is_default, created_at, updated_at
`

func scanAddress(row interface{ Scan(...any) error }) (*domain.Address, error) {
	var a domain.Address
	err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.Name, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.Pincode, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepository) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	addresses := []domain.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, *a)
	}
	return addresses, rows.Err()
}

// clearDefault drops any existing default so the row being written becomes
// the only one. Must run inside the same transaction as that write.
func clearDefault(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE addresses SET is_default = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_default
	`, userID)
	return err
}

func (r *AccountRepository) CreateAddress(ctx context.Context, a *domain.Address) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.UserID); err != nil {
			return err
		}
	}

	a.ID = uuid.New().String()
	if a.Type == "" {
		a.Type = domain.AddressTypeHome
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO addresses (id, user_id, type, name, address_line1, address_line2, city, state, pincode, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, a.ID, a.UserID, a.Type, a.Name, a.AddressLine1, nullString(a.AddressLine2),
		a.City, a.State, a.Pincode, a.IsDefault).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *AccountRepository) UpdateAddress(ctx context.Context, a *domain.Address) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if a.IsDefault {
		if err := clearDefault(ctx, tx, a.UserID); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE addresses
		SET type = $1, name = $2, address_line1 = $3, address_line2 = $4,
		    city = $5, state = $6, pincode = $7, is_default = $8, updated_at = NOW()
		WHERE id = $9 AND user_id = $10
	`, a.Type, a.Name, a.AddressLine1, nullString(a.AddressLine2),
		a.City, a.State, a.Pincode, a.IsDefault, a.ID, a.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAddressNotFound
	}

	return tx.Commit()
}

// SetDefaultAddress makes the address the user's only default.
func (r *AccountRepository) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := clearDefault(ctx, tx, userID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE addresses SET is_default = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, addressID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAddressNotFound
	}

	return tx.Commit()
}

func (r *AccountRepository) DeleteAddress(ctx context.Context, userID, addressID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM addresses WHERE id = $1 AND user_id = $2
	`, addressID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrAddressNotFound
	}
	return nil
}

// AddToWishlist is idempotent: adding a product twice keeps one row.
func (r *AccountRepository) AddToWishlist(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlist_items (id, user_id, product_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`, uuid.New().String(), userID, productID)
	return err
}

func (r *AccountRepository) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2
	`, userID, productID)
	return err
}

func (r *AccountRepository) Wishlist(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, product_id, added_at
		FROM wishlist_items
		WHERE user_id = $1
		ORDER BY added_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.WishlistItem{}
	for rows.Next() {
		var item domain.WishlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.AddedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SubscribeNewsletter reactivates a previously unsubscribed email rather than
// failing on the unique constraint.
func (r *AccountRepository) SubscribeNewsletter(ctx context.Context, email string) (*domain.NewsletterSubscription, error) {
	var s domain.NewsletterSubscription
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO newsletter_subscriptions (id, email, is_active)
		VALUES ($1, $2, TRUE)
		ON CONFLICT (email) DO UPDATE SET is_active = TRUE, unsubscribed_at = NULL
		RETURNING id, email, is_active, subscribed_at, unsubscribed_at
	`, uuid.New().String(), email).Scan(&s.ID, &s.Email, &s.IsActive, &s.SubscribedAt, &s.UnsubscribedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UnsubscribeNewsletter reports whether an active subscription was found.
func (r *AccountRepository) UnsubscribeNewsletter(ctx context.Context, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE newsletter_subscriptions
		SET is_active = FALSE, unsubscribed_at = NOW()
		WHERE email = $1 AND is_active
	`, email)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
