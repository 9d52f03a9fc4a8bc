package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/emeraldlabs/storefront/internal/domain"
)

const pageSize = 12

type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

type ProductFilter struct {
	CategorySlug string
	Search       string
	Sort         string
	FeaturedOnly bool
	Page         int
	// Limit overrides the default page size when positive.
	Limit int
}

func (f ProductFilter) limit() int {
	if f.Limit > 0 {
		return f.Limit
	}
	return pageSize
}

func (f ProductFilter) orderBy() string {
	switch f.Sort {
	case "price_low":
		return "p.price ASC"
	case "price_high":
		return "p.price DESC"
	case "newest":
		return "p.created_at DESC"
	default:
		return "p.name ASC"
	}
}

func (r *CatalogRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM categories
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *CatalogRepository) CategoryBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	c := &domain.Category{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, description, is_active, created_at, updated_at
		FROM categories
		WHERE slug = $1
	`, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func (r *CatalogRepository) Products(ctx context.Context, filter ProductFilter) ([]domain.Product, error) {
	query := `
		SELECT p.id, p.category_id, p.name, p.slug, p.description, p.price,
		       p.compare_price, p.stock, p.is_active, p.is_featured, p.created_at, p.updated_at
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.is_active
	`
	var args []any

	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		query += fmt.Sprintf(" AND c.slug = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.description ILIKE $%d)", len(args), len(args))
	}
	if filter.FeaturedOnly {
		query += " AND p.is_featured"
	}

	query += " ORDER BY " + filter.orderBy()

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.limit()
	args = append(args, limit, (page-1)*limit)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanProducts(rows)
}

func (r *CatalogRepository) ProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	p := &domain.Product{}
	var compare decimal.NullDecimal
	err := r.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, slug, description, price, compare_price,
		       stock, is_active, is_featured, created_at, updated_at
		FROM products
		WHERE slug = $1 AND is_active
	`, slug).Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.Price,
		&compare, &p.Stock, &p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if compare.Valid {
		p.ComparePrice = &compare.Decimal
	}
	return p, nil
}

// RelatedProducts returns other active products in the same category.
func (r *CatalogRepository) RelatedProducts(ctx context.Context, product *domain.Product, limit int) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, category_id, name, slug, description, price, compare_price,
		       stock, is_active, is_featured, created_at, updated_at
		FROM products
		WHERE category_id = $1 AND id <> $2 AND is_active
		ORDER BY created_at DESC
		LIMIT $3
	`, product.CategoryID, product.ID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	return scanProducts(rows)
}

// CreateProduct assigns a unique slug derived from the name and inserts the
// product. Slug collisions get a numeric suffix.
func (r *CatalogRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if p.Slug == "" {
		slug, err := nextFreeSlug(ctx, tx, "products", Slugify(p.Name))
		if err != nil {
			return err
		}
		p.Slug = slug
	}

	p.ID = uuid.New().String()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO products (id, category_id, name, slug, description, price, compare_price, stock, is_active, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, p.ID, p.CategoryID, p.Name, p.Slug, p.Description, p.Price, nullDecimal(p.ComparePrice),
		p.Stock, p.IsActive, p.IsFeatured).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if c.Slug == "" {
		slug, err := nextFreeSlug(ctx, tx, "categories", Slugify(c.Name))
		if err != nil {
			return err
		}
		c.Slug = slug
	}

	c.ID = uuid.New().String()
	err = tx.QueryRowContext(ctx, `
		INSERT INTO categories (id, name, slug, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Slug, c.Description, c.IsActive).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func nextFreeSlug(ctx context.Context, tx *sql.Tx, table, base string) (string, error) {
	if base == "" {
		base = uuid.New().String()[:8]
	}
	slug := base
	for counter := 1; ; counter++ {
		var exists bool
		err := tx.QueryRowContext(ctx,
			fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1)", table),
			slug).Scan(&exists)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

// ReviewsForProduct returns reviews newest first.
func (r *CatalogRepository) ReviewsForProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rv)
	}

	return reviews, rows.Err()
}

// ErrAlreadyReviewed is returned when a user reviews the same product twice.
var ErrAlreadyReviewed = errors.New("product already reviewed by this user")

func (r *CatalogRepository) AddReview(ctx context.Context, rv *domain.Review) error {
	rv.ID = uuid.New().String()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (id, product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, rv.ID, rv.ProductID, rv.UserID, rv.Rating, rv.Comment).Scan(&rv.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrAlreadyReviewed
		}
		return err
	}
	return nil
}

func scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var compare decimal.NullDecimal
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.Price,
			&compare, &p.Stock, &p.IsActive, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		if compare.Valid {
			p.ComparePrice = &compare.Decimal
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
