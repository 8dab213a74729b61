// Package product provides the catalog model, its repository interface and
// the PostgreSQL implementation.
package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/vnb-store/internal/apperr"
	"github.com/MikeMC777/vnb-store/internal/db"
)

var (
	ErrNotFound         = apperr.New(apperr.ErrNotFound, "Product not found")
	ErrCategoryNotFound = apperr.New(apperr.ErrNotFound, "Category not found")
	ErrAlreadyExist     = apperr.New(apperr.ErrConflict, "product already exists (slug/sku)")
)

const FeaturedLimit = 8

type Query struct {
	Q            string
	CategorySlug string
	Featured     *bool
	// Ordering is one of price, created_at, name, optionally prefixed with '-'.
	Ordering string
	Limit    int
	Offset   int
}

// Normalize clamps paging and falls back to newest-first ordering.
func (q Query) Normalize() Query {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Q = strings.TrimSpace(q.Q)
	if _, ok := orderings[q.Ordering]; !ok {
		q.Ordering = "-created_at"
	}
	return q
}

var orderings = map[string]string{
	"price":       "p.price ASC",
	"-price":      "p.price DESC",
	"created_at":  "p.created_at ASC",
	"-created_at": "p.created_at DESC",
	"name":        "p.name ASC",
	"-name":       "p.name DESC",
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Detail, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)

	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context, search string) ([]Category, error)
	GetCategory(ctx context.Context, slug string) (*Category, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

const productColumns = `p.id, p.category_id, p.name, p.slug, p.sku, p.description, p.price::text,
	p.image_url, p.is_active, p.is_featured, p.stock_quantity, p.created_at, p.updated_at`

// ScanProduct reads a row selected with productColumns.
func ScanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var price string
	if err := row.Scan(&p.ID, &p.CategoryID, &p.Name, &p.Slug, &p.SKU, &p.Description, &price,
		&p.ImageURL, &p.IsActive, &p.IsFeatured, &p.StockQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("product %s price: %w", p.ID, err)
	}
	p.Price = d
	return &p, nil
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.Normalize()
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (id, category_id, name, slug, sku, description, price, image_url,
		                      is_active, is_featured, stock_quantity, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.CategoryID, p.Name, p.Slug, p.SKU, p.Description, p.Price.String(), p.ImageURL,
		p.IsActive, p.IsFeatured, p.StockQuantity).Scan(&p.CreatedAt, &p.UpdatedAt)
	switch {
	case db.IsUniqueViolation(err):
		return ErrAlreadyExist
	case db.IsForeignKeyViolation(err):
		return ErrCategoryNotFound
	}
	return err
}

// GetByID returns the product whether or not it is active.
func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	p, err := ScanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id=$1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	return p, err
}

// GetBySlug returns an active product with its category and attachments.
func (r *PGRepo) GetBySlug(ctx context.Context, slug string) (*Detail, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	p, err := ScanProduct(r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products p WHERE p.slug=$1 AND p.is_active`, slug))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	d := &Detail{Product: *p, Images: []Image{}, Colors: []Color{}, Sizes: []Size{}, Details: []string{}}

	if err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, description, image_url, is_active, created_at, updated_at
		FROM categories WHERE id=$1
	`, p.CategoryID).Scan(&d.Category.ID, &d.Category.Name, &d.Category.Slug, &d.Category.Description,
		&d.Category.ImageURL, &d.Category.IsActive, &d.Category.CreatedAt, &d.Category.UpdatedAt); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, url, alt_text, is_primary, position FROM product_images
		WHERE product_id=$1 ORDER BY position, created_at
	`, p.ID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var im Image
		if err := rows.Scan(&im.ID, &im.URL, &im.AltText, &im.IsPrimary, &im.Position); err != nil {
			rows.Close()
			return nil, err
		}
		d.Images = append(d.Images, im)
	}
	rows.Close()

	rows, err = r.db.Query(ctx, `SELECT name, hex_code, is_available FROM product_colors WHERE product_id=$1 ORDER BY name`, p.ID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var c Color
		if err := rows.Scan(&c.Name, &c.HexCode, &c.IsAvailable); err != nil {
			rows.Close()
			return nil, err
		}
		d.Colors = append(d.Colors, c)
	}
	rows.Close()

	rows, err = r.db.Query(ctx, `SELECT size, is_available FROM product_sizes WHERE product_id=$1 ORDER BY size`, p.ID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var s Size
		if err := rows.Scan(&s.Size, &s.IsAvailable); err != nil {
			rows.Close()
			return nil, err
		}
		d.Sizes = append(d.Sizes, s)
	}
	rows.Close()

	rows, err = r.db.Query(ctx, `SELECT detail FROM product_details WHERE product_id=$1 ORDER BY position`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		d.Details = append(d.Details, s)
	}
	return d, rows.Err()
}

// List returns active products in active categories.
func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	q = q.Normalize()
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.is_active AND c.is_active
		  AND ($1 = '' OR p.name ILIKE '%'||$1||'%' OR p.description ILIKE '%'||$1||'%' OR p.sku ILIKE '%'||$1||'%')
		  AND ($2 = '' OR c.slug = $2)
		  AND ($3::boolean IS NULL OR p.is_featured = $3)
		ORDER BY `+orderings[q.Ordering]+`
		LIMIT $4 OFFSET $5
	`, q.Q, q.CategorySlug, q.Featured, q.Limit, q.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := ScanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4, stock_quantity = $5,
		    is_active = $6, is_featured = $7, image_url = $8, updated_at = NOW()
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price.String(), p.StockQuantity, p.IsActive, p.IsFeatured, p.ImageURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) CreateCategory(ctx context.Context, c *Category) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (id, name, slug, description, image_url, is_active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW(),NOW())
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.IsActive).Scan(&c.CreatedAt, &c.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperr.New(apperr.ErrConflict, "category already exists")
	}
	return err
}

func (r *PGRepo) ListCategories(ctx context.Context, search string) ([]Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, slug, description, image_url, is_active, created_at, updated_at
		FROM categories
		WHERE is_active AND ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		ORDER BY name
	`, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetCategory(ctx context.Context, slug string) (*Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name, slug, description, image_url, is_active, created_at, updated_at
		FROM categories WHERE slug=$1 AND is_active
	`, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if db.IsNoRows(err) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DecrementStock subtracts n from the product's stock only when at least n
// units remain. It reports false, with nothing written, otherwise.
func DecrementStock(ctx context.Context, q db.ReadWrite, productID string, n int) (bool, error) {
	tag, err := q.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
	`, productID, n)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// IncrementStock returns n units to a product's stock.
func IncrementStock(ctx context.Context, q db.ReadWrite, productID string, n int) error {
	_, err := q.Exec(ctx, `
		UPDATE products SET stock_quantity = stock_quantity + $2, updated_at = NOW() WHERE id = $1
	`, productID, n)
	return err
}
