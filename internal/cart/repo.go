package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/vnb-store/internal/db"
)

type Repository interface {
	GetOrCreate(ctx context.Context, owner Owner) (*Cart, error)
	Lines(ctx context.Context, cartID string) ([]Line, error)
	// GetItem and FindItem return ErrItemNotFound when the cart holds no such line.
	GetItem(ctx context.Context, cartID, itemID string) (*Item, error)
	FindItem(ctx context.Context, cartID, productID, size, color string) (*Item, error)
	// AddQuantity inserts the line or increments the existing one for the
	// same (product, size, color).
	AddQuantity(ctx context.Context, cartID, productID, size, color string, qty int) (*Item, error)
	SetQuantity(ctx context.Context, cartID, itemID string, qty int) error
	DeleteItem(ctx context.Context, cartID, itemID string) (bool, error)
	Clear(ctx context.Context, cartID string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

func (r *PGRepo) GetOrCreate(ctx context.Context, owner Owner) (*Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c Cart
	var userID, session *string
	if owner.UserID != "" {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO carts (id, user_id, created_at, updated_at) VALUES ($1,$2,NOW(),NOW())
			ON CONFLICT (user_id) WHERE user_id IS NOT NULL DO NOTHING
		`, uuid.NewString(), owner.UserID); err != nil {
			return nil, err
		}
		err := r.db.QueryRow(ctx, `
			SELECT id, user_id::text, session_key, created_at, updated_at FROM carts WHERE user_id=$1
		`, owner.UserID).Scan(&c.ID, &userID, &session, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
	} else {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO carts (id, session_key, created_at, updated_at) VALUES ($1,$2,NOW(),NOW())
			ON CONFLICT (session_key) WHERE session_key IS NOT NULL DO NOTHING
		`, uuid.NewString(), owner.SessionKey); err != nil {
			return nil, err
		}
		err := r.db.QueryRow(ctx, `
			SELECT id, user_id::text, session_key, created_at, updated_at FROM carts WHERE session_key=$1
		`, owner.SessionKey).Scan(&c.ID, &userID, &session, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
	}
	if userID != nil {
		c.UserID = *userID
	}
	if session != nil {
		c.SessionKey = *session
	}
	return &c, nil
}

func (r *PGRepo) Lines(ctx context.Context, cartID string) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return LoadLines(ctx, r.db, cartID)
}

// LoadLines reads a cart's items joined with their products through q, which
// may be a transaction.
func LoadLines(ctx context.Context, q db.ReadWrite, cartID string) ([]Line, error) {
	rows, err := q.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.size, ci.color, ci.created_at,
		       p.category_id, p.name, p.slug, p.sku, p.description, p.price::text, p.image_url,
		       p.is_active, p.is_featured, p.stock_quantity, p.created_at, p.updated_at
		FROM cart_items ci JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Line{}
	for rows.Next() {
		var l Line
		var price string
		if err := rows.Scan(&l.ID, &l.CartID, &l.ProductID, &l.Quantity, &l.Size, &l.Color, &l.CreatedAt,
			&l.Product.CategoryID, &l.Product.Name, &l.Product.Slug, &l.Product.SKU, &l.Product.Description,
			&price, &l.Product.ImageURL, &l.Product.IsActive, &l.Product.IsFeatured,
			&l.Product.StockQuantity, &l.Product.CreatedAt, &l.Product.UpdatedAt); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("product %s price: %w", l.ProductID, err)
		}
		l.Product.ID = l.ProductID
		l.Product.Price = d
		out = append(out, l)
	}
	return out, rows.Err()
}

// ClearLines deletes every item of a cart through q.
func ClearLines(ctx context.Context, q db.ReadWrite, cartID string) error {
	if _, err := q.Exec(ctx, `DELETE FROM cart_items WHERE cart_id=$1`, cartID); err != nil {
		return err
	}
	return touch(ctx, q, cartID)
}

// touch bumps carts.updated_at after any change to the cart's lines.
func touch(ctx context.Context, q db.ReadWrite, cartID string) error {
	_, err := q.Exec(ctx, `UPDATE carts SET updated_at=NOW() WHERE id=$1`, cartID)
	return err
}

func (r *PGRepo) GetItem(ctx context.Context, cartID, itemID string) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := uuid.Parse(itemID); err != nil {
		return nil, ErrItemNotFound
	}
	var it Item
	err := r.db.QueryRow(ctx, `
		SELECT id, cart_id, product_id, quantity, size, color, created_at
		FROM cart_items WHERE id=$1 AND cart_id=$2
	`, itemID, cartID).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.Size, &it.Color, &it.CreatedAt)
	if db.IsNoRows(err) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *PGRepo) FindItem(ctx context.Context, cartID, productID, size, color string) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var it Item
	err := r.db.QueryRow(ctx, `
		SELECT id, cart_id, product_id, quantity, size, color, created_at
		FROM cart_items WHERE cart_id=$1 AND product_id=$2 AND size=$3 AND color=$4
	`, cartID, productID, size, color).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.Size, &it.Color, &it.CreatedAt)
	if db.IsNoRows(err) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *PGRepo) AddQuantity(ctx context.Context, cartID, productID, size, color string, qty int) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var it Item
	err := r.db.QueryRow(ctx, `
		INSERT INTO cart_items (id, cart_id, product_id, quantity, size, color, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,NOW())
		ON CONFLICT (cart_id, product_id, size, color)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_id, quantity, size, color, created_at
	`, uuid.NewString(), cartID, productID, qty, size, color).Scan(
		&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.Size, &it.Color, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := touch(ctx, r.db, cartID); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *PGRepo) SetQuantity(ctx context.Context, cartID, itemID string, qty int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `UPDATE cart_items SET quantity=$3 WHERE id=$1 AND cart_id=$2`, itemID, cartID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return touch(ctx, r.db, cartID)
}

func (r *PGRepo) DeleteItem(ctx context.Context, cartID, itemID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := uuid.Parse(itemID); err != nil {
		return false, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id=$1 AND cart_id=$2`, itemID, cartID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	return true, touch(ctx, r.db, cartID)
}

func (r *PGRepo) Clear(ctx context.Context, cartID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return ClearLines(ctx, r.db, cartID)
}
