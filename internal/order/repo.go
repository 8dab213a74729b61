package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/vnb-store/internal/apperr"
	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/db"
	"github.com/MikeMC777/vnb-store/internal/product"
)

var (
	ErrNotFound = apperr.New(apperr.ErrNotFound, "Order not found")
)

// Tx is the set of writes a checkout or status change performs atomically.
type Tx interface {
	CartLines(ctx context.Context, cartID string) ([]cart.Line, error)
	ClearCart(ctx context.Context, cartID string) error
	// DecrementStock is a compare-and-decrement: it reports false and writes
	// nothing when fewer than n units remain.
	DecrementStock(ctx context.Context, productID string, n int) (bool, error)
	IncrementStock(ctx context.Context, productID string, n int) error
	InsertOrder(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, it *Item) error
	GetForUpdate(ctx context.Context, id string) (*Order, error)
	SetStatus(ctx context.Context, id string, s Status) error
}

type Repository interface {
	// InTx runs fn in one serializable transaction; any error from fn rolls
	// back every write made through tx.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(pool *pgxpool.Pool) *PGRepo { return &PGRepo{db: pool} }

func (r *PGRepo) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return db.Serializable(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, pgTx{tx: tx})
	})
}

const orderColumns = `id, order_number, COALESCE(user_id::text, ''), email, first_name, last_name, phone,
	address, city, state, zip_code, country, notes, subtotal::text, shipping::text, tax::text,
	total::text, status, created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var sub, ship, tax, total string
	if err := row.Scan(&o.ID, &o.OrderNumber, &o.UserID, &o.Email, &o.FirstName, &o.LastName, &o.Phone,
		&o.Address, &o.City, &o.State, &o.ZipCode, &o.Country, &o.Notes, &sub, &ship, &tax, &total,
		&o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{{&o.Subtotal, sub}, {&o.Shipping, ship}, {&o.Tax, tax}, {&o.Total, total}} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, fmt.Errorf("order %s amounts: %w", o.ID, err)
		}
	}
	o.Items = []Item{}
	return &o, nil
}

func loadItems(ctx context.Context, q db.ReadWrite, orderID string) ([]Item, error) {
	rows, err := q.Query(ctx, `
		SELECT id, order_id, COALESCE(product_id::text, ''), product_name, product_sku, price::text,
		       quantity, size, color
		FROM order_items WHERE order_id = $1 ORDER BY product_name, id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var it Item
		var price string
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.ProductSKU, &price,
			&it.Quantity, &it.Size, &it.Color); err != nil {
			return nil, err
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = loadItems(ctx, r.db, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders WHERE user_id=$1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Items, err = loadItems(ctx, r.db, out[i].ID); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = []Order{}
	}
	return out, nil
}

type pgTx struct{ tx pgx.Tx }

func (t pgTx) CartLines(ctx context.Context, cartID string) ([]cart.Line, error) {
	return cart.LoadLines(ctx, t.tx, cartID)
}

func (t pgTx) ClearCart(ctx context.Context, cartID string) error {
	return cart.ClearLines(ctx, t.tx, cartID)
}

func (t pgTx) DecrementStock(ctx context.Context, productID string, n int) (bool, error) {
	return product.DecrementStock(ctx, t.tx, productID, n)
}

func (t pgTx) IncrementStock(ctx context.Context, productID string, n int) error {
	return product.IncrementStock(ctx, t.tx, productID, n)
}

func (t pgTx) InsertOrder(ctx context.Context, o *Order) error {
	var userID *string
	if o.UserID != "" {
		userID = &o.UserID
	}
	return t.tx.QueryRow(ctx, `
		INSERT INTO orders (id, order_number, user_id, email, first_name, last_name, phone, address, city,
		                    state, zip_code, country, notes, subtotal, shipping, tax, total, status,
		                    created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.OrderNumber, userID, o.Email, o.FirstName, o.LastName, o.Phone, o.Address, o.City,
		o.State, o.ZipCode, o.Country, o.Notes, o.Subtotal.StringFixed(2), o.Shipping.StringFixed(2),
		o.Tax.StringFixed(2), o.Total.StringFixed(2), string(o.Status)).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (t pgTx) InsertItem(ctx context.Context, it *Item) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_items (id, order_id, product_id, product_name, product_sku, price, quantity, size, color)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, it.ID, it.OrderID, it.ProductID, it.ProductName, it.ProductSKU, it.Price.StringFixed(2),
		it.Quantity, it.Size, it.Color)
	return err
}

func (t pgTx) GetForUpdate(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	o, err := scanOrder(t.tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if db.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if o.Items, err = loadItems(ctx, t.tx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (t pgTx) SetStatus(ctx context.Context, id string, s Status) error {
	tag, err := t.tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`, id, string(s))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
