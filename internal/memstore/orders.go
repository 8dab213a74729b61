package memstore

import (
	"context"
	"slices"

	"github.com/MikeMC777/vnb-store/internal/apperr"
	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/order"
)

type Orders struct{ s *Store }

// InTx holds the store lock for the whole of fn, so transactions are
// serial. Writes land on a clone that is discarded when fn fails.
func (r *Orders) InTx(ctx context.Context, fn func(ctx context.Context, tx order.Tx) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	next := r.s.st.clone()
	if err := fn(ctx, &orderTx{s: r.s, st: next}); err != nil {
		return err
	}
	r.s.st = next
	return nil
}

func (r *Orders) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.st.order(id)
}

func (st *state) order(id string) (*order.Order, error) {
	row, ok := st.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o := row.Order
	o.Items = slices.Clone(st.orderItems[id])
	if o.Items == nil {
		o.Items = []order.Item{}
	}
	return &o, nil
}

func (r *Orders) ListByUser(_ context.Context, userID string, limit, offset int) ([]order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	var rows []orderRow
	for _, row := range r.s.st.orders {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	slices.SortFunc(rows, func(a, b orderRow) int { return int(b.seq - a.seq) })

	out := []order.Order{}
	for _, row := range page(rows, limit, offset) {
		o, _ := r.s.st.order(row.ID)
		out = append(out, *o)
	}
	return out, nil
}

type orderTx struct {
	s  *Store
	st *state
}

func (t *orderTx) CartLines(_ context.Context, cartID string) ([]cart.Line, error) {
	return t.st.lines(cartID), nil
}

func (t *orderTx) ClearCart(_ context.Context, cartID string) error {
	t.st.clearCart(cartID)
	return nil
}

func (t *orderTx) DecrementStock(_ context.Context, productID string, n int) (bool, error) {
	p, ok := t.st.products[productID]
	if !ok || p.StockQuantity < n {
		return false, nil
	}
	p.StockQuantity -= n
	p.UpdatedAt = t.s.now()
	t.st.products[productID] = p
	return true, nil
}

func (t *orderTx) IncrementStock(_ context.Context, productID string, n int) error {
	p, ok := t.st.products[productID]
	if !ok {
		return nil
	}
	p.StockQuantity += n
	p.UpdatedAt = t.s.now()
	t.st.products[productID] = p
	return nil
}

func (t *orderTx) InsertOrder(_ context.Context, o *order.Order) error {
	for _, row := range t.st.orders {
		if row.ID == o.ID || row.OrderNumber == o.OrderNumber {
			return apperr.New(apperr.ErrConflict, "order already exists")
		}
	}
	o.CreatedAt = t.s.now()
	o.UpdatedAt = o.CreatedAt
	row := orderRow{Order: *o, seq: t.s.next()}
	row.Items = nil
	t.st.orders[o.ID] = row
	return nil
}

func (t *orderTx) InsertItem(_ context.Context, it *order.Item) error {
	if _, ok := t.st.orders[it.OrderID]; !ok {
		return order.ErrNotFound
	}
	t.st.orderItems[it.OrderID] = append(t.st.orderItems[it.OrderID], *it)
	return nil
}

func (t *orderTx) GetForUpdate(_ context.Context, id string) (*order.Order, error) {
	return t.st.order(id)
}

func (t *orderTx) SetStatus(_ context.Context, id string, s order.Status) error {
	row, ok := t.st.orders[id]
	if !ok {
		return order.ErrNotFound
	}
	row.Status = s
	row.UpdatedAt = t.s.now()
	t.st.orders[id] = row
	return nil
}
