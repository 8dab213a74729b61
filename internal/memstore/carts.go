package memstore

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/MikeMC777/vnb-store/internal/cart"
)

type Carts struct{ s *Store }

func (r *Carts) GetOrCreate(_ context.Context, owner cart.Owner) (*cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.st.carts {
		if (owner.UserID != "" && c.UserID == owner.UserID) ||
			(owner.UserID == "" && c.UserID == "" && c.SessionKey == owner.SessionKey) {
			return &c, nil
		}
	}
	now := r.s.now()
	c := cart.Cart{ID: uuid.NewString(), UserID: owner.UserID, CreatedAt: now, UpdatedAt: now}
	if owner.UserID == "" {
		c.SessionKey = owner.SessionKey
	}
	r.s.st.carts[c.ID] = c
	return &c, nil
}

func (r *Carts) Lines(_ context.Context, cartID string) ([]cart.Line, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.st.lines(cartID), nil
}

// lines joins a cart's items with their products in insertion order.
func (st *state) lines(cartID string) []cart.Line {
	var items []cartItem
	for _, it := range st.items {
		if it.CartID == cartID {
			items = append(items, it)
		}
	}
	slices.SortFunc(items, func(a, b cartItem) int { return int(a.seq - b.seq) })

	out := []cart.Line{}
	for _, it := range items {
		p, ok := st.products[it.ProductID]
		if !ok {
			continue
		}
		out = append(out, cart.Line{Item: it.Item, Product: p})
	}
	return out
}

func (st *state) clearCart(cartID string) {
	for k, it := range st.items {
		if it.CartID == cartID {
			delete(st.items, k)
		}
	}
}

func (r *Carts) GetItem(_ context.Context, cartID, itemID string) (*cart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.st.items[itemID]
	if !ok || it.CartID != cartID {
		return nil, cart.ErrItemNotFound
	}
	return &it.Item, nil
}

func (r *Carts) FindItem(_ context.Context, cartID, productID, size, color string) (*cart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if it, ok := r.s.st.findItem(cartID, productID, size, color); ok {
		return &it.Item, nil
	}
	return nil, cart.ErrItemNotFound
}

func (st *state) findItem(cartID, productID, size, color string) (cartItem, bool) {
	for _, it := range st.items {
		if it.CartID == cartID && it.ProductID == productID && it.Size == size && it.Color == color {
			return it, true
		}
	}
	return cartItem{}, false
}

func (r *Carts) AddQuantity(_ context.Context, cartID, productID, size, color string, qty int) (*cart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.st.findItem(cartID, productID, size, color)
	if ok {
		it.Quantity += qty
	} else {
		it = cartItem{
			Item: cart.Item{
				ID:        uuid.NewString(),
				CartID:    cartID,
				ProductID: productID,
				Quantity:  qty,
				Size:      size,
				Color:     color,
				CreatedAt: r.s.now(),
			},
			seq: r.s.next(),
		}
	}
	r.s.st.items[it.ID] = it
	r.touch(cartID)
	return &it.Item, nil
}

func (r *Carts) touch(cartID string) {
	if c, ok := r.s.st.carts[cartID]; ok {
		c.UpdatedAt = r.s.now()
		r.s.st.carts[cartID] = c
	}
}

func (r *Carts) SetQuantity(_ context.Context, cartID, itemID string, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.st.items[itemID]
	if !ok || it.CartID != cartID {
		return cart.ErrItemNotFound
	}
	it.Quantity = qty
	r.s.st.items[itemID] = it
	r.touch(cartID)
	return nil
}

func (r *Carts) DeleteItem(_ context.Context, cartID, itemID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.st.items[itemID]
	if !ok || it.CartID != cartID {
		return false, nil
	}
	delete(r.s.st.items, itemID)
	r.touch(cartID)
	return true, nil
}

func (r *Carts) Clear(_ context.Context, cartID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.st.clearCart(cartID)
	r.touch(cartID)
	return nil
}
