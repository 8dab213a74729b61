package cart

import (
	"context"
	"errors"

	"github.com/MikeMC777/vnb-store/internal/apperr"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/product"
)

var (
	ErrProductNotFound   = product.ErrNotFound
	ErrItemNotFound      = apperr.New(apperr.ErrNotFound, "Cart item not found")
	ErrInsufficientStock = apperr.New(apperr.ErrOutOfStock, "Insufficient stock")
	ErrInvalidQuantity   = apperr.New(apperr.ErrValidation, "Quantity must be at least 1")
	ErrNoOwner           = apperr.New(apperr.ErrValidation, "No user or session to key the cart by")
)

// Products is the slice of the catalog the cart needs.
type Products interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type AddItemInput struct {
	ProductID string
	Quantity  int
	Size      string
	Color     string
}

// Service applies cart mutations. Stock checks here are advisory: nothing is
// reserved until checkout.
type Service struct {
	repo     Repository
	products Products
	log      *logx.Logger
}

func NewService(repo Repository, products Products, log *logx.Logger) *Service {
	return &Service{repo: repo, products: products, log: log.With("component", "cart")}
}

// Resolve returns the caller's cart, creating an empty one on first access.
func (s *Service) Resolve(ctx context.Context, owner Owner) (*Cart, error) {
	if !owner.Valid() {
		return nil, ErrNoOwner
	}
	return s.repo.GetOrCreate(ctx, owner.Normalized())
}

func (s *Service) Snapshot(ctx context.Context, owner Owner) (*Snapshot, error) {
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	return s.snapshot(ctx, c)
}

// AddItem adds quantity units of a product, merging with an existing line
// of the same (product, size, color). The stock check covers the merged
// quantity.
func (s *Service) AddItem(ctx context.Context, owner Owner, in AddItemInput) (*Snapshot, error) {
	if in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}

	p, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductNotFound
	}

	want := in.Quantity
	existing, err := s.repo.FindItem(ctx, c.ID, p.ID, in.Size, in.Color)
	switch {
	case err == nil:
		want += existing.Quantity
	case !errors.Is(err, ErrItemNotFound):
		return nil, err
	}
	if p.StockQuantity < want {
		return nil, ErrInsufficientStock
	}

	if _, err := s.repo.AddQuantity(ctx, c.ID, p.ID, in.Size, in.Color, in.Quantity); err != nil {
		return nil, err
	}
	s.log.Debug("cart item added", "cart_id", c.ID, "product_id", p.ID, "quantity", want)
	return s.snapshot(ctx, c)
}

// UpdateItem sets a line's quantity; quantity <= 0 removes the line.
func (s *Service) UpdateItem(ctx context.Context, owner Owner, itemID string, quantity int) (*Snapshot, error) {
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	it, err := s.repo.GetItem(ctx, c.ID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if _, err := s.repo.DeleteItem(ctx, c.ID, it.ID); err != nil {
			return nil, err
		}
		return s.snapshot(ctx, c)
	}

	p, err := s.products.GetByID(ctx, it.ProductID)
	if err != nil {
		return nil, err
	}
	if p.StockQuantity < quantity {
		return nil, ErrInsufficientStock
	}
	if err := s.repo.SetQuantity(ctx, c.ID, it.ID, quantity); err != nil {
		return nil, err
	}
	return s.snapshot(ctx, c)
}

func (s *Service) RemoveItem(ctx context.Context, owner Owner, itemID string) (*Snapshot, error) {
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.DeleteItem(ctx, c.ID, itemID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrItemNotFound
	}
	return s.snapshot(ctx, c)
}

// Clear empties the cart; the cart itself is kept.
func (s *Service) Clear(ctx context.Context, owner Owner) (*Snapshot, error) {
	c, err := s.Resolve(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Clear(ctx, c.ID); err != nil {
		return nil, err
	}
	return NewSnapshot(*c, nil), nil
}

func (s *Service) snapshot(ctx context.Context, c *Cart) (*Snapshot, error) {
	lines, err := s.repo.Lines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(*c, lines), nil
}
