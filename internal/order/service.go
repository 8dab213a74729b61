package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MikeMC777/vnb-store/internal/apperr"
	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/logx"
	"github.com/MikeMC777/vnb-store/internal/notify"
)

var (
	ErrEmptyCart         = apperr.New(apperr.ErrEmptyCart, "Cart is empty")
	ErrInvalidStatus     = apperr.New(apperr.ErrValidation, "invalid status")
	ErrStatusTransition  = apperr.New(apperr.ErrValidation, "status change not allowed")
	ErrCheckoutInFlight  = apperr.New(apperr.ErrConflict, "checkout with this idempotency key is in progress")
	errIdempotencyStored = errors.New("idempotent order vanished")
)

var checkouts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "vnb_checkouts_total",
	Help: "Checkout attempts by outcome",
}, []string{"outcome"})

// StockError aborts a checkout when a line asks for more than is left.
type StockError struct {
	ProductID   string
	ProductName string
}

func (e *StockError) Error() string { return "Insufficient stock for " + e.ProductName }

func (e *StockError) Unwrap() error { return apperr.ErrOutOfStock }

// Carts resolves the cart a caller checks out.
type Carts interface {
	Resolve(ctx context.Context, owner cart.Owner) (*cart.Cart, error)
}

// IdempotencyStore remembers which order a client key produced.
type IdempotencyStore interface {
	TryLock(ctx context.Context, scope, key string) (bool, error)
	Unlock(ctx context.Context, scope, key string) error
	Remember(ctx context.Context, scope, key, value string) error
	Recall(ctx context.Context, scope, key string) (string, bool, error)
}

type Service struct {
	repo   Repository
	carts  Carts
	idem   IdempotencyStore
	events *notify.Dispatcher
	log    *logx.Logger

	now       func() time.Time
	newNumber func(time.Time) string
}

type Option func(*Service)

// WithIdempotency enables Idempotency-Key handling for checkout.
func WithIdempotency(s IdempotencyStore) Option { return func(svc *Service) { svc.idem = s } }

// WithClock overrides the time source used for order numbers.
func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

func NewService(repo Repository, carts Carts, events *notify.Dispatcher, log *logx.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		carts:     carts,
		events:    events,
		log:       log.With("component", "checkout"),
		now:       time.Now,
		newNumber: NewNumber,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type CheckoutInput struct {
	Owner          cart.Owner
	Customer       Customer
	Notes          string
	IdempotencyKey string
}

// Checkout converts the caller's cart into an order. Pricing, stock
// decrements, item snapshots and emptying the cart happen in one
// transaction; on any failure none of them persists. replayed is true when
// the order was produced earlier for the same idempotency key.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (o *Order, replayed bool, err error) {
	c, err := s.carts.Resolve(ctx, in.Owner)
	if err != nil {
		return nil, false, err
	}

	scope := in.Owner.Normalized().String()
	if s.idem != nil && in.IdempotencyKey != "" {
		id, ok, rerr := s.idem.Recall(ctx, scope, in.IdempotencyKey)
		if rerr != nil {
			s.log.Warn("recall idempotency key", "scope", scope, "error", rerr)
		}
		if rerr == nil && ok {
			prev, gerr := s.repo.GetByID(ctx, id)
			if gerr != nil {
				return nil, false, errors.Join(errIdempotencyStored, gerr)
			}
			return prev, true, nil
		}
		var locked bool
		locked, err = s.idem.TryLock(ctx, scope, in.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		if !locked {
			return nil, false, ErrCheckoutInFlight
		}
		// err is the named result here; the lock is released on every failed return.
		defer func() {
			if err != nil {
				if uerr := s.idem.Unlock(context.WithoutCancel(ctx), scope, in.IdempotencyKey); uerr != nil {
					s.log.Warn("unlock idempotency key", "scope", scope, "error", uerr)
				}
			}
		}()
	}

	err = s.repo.InTx(ctx, func(ctx context.Context, tx Tx) error {
		placed, err := s.place(ctx, tx, c, in)
		if err != nil {
			return err
		}
		o = placed
		return nil
	})
	if err != nil {
		checkouts.WithLabelValues(outcome(err)).Inc()
		var se *StockError
		if errors.As(err, &se) {
			s.log.Info("checkout aborted", "cart_id", c.ID, "product_id", se.ProductID, "reason", "stock")
		}
		return nil, false, err
	}
	checkouts.WithLabelValues("placed").Inc()

	if s.idem != nil && in.IdempotencyKey != "" {
		if err := s.idem.Remember(ctx, scope, in.IdempotencyKey, o.ID); err != nil {
			s.log.Warn("remember idempotency key", "order_id", o.ID, "error", err)
		}
	}
	s.log.Info("order placed", "order_id", o.ID, "order_number", o.OrderNumber, "total", o.Total.StringFixed(2))
	if s.events != nil {
		s.events.Send(notify.TypeOrderPlaced, o.ID, o)
	}
	return o, false, nil
}

// place runs inside the transaction and must not keep state across attempts.
func (s *Service) place(ctx context.Context, tx Tx, c *cart.Cart, in CheckoutInput) (*Order, error) {
	lines, err := tx.CartLines(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := Price(lines)
	now := s.now()
	o := &Order{
		ID:          uuid.NewString(),
		OrderNumber: s.newNumber(now),
		UserID:      in.Owner.UserID,
		Customer:    in.Customer,
		Notes:       in.Notes,
		Subtotal:    totals.Subtotal,
		Shipping:    totals.Shipping,
		Tax:         totals.Tax,
		Total:       totals.Total,
		Status:      StatusPending,
		Items:       make([]Item, 0, len(lines)),
	}
	if err := tx.InsertOrder(ctx, o); err != nil {
		return nil, err
	}

	for _, l := range lines {
		ok, err := tx.DecrementStock(ctx, l.ProductID, l.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &StockError{ProductID: l.ProductID, ProductName: l.Product.Name}
		}
		it := Item{
			ID:          uuid.NewString(),
			OrderID:     o.ID,
			ProductID:   l.ProductID,
			ProductName: l.Product.Name,
			ProductSKU:  l.Product.SKU,
			Price:       l.Product.Price,
			Quantity:    l.Quantity,
			Size:        l.Size,
			Color:       l.Color,
		}
		if err := tx.InsertItem(ctx, &it); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}

	if err := tx.ClearCart(ctx, c.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, apperr.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, apperr.ErrOutOfStock):
		return "out_of_stock"
	default:
		return "error"
	}
}

// Get returns an order visible to the caller: its owner, or staff.
func (s *Service) Get(ctx context.Context, id string, userID string, staff bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !staff && (userID == "" || o.UserID != userID) {
		return nil, ErrNotFound
	}
	return o, nil
}

// ListForUser returns the user's orders; anonymous callers have none.
func (s *Service) ListForUser(ctx context.Context, userID string, limit, offset int) ([]Order, error) {
	if userID == "" {
		return []Order{}, nil
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// UpdateStatus applies a staff status change. Cancelling returns every
// line's quantity to stock in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, id string, next Status) (*Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}
	var out *Order
	err := s.repo.InTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !o.Status.CanBecome(next) {
			return ErrStatusTransition
		}
		if next == StatusCanceled {
			for _, it := range o.Items {
				if it.ProductID == "" {
					continue
				}
				if err := tx.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}
		if err := tx.SetStatus(ctx, o.ID, next); err != nil {
			return err
		}
		o.Status = next
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("order status changed", "order_id", out.ID, "status", out.Status)
	return out, nil
}
