// Package memstore is an in-memory implementation of every repository. All
// access is serialised by one mutex; a transaction works on a cloned state
// that replaces the live one only when the transaction function succeeds.
package memstore

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/MikeMC777/vnb-store/internal/cart"
	"github.com/MikeMC777/vnb-store/internal/intake"
	"github.com/MikeMC777/vnb-store/internal/order"
	"github.com/MikeMC777/vnb-store/internal/product"
	"github.com/MikeMC777/vnb-store/internal/user"
)

type attachments struct {
	images  []product.Image
	colors  []product.Color
	sizes   []product.Size
	details []string
}

type cartItem struct {
	cart.Item
	seq int64
}

type orderRow struct {
	order.Order
	seq int64
}

type state struct {
	categories map[string]product.Category
	products   map[string]product.Product
	attach     map[string]attachments

	carts map[string]cart.Cart
	items map[string]cartItem

	orders     map[string]orderRow
	orderItems map[string][]order.Item

	users    map[string]user.User
	profiles map[string]user.Profile

	subs      map[string]intake.Subscription
	contacts  []intake.ContactMessage
	inquiries []intake.InvestmentInquiry
}

func newState() *state {
	return &state{
		categories: map[string]product.Category{},
		products:   map[string]product.Product{},
		attach:     map[string]attachments{},
		carts:      map[string]cart.Cart{},
		items:      map[string]cartItem{},
		orders:     map[string]orderRow{},
		orderItems: map[string][]order.Item{},
		users:      map[string]user.User{},
		profiles:   map[string]user.Profile{},
		subs:       map[string]intake.Subscription{},
	}
}

func (s *state) clone() *state {
	c := &state{
		categories: maps.Clone(s.categories),
		products:   maps.Clone(s.products),
		attach:     maps.Clone(s.attach),
		carts:      maps.Clone(s.carts),
		items:      maps.Clone(s.items),
		orders:     maps.Clone(s.orders),
		orderItems: make(map[string][]order.Item, len(s.orderItems)),
		users:      maps.Clone(s.users),
		profiles:   maps.Clone(s.profiles),
		subs:       maps.Clone(s.subs),
		contacts:   slices.Clone(s.contacts),
		inquiries:  slices.Clone(s.inquiries),
	}
	for k, v := range s.orderItems {
		c.orderItems[k] = slices.Clone(v)
	}
	return c
}

type Store struct {
	mu  sync.Mutex
	st  *state
	seq int64
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// next returns a monotonically increasing sequence; callers hold mu.
func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

func (s *Store) Products() *Products { return &Products{s: s} }
func (s *Store) Carts() *Carts       { return &Carts{s: s} }
func (s *Store) Orders() *Orders     { return &Orders{s: s} }
func (s *Store) Users() *Users       { return &Users{s: s} }
func (s *Store) Intake() *Intake     { return &Intake{s: s} }

var (
	_ product.Repository = (*Products)(nil)
	_ cart.Repository    = (*Carts)(nil)
	_ order.Repository   = (*Orders)(nil)
	_ user.Repository    = (*Users)(nil)
	_ intake.Repository  = (*Intake)(nil)
)
