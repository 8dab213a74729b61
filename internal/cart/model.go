package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/vnb-store/internal/product"
)

// Owner is the identity a cart is keyed by: a user id or, for anonymous
// callers, an opaque session key issued upstream.
type Owner struct {
	UserID     string
	SessionKey string
}

// Normalized drops the session key when a user id is present.
func (o Owner) Normalized() Owner {
	if o.UserID != "" {
		return Owner{UserID: o.UserID}
	}
	return Owner{SessionKey: o.SessionKey}
}

func (o Owner) Valid() bool { return o.UserID != "" || o.SessionKey != "" }

func (o Owner) Authenticated() bool { return o.UserID != "" }

// String is a stable scope key, e.g. for idempotency records.
func (o Owner) String() string {
	if o.UserID != "" {
		return "user:" + o.UserID
	}
	return "session:" + o.SessionKey
}

type Cart struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	SessionKey string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Item struct {
	ID        string    `json:"id"`
	CartID    string    `json:"cart_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Line is a cart item joined with the live product it refers to.
type Line struct {
	Item
	Product product.Product
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Snapshot is the derived, read-only view of a cart.
type Snapshot struct {
	Cart      Cart
	Lines     []Line
	Total     decimal.Decimal
	ItemCount int
}

func NewSnapshot(c Cart, lines []Line) *Snapshot {
	s := &Snapshot{Cart: c, Lines: lines, Total: decimal.Zero}
	if s.Lines == nil {
		s.Lines = []Line{}
	}
	for _, l := range s.Lines {
		s.Total = s.Total.Add(l.Subtotal())
		s.ItemCount += l.Quantity
	}
	return s
}

// LineView is the client-facing form of a cart line.
type LineView struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	ProductSlug string `json:"product_slug"`
	ProductSKU  string `json:"product_sku"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url,omitempty"`
	Quantity    int    `json:"quantity"`
	Size        string `json:"size"`
	Color       string `json:"color"`
	Subtotal    string `json:"subtotal"`
}

type View struct {
	ID        string     `json:"id"`
	Items     []LineView `json:"items"`
	Total     string     `json:"total"`
	ItemCount int        `json:"item_count"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (s *Snapshot) View() View {
	v := View{
		ID:        s.Cart.ID,
		Items:     make([]LineView, 0, len(s.Lines)),
		Total:     s.Total.StringFixed(2),
		ItemCount: s.ItemCount,
		UpdatedAt: s.Cart.UpdatedAt,
	}
	for _, l := range s.Lines {
		v.Items = append(v.Items, LineView{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductName: l.Product.Name,
			ProductSlug: l.Product.Slug,
			ProductSKU:  l.Product.SKU,
			Price:       l.Product.Price.StringFixed(2),
			ImageURL:    l.Product.ImageURL,
			Quantity:    l.Quantity,
			Size:        l.Size,
			Color:       l.Color,
			Subtotal:    l.Subtotal().StringFixed(2),
		})
	}
	return v
}
