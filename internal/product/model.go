package product

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID          string `json:"id"`
	CategoryID  string `json:"category_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
	// NUMERIC(10,2) in Postgres
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url,omitempty"`
	IsActive      bool            `json:"is_active"`
	IsFeatured    bool            `json:"is_featured"`
	StockQuantity int             `json:"stock_quantity"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p Product) InStock() bool { return p.StockQuantity > 0 }

func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price   string `json:"price"`
		InStock bool   `json:"in_stock"`
	}{plain(p), p.Price.StringFixed(2), p.InStock()})
}

type Image struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	AltText   string `json:"alt_text"`
	IsPrimary bool   `json:"is_primary"`
	Position  int    `json:"position"`
}

type Color struct {
	Name        string `json:"name"`
	HexCode     string `json:"hex_code"`
	IsAvailable bool   `json:"is_available"`
}

type Size struct {
	Size        string `json:"size"`
	IsAvailable bool   `json:"is_available"`
}

// Detail is a product with its category and attachments, as shown on the
// product page.
type Detail struct {
	Product  Product  `json:"product"`
	Category Category `json:"category"`
	Images   []Image  `json:"images"`
	Colors   []Color  `json:"colors"`
	Sizes    []Size   `json:"sizes"`
	Details  []string `json:"details"`
}

// Slugify lowercases s and joins its alphanumeric runs with '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// DefaultSKU builds VNB-<first 8 of id>-<slug prefix>.
func DefaultSKU(id, name string) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	slug := Slugify(name)
	if len(slug) > 10 {
		slug = slug[:10]
	}
	return "VNB-" + strings.ToUpper(short) + "-" + slug
}

// Normalize fills the derived fields a new product needs.
func (p *Product) Normalize() {
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	if p.SKU == "" {
		p.SKU = DefaultSKU(p.ID, p.Name)
	}
}
