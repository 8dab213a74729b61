package order

import (
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/vnb-store/internal/cart"
)

var (
	// TaxRate is applied to the subtotal of every order.
	TaxRate = decimal.RequireFromString("0.08")
	// FlatShipping is charged on every order.
	FlatShipping = decimal.Zero
)

type Totals struct {
	Subtotal decimal.Decimal
	Shipping decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Price computes order totals from live cart prices. Tax is rounded to cents
// so the stored NUMERIC(10,2) columns keep total == subtotal + shipping + tax.
func Price(lines []cart.Line) Totals {
	sub := decimal.Zero
	for _, l := range lines {
		sub = sub.Add(l.Subtotal())
	}
	tax := sub.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: sub,
		Shipping: FlatShipping,
		Tax:      tax,
		Total:    sub.Add(FlatShipping).Add(tax),
	}
}
