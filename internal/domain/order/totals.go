package order

import "github.com/shopspring/decimal"

var (
	taxRate               = decimal.RequireFromString("0.20")
	shippingFlat          = decimal.NewFromInt(5)
	freeShippingThreshold = decimal.NewFromInt(50)
)

// Totals holds the monetary breakdown of an order, each value rounded to
// two decimal places.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals computes totals from order lines: subtotal is the sum of
// unit price times quantity, tax is a 20% flat rate, shipping is free at or
// above a £50 subtotal and a flat £5 below it.
func CalculateTotals(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(taxRate).Round(2)

	shipping := shippingFlat
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping).Round(2),
	}
}
