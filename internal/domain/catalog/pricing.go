package catalog

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Reprice derives the calculated and final sale prices from a base cost,
// margin percentage, and optional special-offer discount:
//
//	calculated = round(price * (1 + margin/100), 2)
//	final      = round(calculated * (1 - offer/100), 2)  when on offer
//	final      = calculated                              otherwise
func Reprice(price, margin decimal.Decimal, specialOffer bool, offerDiscount *decimal.Decimal) (calculated, final decimal.Decimal) {
	calculated = price.Mul(decimal.NewFromInt(1).Add(margin.Div(hundred))).Round(2)

	final = calculated
	if specialOffer && offerDiscount != nil {
		final = calculated.Mul(decimal.NewFromInt(1).Sub(offerDiscount.Div(hundred))).Round(2)
	}
	return calculated, final
}

// Reprice recomputes the product's derived price columns in place.
func (p *Product) Reprice() {
	p.CalculatedPrice, p.FinalPrice = Reprice(p.Price, p.MarginPercentage, p.IsSpecialOffer, p.OfferDiscountPercentage)
}
