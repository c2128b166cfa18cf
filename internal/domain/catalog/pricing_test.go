package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReprice_MarginOnly(t *testing.T) {
	calculated, final := Reprice(dec("100"), dec("20"), false, nil)

	assert.True(t, calculated.Equal(dec("120")), "calculated = %s", calculated)
	assert.True(t, final.Equal(dec("120")), "final = %s", final)
}

func TestReprice_SpecialOffer(t *testing.T) {
	offer := dec("25")
	calculated, final := Reprice(dec("100"), dec("20"), true, &offer)

	assert.True(t, calculated.Equal(dec("120")))
	assert.True(t, final.Equal(dec("90")), "final = %s", final)
}

func TestReprice_OfferFlagWithoutDiscount(t *testing.T) {
	// A special-offer flag with a nil discount leaves the final price at the
	// calculated price.
	calculated, final := Reprice(dec("100"), dec("20"), true, nil)

	assert.True(t, final.Equal(calculated))
}

func TestReprice_Rounding(t *testing.T) {
	calculated, final := Reprice(dec("16.99"), dec("33"), false, nil)

	assert.True(t, calculated.Equal(dec("22.60")), "calculated = %s", calculated)
	assert.True(t, final.Equal(dec("22.60")))
}

func TestReprice_ZeroMargin(t *testing.T) {
	calculated, _ := Reprice(dec("49.50"), decimal.Zero, false, nil)

	assert.True(t, calculated.Equal(dec("49.50")))
}

func TestProductReprice_UpdatesDerivedColumns(t *testing.T) {
	offer := dec("10")
	p := &Product{
		Price:                   dec("16.99"),
		MarginPercentage:        dec("40"),
		IsSpecialOffer:          true,
		OfferDiscountPercentage: &offer,
	}

	p.Reprice()

	assert.True(t, p.CalculatedPrice.Equal(dec("23.79")), "calculated = %s", p.CalculatedPrice)
	assert.True(t, p.FinalPrice.Equal(dec("21.41")), "final = %s", p.FinalPrice)
}
