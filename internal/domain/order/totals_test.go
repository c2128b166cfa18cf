package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(price string, qty int) Line {
	return Line{ProductName: "test", UnitPrice: dec(price), Quantity: qty}
}

func TestCalculateTotals_BelowFreeShippingThreshold(t *testing.T) {
	totals := CalculateTotals([]Line{line("16.99", 2)})

	assert.True(t, totals.Subtotal.Equal(dec("33.98")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(dec("6.80")), "tax = %s", totals.Tax)
	assert.True(t, totals.Shipping.Equal(dec("5")), "shipping = %s", totals.Shipping)
	assert.True(t, totals.Total.Equal(dec("45.78")), "total = %s", totals.Total)
}

func TestCalculateTotals_AtThresholdShipsFree(t *testing.T) {
	totals := CalculateTotals([]Line{line("25.00", 2)})

	assert.True(t, totals.Subtotal.Equal(dec("50")))
	assert.True(t, totals.Shipping.IsZero())
	assert.True(t, totals.Total.Equal(dec("60")), "total = %s", totals.Total)
}

func TestCalculateTotals_MultipleLines(t *testing.T) {
	totals := CalculateTotals([]Line{
		line("289.00", 1),
		line("7.50", 2),
	})

	assert.True(t, totals.Subtotal.Equal(dec("304.00")))
	assert.True(t, totals.Tax.Equal(dec("60.80")))
	assert.True(t, totals.Shipping.IsZero())
	assert.True(t, totals.Total.Equal(dec("364.80")))
}

func TestCalculateTotals_Empty(t *testing.T) {
	totals := CalculateTotals(nil)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Tax.IsZero())
	// A zero subtotal is below the threshold, so the flat rate applies.
	assert.True(t, totals.Shipping.Equal(dec("5")))
}

func TestFormatOrderNumber(t *testing.T) {
	ts := tsAt(2026, 8, 30)

	assert.Equal(t, "AST-202608-0001", FormatOrderNumber(ts, 1))
	assert.Equal(t, "AST-202608-0042", FormatOrderNumber(ts, 42))
	assert.Equal(t, "AST-202608-9999", FormatOrderNumber(ts, 9999))
	// Past four digits the suffix widens instead of wrapping.
	assert.Equal(t, "AST-202608-10000", FormatOrderNumber(ts, 10000))
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, "202601", MonthKey(tsAt(2026, 1, 15)))
	assert.Equal(t, "202612", MonthKey(tsAt(2026, 12, 1)))
}
