// Package pricing derives transaction amounts from line items.
// Pure functions, fixed-point decimal arithmetic only — money never passes
// through binary floating point.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Line is one priced line item input.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals is the derived amount set. Invariant: Total == Subtotal + Tax.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// LineTotal returns quantity * unitPrice rounded to two decimals.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Calculate sums the line totals, applies taxRatePct (a percentage, e.g.
// "10.5") to the subtotal, and returns all three amounts at two-decimal
// precision. A zero rate yields zero tax.
func Calculate(lines []Line, taxRatePct decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	subtotal = subtotal.Round(2)

	tax := subtotal.Mul(taxRatePct).Div(decimal.NewFromInt(100)).Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
