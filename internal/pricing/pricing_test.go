package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculate_TotalsEqualSubtotalPlusTax(t *testing.T) {
	lines := []Line{
		{Quantity: 3, UnitPrice: dec("19.99")},
		{Quantity: 1, UnitPrice: dec("0.01")},
		{Quantity: 7, UnitPrice: dec("149.50")},
	}

	got := Calculate(lines, dec("11"))

	assert.Equal(t, "1106.48", got.Subtotal.StringFixed(2))
	assert.Equal(t, "121.71", got.Tax.StringFixed(2))
	assert.True(t, got.Total.Equal(got.Subtotal.Add(got.Tax)), "total must equal subtotal+tax")
}

func TestCalculate_ZeroRateYieldsZeroTax(t *testing.T) {
	got := Calculate([]Line{{Quantity: 2, UnitPrice: dec("10.00")}}, decimal.Zero)

	assert.True(t, got.Tax.IsZero())
	assert.Equal(t, "20.00", got.Total.StringFixed(2))
}

func TestCalculate_NoFloatDriftOnRepeatedRecompute(t *testing.T) {
	// 0.1 + 0.2 style inputs that drift under float64 arithmetic.
	lines := []Line{
		{Quantity: 10, UnitPrice: dec("0.10")},
		{Quantity: 10, UnitPrice: dec("0.20")},
	}

	first := Calculate(lines, dec("10.5"))
	for i := 0; i < 1000; i++ {
		again := Calculate(lines, dec("10.5"))
		require.True(t, again.Subtotal.Equal(first.Subtotal))
		require.True(t, again.Tax.Equal(first.Tax))
		require.True(t, again.Total.Equal(first.Total))
	}
	assert.Equal(t, "3.00", first.Subtotal.StringFixed(2))
	assert.Equal(t, "0.32", first.Tax.StringFixed(2))
	assert.Equal(t, "3.32", first.Total.StringFixed(2))
}

func TestLineTotal(t *testing.T) {
	assert.Equal(t, "59.97", LineTotal(3, dec("19.99")).StringFixed(2))
	assert.Equal(t, "0.00", LineTotal(0, dec("19.99")).StringFixed(2))
}

func TestCalculate_EmptyLines(t *testing.T) {
	got := Calculate(nil, dec("21"))
	assert.True(t, got.Subtotal.IsZero())
	assert.True(t, got.Tax.IsZero())
	assert.True(t, got.Total.IsZero())
}
