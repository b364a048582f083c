package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAlwaysTwoDecimals(t *testing.T) {
	assert.Equal(t, "0.00", Format(decimal.Zero))
	assert.Equal(t, "3000.00", Format(decimal.NewFromInt(3000)))
	assert.Equal(t, "12.50", Format(decimal.NewFromFloat(12.5)))
	assert.Equal(t, "-45929.00", Format(decimal.NewFromInt(-45929)))
	assert.Equal(t, "0.67", Format(decimal.NewFromFloat(0.666).Round(2)))
}

func TestMarginZeroGuard(t *testing.T) {
	profit := decimal.NewFromInt(100)
	assert.True(t, Margin(profit, decimal.Zero).IsZero())
	assert.True(t, MarginWhole(profit, decimal.Zero).IsZero())
}

func TestMarginPrecision(t *testing.T) {
	profit := decimal.NewFromInt(67237)
	net := decimal.NewFromInt(142237)

	// Bucket rows keep 2 decimals, summary totals round to whole percent.
	assert.Equal(t, "47.27", Margin(profit, net).StringFixed(2))
	assert.Equal(t, "47", MarginWhole(profit, net).String())
}

func TestSafeDiv(t *testing.T) {
	assert.True(t, SafeDiv(decimal.NewFromInt(10), decimal.Zero).IsZero())
	assert.Equal(t, "2.5", SafeDiv(decimal.NewFromInt(5), decimal.NewFromInt(2)).String())
}
