// Package money centralises the decimal arithmetic and formatting rules
// every report aggregate relies on. Currency amounts round to 2 decimal
// places; percentage precision is a per-endpoint contract (some summary
// margins are whole percents, bucket-level margins keep 2 decimals).
package money

import "github.com/shopspring/decimal"

// Format renders an amount as a fixed 2-decimal string, the only currency
// serialisation the API emits ("3000.00", never 3000 or 3e3).
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Round2 rounds to 2 decimal places, the precision stored for all
// currency aggregates.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Margin returns profit/net*100 rounded to 2 decimals. A zero net yields
// zero rather than a division error.
func Margin(profit, net decimal.Decimal) decimal.Decimal {
	if net.IsZero() {
		return decimal.Zero
	}
	return profit.Div(net).Mul(decimal.NewFromInt(100)).Round(2)
}

// MarginWhole returns profit/net*100 rounded to the nearest whole percent,
// used by the summary totals contract.
func MarginWhole(profit, net decimal.Decimal) decimal.Decimal {
	if net.IsZero() {
		return decimal.Zero
	}
	return profit.Div(net).Mul(decimal.NewFromInt(100)).Round(0)
}

// SafeDiv divides a by b, returning zero when b is zero.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
