package pricing

import "github.com/shopspring/decimal"

// Monetary amounts stay unrounded through every intermediate step and
// are rounded to 2 places only at the response boundary (or when a
// derived tier price is materialized). Rounding mid-calculation would
// compound across the cost components.

// Round2 rounds a monetary amount to 2 decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// DivRound2 divides a by b and rounds the quotient to 2 places.
// Callers must guarantee b is non-zero.
func DivRound2(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, 2)
}

// Percent applies pct (e.g. 15 for 15%) to base without rounding.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(decimal.NewFromInt(100))
}
