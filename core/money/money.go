// Package money centralizes monetary arithmetic for the quotation core.
// All money flows through exact decimals rounded half-up to 2 places at
// every intermediate step. Binary floating point never touches a price.
package money

import (
	"github.com/shopspring/decimal"
)

// Places is the number of decimal places kept for monetary values
const Places = 2

// Tolerance is the maximum acceptable deviation when re-checking a
// monetary identity (one cent)
var Tolerance = decimal.New(1, -2)

// Round rounds a monetary value half-up to 2 places.
// decimal.Round rounds half away from zero, which for the non-negative
// amounts handled here is exactly round-half-up.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Mul multiplies two values and rounds the product to 2 places
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return Round(a.Mul(b))
}

// Percent applies pct/100 to a value and rounds to 2 places
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(pct).Div(decimal.NewFromInt(100)))
}

// WithinTolerance reports whether two monetary values agree within Tolerance
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// CeilInt rounds a positive quantity up to the nearest integer.
// Material quantities always round up: rounding down under-provisions.
func CeilInt(d decimal.Decimal) int64 {
	return d.Ceil().IntPart()
}

// MustParse parses a decimal literal and panics on failure.
// Intended for configuration defaults and test fixtures only.
func MustParse(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic("money: invalid decimal literal " + s)
	}
	return d
}
