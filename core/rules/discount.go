// Package rules - Discount application
package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"panelquote/core/money"
	"panelquote/internal/errors"
)

// DefaultMaxDiscountPercent bounds the discount a caller may request
var DefaultMaxDiscountPercent = decimal.NewFromInt(30)

// DiscountResult is the outcome of applying a percentage discount
type DiscountResult struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	RequestedPercent decimal.Decimal `json:"requested_percent"`
	EffectivePercent decimal.Decimal `json:"effective_percent"`
	DiscountAmount   decimal.Decimal `json:"discount_amount"`
	Total            decimal.Decimal `json:"total"`
	Notes            []string        `json:"notes,omitempty"`
	Verified         bool            `json:"calculation_verified"`
	Method           string          `json:"calculation_method"`
}

// ApplyDiscount discounts subtotal by percent, clamped into [0, maxPercent].
// Clamping is a documented business rule, not an error: an over-limit
// request yields the maximum discount plus a note. Only a negative subtotal
// is structurally invalid.
func ApplyDiscount(subtotal, percent, maxPercent decimal.Decimal) (DiscountResult, error) {
	if subtotal.IsNegative() {
		return DiscountResult{}, errors.ParameterOutOfRange("subtotal", subtotal.String(), "must be non-negative")
	}

	effective := percent
	var notes []string
	if effective.IsNegative() {
		effective = decimal.Zero
		notes = append(notes, fmt.Sprintf("requested discount %s%% below 0%%; 0%% applied", percent))
	}
	if effective.GreaterThan(maxPercent) {
		effective = maxPercent
		notes = append(notes, fmt.Sprintf("requested discount %s%% exceeds the %s%% limit; %s%% applied", percent, maxPercent, maxPercent))
	}

	amount := money.Percent(subtotal, effective)
	return DiscountResult{
		Subtotal:         money.Round(subtotal),
		RequestedPercent: percent,
		EffectivePercent: effective,
		DiscountAmount:   amount,
		Total:            money.Round(subtotal.Sub(amount)),
		Notes:            notes,
		Verified:         true,
		Method:           MethodDeterministicDecimal,
	}, nil
}
