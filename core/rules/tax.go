// Package rules - Tax calculation
// The two branches are deliberately asymmetric: business prices are
// tax-exclusive with tax added on top, while retail prices are
// tax-inclusive and decomposed into base + tax. Both use the same rate.
// Unifying them would silently change customer-facing totals.
package rules

import (
	"github.com/shopspring/decimal"

	"panelquote/core/catalog"
	"panelquote/core/money"
	"panelquote/internal/errors"
)

// TaxResult is the outcome of a tax calculation
type TaxResult struct {
	Channel   string          `json:"channel"`
	Rate      decimal.Decimal `json:"rate"`
	Base      decimal.Decimal `json:"base"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
	Inclusive bool            `json:"tax_inclusive"`
	Verified  bool            `json:"calculation_verified"`
	Method    string          `json:"calculation_method"`
}

// Tax computes tax for a subtotal on a channel at the given rate.
// Business and web subtotals are tax-exclusive; retail subtotals already
// include tax and are decomposed.
func Tax(subtotal decimal.Decimal, channel catalog.Channel, rate decimal.Decimal) (TaxResult, error) {
	if subtotal.IsNegative() {
		return TaxResult{}, errors.ParameterOutOfRange("subtotal", subtotal.String(), "must be non-negative")
	}
	if !channel.Valid() {
		return TaxResult{}, errors.ParameterOutOfRange("channel", string(channel), "must be one of business, retail, web")
	}

	result := TaxResult{
		Channel:  string(channel),
		Rate:     rate,
		Verified: true,
		Method:   MethodDeterministicDecimal,
	}

	if channel == catalog.ChannelRetail {
		// Tax-inclusive: decompose into base + tax
		base := money.Round(subtotal.Div(decimal.NewFromInt(1).Add(rate)))
		result.Inclusive = true
		result.Base = base
		result.TaxAmount = money.Round(subtotal.Sub(base))
		result.Total = money.Round(subtotal)
		return result, nil
	}

	// Tax-exclusive: add tax on top
	tax := money.Round(subtotal.Mul(rate))
	result.Base = money.Round(subtotal)
	result.TaxAmount = tax
	result.Total = money.Round(subtotal.Add(tax))
	return result, nil
}
