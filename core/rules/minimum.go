// Package rules - Minimum order thresholds
package rules

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinimumOrderResult carries an advisory minimum-order threshold.
// Thresholds inform the caller; they never reject a request.
type MinimumOrderResult struct {
	ProductType string          `json:"product_type"`
	Threshold   decimal.Decimal `json:"threshold"`
	Known       bool            `json:"known"`
	Notes       []string        `json:"notes,omitempty"`
	Verified    bool            `json:"calculation_verified"`
	Method      string          `json:"calculation_method"`
}

// MinimumOrderValue looks up the advisory threshold for a product type.
// An unknown product type yields a zero threshold with a note, not an error.
func MinimumOrderValue(productType string, thresholds map[string]decimal.Decimal) MinimumOrderResult {
	result := MinimumOrderResult{
		ProductType: productType,
		Verified:    true,
		Method:      MethodDeterministicDecimal,
	}

	threshold, ok := thresholds[productType]
	if !ok {
		result.Notes = append(result.Notes, fmt.Sprintf("no minimum order configured for product type %q", productType))
		return result
	}
	result.Threshold = threshold
	result.Known = true
	return result
}
