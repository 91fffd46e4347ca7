// Package rules - Configured rules engine
// The engine binds the pure rule functions to validated configuration.
// Everything that can fail validation fails at construction, not at quote
// time.
package rules

import (
	"github.com/shopspring/decimal"

	"panelquote/core/catalog"
	"panelquote/internal/errors"
)

// Bounds are the configured request parameter limits
type Bounds struct {
	MinLengthM  decimal.Decimal
	MaxLengthM  decimal.Decimal
	MinWidthM   decimal.Decimal
	MaxWidthM   decimal.Decimal
	MaxAreaM2   decimal.Decimal
	MaxQuantity int
}

// Fixation holds configured fastening parameters
type Fixation struct {
	// MaxUnsupportedSpanM is the longest panel run allowed between supports
	MaxUnsupportedSpanM decimal.Decimal
}

// TrimRule maps a trim kind to its catalog SKU pattern and the documented
// fallback price used (visibly) when the SKU is absent from the catalog
type TrimRule struct {
	Kind          string
	SKUPattern    string
	FallbackPrice decimal.Decimal
}

// Accessories holds the fastening-accessory SKUs and fallbacks
type Accessories struct {
	RivetSKU             string
	RivetFallbackPrice   decimal.Decimal
	SealantSKU           string
	SealantFallbackPrice decimal.Decimal
	RodSKU               string
	RodFallbackPrice     decimal.Decimal
	NutSKU               string
	NutFallbackPrice     decimal.Decimal
	AnchorSKU            string
	AnchorFallbackPrice  decimal.Decimal
}

// Engine evaluates pricing rules against validated configuration
type Engine struct {
	maxDiscountPercent decimal.Decimal
	taxRate            decimal.Decimal
	tiers              *TierTable
	zones              map[string]DeliveryZone
	minimums           map[string]decimal.Decimal
	bounds             Bounds
	fixation           Fixation
	trims              map[string]TrimRule
	accessories        Accessories
}

// MaxDiscountPercent returns the configured discount ceiling
func (e *Engine) MaxDiscountPercent() decimal.Decimal {
	return e.maxDiscountPercent
}

// TaxRate returns the configured tax rate
func (e *Engine) TaxRate() decimal.Decimal {
	return e.taxRate
}

// Bounds returns the configured request bounds
func (e *Engine) Bounds() Bounds {
	return e.bounds
}

// Fixation returns the configured fastening parameters
func (e *Engine) Fixation() Fixation {
	return e.fixation
}

// TrimRule returns the configured rule for a trim kind
func (e *Engine) TrimRule(kind string) (TrimRule, bool) {
	r, ok := e.trims[kind]
	return r, ok
}

// Accessories returns the configured fastening accessories
func (e *Engine) Accessories() Accessories {
	return e.accessories
}

// ApplyDiscount applies a discount bounded by the configured maximum
func (e *Engine) ApplyDiscount(subtotal, percent decimal.Decimal) (DiscountResult, error) {
	return ApplyDiscount(subtotal, percent, e.maxDiscountPercent)
}

// ApplyBulkPricing applies the configured tier table
func (e *Engine) ApplyBulkPricing(totalArea, unitPrice decimal.Decimal) (BulkPricingResult, error) {
	return ApplyBulkPricing(totalArea, unitPrice, e.tiers)
}

// DeliveryCost computes freight to a configured zone
func (e *Engine) DeliveryCost(totalArea decimal.Decimal, zoneName string, weightPerM2 decimal.Decimal) (DeliveryResult, error) {
	zone, ok := e.zones[zoneName]
	if !ok {
		return DeliveryResult{}, errors.ParameterOutOfRange("zone", zoneName, "unknown delivery zone")
	}
	return DeliveryCost(totalArea, zone, weightPerM2)
}

// Tax computes tax for a channel at the configured rate
func (e *Engine) Tax(subtotal decimal.Decimal, channel catalog.Channel) (TaxResult, error) {
	return Tax(subtotal, channel, e.taxRate)
}

// MinimumOrder returns the advisory minimum-order threshold for a type
func (e *Engine) MinimumOrder(productType string) MinimumOrderResult {
	return MinimumOrderValue(productType, e.minimums)
}
