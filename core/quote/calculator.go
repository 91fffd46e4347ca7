// Package quote - Panel quotation
package quote

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"panelquote/core/catalog"
	"panelquote/core/lookup"
	"panelquote/core/money"
	"panelquote/core/rules"
	"panelquote/internal/errors"
	"panelquote/internal/logging"
)

// Calculator composes product lookup, the rules engine and the geometric
// formulas into complete priced results. It holds no mutable state: every
// call reads one consistent catalog snapshot and pure configuration.
type Calculator struct {
	lookup *lookup.Service
	rules  *rules.Engine
}

// NewCalculator creates a calculator over a lookup service and rules engine
func NewCalculator(lk *lookup.Service, en *rules.Engine) *Calculator {
	return &Calculator{lookup: lk, rules: en}
}

// Rules exposes the configured rules engine
func (c *Calculator) Rules() *rules.Engine {
	return c.rules
}

// PanelQuoteParams are the inputs to a panel-only quotation
type PanelQuoteParams struct {
	Family          string
	ThicknessMM     int
	LengthM         decimal.Decimal
	WidthM          decimal.Decimal // zero means "use catalog useful width"
	Quantity        int
	DiscountPercent decimal.Decimal
	Channel         catalog.Channel
	InsulationType  string
}

// validate rejects out-of-range parameters before any lookup or
// arithmetic. Each error names the offending field.
func (p PanelQuoteParams) validate(b rules.Bounds, maxDiscount decimal.Decimal) error {
	if p.ThicknessMM <= 0 {
		return errors.ParameterOutOfRange("thickness", p.ThicknessMM, "must be positive")
	}
	if p.LengthM.LessThan(b.MinLengthM) || p.LengthM.GreaterThan(b.MaxLengthM) {
		return errors.ParameterOutOfRange("length", p.LengthM.String(),
			fmt.Sprintf("must be between %s and %s meters", b.MinLengthM, b.MaxLengthM))
	}
	if !p.WidthM.IsZero() && (p.WidthM.LessThan(b.MinWidthM) || p.WidthM.GreaterThan(b.MaxWidthM)) {
		return errors.ParameterOutOfRange("width", p.WidthM.String(),
			fmt.Sprintf("must be between %s and %s meters", b.MinWidthM, b.MaxWidthM))
	}
	if p.Quantity < 1 {
		return errors.ParameterOutOfRange("quantity", p.Quantity, "must be at least 1")
	}
	if b.MaxQuantity > 0 && p.Quantity > b.MaxQuantity {
		return errors.ParameterOutOfRange("quantity", p.Quantity,
			fmt.Sprintf("must not exceed %d", b.MaxQuantity))
	}
	if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(maxDiscount) {
		return errors.ParameterOutOfRange("discount", p.DiscountPercent.String(),
			fmt.Sprintf("must be between 0 and %s percent", maxDiscount))
	}
	if !p.Channel.Valid() {
		return errors.ParameterOutOfRange("channel", string(p.Channel), "must be one of business, retail, web")
	}
	return nil
}

// PanelQuote prices a panel order. Parameter validation happens before any
// catalog access; a catalog miss carries the attempted key; no price is
// ever estimated.
func (c *Calculator) PanelQuote(p PanelQuoteParams) (PanelQuoteResult, error) {
	if err := p.validate(c.rules.Bounds(), c.rules.MaxDiscountPercent()); err != nil {
		return PanelQuoteResult{}, err
	}

	entry, err := c.lookup.PanelByFamilyThickness(p.Family, p.ThicknessMM, p.InsulationType)
	if err != nil {
		return PanelQuoteResult{}, err
	}

	pricePerM2, ok := entry.Price(p.Channel)
	if !ok {
		return PanelQuoteResult{}, errors.PriceUnavailable(entry.SKU, string(p.Channel))
	}

	// Panels can only enter a snapshot with a positive useful width, so
	// the default is always usable
	width := p.WidthM
	if width.IsZero() {
		width = entry.UsefulWidthM
	}

	area := p.LengthM.Mul(width)
	unitPrice := money.Mul(area, pricePerM2)
	quantity := decimal.NewFromInt(int64(p.Quantity))
	subtotal := money.Mul(unitPrice, quantity)
	discountAmount := money.Percent(subtotal, p.DiscountPercent)
	total := money.Round(subtotal.Sub(discountAmount))

	result := PanelQuoteResult{
		SKU:             entry.SKU,
		ProductName:     entry.Name,
		Family:          entry.Family,
		ThicknessMM:     p.ThicknessMM,
		LengthM:         p.LengthM,
		WidthM:          width,
		AreaM2:          area,
		Quantity:        p.Quantity,
		TotalAreaM2:     area.Mul(quantity),
		PricePerM2:      pricePerM2,
		UnitPrice:       unitPrice,
		Subtotal:        subtotal,
		DiscountPercent: p.DiscountPercent,
		DiscountAmount:  discountAmount,
		Total:           total,
		Channel:         string(p.Channel),
		Verified:        true,
		Method:          rules.MethodDeterministicDecimal,
	}

	// Advisory notes never fail the quote
	minimum := c.rules.MinimumOrder(string(catalog.ItemPanel))
	if minimum.Known && total.LessThan(minimum.Threshold) {
		result.Notes = append(result.Notes, fmt.Sprintf(
			"order total %s is below the advisory minimum of %s for panels", total, minimum.Threshold))
	}
	if entry.ProductionMode == catalog.ProductionOnDemand {
		result.Notes = append(result.Notes, fmt.Sprintf(
			"%s is produced on demand; lead time applies", entry.SKU))
	}

	return result, nil
}

// priceOrFallback resolves a channel price for an accessory SKU, falling
// back to the documented fallback price when the SKU is absent. Fallback
// use is never silent: it is logged as a data-quality problem and flagged
// on the line item.
func (c *Calculator) priceOrFallback(sku string, fallback decimal.Decimal, ch catalog.Channel, warnings *[]string) (decimal.Decimal, bool) {
	price, err := c.lookup.Price(sku, ch)
	if err == nil {
		return price, false
	}

	logging.Warn("catalog price missing, documented fallback applied",
		zap.String("sku", sku),
		zap.String("channel", string(ch)),
		zap.String("fallback_price", fallback.String()))
	*warnings = append(*warnings, fmt.Sprintf(
		"catalog has no %s price for %s; documented fallback %s applied", ch, sku, fallback))
	return fallback, true
}
