// Package quote - Complete quotation
package quote

import (
	"fmt"

	"github.com/shopspring/decimal"

	"panelquote/core/catalog"
	"panelquote/core/money"
	"panelquote/core/rules"
	"panelquote/internal/errors"
)

// CompleteQuotationParams are the inputs to a full panel + trim + fastener
// quotation
type CompleteQuotationParams struct {
	Family          string
	ThicknessMM     int
	PanelLengthM    decimal.Decimal
	TotalAreaM2     decimal.Decimal
	DiscountPercent decimal.Decimal
	Channel         catalog.Channel
	InsulationType  string
	StructureType   StructureType
	IncludeRidge    bool
	MaxSpanM        decimal.Decimal // zero means "use configured span"
}

func (p CompleteQuotationParams) validate(b rules.Bounds, maxDiscount decimal.Decimal) error {
	if p.ThicknessMM <= 0 {
		return errors.ParameterOutOfRange("thickness", p.ThicknessMM, "must be positive")
	}
	if p.PanelLengthM.LessThan(b.MinLengthM) || p.PanelLengthM.GreaterThan(b.MaxLengthM) {
		return errors.ParameterOutOfRange("length", p.PanelLengthM.String(),
			fmt.Sprintf("must be between %s and %s meters", b.MinLengthM, b.MaxLengthM))
	}
	if p.TotalAreaM2.LessThanOrEqual(decimal.Zero) {
		return errors.ParameterOutOfRange("total_area", p.TotalAreaM2.String(), "must be positive")
	}
	if b.MaxAreaM2.IsPositive() && p.TotalAreaM2.GreaterThan(b.MaxAreaM2) {
		return errors.ParameterOutOfRange("total_area", p.TotalAreaM2.String(),
			fmt.Sprintf("must not exceed %s m2", b.MaxAreaM2))
	}
	if p.DiscountPercent.IsNegative() || p.DiscountPercent.GreaterThan(maxDiscount) {
		return errors.ParameterOutOfRange("discount", p.DiscountPercent.String(),
			fmt.Sprintf("must be between 0 and %s percent", maxDiscount))
	}
	if !p.Channel.Valid() {
		return errors.ParameterOutOfRange("channel", string(p.Channel), "must be one of business, retail, web")
	}
	if !p.StructureType.Valid() {
		return errors.ParameterOutOfRange("structure_type", string(p.StructureType), "must be metal or concrete")
	}
	return nil
}

// CompleteQuotation derives the panel count from the requested area,
// composes the panel, trim and fixation sub-results and sums the grand
// total. The verified flag propagates: it is true only when every
// sub-result reported true. It is never asserted independently here.
func (c *Calculator) CompleteQuotation(p CompleteQuotationParams) (*Result, error) {
	if err := p.validate(c.rules.Bounds(), c.rules.MaxDiscountPercent()); err != nil {
		return nil, err
	}

	entry, err := c.lookup.PanelByFamilyThickness(p.Family, p.ThicknessMM, p.InsulationType)
	if err != nil {
		return nil, err
	}

	// Panels needed to cover the requested area, always rounding up.
	// Snapshot construction guarantees the useful width is positive.
	panelArea := p.PanelLengthM.Mul(entry.UsefulWidthM)
	panelCount := int(money.CeilInt(p.TotalAreaM2.Div(panelArea)))

	bounds := c.rules.Bounds()
	if bounds.MaxQuantity > 0 && panelCount > bounds.MaxQuantity {
		return nil, errors.ParameterOutOfRange("total_area", p.TotalAreaM2.String(),
			fmt.Sprintf("requires %d panels, exceeding the %d panel limit", panelCount, bounds.MaxQuantity))
	}

	panels, err := c.PanelQuote(PanelQuoteParams{
		Family:          p.Family,
		ThicknessMM:     p.ThicknessMM,
		LengthM:         p.PanelLengthM,
		Quantity:        panelCount,
		DiscountPercent: p.DiscountPercent,
		Channel:         p.Channel,
		InsulationType:  p.InsulationType,
	})
	if err != nil {
		return nil, err
	}

	profiles, err := c.ProfilesQuote(panelCount, p.PanelLengthM, entry.UsefulWidthM, p.ThicknessMM, p.IncludeRidge, p.Channel)
	if err != nil {
		return nil, err
	}

	fixation, err := c.FixationPoints(panelCount, p.PanelLengthM, p.MaxSpanM, p.StructureType)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Family:       p.Family,
		ThicknessMM:  p.ThicknessMM,
		Channel:      string(p.Channel),
		PanelLengthM: p.PanelLengthM,
		PanelWidthM:  panels.WidthM,
		PanelAreaM2:  panels.AreaM2,
		PanelCount:   panelCount,
		TotalAreaM2:  panels.TotalAreaM2,
		Method:       rules.MethodDeterministicDecimal,
		Notes:        panels.Notes,
		Warnings:     profiles.Warnings,
	}

	result.Panels = []LineItem{{
		ItemType:    catalog.ItemPanel,
		SKU:         panels.SKU,
		Description: panels.ProductName,
		Quantity:    decimal.NewFromInt(int64(panelCount)),
		UnitPrice:   panels.UnitPrice,
		Subtotal:    panels.Subtotal,
	}}
	result.Fasteners = c.fastenerItems(fixation, p.Channel, &result.Warnings)
	for _, it := range profiles.Items {
		if it.ItemType == catalog.ItemProfile {
			result.Trim = append(result.Trim, it)
		} else {
			result.Fasteners = append(result.Fasteners, it)
		}
	}

	sum := func(items []LineItem) decimal.Decimal {
		total := decimal.Zero
		for _, it := range items {
			total = total.Add(it.Subtotal)
		}
		return money.Round(total)
	}
	result.PanelsSubtotal = sum(result.Panels)
	result.FastSubtotal = sum(result.Fasteners)
	result.TrimSubtotal = sum(result.Trim)
	result.Subtotal = money.Round(result.PanelsSubtotal.Add(result.FastSubtotal).Add(result.TrimSubtotal))

	// The negotiated discount applies to the panel line only
	result.DiscountAmount = panels.DiscountAmount
	taxable := money.Round(result.Subtotal.Sub(result.DiscountAmount))

	tax, err := c.rules.Tax(taxable, p.Channel)
	if err != nil {
		return nil, err
	}
	if tax.Inclusive {
		// Retail subtotals already include tax; report the embedded share
		result.TaxAmount = decimal.Zero
		result.IncludedTax = tax.TaxAmount
		result.GrandTotal = taxable
	} else {
		result.TaxAmount = tax.TaxAmount
		result.GrandTotal = money.Round(taxable.Add(tax.TaxAmount))
	}

	// Verified only by propagation from the sub-results
	result.Verified = panels.Verified && profiles.Verified && fixation.Verified && tax.Verified

	return result, nil
}
