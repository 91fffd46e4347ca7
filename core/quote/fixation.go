// Package quote - Fixation point calculation
// Fastener quantities always round up. A fractional requirement rounded
// down leaves panels unfastened.
package quote

import (
	"github.com/shopspring/decimal"

	"panelquote/core/catalog"
	"panelquote/core/money"
	"panelquote/core/rules"
	"panelquote/internal/errors"
)

var (
	two          = decimal.NewFromInt(2)
	pointSpacing = decimal.RequireFromString("2.5")
	four         = decimal.NewFromInt(4)
)

// FixationPoints computes the fastening hardware for panelCount panels of
// panelLength meters on a structure. maxSpanM of zero uses the configured
// maximum unsupported span.
func (c *Calculator) FixationPoints(panelCount int, panelLengthM, maxSpanM decimal.Decimal, structure StructureType) (FixationResult, error) {
	if panelCount < 1 {
		return FixationResult{}, errors.ParameterOutOfRange("panel_count", panelCount, "must be at least 1")
	}
	if panelLengthM.LessThanOrEqual(decimal.Zero) {
		return FixationResult{}, errors.ParameterOutOfRange("panel_length", panelLengthM.String(), "must be positive")
	}
	if maxSpanM.IsZero() {
		maxSpanM = c.rules.Fixation().MaxUnsupportedSpanM
	}
	if maxSpanM.LessThanOrEqual(decimal.Zero) {
		return FixationResult{}, errors.ParameterOutOfRange("max_unsupported_span", maxSpanM.String(), "must be positive")
	}
	if !structure.Valid() {
		return FixationResult{}, errors.ParameterOutOfRange("structure_type", string(structure), "must be metal or concrete")
	}

	count := decimal.NewFromInt(int64(panelCount))

	// supports = ceil(length/span + 1)
	supports := money.CeilInt(panelLengthM.Div(maxSpanM).Add(decimal.NewFromInt(1)))

	// points = ceil(count*supports*2 + length*2/2.5)
	perimeterRun := panelLengthM.Mul(two).Div(pointSpacing)
	points := money.CeilInt(count.Mul(decimal.NewFromInt(supports)).Mul(two).Add(perimeterRun))

	// rods = ceil(points/4)
	rods := money.CeilInt(decimal.NewFromInt(points).Div(four))

	result := FixationResult{
		PanelCount:    panelCount,
		PanelLengthM:  panelLengthM,
		MaxSpanM:      maxSpanM,
		StructureType: string(structure),
		Supports:      int(supports),
		Points:        int(points),
		Rods:          int(rods),
		Verified:      true,
		Method:        rules.MethodDeterministicDecimal,
	}

	switch structure {
	case StructureMetal:
		result.Nuts = int(points) * 2
		result.Anchors = 0
	case StructureConcrete:
		result.Nuts = int(points)
		result.Anchors = int(points)
	}

	return result, nil
}

// fastenerItems prices the hardware of a fixation result using the
// configured accessory SKUs
func (c *Calculator) fastenerItems(fix FixationResult, ch catalog.Channel, warnings *[]string) []LineItem {
	acc := c.rules.Accessories()

	items := make([]LineItem, 0, 3)
	add := func(sku, description string, count int, fallback decimal.Decimal) {
		if count == 0 || sku == "" {
			return
		}
		price, usedFallback := c.priceOrFallback(sku, fallback, ch, warnings)
		qty := decimal.NewFromInt(int64(count))
		items = append(items, LineItem{
			ItemType:          catalog.ItemFastener,
			SKU:               sku,
			Description:       description,
			Quantity:          qty,
			UnitPrice:         price,
			Subtotal:          money.Mul(qty, price),
			UsedFallbackPrice: usedFallback,
		})
	}

	add(acc.RodSKU, "threaded rod", fix.Rods, acc.RodFallbackPrice)
	add(acc.NutSKU, "nut", fix.Nuts, acc.NutFallbackPrice)
	add(acc.AnchorSKU, "concrete anchor", fix.Anchors, acc.AnchorFallbackPrice)
	return items
}
