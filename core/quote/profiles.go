// Package quote - Trim and accessory calculation
package quote

import (
	"fmt"

	"github.com/shopspring/decimal"

	"panelquote/core/catalog"
	"panelquote/core/money"
	"panelquote/core/rules"
	"panelquote/internal/errors"
)

var (
	// trimBarLengthM is the commercial length of a trim bar
	trimBarLengthM = decimal.NewFromInt(3)

	// rivetsPerProfile is the rivet allowance per trim bar
	rivetsPerProfile = decimal.NewFromInt(20)

	// sealantCoverageM is the linear coverage of one sealant tube
	sealantCoverageM = decimal.NewFromInt(8)
)

// ProfilesQuote computes trim bars, rivets and sealant for panelCount
// panels. Trim counts are ceiling divisions over 3-meter bars. Trim prices
// come from the catalog; a missing trim SKU triggers the documented
// fallback price with a visible data-quality warning, never a silent guess.
func (c *Calculator) ProfilesQuote(panelCount int, panelLengthM, panelWidthM decimal.Decimal, thicknessMM int, includeRidge bool, ch catalog.Channel) (ProfilesResult, error) {
	if panelCount < 1 {
		return ProfilesResult{}, errors.ParameterOutOfRange("panel_count", panelCount, "must be at least 1")
	}
	if panelLengthM.LessThanOrEqual(decimal.Zero) {
		return ProfilesResult{}, errors.ParameterOutOfRange("panel_length", panelLengthM.String(), "must be positive")
	}
	if panelWidthM.LessThanOrEqual(decimal.Zero) {
		return ProfilesResult{}, errors.ParameterOutOfRange("panel_width", panelWidthM.String(), "must be positive")
	}
	if thicknessMM <= 0 {
		return ProfilesResult{}, errors.ParameterOutOfRange("thickness", thicknessMM, "must be positive")
	}
	if !ch.Valid() {
		return ProfilesResult{}, errors.ParameterOutOfRange("channel", string(ch), "must be one of business, retail, web")
	}

	count := decimal.NewFromInt(int64(panelCount))

	// frontal trim covers the panel run: ceil(count*width/3)
	frontal := money.CeilInt(count.Mul(panelWidthM).Div(trimBarLengthM))

	// lateral trim covers both long edges: ceil(length*2/3)
	lateral := money.CeilInt(panelLengthM.Mul(two).Div(trimBarLengthM))

	var ridge int64
	if includeRidge {
		ridge = money.CeilInt(panelLengthM.Div(trimBarLengthM))
	}

	profileCount := frontal + lateral + ridge
	linearMeters := decimal.NewFromInt(profileCount).Mul(trimBarLengthM)
	rivets := money.CeilInt(decimal.NewFromInt(profileCount).Mul(rivetsPerProfile))
	sealant := money.CeilInt(linearMeters.Div(sealantCoverageM))

	result := ProfilesResult{
		PanelCount:   panelCount,
		PanelLengthM: panelLengthM,
		PanelWidthM:  panelWidthM,
		ThicknessMM:  thicknessMM,
		IncludeRidge: includeRidge,
		FrontalCount: int(frontal),
		LateralCount: int(lateral),
		RidgeCount:   int(ridge),
		ProfileCount: int(profileCount),
		LinearMeters: linearMeters,
		RivetCount:   int(rivets),
		SealantTubes: int(sealant),
		Verified:     true,
		Method:       rules.MethodDeterministicDecimal,
	}

	addTrim := func(kind string, bars int64) error {
		if bars == 0 {
			return nil
		}
		// NewEngine rejects documents missing any of these kinds
		rule, ok := c.rules.TrimRule(kind)
		if !ok {
			return errors.Internal(fmt.Sprintf("no trim rule configured for kind %q", kind), nil)
		}
		sku := fmt.Sprintf(rule.SKUPattern, thicknessMM)
		price, usedFallback := c.priceOrFallback(sku, rule.FallbackPrice, ch, &result.Warnings)
		qty := decimal.NewFromInt(bars)
		result.Items = append(result.Items, LineItem{
			ItemType:          catalog.ItemProfile,
			SKU:               sku,
			Description:       kind + " trim",
			Quantity:          qty,
			UnitPrice:         price,
			Subtotal:          money.Mul(qty, price),
			UsedFallbackPrice: usedFallback,
		})
		return nil
	}

	if err := addTrim("frontal", frontal); err != nil {
		return ProfilesResult{}, err
	}
	if err := addTrim("lateral", lateral); err != nil {
		return ProfilesResult{}, err
	}
	if includeRidge {
		if err := addTrim("ridge", ridge); err != nil {
			return ProfilesResult{}, err
		}
	}

	acc := c.rules.Accessories()
	addAccessory := func(sku, description string, count int64, fallback decimal.Decimal) {
		if count == 0 || sku == "" {
			return
		}
		price, usedFallback := c.priceOrFallback(sku, fallback, ch, &result.Warnings)
		qty := decimal.NewFromInt(count)
		result.Items = append(result.Items, LineItem{
			ItemType:          catalog.ItemAccessory,
			SKU:               sku,
			Description:       description,
			Quantity:          qty,
			UnitPrice:         price,
			Subtotal:          money.Mul(qty, price),
			UsedFallbackPrice: usedFallback,
		})
	}
	addAccessory(acc.RivetSKU, "rivet", rivets, acc.RivetFallbackPrice)
	addAccessory(acc.SealantSKU, "sealant tube", sealant, acc.SealantFallbackPrice)

	subtotal := decimal.Zero
	for _, it := range result.Items {
		subtotal = subtotal.Add(it.Subtotal)
	}
	result.Subtotal = money.Round(subtotal)

	return result, nil
}
