// Package rules - Pricing-rules document
// The rules document is HCL: tier tables, delivery zones, tax rate,
// bounds, minimum orders and trim rules. Everything is validated here,
// once, so quote-time code never revalidates configuration.
package rules

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/shopspring/decimal"

	"panelquote/internal/errors"
)

// Document is the wire shape of the pricing-rules document
type Document struct {
	MaxDiscountPercent *float64           `hcl:"max_discount_percent,optional"`
	Tax                *TaxConfig         `hcl:"tax,block"`
	Bounds             *BoundsConfig      `hcl:"bounds,block"`
	Tiers              []TierConfig       `hcl:"tier,block"`
	Zones              []ZoneConfig       `hcl:"zone,block"`
	MinimumOrders      []MinimumConfig    `hcl:"minimum_order,block"`
	Fixation           *FixationConfig    `hcl:"fixation,block"`
	Trims              []TrimConfig       `hcl:"trim,block"`
	Accessories        *AccessoriesConfig `hcl:"accessories,block"`
}

// TaxConfig configures the tax rate
type TaxConfig struct {
	Rate float64 `hcl:"rate"`
}

// BoundsConfig configures request parameter limits
type BoundsConfig struct {
	MinLengthM  float64 `hcl:"min_length_m"`
	MaxLengthM  float64 `hcl:"max_length_m"`
	MinWidthM   float64 `hcl:"min_width_m"`
	MaxWidthM   float64 `hcl:"max_width_m"`
	MaxAreaM2   float64 `hcl:"max_area_m2"`
	MaxQuantity int     `hcl:"max_quantity"`
}

// TierConfig configures one pricing tier
type TierConfig struct {
	Label             string   `hcl:"label,label"`
	MinArea           float64  `hcl:"min_area"`
	MaxArea           *float64 `hcl:"max_area,optional"`
	AdjustmentPercent float64  `hcl:"adjustment_percent,optional"`
}

// ZoneConfig configures one delivery zone
type ZoneConfig struct {
	Name          string  `hcl:"name,label"`
	RatePerKg     float64 `hcl:"rate_per_kg,optional"`
	MinimumCharge float64 `hcl:"minimum_charge,optional"`
	External      bool    `hcl:"external,optional"`
}

// MinimumConfig configures one advisory minimum-order threshold
type MinimumConfig struct {
	ProductType string  `hcl:"product_type,label"`
	Value       float64 `hcl:"value"`
}

// FixationConfig configures fastening parameters
type FixationConfig struct {
	MaxUnsupportedSpanM float64 `hcl:"max_unsupported_span_m"`
}

// TrimConfig configures one trim kind
type TrimConfig struct {
	Kind          string  `hcl:"kind,label"`
	SKUPattern    string  `hcl:"sku_pattern"`
	FallbackPrice float64 `hcl:"fallback_price"`
}

// AccessoriesConfig configures fastening accessories
type AccessoriesConfig struct {
	RivetSKU             string  `hcl:"rivet_sku"`
	RivetFallbackPrice   float64 `hcl:"rivet_fallback_price"`
	SealantSKU           string  `hcl:"sealant_sku"`
	SealantFallbackPrice float64 `hcl:"sealant_fallback_price"`
	RodSKU               string  `hcl:"rod_sku"`
	RodFallbackPrice     float64 `hcl:"rod_fallback_price"`
	NutSKU               string  `hcl:"nut_sku"`
	NutFallbackPrice     float64 `hcl:"nut_fallback_price"`
	AnchorSKU            string  `hcl:"anchor_sku"`
	AnchorFallbackPrice  float64 `hcl:"anchor_fallback_price"`
}

// LoadDocument parses a pricing-rules document from disk
func LoadDocument(path string) (*Document, error) {
	var doc Document
	if err := hclsimple.DecodeFile(path, nil, &doc); err != nil {
		return nil, errors.Wrap(errors.TypeConfig, "parsing rules document", err)
	}
	return &doc, nil
}

// DefaultDocument returns the built-in rules used when no document is
// supplied. Values mirror the reseller's standing price list rules.
func DefaultDocument() *Document {
	maxDiscount := 30.0
	tier2Max := 20.0
	tier3Max := 200.0
	return &Document{
		MaxDiscountPercent: &maxDiscount,
		Tax:                &TaxConfig{Rate: 0.22},
		Bounds: &BoundsConfig{
			MinLengthM:  0.5,
			MaxLengthM:  14.0,
			MinWidthM:   0.5,
			MaxWidthM:   30.0,
			MaxAreaM2:   2000.0,
			MaxQuantity: 500,
		},
		Tiers: []TierConfig{
			{Label: "below_minimum", MinArea: 0, MaxArea: &tier2Max, AdjustmentPercent: -10},
			{Label: "standard", MinArea: 20, MaxArea: &tier3Max, AdjustmentPercent: 0},
			{Label: "bulk", MinArea: 200, AdjustmentPercent: 5},
		},
		Zones: []ZoneConfig{
			{Name: "metropolitan", RatePerKg: 0.18, MinimumCharge: 25},
			{Name: "interior", RatePerKg: 0.32, MinimumCharge: 40},
			{Name: "external", External: true},
		},
		MinimumOrders: []MinimumConfig{
			{ProductType: "panel", Value: 500},
			{ProductType: "profile", Value: 100},
			{ProductType: "fastener", Value: 50},
		},
		Fixation: &FixationConfig{MaxUnsupportedSpanM: 5.5},
		Trims: []TrimConfig{
			{Kind: "frontal", SKUPattern: "PERF-FRONT-%d", FallbackPrice: 15.50},
			{Kind: "lateral", SKUPattern: "PERF-LAT-%d", FallbackPrice: 14.20},
			{Kind: "ridge", SKUPattern: "PERF-CUMB-%d", FallbackPrice: 21.80},
		},
		Accessories: &AccessoriesConfig{
			RivetSKU:             "RIV-516",
			RivetFallbackPrice:   0.12,
			SealantSKU:           "SIL-300",
			SealantFallbackPrice: 8.90,
			RodSKU:               "VAR-38",
			RodFallbackPrice:     4.60,
			NutSKU:               "TUER-38",
			NutFallbackPrice:     0.25,
			AnchorSKU:            "ANC-38",
			AnchorFallbackPrice:  1.10,
		},
	}
}

// NewEngine validates a document and builds an engine. Tier contiguity and
// zone/trim completeness are checked here, never at quote time.
func NewEngine(doc *Document) (*Engine, error) {
	if doc == nil {
		doc = DefaultDocument()
	}

	e := &Engine{
		maxDiscountPercent: DefaultMaxDiscountPercent,
		taxRate:            decimal.NewFromFloat(0.22),
		zones:              make(map[string]DeliveryZone),
		minimums:           make(map[string]decimal.Decimal),
		trims:              make(map[string]TrimRule),
	}

	if doc.MaxDiscountPercent != nil {
		e.maxDiscountPercent = decimal.NewFromFloat(*doc.MaxDiscountPercent)
		if e.maxDiscountPercent.IsNegative() {
			return nil, errors.Integrity("max_discount_percent must be non-negative")
		}
	}

	if doc.Tax != nil {
		e.taxRate = decimal.NewFromFloat(doc.Tax.Rate)
		if e.taxRate.IsNegative() {
			return nil, errors.Integrity("tax rate must be non-negative")
		}
	}

	if doc.Bounds == nil {
		return nil, errors.Integrity("rules document missing bounds block")
	}
	e.bounds = Bounds{
		MinLengthM:  decimal.NewFromFloat(doc.Bounds.MinLengthM),
		MaxLengthM:  decimal.NewFromFloat(doc.Bounds.MaxLengthM),
		MinWidthM:   decimal.NewFromFloat(doc.Bounds.MinWidthM),
		MaxWidthM:   decimal.NewFromFloat(doc.Bounds.MaxWidthM),
		MaxAreaM2:   decimal.NewFromFloat(doc.Bounds.MaxAreaM2),
		MaxQuantity: doc.Bounds.MaxQuantity,
	}

	tiers := make([]Tier, 0, len(doc.Tiers))
	for _, tc := range doc.Tiers {
		t := Tier{
			Label:             tc.Label,
			MinArea:           decimal.NewFromFloat(tc.MinArea),
			AdjustmentPercent: decimal.NewFromFloat(tc.AdjustmentPercent),
		}
		if tc.MaxArea != nil {
			max := decimal.NewFromFloat(*tc.MaxArea)
			t.MaxArea = &max
		}
		tiers = append(tiers, t)
	}
	table, err := NewTierTable(tiers)
	if err != nil {
		return nil, err
	}
	e.tiers = table

	for _, zc := range doc.Zones {
		if _, dup := e.zones[zc.Name]; dup {
			return nil, errors.Integrity(fmt.Sprintf("duplicate delivery zone %q", zc.Name))
		}
		e.zones[zc.Name] = DeliveryZone{
			Name:          zc.Name,
			RatePerKg:     decimal.NewFromFloat(zc.RatePerKg),
			MinimumCharge: decimal.NewFromFloat(zc.MinimumCharge),
			External:      zc.External,
		}
	}

	for _, mc := range doc.MinimumOrders {
		e.minimums[mc.ProductType] = decimal.NewFromFloat(mc.Value)
	}

	e.fixation = Fixation{MaxUnsupportedSpanM: decimal.NewFromFloat(5.5)}
	if doc.Fixation != nil {
		span := decimal.NewFromFloat(doc.Fixation.MaxUnsupportedSpanM)
		if span.LessThanOrEqual(decimal.Zero) {
			return nil, errors.Integrity("max_unsupported_span_m must be positive")
		}
		e.fixation.MaxUnsupportedSpanM = span
	}

	for _, tc := range doc.Trims {
		if _, dup := e.trims[tc.Kind]; dup {
			return nil, errors.Integrity(fmt.Sprintf("duplicate trim kind %q", tc.Kind))
		}
		if tc.SKUPattern == "" {
			return nil, errors.Integrity(fmt.Sprintf("trim kind %q has no sku pattern", tc.Kind))
		}
		e.trims[tc.Kind] = TrimRule{
			Kind:          tc.Kind,
			SKUPattern:    tc.SKUPattern,
			FallbackPrice: decimal.NewFromFloat(tc.FallbackPrice),
		}
	}

	// Every trim kind the calculator prices must be configured. A gap here
	// may only surface mid-quotation, so the document is rejected now.
	for _, kind := range []string{"frontal", "lateral", "ridge"} {
		if _, ok := e.trims[kind]; !ok {
			return nil, errors.Integrity(fmt.Sprintf("rules document missing trim block for kind %q", kind))
		}
	}

	if doc.Accessories == nil {
		return nil, errors.Integrity("rules document missing accessories block")
	}
	for name, sku := range map[string]string{
		"rivet_sku":   doc.Accessories.RivetSKU,
		"sealant_sku": doc.Accessories.SealantSKU,
		"rod_sku":     doc.Accessories.RodSKU,
		"nut_sku":     doc.Accessories.NutSKU,
		"anchor_sku":  doc.Accessories.AnchorSKU,
	} {
		if sku == "" {
			return nil, errors.Integrity(fmt.Sprintf("rules document accessories block missing %s", name))
		}
	}
	e.accessories = Accessories{
		RivetSKU:             doc.Accessories.RivetSKU,
		RivetFallbackPrice:   decimal.NewFromFloat(doc.Accessories.RivetFallbackPrice),
		SealantSKU:           doc.Accessories.SealantSKU,
		SealantFallbackPrice: decimal.NewFromFloat(doc.Accessories.SealantFallbackPrice),
		RodSKU:               doc.Accessories.RodSKU,
		RodFallbackPrice:     decimal.NewFromFloat(doc.Accessories.RodFallbackPrice),
		NutSKU:               doc.Accessories.NutSKU,
		NutFallbackPrice:     decimal.NewFromFloat(doc.Accessories.NutFallbackPrice),
		AnchorSKU:            doc.Accessories.AnchorSKU,
		AnchorFallbackPrice:  decimal.NewFromFloat(doc.Accessories.AnchorFallbackPrice),
	}

	return e, nil
}
