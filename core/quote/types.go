// Package quote - Quotation calculator
// The calculator is the only code allowed to produce quotation numbers.
// Every result carries verified=true and the computation-method identifier;
// the conversational layer upstream never does arithmetic.
package quote

import (
	"github.com/shopspring/decimal"

	"panelquote/core/catalog"
)

// StructureType identifies what panels are fastened to
type StructureType string

const (
	StructureMetal    StructureType = "metal"
	StructureConcrete StructureType = "concrete"
)

// Valid reports whether the structure type is known
func (s StructureType) Valid() bool {
	return s == StructureMetal || s == StructureConcrete
}

// LineItem is one priced row of a quotation
type LineItem struct {
	ItemType          catalog.ItemType `json:"item_type"`
	SKU               string           `json:"sku"`
	Description       string           `json:"description"`
	Quantity          decimal.Decimal  `json:"quantity"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
	UsedFallbackPrice bool             `json:"used_fallback_price,omitempty"`
	Notes             []string         `json:"notes,omitempty"`
}

// PanelQuoteResult is the flat result of a panel-only quotation
type PanelQuoteResult struct {
	SKU             string          `json:"sku"`
	ProductName     string          `json:"product_name"`
	Family          string          `json:"family"`
	ThicknessMM     int             `json:"thickness_mm"`
	LengthM         decimal.Decimal `json:"length_m"`
	WidthM          decimal.Decimal `json:"width_m"`
	AreaM2          decimal.Decimal `json:"area_m2"`
	Quantity        int             `json:"quantity"`
	TotalAreaM2     decimal.Decimal `json:"total_area_m2"`
	PricePerM2      decimal.Decimal `json:"price_per_m2"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
	Channel         string          `json:"channel"`
	Notes           []string        `json:"notes,omitempty"`
	Verified        bool            `json:"calculation_verified"`
	Method          string          `json:"calculation_method"`
}

// FixationResult holds the fastener quantities for a panel installation.
// Every quantity derives from a ceiling division: rounding down a fastener
// count under-provisions the roof, which must never happen.
type FixationResult struct {
	PanelCount    int             `json:"panel_count"`
	PanelLengthM  decimal.Decimal `json:"panel_length_m"`
	MaxSpanM      decimal.Decimal `json:"max_unsupported_span_m"`
	StructureType string          `json:"structure_type"`
	Supports      int             `json:"supports"`
	Points        int             `json:"fixation_points"`
	Rods          int             `json:"rods"`
	Nuts          int             `json:"nuts"`
	Anchors       int             `json:"anchors"`
	Verified      bool            `json:"calculation_verified"`
	Method        string          `json:"calculation_method"`
}

// ProfilesResult holds the trim and accessory quantities and prices for a
// panel installation
type ProfilesResult struct {
	PanelCount   int             `json:"panel_count"`
	PanelLengthM decimal.Decimal `json:"panel_length_m"`
	PanelWidthM  decimal.Decimal `json:"panel_width_m"`
	ThicknessMM  int             `json:"thickness_mm"`
	IncludeRidge bool            `json:"include_ridge"`
	FrontalCount int             `json:"frontal_count"`
	LateralCount int             `json:"lateral_count"`
	RidgeCount   int             `json:"ridge_count"`
	ProfileCount int             `json:"profile_count"`
	LinearMeters decimal.Decimal `json:"linear_meters"`
	RivetCount   int             `json:"rivet_count"`
	SealantTubes int             `json:"sealant_tubes"`
	Items        []LineItem      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Warnings     []string        `json:"warnings,omitempty"`
	Verified     bool            `json:"calculation_verified"`
	Method       string          `json:"calculation_method"`
}

// Result is a complete quotation: grouped line items, totals and the
// mandatory verified flag. Verified is set only by propagation from the
// sub-results that built it.
type Result struct {
	Family         string          `json:"family"`
	ThicknessMM    int             `json:"thickness_mm"`
	Channel        string          `json:"channel"`
	PanelLengthM   decimal.Decimal `json:"panel_length_m"`
	PanelWidthM    decimal.Decimal `json:"panel_width_m"`
	PanelAreaM2    decimal.Decimal `json:"panel_area_m2"`
	PanelCount     int             `json:"panel_count"`
	TotalAreaM2    decimal.Decimal `json:"total_area_m2"`
	Panels         []LineItem      `json:"panels"`
	Fasteners      []LineItem      `json:"fasteners"`
	Trim           []LineItem      `json:"trim"`
	PanelsSubtotal decimal.Decimal `json:"panels_subtotal"`
	FastSubtotal   decimal.Decimal `json:"fasteners_subtotal"`
	TrimSubtotal   decimal.Decimal `json:"trim_subtotal"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	IncludedTax    decimal.Decimal `json:"included_tax,omitempty"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Notes          []string        `json:"notes,omitempty"`
	Warnings       []string        `json:"warnings,omitempty"`
	Verified       bool            `json:"calculation_verified"`
	Method         string          `json:"calculation_method"`
}
