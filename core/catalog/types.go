// Package catalog - Authoritative product catalog
// The catalog is loaded once per process into an immutable snapshot.
// Lookups are exact-match only: no fuzzy matching, no unit conversion.
package catalog

import (
	"github.com/shopspring/decimal"
)

// Channel selects which catalog price field applies
type Channel string

const (
	ChannelBusiness Channel = "business"
	ChannelRetail   Channel = "retail"
	ChannelWeb      Channel = "web"
)

// Valid reports whether the channel is a known pricing channel
func (c Channel) Valid() bool {
	switch c {
	case ChannelBusiness, ChannelRetail, ChannelWeb:
		return true
	}
	return false
}

// ItemType classifies a catalog entry
type ItemType string

const (
	ItemPanel     ItemType = "panel"
	ItemProfile   ItemType = "profile"
	ItemAccessory ItemType = "accessory"
	ItemFastener  ItemType = "fastener"
)

// Valid reports whether the item type is known
func (t ItemType) Valid() bool {
	switch t {
	case ItemPanel, ItemProfile, ItemAccessory, ItemFastener:
		return true
	}
	return false
}

// StockStatus describes current availability
type StockStatus string

const (
	StockAvailable StockStatus = "in_stock"
	StockLow       StockStatus = "low_stock"
	StockOut       StockStatus = "out_of_stock"
	StockUnknown   StockStatus = "unknown"
)

// ProductionMode describes how an item is produced
type ProductionMode string

const (
	ProductionStock    ProductionMode = "stock"
	ProductionOnDemand ProductionMode = "on_demand"
)

// Entry is a single immutable catalog entry
type Entry struct {
	// SKU is the unique product identifier
	SKU string

	// Name is the display name
	Name string

	// Family is the product family (e.g. "Isodec")
	Family string

	// Type classifies the entry
	Type ItemType

	// ThicknessMM is the panel/profile thickness in millimeters, nil when
	// the dimension does not apply
	ThicknessMM *int

	// InsulationType is the insulation core (e.g. "EPS", "PUR"), empty when
	// the dimension does not apply
	InsulationType string

	// UsefulWidthM is the effective coverage width in meters, zero when the
	// dimension does not apply
	UsefulWidthM decimal.Decimal

	// Prices holds the per-channel unit prices
	Prices map[Channel]decimal.Decimal

	// StockStatus is the advisory availability flag
	StockStatus StockStatus

	// ProductionMode distinguishes stocked items from on-demand production
	ProductionMode ProductionMode
}

// Price returns the price for a channel. The second return is false when
// the channel has no price field or the price is non-positive.
func (e Entry) Price(ch Channel) (decimal.Decimal, bool) {
	p, ok := e.Prices[ch]
	if !ok || p.LessThanOrEqual(decimal.Zero) {
		return decimal.Decimal{}, false
	}
	return p, true
}
