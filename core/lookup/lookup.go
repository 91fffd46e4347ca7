// Package lookup - Deterministic product queries
// Every query is an exact match over the current catalog snapshot. There is
// no fuzzy matching, no nearest-thickness substitution, no unit conversion.
package lookup

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"panelquote/core/catalog"
	"panelquote/internal/errors"
)

// Service answers product queries against a catalog store
type Service struct {
	store *catalog.Store
}

// NewService creates a lookup service over a catalog store
func NewService(store *catalog.Store) *Service {
	return &Service{store: store}
}

// ProductSpecs returns the catalog entry for a SKU
func (s *Service) ProductSpecs(sku string) (catalog.Entry, error) {
	e, ok := s.store.Current().BySKU(sku)
	if !ok {
		return catalog.Entry{}, errors.ProductNotFound(sku)
	}
	return e, nil
}

// PanelByFamilyThickness resolves a panel entry by its exact family and
// thickness key. The returned error names the attempted key.
func (s *Service) PanelByFamilyThickness(family string, thicknessMM int, insulationType string) (catalog.Entry, error) {
	e, ok := s.store.Current().ByFamilyThickness(family, thicknessMM, insulationType)
	if !ok {
		key := fmt.Sprintf("family=%s thickness=%dmm", family, thicknessMM)
		if insulationType != "" {
			key += " insulation=" + insulationType
		}
		return catalog.Entry{}, errors.ProductNotFound(key).
			WithContext("family", family).
			WithContext("thickness_mm", thicknessMM).
			WithContext("insulation", insulationType)
	}
	return e, nil
}

// Filter describes an exact-match product search
type Filter struct {
	// Family restricts to one product family when non-empty
	Family string

	// Type restricts to one item type when non-empty
	Type catalog.ItemType

	// ThicknessMM restricts to one exact thickness when non-nil
	ThicknessMM *int

	// MinPrice and MaxPrice bound the channel price when non-nil
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal

	// InStockOnly excludes out-of-stock and unknown-stock entries
	InStockOnly bool

	// Channel selects the price used for filtering and ordering;
	// defaults to the business channel
	Channel catalog.Channel
}

// Search returns entries matching every filter exactly, ordered ascending
// by the channel price. Entries without a usable channel price sort last.
// Ties break by SKU so the order is deterministic.
func (s *Service) Search(f Filter) []catalog.Entry {
	ch := f.Channel
	if ch == "" {
		ch = catalog.ChannelBusiness
	}

	var out []catalog.Entry
	for _, e := range s.store.Current().Entries() {
		if f.Family != "" && e.Family != f.Family {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.ThicknessMM != nil && (e.ThicknessMM == nil || *e.ThicknessMM != *f.ThicknessMM) {
			continue
		}
		if f.InStockOnly && e.StockStatus != catalog.StockAvailable && e.StockStatus != catalog.StockLow {
			continue
		}

		price, priced := e.Price(ch)
		if f.MinPrice != nil && (!priced || price.LessThan(*f.MinPrice)) {
			continue
		}
		if f.MaxPrice != nil && (!priced || price.GreaterThan(*f.MaxPrice)) {
			continue
		}
		out = append(out, e)
	}

	sort.SliceStable(out, func(i, j int) bool {
		pi, iok := out[i].Price(ch)
		pj, jok := out[j].Price(ch)
		switch {
		case iok && jok && !pi.Equal(pj):
			return pi.LessThan(pj)
		case iok != jok:
			return iok // priced entries first
		default:
			return out[i].SKU < out[j].SKU
		}
	})
	return out
}

// AvailableThicknesses returns the sorted distinct thicknesses offered for
// a panel family, optionally restricted to an insulation type
func (s *Service) AvailableThicknesses(family string, insulationType string) []int {
	return s.store.Current().FamilyThicknesses(family, insulationType)
}

// Price returns the unit price for a SKU on a channel. The channel is an
// exact string match, never inferred; a missing or non-positive price field
// is a PriceUnavailable error.
func (s *Service) Price(sku string, ch catalog.Channel) (decimal.Decimal, error) {
	if !ch.Valid() {
		return decimal.Decimal{}, errors.ParameterOutOfRange("channel", string(ch), "must be one of business, retail, web")
	}
	e, ok := s.store.Current().BySKU(sku)
	if !ok {
		return decimal.Decimal{}, errors.ProductNotFound(sku)
	}
	price, ok := e.Price(ch)
	if !ok {
		return decimal.Decimal{}, errors.PriceUnavailable(sku, string(ch))
	}
	return price, nil
}
