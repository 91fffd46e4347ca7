// Package agent - Tool registry
package agent

import (
	"bytes"
	"context"
	"encoding/json"

	"panelquote/core/catalog"
	"panelquote/core/lookup"
	"panelquote/core/quote"
	"panelquote/core/rules"
	"panelquote/internal/errors"
)

// Tool is one operation exposed to the conversational layer. Parameters
// are flat scalars; the result record always carries the mandatory
// calculation_verified and calculation_method fields.
type Tool struct {
	Name        string
	Description string

	// Expects lists result fields the dispatcher verifies are present
	Expects []string

	Handler func(context.Context, Params) (map[string]interface{}, error)
}

// toRecord flattens a result struct into a JSON-shaped record, keeping
// numbers as json.Number so no decimal digit is lost
func toRecord(v interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Internal("encoding tool result", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	record := make(map[string]interface{})
	if err := dec.Decode(&record); err != nil {
		return nil, errors.Internal("decoding tool result", err)
	}
	return record, nil
}

// verifiedRecord marks a record as produced by deterministic code. Only
// the registry uses it, and only for operations that are pure catalog
// reads wrapped here; calculator results arrive with the flags already
// set and are never re-asserted.
func verifiedRecord(record map[string]interface{}) map[string]interface{} {
	record["calculation_verified"] = true
	record["calculation_method"] = rules.MethodDeterministicDecimal
	return record
}

func entryRecord(e catalog.Entry) map[string]interface{} {
	record := map[string]interface{}{
		"sku":             e.SKU,
		"name":            e.Name,
		"family":          e.Family,
		"type":            string(e.Type),
		"stock_status":    string(e.StockStatus),
		"production_mode": string(e.ProductionMode),
	}
	if e.ThicknessMM != nil {
		record["thickness_mm"] = *e.ThicknessMM
	}
	if e.UsefulWidthM.IsPositive() {
		record["useful_width_m"] = e.UsefulWidthM.String()
	}
	for channel, price := range e.Prices {
		record["price_"+string(channel)] = price.String()
	}
	return verifiedRecord(record)
}

// registerTools builds the full registry over the core services
func (d *Dispatcher) registerTools() {
	add := func(t Tool) { d.tools[t.Name] = t }

	add(Tool{
		Name:        "lookup_product_specs",
		Description: "Exact catalog lookup of one SKU",
		Expects:     []string{"sku", "name"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			entry, err := d.lookup.ProductSpecs(p.str("sku"))
			if err != nil {
				return nil, err
			}
			return entryRecord(entry), nil
		},
	})

	add(Tool{
		Name:        "search_products",
		Description: "Exact-filter product search ordered by ascending price",
		Expects:     []string{"count", "skus"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			f := lookup.Filter{
				Family:      p.str("family"),
				Type:        catalog.ItemType(p.str("type")),
				InStockOnly: p.boolean("in_stock_only"),
				Channel:     catalog.Channel(p.str("channel")),
			}
			if thickness, err := p.integer("thickness_mm"); err != nil {
				return nil, err
			} else if thickness > 0 {
				f.ThicknessMM = &thickness
			}
			if min, err := p.number("min_price"); err != nil {
				return nil, err
			} else if min.IsPositive() {
				f.MinPrice = &min
			}
			if max, err := p.number("max_price"); err != nil {
				return nil, err
			} else if max.IsPositive() {
				f.MaxPrice = &max
			}

			entries := d.lookup.Search(f)
			skus := make([]string, len(entries))
			for i, e := range entries {
				skus[i] = e.SKU
			}
			return verifiedRecord(map[string]interface{}{
				"count": len(entries),
				"skus":  skus,
			}), nil
		},
	})

	add(Tool{
		Name:        "get_available_thicknesses",
		Description: "Sorted distinct thicknesses offered by a panel family",
		Expects:     []string{"family", "thicknesses_mm"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			family := p.str("family")
			return verifiedRecord(map[string]interface{}{
				"family":         family,
				"thicknesses_mm": d.lookup.AvailableThicknesses(family, p.str("insulation_type")),
			}), nil
		},
	})

	add(Tool{
		Name:        "get_price",
		Description: "Exact per-channel catalog price for a SKU",
		Expects:     []string{"sku", "channel", "price"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			sku, channel := p.str("sku"), catalog.Channel(p.str("channel"))
			price, err := d.lookup.Price(sku, channel)
			if err != nil {
				return nil, err
			}
			return verifiedRecord(map[string]interface{}{
				"sku":     sku,
				"channel": string(channel),
				"price":   price.String(),
			}), nil
		},
	})

	add(Tool{
		Name:        "calculate_panel_quote",
		Description: "Priced panel-only quotation",
		Expects:     []string{"subtotal", "total"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			params, err := panelQuoteParams(p)
			if err != nil {
				return nil, err
			}
			result, err := d.calc.PanelQuote(params)
			if err != nil {
				return nil, err
			}
			return toRecord(result)
		},
	})

	add(Tool{
		Name:        "calculate_fixation_points",
		Description: "Fastener quantities for a panel installation",
		Expects:     []string{"supports", "fixation_points", "rods"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			count, err := p.integer("panel_count")
			if err != nil {
				return nil, err
			}
			length, err := p.number("panel_length_m")
			if err != nil {
				return nil, err
			}
			span, err := p.number("max_span_m")
			if err != nil {
				return nil, err
			}
			result, err := d.calc.FixationPoints(count, length, span, quote.StructureType(p.str("structure_type")))
			if err != nil {
				return nil, err
			}
			return toRecord(result)
		},
	})

	add(Tool{
		Name:        "calculate_profiles_quote",
		Description: "Trim, rivet and sealant quantities and prices",
		Expects:     []string{"profile_count", "subtotal"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			count, err := p.integer("panel_count")
			if err != nil {
				return nil, err
			}
			length, err := p.number("panel_length_m")
			if err != nil {
				return nil, err
			}
			width, err := p.number("panel_width_m")
			if err != nil {
				return nil, err
			}
			thickness, err := p.integer("thickness_mm")
			if err != nil {
				return nil, err
			}
			result, err := d.calc.ProfilesQuote(count, length, width, thickness,
				p.boolean("include_ridge"), catalog.Channel(p.str("channel")))
			if err != nil {
				return nil, err
			}
			return toRecord(result)
		},
	})

	add(Tool{
		Name:        "calculate_complete_quotation",
		Description: "Full quotation: panels, trim and fasteners with totals",
		Expects:     []string{"subtotal", "grand_total", "panel_count"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			params, err := completeQuotationParams(p)
			if err != nil {
				return nil, err
			}
			result, err := d.calc.CompleteQuotation(params)
			if err != nil {
				return nil, err
			}
			return toRecord(result)
		},
	})

	add(Tool{
		Name:        "apply_bulk_pricing",
		Description: "Tier-adjusted total for an area at a unit price",
		Expects:     []string{"tier_label", "total"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			area, err := p.number("total_area_m2")
			if err != nil {
				return nil, err
			}
			unitPrice, err := p.number("unit_price")
			if err != nil {
				return nil, err
			}
			result, err := d.calc.Rules().ApplyBulkPricing(area, unitPrice)
			if err != nil {
				return nil, err
			}
			return toRecord(result)
		},
	})

	add(Tool{
		Name:        "calculate_delivery_cost",
		Description: "Delivery cost by weight for a zone, floored at the zone minimum",
		Expects:     []string{"cost", "zone"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			area, err := p.number("total_area_m2")
			if err != nil {
				return nil, err
			}
			weight, err := p.number("weight_per_m2")
			if err != nil {
				return nil, err
			}
			result, err := d.calc.Rules().DeliveryCost(area, p.str("zone"), weight)
			if err != nil {
				return nil, err
			}
			return toRecord(result)
		},
	})

	add(Tool{
		Name:        "get_minimum_order_value",
		Description: "Advisory minimum order threshold for a product type",
		Expects:     []string{"product_type"},
		Handler: func(_ context.Context, p Params) (map[string]interface{}, error) {
			return toRecord(d.calc.Rules().MinimumOrder(p.str("product_type")))
		},
	})

	add(Tool{
		Name:        "check_inventory",
		Description: "Advisory availability of a SKU; never blocks a quote",
		Expects:     []string{"sku", "availability"},
		Handler: func(ctx context.Context, p Params) (map[string]interface{}, error) {
			qty, err := p.integer("required_quantity")
			if err != nil {
				return nil, err
			}
			result, err := d.inventory.CheckInventory(ctx, p.str("sku"), qty)
			if err != nil {
				// advisory: an unreachable inventory system degrades to
				// unknown instead of failing the tool call
				result = InventoryResult{
					SKU:          p.str("sku"),
					Availability: AvailabilityUnknown,
					StockStatus:  "unknown",
				}
			}
			record, rerr := toRecord(result)
			if rerr != nil {
				return nil, rerr
			}
			return verifiedRecord(record), nil
		},
	})
}

func panelQuoteParams(p Params) (quote.PanelQuoteParams, error) {
	thickness, err := p.integer("thickness_mm")
	if err != nil {
		return quote.PanelQuoteParams{}, err
	}
	quantity, err := p.integer("quantity")
	if err != nil {
		return quote.PanelQuoteParams{}, err
	}
	length, err := p.number("length_m")
	if err != nil {
		return quote.PanelQuoteParams{}, err
	}
	width, err := p.number("width_m")
	if err != nil {
		return quote.PanelQuoteParams{}, err
	}
	discount, err := p.number("discount_percent")
	if err != nil {
		return quote.PanelQuoteParams{}, err
	}
	return quote.PanelQuoteParams{
		Family:          p.str("family"),
		ThicknessMM:     thickness,
		LengthM:         length,
		WidthM:          width,
		Quantity:        quantity,
		DiscountPercent: discount,
		Channel:         catalog.Channel(p.str("channel")),
		InsulationType:  p.str("insulation_type"),
	}, nil
}

func completeQuotationParams(p Params) (quote.CompleteQuotationParams, error) {
	thickness, err := p.integer("thickness_mm")
	if err != nil {
		return quote.CompleteQuotationParams{}, err
	}
	length, err := p.number("panel_length_m")
	if err != nil {
		return quote.CompleteQuotationParams{}, err
	}
	area, err := p.number("total_area_m2")
	if err != nil {
		return quote.CompleteQuotationParams{}, err
	}
	discount, err := p.number("discount_percent")
	if err != nil {
		return quote.CompleteQuotationParams{}, err
	}
	span, err := p.number("max_span_m")
	if err != nil {
		return quote.CompleteQuotationParams{}, err
	}
	return quote.CompleteQuotationParams{
		Family:          p.str("family"),
		ThicknessMM:     thickness,
		PanelLengthM:    length,
		TotalAreaM2:     area,
		DiscountPercent: discount,
		Channel:         catalog.Channel(p.str("channel")),
		InsulationType:  p.str("insulation_type"),
		StructureType:   quote.StructureType(p.str("structure_type")),
		IncludeRidge:    p.boolean("include_ridge"),
		MaxSpanM:        span,
	}, nil
}
