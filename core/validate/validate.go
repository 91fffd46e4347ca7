// Package validate - Independent result validation
// The validator re-derives cheap invariants over results the calculator
// produced. It never repairs anything and it never fails a call: every
// input yields a report, and the caller decides what to do with it.
package validate

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"panelquote/core/catalog"
	"panelquote/core/money"
	"panelquote/core/quote"
	"panelquote/core/rules"
)

// Report is the outcome of a validation pass. Errors fail the result,
// warnings do not.
type Report struct {
	Valid     bool      `json:"valid"`
	Errors    []string  `json:"errors,omitempty"`
	Warnings  []string  `json:"warnings,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (r *Report) fail(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *Report) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func newReport() Report {
	return Report{Valid: true, Timestamp: time.Now().UTC()}
}

// Quotation checks a complete quotation result. An unverified result is
// the most severe finding: it means the numbers may not have come from
// the calculator at all.
func Quotation(result *quote.Result) Report {
	report := newReport()
	if result == nil {
		report.fail("no result to validate")
		return report
	}

	if !result.Verified {
		report.fail("result is not verified: numbers may not come from the deterministic calculator")
	}
	if result.Method != rules.MethodDeterministicDecimal {
		report.fail("unexpected calculation method %q", result.Method)
	}

	for _, field := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"panels_subtotal", result.PanelsSubtotal},
		{"fasteners_subtotal", result.FastSubtotal},
		{"trim_subtotal", result.TrimSubtotal},
		{"subtotal", result.Subtotal},
		{"discount_amount", result.DiscountAmount},
		{"tax_amount", result.TaxAmount},
		{"grand_total", result.GrandTotal},
	} {
		if field.value.IsNegative() {
			report.fail("monetary field %s is negative: %s", field.name, field.value)
		}
	}

	if result.PanelLengthM.IsPositive() && result.PanelWidthM.IsPositive() {
		expected := result.PanelLengthM.Mul(result.PanelWidthM)
		if !money.WithinTolerance(result.PanelAreaM2, expected) {
			report.fail("panel area %s does not match length x width = %s", result.PanelAreaM2, expected)
		}
	}

	groups := []struct {
		name     string
		items    []quote.LineItem
		declared decimal.Decimal
	}{
		{"panels", result.Panels, result.PanelsSubtotal},
		{"fasteners", result.Fasteners, result.FastSubtotal},
		{"trim", result.Trim, result.TrimSubtotal},
	}
	for _, g := range groups {
		sum := decimal.Zero
		for _, it := range g.items {
			validateLineItem(&report, g.name, it)
			sum = sum.Add(it.Subtotal)
		}
		if !money.WithinTolerance(money.Round(sum), g.declared) {
			report.fail("%s subtotal %s does not match its line items (sum %s)", g.name, g.declared, money.Round(sum))
		}
	}

	declared := result.PanelsSubtotal.Add(result.FastSubtotal).Add(result.TrimSubtotal)
	if !money.WithinTolerance(result.Subtotal, declared) {
		report.fail("subtotal %s does not match the sum of group subtotals %s", result.Subtotal, declared)
	}

	expectedGrand := result.Subtotal.Sub(result.DiscountAmount).Add(result.TaxAmount)
	if !money.WithinTolerance(result.GrandTotal, expectedGrand) {
		report.fail("grand total %s deviates from subtotal - discount + tax = %s", result.GrandTotal, expectedGrand)
	}

	if len(result.Warnings) > 0 {
		report.warn("result carries %d data-quality warning(s)", len(result.Warnings))
	}

	return report
}

func validateLineItem(report *Report, group string, it quote.LineItem) {
	if it.Quantity.IsNegative() {
		report.fail("%s item %s has negative quantity %s", group, it.SKU, it.Quantity)
	}
	if !it.Quantity.IsInteger() {
		report.fail("%s item %s has non-integer quantity %s", group, it.SKU, it.Quantity)
	}
	if it.UnitPrice.IsNegative() {
		report.fail("%s item %s has negative unit price %s", group, it.SKU, it.UnitPrice)
	}
	expected := money.Mul(it.Quantity, it.UnitPrice)
	if !money.WithinTolerance(it.Subtotal, expected) {
		report.fail("%s item %s subtotal %s does not match quantity x unit price = %s",
			group, it.SKU, it.Subtotal, expected)
	}
	if it.UsedFallbackPrice {
		report.warn("%s item %s is priced from a documented fallback, not the catalog", group, it.SKU)
	}
}

// ToolResult checks a raw tool-call payload: every expected field must be
// present, no embedded error may ride along, and the verified flag must be
// present and true.
func ToolResult(raw map[string]interface{}, expectedFields []string) Report {
	report := newReport()
	if raw == nil {
		report.fail("tool returned no result")
		return report
	}

	if errVal, ok := raw["error"]; ok && errVal != nil {
		report.fail("tool result embeds an error: %v", errVal)
	}

	for _, field := range expectedFields {
		if _, ok := raw[field]; !ok {
			report.fail("required field %q is missing", field)
		}
	}

	verified, ok := raw["calculation_verified"]
	if !ok {
		report.fail("calculation_verified flag is missing")
	} else if v, isBool := verified.(bool); !isBool || !v {
		report.fail("calculation_verified is not true: %v", verified)
	}

	return report
}

// CatalogIntegrity is a maintenance-time check over a loaded snapshot.
// Fatal problems (a panel without a usable price on any channel, blank
// names) become errors; advisory gaps become warnings. Structural
// problems like duplicate SKUs are rejected earlier, at snapshot
// construction.
func CatalogIntegrity(snap *catalog.Snapshot) Report {
	report := newReport()
	if snap == nil {
		report.fail("no catalog snapshot to validate")
		return report
	}

	for _, entry := range snap.Entries() {
		if entry.Name == "" {
			report.fail("entry %s has no display name", entry.SKU)
		}
		if !entry.Type.Valid() {
			report.fail("entry %s has unknown item type %q", entry.SKU, entry.Type)
		}

		priced := 0
		for channel, price := range entry.Prices {
			if !channel.Valid() {
				report.fail("entry %s prices unknown channel %q", entry.SKU, channel)
			}
			if price.IsNegative() {
				report.fail("entry %s has negative %s price %s", entry.SKU, channel, price)
			}
			if price.IsPositive() {
				priced++
			}
		}
		if priced == 0 {
			report.fail("entry %s has no usable price on any channel", entry.SKU)
		}

		if entry.Type == catalog.ItemPanel {
			if entry.ThicknessMM == nil {
				report.fail("panel %s has no thickness", entry.SKU)
			}
			if entry.UsefulWidthM.LessThanOrEqual(decimal.Zero) {
				report.fail("panel %s has no useful width", entry.SKU)
			}
			if entry.Family == "" {
				report.warn("panel %s has no family; family lookups will never find it", entry.SKU)
			}
		}

		if entry.StockStatus == catalog.StockUnknown || entry.StockStatus == "" {
			report.warn("entry %s has unknown stock status", entry.SKU)
		}
	}

	return report
}
