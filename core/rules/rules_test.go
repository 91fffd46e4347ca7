// Package rules - Rule function tests
// Tier-table tests intentionally feed malformed tables to prove validation
// happens at load time, not call time.
package rules

import (
	"testing"

	"github.com/shopspring/decimal"

	"panelquote/core/catalog"
	"panelquote/internal/errors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestApplyDiscountWithinBounds(t *testing.T) {
	cases := []struct {
		percent      string
		wantDiscount string
		wantTotal    string
	}{
		{"0", "0", "1000"},
		{"10", "100", "900"},
		{"30", "300", "700"},
		{"12.5", "125", "875"},
	}

	for _, tc := range cases {
		got, err := ApplyDiscount(dec("1000"), dec(tc.percent), dec("30"))
		if err != nil {
			t.Fatalf("percent %s: %v", tc.percent, err)
		}
		if !got.DiscountAmount.Equal(dec(tc.wantDiscount)) {
			t.Errorf("percent %s: discount %s, want %s", tc.percent, got.DiscountAmount, tc.wantDiscount)
		}
		if !got.Total.Equal(dec(tc.wantTotal)) {
			t.Errorf("percent %s: total %s, want %s", tc.percent, got.Total, tc.wantTotal)
		}
		if !got.Verified || got.Method != MethodDeterministicDecimal {
			t.Errorf("percent %s: result not verified", tc.percent)
		}
	}
}

func TestApplyDiscountClampsAboveMax(t *testing.T) {
	got, err := ApplyDiscount(dec("1000"), dec("45"), dec("30"))
	if err != nil {
		t.Fatalf("clamping must not error: %v", err)
	}
	if !got.EffectivePercent.Equal(dec("30")) {
		t.Errorf("effective percent %s, want 30", got.EffectivePercent)
	}
	if !got.DiscountAmount.Equal(dec("300")) {
		t.Errorf("discount %s, want 300", got.DiscountAmount)
	}
	if len(got.Notes) == 0 {
		t.Error("clamping must leave a note")
	}
}

func TestApplyDiscountRejectsNegativeSubtotal(t *testing.T) {
	_, err := ApplyDiscount(dec("-1"), dec("10"), dec("30"))
	if !errors.IsType(err, errors.TypeParameterOutOfRange) {
		t.Fatalf("expected PARAMETER_OUT_OF_RANGE, got %v", err)
	}
}

func TestTierTableRejectsGap(t *testing.T) {
	_, err := NewTierTable([]Tier{
		{Label: "a", MinArea: dec("0"), MaxArea: decPtr("20")},
		{Label: "b", MinArea: dec("25"), MaxArea: decPtr("100")},
	})
	if !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("expected INTEGRITY_ERROR for gap, got %v", err)
	}
}

func TestTierTableRejectsOverlap(t *testing.T) {
	_, err := NewTierTable([]Tier{
		{Label: "a", MinArea: dec("0"), MaxArea: decPtr("20")},
		{Label: "b", MinArea: dec("15"), MaxArea: decPtr("100")},
	})
	if err == nil {
		t.Fatal("expected error for overlapping tiers")
	}
}

func TestTierTableRejectsEmpty(t *testing.T) {
	_, err := NewTierTable(nil)
	if !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("expected INTEGRITY_ERROR for empty table, got %v", err)
	}
}

func TestTierTableRejectsOpenTierMidTable(t *testing.T) {
	_, err := NewTierTable([]Tier{
		{Label: "a", MinArea: dec("0")},
		{Label: "b", MinArea: dec("20"), MaxArea: decPtr("100")},
	})
	if err == nil {
		t.Fatal("expected error for open-ended tier followed by another")
	}
}

func testTable(t *testing.T) *TierTable {
	t.Helper()
	table, err := NewTierTable([]Tier{
		{Label: "below_minimum", MinArea: dec("0"), MaxArea: decPtr("20"), AdjustmentPercent: dec("-10")},
		{Label: "standard", MinArea: dec("20"), MaxArea: decPtr("200"), AdjustmentPercent: dec("0")},
		{Label: "bulk", MinArea: dec("200"), AdjustmentPercent: dec("5")},
	})
	if err != nil {
		t.Fatalf("building tier table: %v", err)
	}
	return table
}

func TestApplyBulkPricingSelectsHalfOpenTier(t *testing.T) {
	table := testTable(t)

	// Exactly on a boundary: [20, 200) contains 20, [0, 20) does not
	got, err := ApplyBulkPricing(dec("20"), dec("46.07"), table)
	if err != nil {
		t.Fatalf("bulk pricing: %v", err)
	}
	if got.TierLabel != "standard" {
		t.Fatalf("area 20 matched tier %q, want standard", got.TierLabel)
	}
	if !got.Total.Equal(dec("921.40")) {
		t.Errorf("total %s, want 921.40", got.Total)
	}
}

func TestApplyBulkPricingSurchargeBelowMinimum(t *testing.T) {
	table := testTable(t)

	got, err := ApplyBulkPricing(dec("10"), dec("46.07"), table)
	if err != nil {
		t.Fatalf("bulk pricing: %v", err)
	}
	if !got.Surcharge {
		t.Fatal("expected surcharge flag for below-minimum area")
	}
	// base 460.70, -10% adjustment = +46.07 surcharge
	if !got.Total.Equal(dec("506.77")) {
		t.Errorf("total %s, want 506.77", got.Total)
	}
	if len(got.Notes) == 0 {
		t.Error("surcharge must be noted")
	}
}

func TestApplyBulkPricingBulkDiscount(t *testing.T) {
	table := testTable(t)

	got, err := ApplyBulkPricing(dec("250"), dec("40"), table)
	if err != nil {
		t.Fatalf("bulk pricing: %v", err)
	}
	if got.TierLabel != "bulk" {
		t.Fatalf("matched tier %q, want bulk", got.TierLabel)
	}
	// base 10000, 5% discount
	if !got.Total.Equal(dec("9500")) {
		t.Errorf("total %s, want 9500", got.Total)
	}
}

func TestApplyBulkPricingRejectsNegativeArea(t *testing.T) {
	_, err := ApplyBulkPricing(dec("-1"), dec("40"), testTable(t))
	if !errors.IsType(err, errors.TypeParameterOutOfRange) {
		t.Fatalf("expected PARAMETER_OUT_OF_RANGE, got %v", err)
	}
}

func TestDeliveryCostFlooredAtMinimumCharge(t *testing.T) {
	zone := DeliveryZone{Name: "metropolitan", RatePerKg: dec("0.18"), MinimumCharge: dec("25")}

	// 2 m2 x 10 kg/m2 x 0.18 = 3.60, below the 25 minimum
	got, err := DeliveryCost(dec("2"), zone, dec("10"))
	if err != nil {
		t.Fatalf("delivery cost: %v", err)
	}
	if !got.Cost.Equal(dec("25")) {
		t.Errorf("cost %s, want minimum charge 25", got.Cost)
	}
	if len(got.Notes) == 0 {
		t.Error("minimum charge must be noted")
	}

	// 100 m2 x 10 kg/m2 x 0.18 = 180, above the minimum
	got, err = DeliveryCost(dec("100"), zone, dec("10"))
	if err != nil {
		t.Fatalf("delivery cost: %v", err)
	}
	if !got.Cost.Equal(dec("180")) {
		t.Errorf("cost %s, want 180", got.Cost)
	}
}

func TestDeliveryCostExternalZoneRequiresQuote(t *testing.T) {
	got, err := DeliveryCost(dec("100"), DeliveryZone{Name: "external", External: true}, dec("10"))
	if err != nil {
		t.Fatalf("external zone must not error: %v", err)
	}
	if !got.RequiresQuote {
		t.Fatal("expected requires_quote for external zone")
	}
	if !got.Cost.IsZero() {
		t.Errorf("external zone cost %s, want 0", got.Cost)
	}
}

func TestTaxBusinessAddsOnTop(t *testing.T) {
	got, err := Tax(dec("1000"), catalog.ChannelBusiness, dec("0.22"))
	if err != nil {
		t.Fatalf("tax: %v", err)
	}
	if got.Inclusive {
		t.Fatal("business channel must be tax-exclusive")
	}
	if !got.TaxAmount.Equal(dec("220")) || !got.Total.Equal(dec("1220")) {
		t.Errorf("tax %s total %s, want 220 / 1220", got.TaxAmount, got.Total)
	}
}

func TestTaxRetailDecomposesInclusivePrice(t *testing.T) {
	got, err := Tax(dec("1220"), catalog.ChannelRetail, dec("0.22"))
	if err != nil {
		t.Fatalf("tax: %v", err)
	}
	if !got.Inclusive {
		t.Fatal("retail channel must be tax-inclusive")
	}
	if !got.Base.Equal(dec("1000")) || !got.TaxAmount.Equal(dec("220")) {
		t.Errorf("base %s tax %s, want 1000 / 220", got.Base, got.TaxAmount)
	}
	if !got.Total.Equal(dec("1220")) {
		t.Errorf("total %s must stay the inclusive subtotal", got.Total)
	}
}

func TestMinimumOrderUnknownTypeIsAdvisory(t *testing.T) {
	thresholds := map[string]decimal.Decimal{"panel": dec("500")}

	got := MinimumOrderValue("panel", thresholds)
	if !got.Known || !got.Threshold.Equal(dec("500")) {
		t.Fatalf("expected known threshold 500, got %+v", got)
	}

	got = MinimumOrderValue("scaffolding", thresholds)
	if got.Known {
		t.Fatal("unknown type must not report a threshold")
	}
	if len(got.Notes) == 0 {
		t.Fatal("unknown type must be noted")
	}
	if !got.Verified {
		t.Fatal("advisory result must still be verified")
	}
}

func TestNewEngineFromDefaultDocument(t *testing.T) {
	engine, err := NewEngine(DefaultDocument())
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}
	if !engine.MaxDiscountPercent().Equal(dec("30")) {
		t.Errorf("max discount %s, want 30", engine.MaxDiscountPercent())
	}
	if _, ok := engine.TrimRule("frontal"); !ok {
		t.Error("default document must configure frontal trim")
	}
	if _, err := engine.DeliveryCost(dec("10"), "nowhere", dec("10")); !errors.IsType(err, errors.TypeParameterOutOfRange) {
		t.Errorf("unknown zone must be rejected, got %v", err)
	}
}

func TestNewEngineRejectsIncompleteTrimRules(t *testing.T) {
	doc := DefaultDocument()
	doc.Trims = nil

	if _, err := NewEngine(doc); !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("document without trim blocks must be rejected at engine build, got %v", err)
	}

	// a partial trim table is just as unusable mid-quotation
	doc = DefaultDocument()
	doc.Trims = doc.Trims[:1]
	if _, err := NewEngine(doc); !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("document missing a trim kind must be rejected, got %v", err)
	}
}

func TestNewEngineRejectsMissingAccessories(t *testing.T) {
	doc := DefaultDocument()
	doc.Accessories = nil
	if _, err := NewEngine(doc); !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("document without accessories block must be rejected, got %v", err)
	}

	doc = DefaultDocument()
	doc.Accessories.RodSKU = ""
	if _, err := NewEngine(doc); !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("accessories block with a blank sku must be rejected, got %v", err)
	}
}
