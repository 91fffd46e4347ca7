// Package quote - Calculator tests
// Scenario expectations use literal numbers derived once by hand; the
// calculator must reproduce them bit-identically on every call.
package quote

import (
	"testing"

	"github.com/shopspring/decimal"

	"panelquote/core/catalog"
	"panelquote/core/lookup"
	"panelquote/core/rules"
	"panelquote/internal/errors"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func intPtr(v int) *int { return &v }

func fixtureCalculator(t *testing.T) *Calculator {
	t.Helper()

	mkPanel := func(sku string, thickness int, width, business, retail string) catalog.Entry {
		return catalog.Entry{
			SKU:            sku,
			Name:           "Isodec EPS " + sku,
			Family:         "Isodec",
			Type:           catalog.ItemPanel,
			ThicknessMM:    intPtr(thickness),
			InsulationType: "EPS",
			UsefulWidthM:   dec(width),
			Prices: map[catalog.Channel]decimal.Decimal{
				catalog.ChannelBusiness: dec(business),
				catalog.ChannelRetail:   dec(retail),
			},
			StockStatus:    catalog.StockAvailable,
			ProductionMode: catalog.ProductionStock,
		}
	}
	mkItem := func(sku string, typ catalog.ItemType, business string) catalog.Entry {
		return catalog.Entry{
			SKU:         sku,
			Name:        sku,
			Type:        typ,
			Prices:      map[catalog.Channel]decimal.Decimal{catalog.ChannelBusiness: dec(business)},
			StockStatus: catalog.StockAvailable,
		}
	}

	snap, err := catalog.NewSnapshot("test", []catalog.Entry{
		mkPanel("ISODEC-EPS-050", 50, "1.12", "31.20", "38.06"),
		mkPanel("ISODEC-EPS-100", 100, "1.12", "46.07", "56.21"),
		mkPanel("ISODEC-EPS-150", 150, "1.12", "58.90", "71.86"),
		// frontal trim and rivets exist in the catalog; lateral and ridge
		// trim, sealant and fixation hardware fall back to documented prices
		mkItem("PERF-FRONT-100", catalog.ItemProfile, "12.40"),
		mkItem("RIV-516", catalog.ItemAccessory, "0.10"),
	})
	if err != nil {
		t.Fatalf("building fixture snapshot: %v", err)
	}

	engine, err := rules.NewEngine(rules.DefaultDocument())
	if err != nil {
		t.Fatalf("building rules engine: %v", err)
	}

	return NewCalculator(lookup.NewService(catalog.NewStore(snap)), engine)
}

func TestPanelQuoteScenarioUsefulWidth(t *testing.T) {
	calc := fixtureCalculator(t)

	got, err := calc.PanelQuote(PanelQuoteParams{
		Family:      "Isodec",
		ThicknessMM: 100,
		LengthM:     dec("6.0"),
		Quantity:    10,
		Channel:     catalog.ChannelBusiness,
	})
	if err != nil {
		t.Fatalf("panel quote: %v", err)
	}

	// 6.0 x 1.12 = 6.72 m2 per panel, 67.2 m2 total
	if !got.AreaM2.Equal(dec("6.72")) {
		t.Errorf("panel area %s, want 6.72", got.AreaM2)
	}
	if !got.TotalAreaM2.Equal(dec("67.2")) {
		t.Errorf("total area %s, want 67.2", got.TotalAreaM2)
	}
	// unit = round(6.72 x 46.07, 2) = 309.59; subtotal = 3095.90
	if !got.UnitPrice.Equal(dec("309.59")) {
		t.Errorf("unit price %s, want 309.59", got.UnitPrice)
	}
	if !got.Subtotal.Equal(dec("3095.90")) {
		t.Errorf("subtotal %s, want 3095.90", got.Subtotal)
	}
	if !got.Verified || got.Method != rules.MethodDeterministicDecimal {
		t.Error("panel quote must be verified deterministic_decimal")
	}
}

func TestPanelQuoteScenarioExplicitWidthWithDiscount(t *testing.T) {
	calc := fixtureCalculator(t)

	got, err := calc.PanelQuote(PanelQuoteParams{
		Family:          "Isodec",
		ThicknessMM:     100,
		LengthM:         dec("4.0"),
		WidthM:          dec("1.14"),
		Quantity:        20,
		DiscountPercent: dec("10"),
		Channel:         catalog.ChannelBusiness,
	})
	if err != nil {
		t.Fatalf("panel quote: %v", err)
	}

	// unit = round(4.56 x 46.07, 2) = 210.08; subtotal = 4201.60
	if !got.Subtotal.Equal(dec("4201.60")) {
		t.Errorf("subtotal %s, want 4201.60", got.Subtotal)
	}
	// discount = round(4201.60 x 0.10, 2)
	if !got.DiscountAmount.Equal(dec("420.16")) {
		t.Errorf("discount %s, want 420.16", got.DiscountAmount)
	}
	if !got.Total.Equal(got.Subtotal.Sub(got.DiscountAmount)) {
		t.Errorf("total %s must equal subtotal - discount", got.Total)
	}
}

func TestPanelQuoteUnofferedThicknessIsNotFound(t *testing.T) {
	calc := fixtureCalculator(t)

	_, err := calc.PanelQuote(PanelQuoteParams{
		Family:      "Isodec",
		ThicknessMM: 75,
		LengthM:     dec("6.0"),
		Quantity:    1,
		Channel:     catalog.ChannelBusiness,
	})
	if !errors.IsType(err, errors.TypeProductNotFound) {
		t.Fatalf("expected PRODUCT_NOT_FOUND for 75mm, got %v", err)
	}
	e := err.(*errors.Error)
	if e.Context["thickness_mm"] != 75 {
		t.Fatalf("error must name the attempted key, got %v", e.Context)
	}
}

func TestPanelQuoteValidatesBeforeLookup(t *testing.T) {
	calc := fixtureCalculator(t)

	// Family does not exist either, but the discount failure must win
	// because validation precedes any catalog access
	_, err := calc.PanelQuote(PanelQuoteParams{
		Family:          "NoSuchFamily",
		ThicknessMM:     100,
		LengthM:         dec("6.0"),
		Quantity:        10,
		DiscountPercent: dec("55"),
		Channel:         catalog.ChannelBusiness,
	})
	if !errors.IsType(err, errors.TypeParameterOutOfRange) {
		t.Fatalf("expected PARAMETER_OUT_OF_RANGE before lookup, got %v", err)
	}
	e := err.(*errors.Error)
	if e.Context["field"] != "discount" {
		t.Fatalf("error must name the discount field, got %v", e.Context)
	}
}

func TestPanelQuoteIdempotent(t *testing.T) {
	calc := fixtureCalculator(t)
	params := PanelQuoteParams{
		Family:          "Isodec",
		ThicknessMM:     100,
		LengthM:         dec("6.0"),
		Quantity:        10,
		DiscountPercent: dec("5"),
		Channel:         catalog.ChannelBusiness,
	}

	first, err := calc.PanelQuote(params)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := calc.PanelQuote(params)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if first.Subtotal.String() != second.Subtotal.String() ||
		first.DiscountAmount.String() != second.DiscountAmount.String() ||
		first.Total.String() != second.Total.String() {
		t.Fatalf("identical inputs produced different numbers: %+v vs %+v", first, second)
	}
}

func TestPanelQuoteMonotonicInQuantity(t *testing.T) {
	calc := fixtureCalculator(t)

	prev := decimal.Zero
	for qty := 1; qty <= 30; qty++ {
		got, err := calc.PanelQuote(PanelQuoteParams{
			Family:      "Isodec",
			ThicknessMM: 100,
			LengthM:     dec("6.0"),
			Quantity:    qty,
			Channel:     catalog.ChannelBusiness,
		})
		if err != nil {
			t.Fatalf("quantity %d: %v", qty, err)
		}
		if got.Subtotal.LessThan(prev) {
			t.Fatalf("subtotal decreased at quantity %d: %s < %s", qty, got.Subtotal, prev)
		}
		prev = got.Subtotal
	}
}

func TestFixationPointsMetalScenario(t *testing.T) {
	calc := fixtureCalculator(t)

	got, err := calc.FixationPoints(10, dec("6.0"), dec("5.5"), StructureMetal)
	if err != nil {
		t.Fatalf("fixation: %v", err)
	}

	// supports = ceil(6/5.5 + 1) = 3
	if got.Supports != 3 {
		t.Errorf("supports %d, want 3", got.Supports)
	}
	// points = ceil(10*3*2 + 6*2/2.5) = ceil(64.8) = 65
	if got.Points != 65 {
		t.Errorf("points %d, want 65", got.Points)
	}
	if got.Rods != 17 {
		t.Errorf("rods %d, want 17", got.Rods)
	}
	if got.Nuts != 130 || got.Anchors != 0 {
		t.Errorf("metal: nuts %d anchors %d, want 130 / 0", got.Nuts, got.Anchors)
	}
}

func TestFixationPointsConcreteUsesAnchors(t *testing.T) {
	calc := fixtureCalculator(t)

	got, err := calc.FixationPoints(10, dec("6.0"), dec("5.5"), StructureConcrete)
	if err != nil {
		t.Fatalf("fixation: %v", err)
	}
	if got.Anchors == 0 {
		t.Fatal("concrete structure must report anchors")
	}
	if got.Nuts != got.Points || got.Anchors != got.Points {
		t.Errorf("concrete: nuts %d anchors %d, want both %d", got.Nuts, got.Anchors, got.Points)
	}
}

func TestFixationNeverUndercounts(t *testing.T) {
	calc := fixtureCalculator(t)

	lengths := []string{"3.3", "4.7", "5.5", "6.0", "7.1", "11.9"}
	for _, l := range lengths {
		length := dec(l)
		got, err := calc.FixationPoints(7, length, dec("5.5"), StructureMetal)
		if err != nil {
			t.Fatalf("length %s: %v", l, err)
		}

		exactSupports := length.Div(dec("5.5")).Add(dec("1"))
		if decimal.NewFromInt(int64(got.Supports)).LessThan(exactSupports) {
			t.Errorf("length %s: supports %d under exact %s", l, got.Supports, exactSupports)
		}

		exactPoints := dec("7").Mul(decimal.NewFromInt(int64(got.Supports))).Mul(dec("2")).
			Add(length.Mul(dec("2")).Div(dec("2.5")))
		if decimal.NewFromInt(int64(got.Points)).LessThan(exactPoints) {
			t.Errorf("length %s: points %d under exact %s", l, got.Points, exactPoints)
		}

		exactRods := decimal.NewFromInt(int64(got.Points)).Div(dec("4"))
		if decimal.NewFromInt(int64(got.Rods)).LessThan(exactRods) {
			t.Errorf("length %s: rods %d under exact %s", l, got.Rods, exactRods)
		}
	}
}

func TestProfilesQuoteCountsAndFallbacks(t *testing.T) {
	calc := fixtureCalculator(t)

	got, err := calc.ProfilesQuote(10, dec("6.0"), dec("1.12"), 100, false, catalog.ChannelBusiness)
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}

	// frontal = ceil(10*1.12/3) = 4; lateral = ceil(6*2/3) = 4
	if got.FrontalCount != 4 {
		t.Errorf("frontal %d, want 4", got.FrontalCount)
	}
	if got.LateralCount != 4 {
		t.Errorf("lateral %d, want 4", got.LateralCount)
	}
	if got.ProfileCount != 8 {
		t.Errorf("profiles %d, want 8", got.ProfileCount)
	}
	// rivets = 8*20; sealant = ceil(24/8) = 3
	if got.RivetCount != 160 {
		t.Errorf("rivets %d, want 160", got.RivetCount)
	}
	if got.SealantTubes != 3 {
		t.Errorf("sealant %d, want 3", got.SealantTubes)
	}

	var frontal, lateral LineItem
	for _, it := range got.Items {
		switch it.SKU {
		case "PERF-FRONT-100":
			frontal = it
		case "PERF-LAT-100":
			lateral = it
		}
	}
	// frontal trim is in the catalog: real price, no fallback
	if frontal.UsedFallbackPrice {
		t.Error("frontal trim must use the catalog price")
	}
	if !frontal.UnitPrice.Equal(dec("12.40")) {
		t.Errorf("frontal unit price %s, want 12.40", frontal.UnitPrice)
	}
	// lateral trim is absent: documented fallback, flagged and warned
	if !lateral.UsedFallbackPrice {
		t.Error("lateral trim must be flagged as fallback-priced")
	}
	if len(got.Warnings) == 0 {
		t.Error("fallback pricing must produce a data-quality warning")
	}
}

func TestCompleteQuotationComposition(t *testing.T) {
	calc := fixtureCalculator(t)

	got, err := calc.CompleteQuotation(CompleteQuotationParams{
		Family:          "Isodec",
		ThicknessMM:     100,
		PanelLengthM:    dec("6.0"),
		TotalAreaM2:     dec("67.2"),
		DiscountPercent: dec("10"),
		Channel:         catalog.ChannelBusiness,
		StructureType:   StructureMetal,
	})
	if err != nil {
		t.Fatalf("complete quotation: %v", err)
	}

	// 67.2 / (6.0 x 1.12) = exactly 10 panels
	if got.PanelCount != 10 {
		t.Errorf("panel count %d, want 10", got.PanelCount)
	}
	if !got.PanelsSubtotal.Equal(dec("3095.90")) {
		t.Errorf("panels subtotal %s, want 3095.90", got.PanelsSubtotal)
	}

	declared := got.PanelsSubtotal.Add(got.FastSubtotal).Add(got.TrimSubtotal)
	if !got.Subtotal.Equal(declared) {
		t.Errorf("subtotal %s must equal sum of group subtotals %s", got.Subtotal, declared)
	}

	wantGrand := got.Subtotal.Sub(got.DiscountAmount).Add(got.TaxAmount)
	if !got.GrandTotal.Equal(wantGrand) {
		t.Errorf("grand total %s, want subtotal - discount + tax = %s", got.GrandTotal, wantGrand)
	}

	if !got.Verified {
		t.Fatal("complete quotation must be verified when every sub-result is")
	}
	if len(got.Fasteners) == 0 || len(got.Trim) == 0 {
		t.Fatal("complete quotation must carry fastener and trim groups")
	}
}

func TestCompleteQuotationRetailKeepsInclusiveTotal(t *testing.T) {
	calc := fixtureCalculator(t)

	got, err := calc.CompleteQuotation(CompleteQuotationParams{
		Family:        "Isodec",
		ThicknessMM:   100,
		PanelLengthM:  dec("6.0"),
		TotalAreaM2:   dec("30"),
		Channel:       catalog.ChannelRetail,
		StructureType: StructureConcrete,
	})
	if err != nil {
		t.Fatalf("complete quotation: %v", err)
	}

	if !got.TaxAmount.IsZero() {
		t.Errorf("retail adds no tax on top, got %s", got.TaxAmount)
	}
	if got.IncludedTax.IsZero() {
		t.Error("retail must report the embedded tax share")
	}
	if !got.GrandTotal.Equal(got.Subtotal.Sub(got.DiscountAmount)) {
		t.Errorf("retail grand total %s must stay the inclusive discounted subtotal", got.GrandTotal)
	}
}
