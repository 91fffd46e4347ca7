// Package catalog - Snapshot and load integrity tests
// These tests prove a bad catalog entry fails the whole load instead of
// being silently skipped.
package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"panelquote/internal/errors"
)

func intPtr(v int) *int { return &v }

func panelEntry(sku string, thickness int, price string) Entry {
	p, _ := decimal.NewFromString(price)
	return Entry{
		SKU:            sku,
		Name:           "Isodec EPS " + sku,
		Family:         "Isodec",
		Type:           ItemPanel,
		ThicknessMM:    intPtr(thickness),
		InsulationType: "EPS",
		UsefulWidthM:   decimal.RequireFromString("1.12"),
		Prices:         map[Channel]decimal.Decimal{ChannelBusiness: p},
		StockStatus:    StockAvailable,
		ProductionMode: ProductionStock,
	}
}

func TestNewSnapshotRejectsDuplicateSKU(t *testing.T) {
	_, err := NewSnapshot("v1", []Entry{
		panelEntry("ISO-100", 100, "46.07"),
		panelEntry("ISO-100", 100, "46.07"),
	})
	if err == nil {
		t.Fatal("expected integrity error for duplicate sku, got nil")
	}
	if !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("expected INTEGRITY_ERROR, got %v", err)
	}
}

func TestNewSnapshotRejectsNegativePrice(t *testing.T) {
	bad := panelEntry("ISO-100", 100, "46.07")
	bad.Prices[ChannelRetail] = decimal.RequireFromString("-1")

	_, err := NewSnapshot("v1", []Entry{bad})
	if err == nil {
		t.Fatal("expected integrity error for negative price, got nil")
	}
}

func TestNewSnapshotRejectsNonPositiveThickness(t *testing.T) {
	bad := panelEntry("ISO-0", 100, "46.07")
	bad.ThicknessMM = intPtr(0)

	_, err := NewSnapshot("v1", []Entry{bad})
	if err == nil {
		t.Fatal("expected integrity error for zero thickness, got nil")
	}
}

func TestByFamilyThicknessExactMatchOnly(t *testing.T) {
	snap, err := NewSnapshot("v1", []Entry{
		panelEntry("ISO-050", 50, "31.20"),
		panelEntry("ISO-100", 100, "46.07"),
		panelEntry("ISO-150", 150, "58.90"),
	})
	if err != nil {
		t.Fatalf("building snapshot: %v", err)
	}

	if _, ok := snap.ByFamilyThickness("Isodec", 100, "EPS"); !ok {
		t.Fatal("expected exact match for 100mm")
	}

	// 75mm is not offered; the nearest thickness must NOT be substituted
	if e, ok := snap.ByFamilyThickness("Isodec", 75, "EPS"); ok {
		t.Fatalf("expected miss for 75mm, got %s", e.SKU)
	}

	if _, ok := snap.ByFamilyThickness("Isodec", 100, "PUR"); ok {
		t.Fatal("expected miss for unoffered insulation type")
	}
}

func TestFamilyThicknessesSortedDistinct(t *testing.T) {
	snap, err := NewSnapshot("v1", []Entry{
		panelEntry("ISO-150", 150, "58.90"),
		panelEntry("ISO-050", 50, "31.20"),
		panelEntry("ISO-100", 100, "46.07"),
	})
	if err != nil {
		t.Fatalf("building snapshot: %v", err)
	}

	got := snap.FamilyThicknesses("Isodec", "")
	want := []int{50, 100, 150}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestLoadJSONDocument(t *testing.T) {
	doc := `{
		"version": "2026-01",
		"products": {
			"ISODEC-EPS-100": {
				"name": "Isodec EPS 100mm",
				"family": "Isodec",
				"type": "panel",
				"thickness_mm": 100,
				"insulation": "EPS",
				"useful_width_m": 1.12,
				"prices": {"business": 46.07, "retail": 56.21},
				"stock_status": "in_stock",
				"production_mode": "stock"
			}
		}
	}`

	snap, err := Load(strings.NewReader(doc), FormatJSON)
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	if snap.Version() != "2026-01" {
		t.Errorf("expected version 2026-01, got %s", snap.Version())
	}

	e, ok := snap.BySKU("ISODEC-EPS-100")
	if !ok {
		t.Fatal("expected ISODEC-EPS-100 in snapshot")
	}
	price, ok := e.Price(ChannelBusiness)
	if !ok {
		t.Fatal("expected business price")
	}
	if !price.Equal(decimal.RequireFromString("46.07")) {
		t.Errorf("expected 46.07, got %s", price)
	}
}

func TestLoadYAMLDocument(t *testing.T) {
	doc := `
version: "2026-01"
products:
  ISODEC-EPS-100:
    name: Isodec EPS 100mm
    family: Isodec
    type: panel
    thickness_mm: 100
    insulation: EPS
    useful_width_m: 1.12
    prices:
      business: 46.07
`
	snap, err := Load(strings.NewReader(doc), FormatYAML)
	if err != nil {
		t.Fatalf("loading yaml catalog: %v", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", snap.Len())
	}
}

func TestLoadRejectsConflictingSKUField(t *testing.T) {
	doc := `{
		"version": "v1",
		"products": {
			"ISO-100": {"sku": "OTHER", "name": "x", "family": "Isodec", "type": "panel", "prices": {}}
		}
	}`
	_, err := Load(strings.NewReader(doc), FormatJSON)
	if err == nil {
		t.Fatal("expected integrity error for conflicting sku field")
	}
}

func TestStoreSwapReplacesWholeSnapshot(t *testing.T) {
	first, _ := NewSnapshot("v1", []Entry{panelEntry("ISO-100", 100, "46.07")})
	second, _ := NewSnapshot("v2", []Entry{panelEntry("ISO-150", 150, "58.90")})

	store := NewStore(first)
	held := store.Current()

	store.Swap(second)

	// An in-flight reader keeps its consistent view
	if _, ok := held.BySKU("ISO-100"); !ok {
		t.Fatal("held snapshot lost its entry after swap")
	}
	if held.Version() != "v1" {
		t.Fatalf("held snapshot changed version: %s", held.Version())
	}

	// New readers observe the new snapshot
	if store.Current().Version() != "v2" {
		t.Fatalf("expected v2 after swap, got %s", store.Current().Version())
	}
}

func TestNewSnapshotRejectsPanelWithoutUsefulWidth(t *testing.T) {
	// a width-less panel would only fail once a quotation needs it, so it
	// must never enter a snapshot
	bad := panelEntry("ISO-100", 100, "46.07")
	bad.UsefulWidthM = decimal.Zero

	_, err := NewSnapshot("v1", []Entry{bad})
	if !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("expected INTEGRITY_ERROR for width-less panel, got %v", err)
	}
}

func TestNewSnapshotRejectsPanelWithoutThickness(t *testing.T) {
	bad := panelEntry("ISO-100", 100, "46.07")
	bad.ThicknessMM = nil

	_, err := NewSnapshot("v1", []Entry{bad})
	if !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("expected INTEGRITY_ERROR for thickness-less panel, got %v", err)
	}
}

func TestLoadKeepsPriceDigitsExact(t *testing.T) {
	// prices decode from the literal digits in the document, whether the
	// author wrote them as numbers or strings
	doc := `{
		"version": "v1",
		"products": {
			"ISO-100": {
				"name": "Isodec EPS 100mm",
				"family": "Isodec",
				"type": "panel",
				"thickness_mm": 100,
				"useful_width_m": "1.12",
				"prices": {"business": 46.07, "retail": "56.21"}
			}
		}
	}`

	snap, err := Load(strings.NewReader(doc), FormatJSON)
	if err != nil {
		t.Fatalf("loading catalog: %v", err)
	}
	e, _ := snap.BySKU("ISO-100")

	business, _ := e.Price(ChannelBusiness)
	if business.String() != "46.07" {
		t.Errorf("expected business price 46.07 exactly, got %s", business)
	}
	retail, _ := e.Price(ChannelRetail)
	if retail.String() != "56.21" {
		t.Errorf("expected retail price 56.21 exactly, got %s", retail)
	}
	if e.UsefulWidthM.String() != "1.12" {
		t.Errorf("expected useful width 1.12 exactly, got %s", e.UsefulWidthM)
	}
}

func TestLoadRejectsMalformedPrice(t *testing.T) {
	doc := `{
		"version": "v1",
		"products": {
			"ISO-100": {
				"name": "Isodec EPS 100mm",
				"family": "Isodec",
				"type": "panel",
				"thickness_mm": 100,
				"useful_width_m": "1.12",
				"prices": {"business": "46,07"}
			}
		}
	}`

	_, err := Load(strings.NewReader(doc), FormatJSON)
	if !errors.IsType(err, errors.TypeIntegrity) {
		t.Fatalf("expected INTEGRITY_ERROR for malformed price, got %v", err)
	}
}
