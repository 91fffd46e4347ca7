// Package rules - Pure pricing rule functions
// Every function here operates only on the numbers passed in and returns a
// result tagged verified=true. Business edge cases adjust and annotate;
// only structurally invalid input is an error.
package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"panelquote/core/money"
	"panelquote/internal/errors"
)

// MethodDeterministicDecimal is the computation-method identifier stamped
// on every result produced by the deterministic core
const MethodDeterministicDecimal = "deterministic_decimal"

// Tier is one half-open [MinArea, MaxArea) pricing range. A nil MaxArea
// means the tier is open-ended. A negative AdjustmentPercent is a
// surcharge, used for below-minimum orders.
type Tier struct {
	Label             string
	MinArea           decimal.Decimal
	MaxArea           *decimal.Decimal
	AdjustmentPercent decimal.Decimal
}

// Contains reports whether totalArea falls in [MinArea, MaxArea)
func (t Tier) Contains(totalArea decimal.Decimal) bool {
	if totalArea.LessThan(t.MinArea) {
		return false
	}
	if t.MaxArea != nil && totalArea.GreaterThanOrEqual(*t.MaxArea) {
		return false
	}
	return true
}

// TierTable is an ordered, validated set of pricing tiers.
// Validation happens once at construction, never at call time.
type TierTable struct {
	tiers []Tier
}

// NewTierTable validates tiers and returns a table. Tiers must be ordered
// ascending by MinArea, contiguous (each min equals the previous max), and
// non-overlapping; only the last tier may be open-ended.
func NewTierTable(tiers []Tier) (*TierTable, error) {
	if len(tiers) == 0 {
		return nil, errors.Integrity("tier table is empty")
	}

	for i, t := range tiers {
		if t.MinArea.IsNegative() {
			return nil, errors.Integrity(fmt.Sprintf("tier %q has negative min area", t.Label))
		}
		if t.MaxArea != nil && t.MaxArea.LessThanOrEqual(t.MinArea) {
			return nil, errors.Integrity(fmt.Sprintf("tier %q has max <= min", t.Label))
		}
		if i == 0 {
			continue
		}
		prev := tiers[i-1]
		if prev.MaxArea == nil {
			return nil, errors.Integrity(fmt.Sprintf("tier %q follows an open-ended tier", t.Label))
		}
		if !t.MinArea.Equal(*prev.MaxArea) {
			return nil, errors.Integrity(fmt.Sprintf(
				"tier %q is not contiguous: min %s, previous max %s",
				t.Label, t.MinArea, prev.MaxArea))
		}
	}

	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return &TierTable{tiers: out}, nil
}

// Tiers returns a copy of the validated tiers in ascending order
func (tt *TierTable) Tiers() []Tier {
	out := make([]Tier, len(tt.tiers))
	copy(out, tt.tiers)
	return out
}

// Match returns the first tier (by ascending min) containing totalArea
func (tt *TierTable) Match(totalArea decimal.Decimal) (Tier, bool) {
	for _, t := range tt.tiers {
		if t.Contains(totalArea) {
			return t, true
		}
	}
	return Tier{}, false
}

// BulkPricingResult is the outcome of applying a tier table
type BulkPricingResult struct {
	TotalArea         decimal.Decimal `json:"total_area"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	BaseTotal         decimal.Decimal `json:"base_total"`
	AdjustmentPercent decimal.Decimal `json:"adjustment_percent"`
	AdjustmentAmount  decimal.Decimal `json:"adjustment_amount"`
	Total             decimal.Decimal `json:"total"`
	TierLabel         string          `json:"tier_label"`
	Surcharge         bool            `json:"surcharge"`
	Notes             []string        `json:"notes,omitempty"`
	Verified          bool            `json:"calculation_verified"`
	Method            string          `json:"calculation_method"`
}

// ApplyBulkPricing prices totalArea at unitPrice through the tier table.
// The first matching tier wins. A negative adjustment percent surcharges
// the order and is noted, not rejected.
func ApplyBulkPricing(totalArea, unitPrice decimal.Decimal, table *TierTable) (BulkPricingResult, error) {
	if totalArea.IsNegative() {
		return BulkPricingResult{}, errors.ParameterOutOfRange("total_area", totalArea.String(), "must be non-negative")
	}
	if table == nil || len(table.tiers) == 0 {
		return BulkPricingResult{}, errors.Integrity("tier table is empty")
	}

	baseTotal := money.Mul(totalArea, unitPrice)

	tier, ok := table.Match(totalArea)
	if !ok {
		// Area beyond every bounded tier: priced at base with a note,
		// never an error
		return BulkPricingResult{
			TotalArea: totalArea,
			UnitPrice: unitPrice,
			BaseTotal: baseTotal,
			Total:     baseTotal,
			Notes:     []string{fmt.Sprintf("no pricing tier covers %s m2; base price applied", totalArea)},
			Verified:  true,
			Method:    MethodDeterministicDecimal,
		}, nil
	}

	adjustment := money.Percent(baseTotal, tier.AdjustmentPercent)
	result := BulkPricingResult{
		TotalArea:         totalArea,
		UnitPrice:         unitPrice,
		BaseTotal:         baseTotal,
		AdjustmentPercent: tier.AdjustmentPercent,
		AdjustmentAmount:  adjustment,
		Total:             money.Round(baseTotal.Sub(adjustment)),
		TierLabel:         tier.Label,
		Surcharge:         tier.AdjustmentPercent.IsNegative(),
		Verified:          true,
		Method:            MethodDeterministicDecimal,
	}
	if result.Surcharge {
		result.Notes = append(result.Notes, fmt.Sprintf(
			"tier %q applies a %s%% surcharge for orders under the bulk threshold",
			tier.Label, tier.AdjustmentPercent.Neg()))
	}
	return result, nil
}
