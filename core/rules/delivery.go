// Package rules - Delivery cost calculation
package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"panelquote/core/money"
	"panelquote/internal/errors"
)

// DeliveryZone is a configured delivery destination
type DeliveryZone struct {
	// Name identifies the zone
	Name string

	// RatePerKg is the freight rate per kilogram
	RatePerKg decimal.Decimal

	// MinimumCharge floors the computed cost
	MinimumCharge decimal.Decimal

	// External marks destinations outside the standard delivery area;
	// those get a manual quote instead of a computed cost
	External bool
}

// DeliveryResult is the outcome of a delivery cost calculation
type DeliveryResult struct {
	ZoneName      string          `json:"zone"`
	TotalArea     decimal.Decimal `json:"total_area"`
	WeightPerM2   decimal.Decimal `json:"weight_per_m2"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	Cost          decimal.Decimal `json:"cost"`
	RequiresQuote bool            `json:"requires_quote"`
	Notes         []string        `json:"notes,omitempty"`
	Verified      bool            `json:"calculation_verified"`
	Method        string          `json:"calculation_method"`
}

// DeliveryCost computes freight for totalArea of material shipped to a
// zone: rate × (area × weight-per-m²), floored at the zone's minimum
// charge. An external zone returns zero cost with requires_quote=true
// instead of erroring.
func DeliveryCost(totalArea decimal.Decimal, zone DeliveryZone, weightPerM2 decimal.Decimal) (DeliveryResult, error) {
	if totalArea.IsNegative() {
		return DeliveryResult{}, errors.ParameterOutOfRange("total_area", totalArea.String(), "must be non-negative")
	}
	if weightPerM2.LessThanOrEqual(decimal.Zero) {
		return DeliveryResult{}, errors.ParameterOutOfRange("weight_per_area", weightPerM2.String(), "must be positive")
	}

	weight := totalArea.Mul(weightPerM2)
	result := DeliveryResult{
		ZoneName:    zone.Name,
		TotalArea:   totalArea,
		WeightPerM2: weightPerM2,
		WeightKg:    weight,
		Verified:    true,
		Method:      MethodDeterministicDecimal,
	}

	if zone.External {
		result.RequiresQuote = true
		result.Cost = decimal.Zero
		result.Notes = append(result.Notes, fmt.Sprintf("zone %q is outside the standard delivery area; freight requires a manual quote", zone.Name))
		return result, nil
	}

	cost := money.Round(zone.RatePerKg.Mul(weight))
	if cost.LessThan(zone.MinimumCharge) {
		cost = money.Round(zone.MinimumCharge)
		result.Notes = append(result.Notes, fmt.Sprintf("minimum delivery charge of %s applied for zone %q", zone.MinimumCharge, zone.Name))
	}
	result.Cost = cost
	return result, nil
}
