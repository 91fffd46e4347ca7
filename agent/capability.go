// Package agent - Conversational boundary contract
// The conversational layer talks to the quotation core exclusively through
// the tools registered here. It extracts parameters and renders answers;
// it never computes a number, and the core never assumes which
// orchestration runtime sits above it.
package agent

import "context"

// Params is a flat set of named scalar tool parameters. Nested objects
// are rejected at dispatch.
type Params map[string]interface{}

// ParameterExtractor turns a natural-language message into flat parameters
// for one named tool. Implementations live outside the core.
type ParameterExtractor interface {
	ExtractParameters(ctx context.Context, message, tool string) (Params, error)
}

// Availability of a SKU as reported by an external inventory system
type Availability string

const (
	Available   Availability = "available"
	Unavailable Availability = "unavailable"
	// AvailabilityUnknown is a valid answer: inventory is advisory and an
	// unreachable inventory system must never block a quotation.
	AvailabilityUnknown Availability = "unknown"
)

// InventoryResult is the advisory answer of an inventory check
type InventoryResult struct {
	SKU               string       `json:"sku"`
	Availability      Availability `json:"availability"`
	QuantityAvailable int          `json:"quantity_available"`
	StockStatus       string       `json:"stock_status"`
}

// InventoryChecker asks an external system whether a quantity of a SKU is
// on hand. Advisory only: no quotation depends on its answer.
type InventoryChecker interface {
	CheckInventory(ctx context.Context, sku string, requiredQuantity int) (InventoryResult, error)
}

// StaticExtractor is a canned ParameterExtractor for tests and offline
// use: it returns pre-registered parameters keyed by tool name.
type StaticExtractor struct {
	byTool map[string]Params
}

// NewStaticExtractor builds an extractor over canned parameter sets
func NewStaticExtractor(byTool map[string]Params) *StaticExtractor {
	return &StaticExtractor{byTool: byTool}
}

// ExtractParameters returns the canned parameters for the tool, or empty
// parameters when none were registered
func (s *StaticExtractor) ExtractParameters(_ context.Context, _ string, tool string) (Params, error) {
	if p, ok := s.byTool[tool]; ok {
		return p, nil
	}
	return Params{}, nil
}

// NoInventory is an InventoryChecker for deployments without an inventory
// system: every answer is unknown, which callers must treat as advisory.
type NoInventory struct{}

func (NoInventory) CheckInventory(_ context.Context, sku string, _ int) (InventoryResult, error) {
	return InventoryResult{SKU: sku, Availability: AvailabilityUnknown, StockStatus: "unknown"}, nil
}
