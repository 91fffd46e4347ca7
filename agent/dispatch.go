// Package agent - Tool dispatch
package agent

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"panelquote/core/lookup"
	"panelquote/core/monitor"
	"panelquote/core/quote"
	"panelquote/core/validate"
	"panelquote/internal/errors"
	"panelquote/internal/logging"
)

// Dispatcher owns the tool registry and routes every invocation through
// parameter checks, the core and the monitor. It is the single entry
// point for the conversational layer.
type Dispatcher struct {
	calc      *quote.Calculator
	lookup    *lookup.Service
	inventory InventoryChecker
	monitor   *monitor.Monitor
	tools     map[string]Tool
}

// NewDispatcher builds a dispatcher over the core services. A nil
// inventory checker degrades to always-unknown answers.
func NewDispatcher(calc *quote.Calculator, lk *lookup.Service, inventory InventoryChecker, mon *monitor.Monitor) *Dispatcher {
	if inventory == nil {
		inventory = NoInventory{}
	}
	d := &Dispatcher{
		calc:      calc,
		lookup:    lk,
		inventory: inventory,
		monitor:   mon,
		tools:     make(map[string]Tool),
	}
	d.registerTools()
	return d
}

// ToolNames returns the registered tool names, sorted
func (d *Dispatcher) ToolNames() []string {
	names := make([]string, 0, len(d.tools))
	for name := range d.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrorRecord converts a typed error into the structured record the
// conversational layer receives instead of a result
func ErrorRecord(err error) map[string]interface{} {
	record := map[string]interface{}{
		"error":   "INTERNAL_ERROR",
		"message": "internal error",
	}
	if err == nil {
		return record
	}
	record["message"] = err.Error()
	if e, ok := err.(*errors.Error); ok {
		record["error"] = string(e.Type)
		for key, value := range e.Context {
			record["context_"+key] = fmt.Sprintf("%v", value)
		}
	}
	return record
}

// Dispatch invokes one tool by name. Every call is logged to the monitor;
// a result that fails the tool-contract check is converted into a
// verification failure, never returned as trustworthy.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, params Params) (map[string]interface{}, error) {
	tool, ok := d.tools[name]
	if !ok {
		err := errors.ParameterOutOfRange("tool", name, "unknown tool")
		d.monitor.LogError(name, err)
		return ErrorRecord(err), err
	}
	if err := checkFlat(params); err != nil {
		d.monitor.LogError(name, err)
		return ErrorRecord(err), err
	}

	start := time.Now()
	record, err := tool.Handler(ctx, params)
	latency := time.Since(start)

	if err != nil {
		d.monitor.LogError(name, err)
		logging.Warn("tool call failed",
			zap.String("tool", name),
			zap.Error(err))
		return ErrorRecord(err), err
	}

	// The contract check runs before the result leaves the boundary.
	// Logging the raw record first means a missing or false verified
	// flag trips the monitor's critical counter even when we reject it.
	d.monitor.LogToolCall(name, params, record, latency)

	expects := append([]string{"calculation_method"}, tool.Expects...)
	if report := validate.ToolResult(record, expects); !report.Valid {
		verr := errors.Verification(fmt.Sprintf(
			"tool %s produced an untrustworthy result: %v", name, report.Errors))
		d.monitor.LogError(name, verr)
		return ErrorRecord(verr), verr
	}

	return record, nil
}
