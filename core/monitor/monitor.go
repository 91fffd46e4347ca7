// Package monitor - Tool invocation observability
// The monitor records every request, tool call, response and error as an
// immutable append-only event and keeps aggregate counters over them.
// It detects contract violations, it cannot prevent them: a tool result
// whose verified flag is false or missing trips the critical counter the
// moment it is logged.
package monitor

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"panelquote/internal/logging"
)

// EventType classifies a monitoring event
type EventType string

const (
	EventRequest  EventType = "request"
	EventToolCall EventType = "tool_call"
	EventResponse EventType = "response"
	EventError    EventType = "error"
)

// Health states, ordered by severity
const (
	HealthCritical = "critical"
	HealthWarning  = "warning"
	HealthHealthy  = "healthy"
)

// Event is one immutable monitoring record
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Tool      string                 `json:"tool,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Verified  bool                   `json:"verified"`
	Error     string                 `json:"error,omitempty"`
	Latency   time.Duration          `json:"latency_ns,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Summary aggregates the event log
type Summary struct {
	TotalRequests              int            `json:"total_requests"`
	TotalToolCalls             int            `json:"total_tool_calls"`
	TotalResponses             int            `json:"total_responses"`
	TotalErrors                int            `json:"total_errors"`
	CallsPerTool               map[string]int `json:"calls_per_tool"`
	UnverifiedCalculationCount int            `json:"unverified_calculation_count"`
	AverageToolLatency         time.Duration  `json:"average_tool_latency_ns"`
}

// Monitor is a thread-safe append-only event log. Writers serialize on a
// mutex; summaries are computed from a point-in-time copy of the counters
// and may lag concurrent appends.
type Monitor struct {
	mu     sync.Mutex
	events []Event

	requests     int
	responses    int
	errs         int
	callsPerTool map[string]int
	unverified   int
	toolCalls    int
	toolLatency  time.Duration

	// warning thresholds
	errorRateWarning float64
	latencyWarning   time.Duration
}

// New creates a monitor with default warning thresholds
func New() *Monitor {
	return &Monitor{
		callsPerTool:     make(map[string]int),
		errorRateWarning: 0.1,
		latencyWarning:   2 * time.Second,
	}
}

func (m *Monitor) append(ev Event) {
	ev.ID = ulid.Make().String()
	ev.Timestamp = time.Now().UTC()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)

	switch ev.Type {
	case EventRequest:
		m.requests++
	case EventResponse:
		m.responses++
	case EventError:
		m.errs++
	case EventToolCall:
		m.toolCalls++
		m.callsPerTool[ev.Tool]++
		m.toolLatency += ev.Latency
		if !ev.Verified {
			m.unverified++
			logging.Error("unverified tool result recorded",
				zap.String("tool", ev.Tool),
				zap.String("event_id", ev.ID))
		}
	}
}

// LogRequest records an incoming request
func (m *Monitor) LogRequest(payload map[string]interface{}) {
	m.append(Event{Type: EventRequest, Payload: payload, Verified: true})
}

// LogToolCall records one tool invocation. verified must be the literal
// flag carried by the tool result; passing false or omitting the flag at
// the call site trips the critical counter.
func (m *Monitor) LogToolCall(tool string, args, result map[string]interface{}, latency time.Duration) {
	verified := false
	if result != nil {
		if v, ok := result["calculation_verified"].(bool); ok {
			verified = v
		}
	}
	m.append(Event{
		Type:     EventToolCall,
		Tool:     tool,
		Payload:  map[string]interface{}{"args": args, "result": result},
		Verified: verified,
		Latency:  latency,
	})
}

// LogResponse records an outgoing response
func (m *Monitor) LogResponse(payload map[string]interface{}) {
	m.append(Event{Type: EventResponse, Payload: payload, Verified: true})
}

// LogError records a failure
func (m *Monitor) LogError(tool string, err error) {
	ev := Event{Type: EventError, Tool: tool, Verified: true}
	if err != nil {
		ev.Error = err.Error()
	}
	m.append(ev)
}

// Events returns a copy of the event log
func (m *Monitor) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Summary aggregates the counters at a point in time
func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	perTool := make(map[string]int, len(m.callsPerTool))
	for tool, n := range m.callsPerTool {
		perTool[tool] = n
	}

	s := Summary{
		TotalRequests:              m.requests,
		TotalToolCalls:             m.toolCalls,
		TotalResponses:             m.responses,
		TotalErrors:                m.errs,
		CallsPerTool:               perTool,
		UnverifiedCalculationCount: m.unverified,
	}
	if m.toolCalls > 0 {
		s.AverageToolLatency = m.toolLatency / time.Duration(m.toolCalls)
	}
	return s
}

// Health classifies the current state. Any unverified calculation, ever,
// is critical. Elevated error rate or latency is a warning.
func (m *Monitor) Health() string {
	s := m.Summary()

	if s.UnverifiedCalculationCount > 0 {
		return HealthCritical
	}

	total := s.TotalToolCalls + s.TotalErrors
	if total > 0 {
		rate := float64(s.TotalErrors) / float64(total)
		if rate > m.errorRateWarning {
			return HealthWarning
		}
	}
	if s.AverageToolLatency > m.latencyWarning {
		return HealthWarning
	}
	return HealthHealthy
}
