package monitor

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func verifiedResult() map[string]interface{} {
	return map[string]interface{}{
		"subtotal":             "3095.90",
		"calculation_verified": true,
	}
}

func TestMonitorCountsPerTool(t *testing.T) {
	m := New()

	m.LogRequest(map[string]interface{}{"message": "quote 10 panels"})
	m.LogToolCall("calculate_panel_quote", nil, verifiedResult(), 5*time.Millisecond)
	m.LogToolCall("calculate_panel_quote", nil, verifiedResult(), 7*time.Millisecond)
	m.LogToolCall("get_price", nil, verifiedResult(), time.Millisecond)
	m.LogResponse(map[string]interface{}{"quote": "done"})

	s := m.Summary()
	if s.TotalRequests != 1 || s.TotalResponses != 1 {
		t.Errorf("requests %d responses %d, want 1/1", s.TotalRequests, s.TotalResponses)
	}
	if s.TotalToolCalls != 3 {
		t.Errorf("tool calls %d, want 3", s.TotalToolCalls)
	}
	if s.CallsPerTool["calculate_panel_quote"] != 2 {
		t.Errorf("per-tool count %d, want 2", s.CallsPerTool["calculate_panel_quote"])
	}
	if s.UnverifiedCalculationCount != 0 {
		t.Errorf("unverified count %d, want 0", s.UnverifiedCalculationCount)
	}
	if m.Health() != HealthHealthy {
		t.Errorf("health %s, want healthy", m.Health())
	}
}

func TestMonitorTripsOnFalseVerifiedFlag(t *testing.T) {
	m := New()

	m.LogToolCall("calculate_panel_quote", nil, map[string]interface{}{
		"subtotal":             "999.99",
		"calculation_verified": false,
	}, time.Millisecond)

	if got := m.Summary().UnverifiedCalculationCount; got != 1 {
		t.Fatalf("unverified count %d, want 1", got)
	}
	if m.Health() != HealthCritical {
		t.Fatalf("health %s, want critical", m.Health())
	}
}

func TestMonitorTripsOnMissingVerifiedFlag(t *testing.T) {
	m := New()

	m.LogToolCall("calculate_panel_quote", nil, map[string]interface{}{
		"subtotal": "999.99",
	}, time.Millisecond)

	if got := m.Summary().UnverifiedCalculationCount; got != 1 {
		t.Fatalf("a result without the flag must count as unverified, got %d", got)
	}
	if m.Health() != HealthCritical {
		t.Fatalf("health %s, want critical", m.Health())
	}
}

func TestMonitorCriticalStateIsSticky(t *testing.T) {
	m := New()

	m.LogToolCall("get_price", nil, map[string]interface{}{"price": "1.00"}, time.Millisecond)
	for i := 0; i < 100; i++ {
		m.LogToolCall("get_price", nil, verifiedResult(), time.Millisecond)
	}

	if m.Health() != HealthCritical {
		t.Fatal("one unverified calculation must keep health critical regardless of later good calls")
	}
}

func TestMonitorWarnsOnElevatedErrorRate(t *testing.T) {
	m := New()

	for i := 0; i < 8; i++ {
		m.LogToolCall("get_price", nil, verifiedResult(), time.Millisecond)
	}
	m.LogError("get_price", errors.New("catalog unreachable"))
	m.LogError("get_price", errors.New("catalog unreachable"))

	if m.Health() != HealthWarning {
		t.Fatalf("health %s, want warning at 20%% error rate", m.Health())
	}
}

func TestMonitorEventsAreAppendOnlyAndStamped(t *testing.T) {
	m := New()
	m.LogRequest(nil)
	m.LogError("", errors.New("boom"))

	events := m.Events()
	if len(events) != 2 {
		t.Fatalf("event count %d, want 2", len(events))
	}
	for _, ev := range events {
		if ev.ID == "" {
			t.Error("event must carry an id")
		}
		if ev.Timestamp.IsZero() {
			t.Error("event must carry a timestamp")
		}
	}

	// mutating the returned slice must not touch the log
	events[0].Type = EventResponse
	if m.Events()[0].Type != EventRequest {
		t.Fatal("Events must return a copy")
	}
}

func TestMonitorConcurrentAppends(t *testing.T) {
	m := New()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				m.LogToolCall("calculate_panel_quote", nil, verifiedResult(), time.Millisecond)
			}
		}()
	}
	wg.Wait()

	if got := m.Summary().TotalToolCalls; got != 400 {
		t.Fatalf("tool calls %d, want 400", got)
	}
	if len(m.Events()) != 400 {
		t.Fatalf("event count %d, want 400", len(m.Events()))
	}
}
