package metrics

import (
	"testing"
	"time"
)

func TestCountersAndStats(t *testing.T) {
	m := &Metrics{IsHealthy: true}

	m.AddSearch()
	m.AddSearch()
	m.AddFallback()
	m.AddSummary()
	m.AddChunkSent()
	m.AddChunkSent()
	m.AddChunkSent()

	stats := m.GetStats()
	if stats["searches_completed"].(int64) != 2 {
		t.Errorf("searches_completed = %v, want 2", stats["searches_completed"])
	}
	if stats["fallbacks_used"].(int64) != 1 {
		t.Errorf("fallbacks_used = %v, want 1", stats["fallbacks_used"])
	}
	if stats["chunks_sent"].(int64) != 3 {
		t.Errorf("chunks_sent = %v, want 3", stats["chunks_sent"])
	}
	if !stats["is_healthy"].(bool) {
		t.Error("fresh metrics must report healthy")
	}
}

func TestHealthFlipsOnErrorAndBackOnRun(t *testing.T) {
	m := &Metrics{IsHealthy: true}

	m.SetError("search stage failed")
	if m.GetStats()["is_healthy"].(bool) {
		t.Fatal("SetError must mark unhealthy")
	}
	if m.GetStats()["last_error"].(string) != "search stage failed" {
		t.Error("last error message not recorded")
	}

	m.SetLastRun(42 * time.Millisecond)
	stats := m.GetStats()
	if !stats["is_healthy"].(bool) {
		t.Error("a completed run must restore health")
	}
	if stats["last_run_duration_ms"].(int64) != 42 {
		t.Errorf("last_run_duration_ms = %v, want 42", stats["last_run_duration_ms"])
	}
}
