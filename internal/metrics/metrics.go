// Package metrics keeps per-run counters and a health snapshot for the
// optional monitoring endpoint.
package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	SearchesCompleted  int64
	FallbacksUsed      int64
	PagesScraped       int64
	SummariesGenerated int64
	ChunksSent         int64

	// Status
	LastRunTime     time.Time
	LastRunDuration time.Duration
	LastErrorTime   time.Time
	LastError       string
	IsHealthy       bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddSearch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchesCompleted++
}

func (m *Metrics) AddFallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FallbacksUsed++
}

func (m *Metrics) AddPageScraped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PagesScraped++
}

func (m *Metrics) AddSummary() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) AddChunkSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChunksSent++
}

func (m *Metrics) SetLastRun(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.LastRunDuration = duration
	m.IsHealthy = true
}

// SetError records a sanitized failure message. Callers must never pass raw
// provider error text here.
func (m *Metrics) SetError(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = msg
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"searches_completed":   m.SearchesCompleted,
		"fallbacks_used":       m.FallbacksUsed,
		"pages_scraped":        m.PagesScraped,
		"summaries_generated":  m.SummariesGenerated,
		"chunks_sent":          m.ChunksSent,
		"last_run_time":        m.LastRunTime.Format(time.RFC3339),
		"last_run_duration_ms": m.LastRunDuration.Milliseconds(),
		"last_error_time":      m.LastErrorTime.Format(time.RFC3339),
		"last_error":           m.LastError,
		"is_healthy":           m.IsHealthy,
	}
}
