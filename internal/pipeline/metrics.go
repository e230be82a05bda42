package pipeline

import (
	"sync"

	"github.com/finhelm/taxengine/internal/domain"
)

// CalculationMetrics is the per-calculation record emitted to the sink.
type CalculationMetrics struct {
	CacheHit      bool
	ErrorCount    int
	WarningCount  int
	LatencyMillis int64
	FilingStatus  domain.FilingStatus
}

// MetricsSink receives one record per completed calculation attempt.
type MetricsSink interface {
	RecordCalculation(m CalculationMetrics)
}

// NopMetrics discards every record.
type NopMetrics struct{}

func (NopMetrics) RecordCalculation(CalculationMetrics) {}

// MemoryMetrics accumulates records in memory; used by tests and the
// admin surface's stats endpoint.
type MemoryMetrics struct {
	mu      sync.Mutex
	records []CalculationMetrics
}

// NewMemoryMetrics creates an empty sink.
func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{}
}

func (m *MemoryMetrics) RecordCalculation(rec CalculationMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
}

// Records returns a copy of everything recorded so far.
func (m *MemoryMetrics) Records() []CalculationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CalculationMetrics, len(m.records))
	copy(out, m.records)
	return out
}
