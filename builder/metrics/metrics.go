// Package metrics provides per-run performance tracking.
package metrics

import (
	"fmt"
	"time"
)

// RunMetrics tracks what happened during one generation run.
type RunMetrics struct {
	// Timing
	StartTime  time.Time
	EndTime    time.Time
	SelectTime time.Duration
	RenderTime time.Duration

	// Selection
	SourcesTried int
	SourceIndex  int // -1 when the fallback topic was used
	FallbackUsed bool

	// Output
	FilenameProbes int
	BytesWritten   int
	CatalogSize    int
}

// NewRunMetrics creates a new metrics instance.
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		StartTime:   time.Now(),
		SourceIndex: -1,
	}
}

// RecordEnd marks the end of the run.
func (m *RunMetrics) RecordEnd() {
	m.EndTime = time.Now()
}

// TotalDuration returns the total run duration.
func (m *RunMetrics) TotalDuration() time.Duration {
	if m.EndTime.IsZero() {
		return time.Since(m.StartTime)
	}
	return m.EndTime.Sub(m.StartTime)
}

// RecordSelection stores the outcome of topic selection.
func (m *RunMetrics) RecordSelection(tried, index int, fallback bool, took time.Duration) {
	m.SourcesTried = tried
	m.SourceIndex = index
	m.FallbackUsed = fallback
	m.SelectTime = took
}

// String returns a single-line summary of the run.
func (m *RunMetrics) String() string {
	source := fmt.Sprintf("source #%d of %d tried", m.SourceIndex+1, m.SourcesTried)
	if m.FallbackUsed {
		source = fmt.Sprintf("fallback after %d sources", m.SourcesTried)
	}

	return fmt.Sprintf("📊 Generated 1 post in %v (%s, %d probes, %d bytes, %d in catalog)",
		m.TotalDuration().Round(time.Millisecond),
		source,
		m.FilenameProbes,
		m.BytesWritten,
		m.CatalogSize,
	)
}

// Print outputs the metrics to stdout.
func (m *RunMetrics) Print() {
	fmt.Println(m.String())
}
