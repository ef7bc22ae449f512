// Package memory is an in-process SummaryExporter for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"possales/internal/report"
	ports "possales/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	exports []report.Summary
}

var _ ports.SummaryExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// Export records the summary and returns a synthetic range reference.
func (e *Exporter) Export(_ context.Context, s report.Summary) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exports = append(e.exports, s)
	return fmt.Sprintf("mem:%d", len(e.exports)), nil
}

// Exports returns the recorded summaries in export order.
func (e *Exporter) Exports() []report.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]report.Summary(nil), e.exports...)
}
