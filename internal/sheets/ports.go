package sheets

import (
	"context"

	"possales/internal/report"
)

// Ports for outbound adapters.
type (
	// SummaryExporter publishes a pivoted summary table and returns the
	// range it wrote.
	SummaryExporter interface {
		Export(ctx context.Context, s report.Summary) (rangeRef string, err error)
	}
)
