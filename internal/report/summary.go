package report

import (
	"time"

	"github.com/shopspring/decimal"

	"possales/internal/core"
)

// Row is one cell of the summary: the total for a bucket, or for a
// (bucket, category) pair when the summary is broken down by category.
type Row struct {
	Bucket   time.Time       `json:"bucket"`
	Category string          `json:"category,omitempty"`
	Total    decimal.Decimal `json:"total"`
}

// Summary is the aggregated sales table.
//
// Rows are ordered bucket-major. With ByCategory set the table is dense:
// len(Rows) == len(Buckets) * len(Categories) and each bucket lists the
// categories in Categories order.
type Summary struct {
	Granularity core.Granularity `json:"granularity"`
	ByCategory  bool             `json:"by_category"`
	Start       time.Time        `json:"start"`
	End         time.Time        `json:"end"`
	Buckets     []time.Time      `json:"buckets"`
	Categories  []string         `json:"categories,omitempty"`
	Rows        []Row            `json:"rows"`

	// Uncategorized is the label of the series holding items without a
	// resolvable category, empty when there is none.
	Uncategorized string `json:"uncategorized,omitempty"`

	// LineItems counts line items inside the range, including skipped ones.
	LineItems int `json:"line_items"`
	// Skipped counts line items whose amount could not be coerced.
	Skipped int `json:"skipped"`
	// Excluded counts uncategorized line items dropped by configuration.
	Excluded int `json:"excluded"`
}

// IsEmpty reports whether no bucket received any line item.
func (s Summary) IsEmpty() bool {
	return len(s.Buckets) == 0
}

// Total returns the sum over all rows.
func (s Summary) Total() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.Rows {
		total = total.Add(r.Total)
	}
	return total
}

// Value returns the total for a bucket and category. category is ignored
// when the summary is not broken down.
func (s Summary) Value(bucket time.Time, category string) decimal.Decimal {
	for _, r := range s.Rows {
		if !r.Bucket.Equal(bucket) {
			continue
		}
		if s.ByCategory && r.Category != category {
			continue
		}
		return r.Total
	}
	return decimal.Zero
}

// Columns returns the series names of the pivoted table: the categories
// when broken down, a single "Total" column otherwise.
func (s Summary) Columns() []string {
	if s.ByCategory {
		return append([]string(nil), s.Categories...)
	}
	return []string{"Total"}
}

// Pivot returns one slice of values per bucket, aligned with Columns.
func (s Summary) Pivot() [][]decimal.Decimal {
	width := len(s.Columns())
	if width == 0 {
		return nil
	}
	out := make([][]decimal.Decimal, len(s.Buckets))
	for i := range s.Buckets {
		out[i] = make([]decimal.Decimal, width)
		for j := range out[i] {
			out[i][j] = decimal.Zero
		}
	}
	for i, r := range s.Rows {
		b, c := i/width, i%width
		if b < len(out) {
			out[b][c] = r.Total
		}
	}
	return out
}
