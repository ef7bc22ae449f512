package render

import (
	"encoding/json"
	"io"

	"github.com/shopspring/decimal"

	"possales/internal/core"
	"possales/internal/report"
)

type jsonRow struct {
	Bucket   string          `json:"bucket"`
	Label    string          `json:"label"`
	Category string          `json:"category,omitempty"`
	Total    decimal.Decimal `json:"total"`
}

// Document is the JSON shape of a summary, shared with the HTTP API.
type Document struct {
	Granularity string          `json:"granularity"`
	ByCategory  bool            `json:"by_category"`
	Start       string          `json:"start"`
	End         string          `json:"end"`
	Categories  []string        `json:"categories,omitempty"`
	Rows        []jsonRow       `json:"rows"`
	Total       decimal.Decimal `json:"total"`
	LineItems   int             `json:"line_items"`
	Skipped     int             `json:"skipped"`
	Excluded    int             `json:"excluded"`
}

// NewDocument converts s for JSON output.
func NewDocument(s report.Summary) Document {
	d := Document{
		Granularity: s.Granularity.String(),
		ByCategory:  s.ByCategory,
		Start:       s.Start.Format(core.DateLayout),
		End:         s.End.Format(core.DateLayout),
		Categories:  s.Categories,
		Rows:        make([]jsonRow, 0, len(s.Rows)),
		Total:       s.Total(),
		LineItems:   s.LineItems,
		Skipped:     s.Skipped,
		Excluded:    s.Excluded,
	}
	for _, r := range s.Rows {
		d.Rows = append(d.Rows, jsonRow{
			Bucket:   r.Bucket.Format(core.DateLayout),
			Label:    core.BucketLabel(r.Bucket, s.Granularity),
			Category: r.Category,
			Total:    r.Total,
		})
	}
	return d
}

// JSON writes s as an indented JSON document.
func JSON(w io.Writer, s report.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewDocument(s))
}
