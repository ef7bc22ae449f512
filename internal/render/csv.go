package render

import (
	"encoding/csv"
	"io"

	"possales/internal/core"
	"possales/internal/report"
)

// CSV writes bucket,category,total rows. The category column is omitted
// when the summary is not broken down.
func CSV(w io.Writer, s report.Summary) error {
	cw := csv.NewWriter(w)
	header := []string{"bucket", "total"}
	if s.ByCategory {
		header = []string{"bucket", "category", "total"}
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range s.Rows {
		rec := []string{r.Bucket.Format(core.DateLayout), r.Total.String()}
		if s.ByCategory {
			rec = []string{r.Bucket.Format(core.DateLayout), r.Category, r.Total.String()}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
