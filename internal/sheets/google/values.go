package google

import (
	"fmt"

	"possales/internal/core"
	"possales/internal/report"
)

// summaryValues lays s out as a header row followed by one row per bucket.
// Totals are written as numbers so the sheet can chart them.
func summaryValues(s report.Summary) [][]interface{} {
	cols := s.Columns()
	header := make([]interface{}, 0, len(cols)+1)
	header = append(header, "Period")
	for _, c := range cols {
		header = append(header, c)
	}

	values := [][]interface{}{header}
	pivot := s.Pivot()
	for i, b := range s.Buckets {
		row := make([]interface{}, 0, len(cols)+1)
		row = append(row, core.BucketLabel(b, s.Granularity))
		if i < len(pivot) {
			for _, v := range pivot[i] {
				f, _ := v.Float64()
				row = append(row, f)
			}
		}
		values = append(values, row)
	}
	return values
}

// columnName converts a 1-based column index to A1 letters.
func columnName(n int) string {
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}

func a1Range(sheet string, rows, cols int) string {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return fmt.Sprintf("%s!A1:%s%d", quoteSheet(sheet), columnName(cols), rows)
}

func quoteSheet(name string) string {
	return "'" + name + "'"
}
