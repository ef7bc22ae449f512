// Package report turns receipts and enriched items into time-bucketed sales
// summaries.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"possales/internal/core"
	"possales/internal/join"
)

// Params controls a single aggregation. Start and End are dates; the whole
// End day is included.
type Params struct {
	Start       time.Time
	End         time.Time
	Granularity core.Granularity
	ByCategory  bool

	// ExcludeUncategorized drops line items whose item has no resolvable
	// category instead of reporting them under core.UncategorizedLabel.
	ExcludeUncategorized bool

	// Location is used for bucket boundaries. Defaults to UTC.
	Location *time.Location
}

// Validate checks the granularity and the date range.
func (p Params) Validate() error {
	if err := p.Granularity.Validate(); err != nil {
		return err
	}
	return core.ValidateRange(p.Start, p.End)
}

func (p Params) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// series identifies a category column. Items without a category form their
// own series, distinct from any real category sharing its display name.
type series struct {
	name          string
	uncategorized bool
}

type cellKey struct {
	bucket int64
	series series
}

// Summarize aggregates line item totals per bucket, optionally per category.
//
// Line items whose amount cannot be coerced still open their bucket and
// category but contribute zero; they are counted in Summary.Skipped.
// Receipts dated outside the range are ignored. Summarize has no side
// effects and returns equal summaries for equal inputs.
func Summarize(receipts []core.Receipt, items []core.EnrichedItem, p Params) (Summary, error) {
	if err := p.Validate(); err != nil {
		return Summary{}, err
	}
	loc := p.location()
	from, to := core.RangeBounds(p.Start, p.End, loc)
	index := join.IndexItems(items)

	s := Summary{
		Granularity: p.Granularity,
		ByCategory:  p.ByCategory,
		Start:       p.Start,
		End:         p.End,
	}
	totals := map[cellKey]decimal.Decimal{}
	buckets := map[int64]time.Time{}
	categories := map[series]struct{}{}

	for _, r := range receipts {
		if r.ReceiptDate.Before(from) || !r.ReceiptDate.Before(to) {
			continue
		}
		bucket, err := core.BucketStart(r.ReceiptDate, p.Granularity, loc)
		if err != nil {
			return Summary{}, err
		}
		for _, li := range r.LineItems {
			s.LineItems++
			item, found := index[li.ItemID]
			if p.ExcludeUncategorized && (!found || item.CategoryName == nil) {
				s.Excluded++
				continue
			}

			k := cellKey{bucket: bucket.Unix()}
			if p.ByCategory {
				if found && item.CategoryName != nil {
					k.series = series{name: *item.CategoryName}
				} else {
					k.series = series{uncategorized: true}
				}
				categories[k.series] = struct{}{}
			}
			buckets[k.bucket] = bucket

			amount, ok := li.Amount()
			if !ok {
				s.Skipped++
				amount = decimal.Zero
			}
			if cur, seen := totals[k]; seen {
				totals[k] = cur.Add(amount)
			} else {
				totals[k] = amount
			}
		}
	}

	s.Buckets = sortedBuckets(buckets)
	var labels map[series]string
	if p.ByCategory {
		s.Categories, labels = sortedCategories(categories)
		if _, ok := categories[series{uncategorized: true}]; ok {
			s.Uncategorized = labels[series{uncategorized: true}]
		}
	}
	s.Rows = denseRows(s, totals, labels)
	return s, nil
}

func sortedBuckets(m map[int64]time.Time) []time.Time {
	out := make([]time.Time, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// sortedCategories orders real category names alphabetically with the
// uncategorized series last, and returns the display label of every series.
// The uncategorized series is labelled core.UncategorizedLabel unless a real
// category already uses that name.
func sortedCategories(m map[series]struct{}) ([]string, map[series]string) {
	labels := make(map[series]string, len(m))
	names := make([]string, 0, len(m))
	taken := map[string]bool{}
	hasUncategorized := false
	for c := range m {
		if c.uncategorized {
			hasUncategorized = true
			continue
		}
		names = append(names, c.name)
		taken[c.name] = true
		labels[c] = c.name
	}
	sort.Strings(names)

	if hasUncategorized {
		label := core.UncategorizedLabel
		for taken[label] {
			label += " (no category)"
		}
		labels[series{uncategorized: true}] = label
		names = append(names, label)
	}
	return names, labels
}

func denseRows(s Summary, totals map[cellKey]decimal.Decimal, labels map[series]string) []Row {
	if !s.ByCategory {
		rows := make([]Row, 0, len(s.Buckets))
		for _, b := range s.Buckets {
			total, ok := totals[cellKey{bucket: b.Unix()}]
			if !ok {
				total = decimal.Zero
			}
			rows = append(rows, Row{Bucket: b, Total: total})
		}
		return rows
	}

	byLabel := make(map[string]series, len(labels))
	for k, l := range labels {
		byLabel[l] = k
	}
	rows := make([]Row, 0, len(s.Buckets)*len(s.Categories))
	for _, b := range s.Buckets {
		for _, c := range s.Categories {
			total, ok := totals[cellKey{bucket: b.Unix(), series: byLabel[c]}]
			if !ok {
				total = decimal.Zero
			}
			rows = append(rows, Row{Bucket: b, Category: c, Total: total})
		}
	}
	return rows
}
