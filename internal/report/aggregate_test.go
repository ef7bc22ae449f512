package report

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"possales/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func line(itemID, money string) core.LineItem {
	return core.LineItem{ItemID: itemID, TotalMoney: json.RawMessage(money)}
}

func receipt(id string, ts time.Time, lines ...core.LineItem) core.Receipt {
	return core.Receipt{ReceiptNumber: id, ReceiptDate: ts, LineItems: lines}
}

func enriched(id, category string) core.EnrichedItem {
	e := core.EnrichedItem{Item: core.Item{ID: id, Name: id}}
	if category != "" {
		c := category
		e.CategoryName = &c
		e.CategoryID = &c
	}
	return e
}

func TestSummarize_EndToEndDrinks(t *testing.T) {
	receipts := []core.Receipt{
		receipt("r1", at(2025, 1, 1, 9), line("cola", `"100"`)),
		receipt("r2", at(2025, 1, 1, 18), line("cola", `200`)),
	}
	items := []core.EnrichedItem{enriched("cola", "Drinks")}

	s, err := Summarize(receipts, items, Params{
		Start: date(2025, 1, 1), End: date(2025, 1, 1),
		Granularity: core.Day, ByCategory: true,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(s.Buckets) != 1 || !s.Buckets[0].Equal(date(2025, 1, 1)) {
		t.Fatalf("expected one bucket on 2025-01-01, got %v", s.Buckets)
	}
	if !reflect.DeepEqual(s.Categories, []string{"Drinks"}) {
		t.Fatalf("expected [Drinks], got %v", s.Categories)
	}
	if got := s.Value(date(2025, 1, 1), "Drinks"); got.String() != "300" {
		t.Fatalf("expected Drinks=300, got %s", got)
	}
}

func TestSummarize_CoercionSkipsMalformed(t *testing.T) {
	receipts := []core.Receipt{
		receipt("r1", at(2025, 2, 3, 10),
			line("a", `"100"`),
			line("a", `"abc"`),
			line("a", `200`),
		),
		receipt("r2", at(2025, 2, 3, 11), line("a", `"not-a-number"`)),
	}
	s, err := Summarize(receipts, []core.EnrichedItem{enriched("a", "Food")}, Params{
		Start: date(2025, 2, 1), End: date(2025, 2, 28), Granularity: core.Day,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Skipped != 2 {
		t.Fatalf("expected 2 skipped rows, got %d", s.Skipped)
	}
	if s.LineItems != 4 {
		t.Fatalf("expected 4 line items, got %d", s.LineItems)
	}
	if got := s.Value(date(2025, 2, 3), ""); got.String() != "300" {
		t.Fatalf("expected 300, got %s", got)
	}
}

func TestSummarize_OnlyMalformedStillOpensBucket(t *testing.T) {
	receipts := []core.Receipt{receipt("r1", at(2025, 2, 3, 10), line("a", `"abc"`))}
	s, err := Summarize(receipts, nil, Params{
		Start: date(2025, 2, 1), End: date(2025, 2, 28), Granularity: core.Day,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(s.Rows) != 1 || !s.Rows[0].Total.IsZero() || s.Skipped != 1 {
		t.Fatalf("expected a single zero row and one skipped, got %+v", s)
	}
}

func TestSummarize_DenseCategories(t *testing.T) {
	receipts := []core.Receipt{
		receipt("r1", at(2025, 1, 6, 10), line("cola", "5"), line("bread", "3")),
		receipt("r2", at(2025, 1, 14, 10), line("cola", "7")),
		receipt("r3", at(2025, 1, 22, 10), line("bag", "1")),
	}
	items := []core.EnrichedItem{
		enriched("cola", "Drinks"),
		enriched("bread", "Bakery"),
		enriched("bag", ""),
	}
	s, err := Summarize(receipts, items, Params{
		Start: date(2025, 1, 1), End: date(2025, 1, 31),
		Granularity: core.Week, ByCategory: true,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	wantCats := []string{"Bakery", "Drinks", core.UncategorizedLabel}
	if !reflect.DeepEqual(s.Categories, wantCats) {
		t.Fatalf("expected categories %v, got %v", wantCats, s.Categories)
	}
	if len(s.Buckets) != 3 {
		t.Fatalf("expected 3 weekly buckets, got %v", s.Buckets)
	}
	if len(s.Rows) != len(s.Buckets)*len(s.Categories) {
		t.Fatalf("expected dense table, got %d rows", len(s.Rows))
	}
	for i, b := range s.Buckets {
		seen := map[string]bool{}
		for _, r := range s.Rows[i*len(wantCats) : (i+1)*len(wantCats)] {
			if !r.Bucket.Equal(b) {
				t.Fatalf("rows not bucket-major at bucket %s", b)
			}
			seen[r.Category] = true
		}
		for _, c := range wantCats {
			if !seen[c] {
				t.Fatalf("bucket %s missing category %s", b, c)
			}
		}
	}
	if got := s.Value(date(2025, 1, 13), "Bakery"); !got.IsZero() {
		t.Fatalf("expected explicit zero for Bakery in week 2, got %s", got)
	}
	if got := s.Value(date(2025, 1, 20), core.UncategorizedLabel); got.String() != "1" {
		t.Fatalf("expected uncategorized 1, got %s", got)
	}
	if s.Total().String() != "16" {
		t.Fatalf("expected grand total 16, got %s", s.Total())
	}
}

func TestSummarize_ExcludeUncategorized(t *testing.T) {
	receipts := []core.Receipt{
		receipt("r1", at(2025, 1, 6, 10), line("cola", "5"), line("bag", "1"), line("unknown", "2")),
	}
	items := []core.EnrichedItem{enriched("cola", "Drinks"), enriched("bag", "")}
	s, err := Summarize(receipts, items, Params{
		Start: date(2025, 1, 1), End: date(2025, 1, 31),
		Granularity: core.Month, ByCategory: true, ExcludeUncategorized: true,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Excluded != 2 {
		t.Fatalf("expected 2 excluded rows, got %d", s.Excluded)
	}
	if !reflect.DeepEqual(s.Categories, []string{"Drinks"}) {
		t.Fatalf("expected only Drinks, got %v", s.Categories)
	}
}

func TestSummarize_UnmatchedItemIsUncategorized(t *testing.T) {
	receipts := []core.Receipt{receipt("r1", at(2025, 1, 6, 10), line("ghost", "9"))}
	s, err := Summarize(receipts, nil, Params{
		Start: date(2025, 1, 1), End: date(2025, 1, 31),
		Granularity: core.Month, ByCategory: true,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got := s.Value(date(2025, 1, 1), core.UncategorizedLabel); got.String() != "9" {
		t.Fatalf("expected 9 under uncategorized, got %s", got)
	}
	if s.Uncategorized != core.UncategorizedLabel {
		t.Fatalf("expected uncategorized series label, got %q", s.Uncategorized)
	}
}

func TestSummarize_RealUncategorizedCategoryStaysSeparate(t *testing.T) {
	receipts := []core.Receipt{
		receipt("r1", at(2025, 1, 6, 10), line("mug", "100"), line("bag", "50")),
	}
	items := []core.EnrichedItem{enriched("mug", core.UncategorizedLabel), enriched("bag", "")}

	s, err := Summarize(receipts, items, Params{
		Start: date(2025, 1, 1), End: date(2025, 1, 31),
		Granularity: core.Month, ByCategory: true,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	want := []string{core.UncategorizedLabel, core.UncategorizedLabel + " (no category)"}
	if !reflect.DeepEqual(s.Categories, want) {
		t.Fatalf("expected %v, got %v", want, s.Categories)
	}
	if s.Uncategorized != want[1] {
		t.Fatalf("expected uncategorized series %q, got %q", want[1], s.Uncategorized)
	}
	if len(s.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(s.Rows))
	}
	if got := s.Value(date(2025, 1, 1), want[0]); got.String() != "100" {
		t.Fatalf("expected real category 100, got %s", got)
	}
	if got := s.Value(date(2025, 1, 1), want[1]); got.String() != "50" {
		t.Fatalf("expected items without category 50, got %s", got)
	}

	s, err = Summarize(receipts, items, Params{
		Start: date(2025, 1, 1), End: date(2025, 1, 31),
		Granularity: core.Month, ByCategory: true, ExcludeUncategorized: true,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !reflect.DeepEqual(s.Categories, []string{core.UncategorizedLabel}) || s.Excluded != 1 {
		t.Fatalf("expected only the real category and one excluded, got %v excluded=%d", s.Categories, s.Excluded)
	}
	if s.Uncategorized != "" || s.Total().String() != "100" {
		t.Fatalf("expected total 100 and no uncategorized series, got %s %q", s.Total(), s.Uncategorized)
	}
}

func TestSummarize_CommaAmountIsSkipped(t *testing.T) {
	receipts := []core.Receipt{receipt("r1", at(2025, 1, 6, 10), line("cola", `"1,234"`))}

	s, err := Summarize(receipts, []core.EnrichedItem{enriched("cola", "Drinks")}, Params{
		Start: date(2025, 1, 1), End: date(2025, 1, 31), Granularity: core.Month,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Skipped != 1 {
		t.Fatalf("expected 1 skipped, got %d", s.Skipped)
	}
	if !s.Total().IsZero() {
		t.Fatalf("expected total 0, got %s", s.Total())
	}
}

func TestSummarize_ZeroLineReceiptsContributeNothing(t *testing.T) {
	receipts := []core.Receipt{receipt("r1", at(2025, 1, 6, 10))}
	s, err := Summarize(receipts, nil, Params{
		Start: date(2025, 1, 1), End: date(2025, 1, 31), Granularity: core.Day,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !s.IsEmpty() || len(s.Rows) != 0 {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}

func TestSummarize_FiltersOutsideRange(t *testing.T) {
	receipts := []core.Receipt{
		receipt("before", at(2024, 12, 31, 23), line("a", "1")),
		receipt("first", at(2025, 1, 1, 0), line("a", "2")),
		receipt("last", at(2025, 1, 31, 23), line("a", "4")),
		receipt("after", at(2025, 2, 1, 0), line("a", "8")),
	}
	s, err := Summarize(receipts, nil, Params{
		Start: date(2025, 1, 1), End: date(2025, 1, 31), Granularity: core.Month,
	})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Total().String() != "6" {
		t.Fatalf("expected only in-range receipts (6), got %s", s.Total())
	}
}

func TestSummarize_Idempotent(t *testing.T) {
	receipts := []core.Receipt{
		receipt("r1", at(2025, 1, 6, 10), line("cola", "5"), line("bread", `"x"`)),
		receipt("r2", at(2025, 3, 14, 10), line("cola", "7")),
	}
	items := []core.EnrichedItem{enriched("cola", "Drinks"), enriched("bread", "Bakery")}
	p := Params{Start: date(2025, 1, 1), End: date(2025, 12, 31), Granularity: core.Month, ByCategory: true}

	first, err := Summarize(receipts, items, p)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	second, err := Summarize(receipts, items, p)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical summaries\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestSummarize_InvalidInput(t *testing.T) {
	_, err := Summarize(nil, nil, Params{
		Start: date(2025, 1, 1), End: date(2025, 6, 1), Granularity: core.Granularity("hour"),
	})
	var ge *core.InvalidGranularityError
	if !errors.As(err, &ge) {
		t.Fatalf("expected InvalidGranularityError, got %v", err)
	}

	_, err = Summarize(nil, nil, Params{
		Start: date(2025, 6, 1), End: date(2025, 1, 1), Granularity: core.Day,
	})
	var re *core.InvalidRangeError
	if !errors.As(err, &re) {
		t.Fatalf("expected InvalidRangeError, got %v", err)
	}
}

func TestSummarize_EmptyIsValid(t *testing.T) {
	s, err := Summarize(nil, nil, Params{Start: date(2025, 1, 1), End: date(2025, 1, 2), Granularity: core.Week, ByCategory: true})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !s.IsEmpty() || !s.Total().IsZero() {
		t.Fatalf("expected empty summary, got %+v", s)
	}
}

func TestSummary_Pivot(t *testing.T) {
	receipts := []core.Receipt{
		receipt("r1", at(2025, 1, 1, 10), line("cola", "5")),
		receipt("r2", at(2025, 1, 2, 10), line("bread", "3")),
	}
	items := []core.EnrichedItem{enriched("cola", "Drinks"), enriched("bread", "Bakery")}
	s, err := Summarize(receipts, items, Params{Start: date(2025, 1, 1), End: date(2025, 1, 2), Granularity: core.Day, ByCategory: true})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !reflect.DeepEqual(s.Columns(), []string{"Bakery", "Drinks"}) {
		t.Fatalf("unexpected columns %v", s.Columns())
	}
	p := s.Pivot()
	if len(p) != 2 || p[0][0].String() != "0" || p[0][1].String() != "5" || p[1][0].String() != "3" || p[1][1].String() != "0" {
		t.Fatalf("unexpected pivot %v", p)
	}
}
