package join

import (
	"testing"

	"possales/internal/core"
)

func strPtr(s string) *string { return &s }

func TestEnrichItems_OneRowPerPrimary(t *testing.T) {
	items := []core.Item{
		{ID: "i1", Name: "Cola", CategoryID: strPtr("c1")},
		{ID: "i2", Name: "Bag", CategoryID: nil},
		{ID: "i3", Name: "Mystery", CategoryID: strPtr("missing")},
		{ID: "i4", Name: "Tea", CategoryID: strPtr("c1")},
	}
	cats := []core.Category{{ID: "c1", Name: "Drinks"}, {ID: "c2", Name: "Food"}}

	got := EnrichItems(items, cats)
	if len(got) != len(items) {
		t.Fatalf("expected %d rows, got %d", len(items), len(got))
	}
	for i, e := range got {
		if e.ID != items[i].ID {
			t.Fatalf("row %d: expected id %s, got %s", i, items[i].ID, e.ID)
		}
	}
	if got[0].CategoryName == nil || *got[0].CategoryName != "Drinks" {
		t.Fatalf("expected Drinks for i1, got %v", got[0].CategoryName)
	}
	if got[1].CategoryName != nil {
		t.Fatalf("expected nil category for item without category id")
	}
	if got[2].CategoryName != nil {
		t.Fatalf("expected nil category for unmatched category id")
	}
	if got[3].CategoryName == nil || *got[3].CategoryName != "Drinks" {
		t.Fatalf("expected Drinks for i4")
	}
}

func TestEnrichItems_DuplicateSecondaryKeysFirstWins(t *testing.T) {
	items := []core.Item{{ID: "i1", CategoryID: strPtr("c1")}}
	cats := []core.Category{{ID: "c1", Name: "First"}, {ID: "c1", Name: "Second"}}

	got := EnrichItems(items, cats)
	if len(got) != 1 {
		t.Fatalf("duplicates must not multiply primary rows, got %d", len(got))
	}
	if *got[0].CategoryName != "First" {
		t.Fatalf("expected first match, got %s", *got[0].CategoryName)
	}
}

func TestEnrichItems_EmptyInputs(t *testing.T) {
	if got := EnrichItems(nil, nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
	got := EnrichItems([]core.Item{{ID: "i1", CategoryID: strPtr("c1")}}, nil)
	if len(got) != 1 || got[0].CategoryName != nil {
		t.Fatalf("expected retained row with nil category, got %+v", got)
	}
}

func TestLeft_Generic(t *testing.T) {
	type order struct{ id, customer string }
	type customer struct{ id, name string }
	orders := []order{{"o1", "a"}, {"o2", "b"}, {"o3", ""}}
	customers := []customer{{"a", "Ada"}}

	got := Left(orders, customers,
		func(o order) (string, bool) { return o.customer, o.customer != "" },
		func(c customer) string { return c.id },
		func(o order, c *customer) string {
			if c == nil {
				return o.id + ":-"
			}
			return o.id + ":" + c.name
		},
	)
	want := []string{"o1:Ada", "o2:-", "o3:-"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestIndexItems(t *testing.T) {
	idx := IndexItems([]core.EnrichedItem{
		{Item: core.Item{ID: "i1", Name: "first"}},
		{Item: core.Item{ID: "i1", Name: "second"}},
	})
	if idx["i1"].Name != "first" {
		t.Fatalf("expected first item to win, got %s", idx["i1"].Name)
	}
}
