// Package join combines independently fetched collections by key.
package join

import "possales/internal/core"

// Left returns one merged row per primary record, in primary order.
//
// primaryKey reports ok=false for records without a key; those never match.
// When several secondary records share a key the first one wins. merge is
// called with a nil secondary when there is no match.
func Left[P, S, R any, K comparable](
	primary []P,
	secondary []S,
	primaryKey func(P) (K, bool),
	secondaryKey func(S) K,
	merge func(P, *S) R,
) []R {
	index := make(map[K]int, len(secondary))
	for i, s := range secondary {
		k := secondaryKey(s)
		if _, dup := index[k]; dup {
			continue
		}
		index[k] = i
	}

	out := make([]R, 0, len(primary))
	for _, p := range primary {
		var match *S
		if k, ok := primaryKey(p); ok {
			if i, found := index[k]; found {
				match = &secondary[i]
			}
		}
		out = append(out, merge(p, match))
	}
	return out
}

// EnrichItems resolves each item's category name. Items without a category
// or with an unknown category keep a nil CategoryName.
func EnrichItems(items []core.Item, categories []core.Category) []core.EnrichedItem {
	return Left(items, categories,
		func(i core.Item) (string, bool) {
			if !i.HasCategory() {
				return "", false
			}
			return *i.CategoryID, true
		},
		func(c core.Category) string { return c.ID },
		func(i core.Item, c *core.Category) core.EnrichedItem {
			e := core.EnrichedItem{Item: i}
			if c != nil {
				name := c.Name
				e.CategoryName = &name
			}
			return e
		},
	)
}

// IndexItems maps enriched items by id. The first item wins on duplicate ids.
func IndexItems(items []core.EnrichedItem) map[string]core.EnrichedItem {
	out := make(map[string]core.EnrichedItem, len(items))
	for _, it := range items {
		if _, dup := out[it.ID]; dup {
			continue
		}
		out[it.ID] = it
	}
	return out
}
