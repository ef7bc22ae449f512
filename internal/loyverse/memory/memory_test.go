package memory

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"possales/internal/core"
	"possales/internal/loyverse"
)

func TestStorePagesThroughPaginator(t *testing.T) {
	s := New(2)
	cats := []any{
		core.Category{ID: "c1", Name: "Drinks"},
		core.Category{ID: "c2", Name: "Food"},
		core.Category{ID: "c3", Name: "Bakery"},
		core.Category{ID: "c4", Name: "Gifts"},
		core.Category{ID: "c5", Name: "Other"},
	}
	if err := s.Put(loyverse.CategoriesEndpoint, cats...); err != nil {
		t.Fatalf("put: %v", err)
	}

	first, err := s.FetchPage(context.Background(), loyverse.CategoriesEndpoint, nil, "")
	if err != nil || len(first.Records) != 2 || first.Cursor == "" {
		t.Fatalf("unexpected first page %+v err=%v", first, err)
	}

	got, err := loyverse.NewCollections(loyverse.NewPaginator(s, 0, nil)).Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(got) != 5 || got[0].ID != "c1" || got[4].ID != "c5" {
		t.Fatalf("unexpected categories %+v", got)
	}
}

func TestStoreRejectsUnknownCursor(t *testing.T) {
	s := New(1)
	if _, err := s.FetchPage(context.Background(), loyverse.ItemsEndpoint, nil, "bogus"); err == nil {
		t.Fatal("expected error for foreign cursor")
	}
}

func TestStoreFiltersCreatedAt(t *testing.T) {
	s := New(10)
	_ = s.Put(loyverse.ReceiptsEndpoint,
		map[string]any{"receipt_number": "old", "created_at": "2024-12-31T10:00:00Z"},
		map[string]any{"receipt_number": "in", "created_at": "2025-01-15T10:00:00Z"},
	)
	q := url.Values{"created_at_min": {"2025-01-01T00:00:00.000Z"}, "created_at_max": {"2025-01-31T23:59:59.999Z"}}
	page, err := s.FetchPage(context.Background(), loyverse.ReceiptsEndpoint, q, "")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(page.Records) != 1 {
		t.Fatalf("expected one receipt in range, got %d", len(page.Records))
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "items.json"), []byte(`[{"id":"i1","item_name":"Cola","category_id":"c1"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewFromFiles(dir, 0)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	page, err := s.FetchPage(context.Background(), loyverse.ItemsEndpoint, nil, "")
	if err != nil || len(page.Records) != 1 || page.Cursor != "" {
		t.Fatalf("unexpected page %+v err=%v", page, err)
	}
	empty, err := s.FetchPage(context.Background(), loyverse.CategoriesEndpoint, nil, "")
	if err != nil || len(empty.Records) != 0 {
		t.Fatalf("missing fixture should be empty, got %+v err=%v", empty, err)
	}
}

func TestNewFromFilesMalformed(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "receipts.json"), []byte(`{"not":"an array"}`), 0o644)
	if _, err := NewFromFiles(dir, 0); err == nil {
		t.Fatal("expected decode error")
	}
}
