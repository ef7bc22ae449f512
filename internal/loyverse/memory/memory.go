// Package memory serves Loyverse collections from local JSON fixtures.
//
// Each collection lives in <dir>/<endpoint path>.json as a JSON array. Pages
// are cut with the requested size and chained with synthetic cursors, so the
// paginator sees the same protocol as against the real API.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"possales/internal/loyverse"
)

const cursorPrefix = "mem:"

type Store struct {
	mu          sync.Mutex
	collections map[string][]json.RawMessage
	pageSize    int
}

var _ loyverse.PageFetcher = (*Store)(nil)

// New creates an empty store. pageSize <= 0 means loyverse.MaxPageLimit.
func New(pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = loyverse.MaxPageLimit
	}
	return &Store{collections: map[string][]json.RawMessage{}, pageSize: pageSize}
}

// NewFromFiles loads receipts.json, items.json and categories.json from base.
// Missing files yield empty collections.
func NewFromFiles(base string, pageSize int) (*Store, error) {
	s := New(pageSize)
	for _, ep := range []loyverse.Endpoint{loyverse.ReceiptsEndpoint, loyverse.ItemsEndpoint, loyverse.CategoriesEndpoint} {
		path := filepath.Join(base, ep.Path+".json")
		b, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", path, err)
		}
		var recs []json.RawMessage
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, fmt.Errorf("decode fixture %s: %w", path, err)
		}
		s.collections[ep.Path] = recs
	}
	return s, nil
}

// Put replaces a collection with the JSON encoding of records.
func (s *Store) Put(endpoint loyverse.Endpoint, records ...any) error {
	raw := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode %s record: %w", endpoint, err)
		}
		raw = append(raw, b)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[endpoint.Path] = raw
	return nil
}

// FetchPage implements loyverse.PageFetcher.
func (s *Store) FetchPage(_ context.Context, endpoint loyverse.Endpoint, params url.Values, cursor string) (loyverse.Page, error) {
	s.mu.Lock()
	all := append([]json.RawMessage(nil), s.collections[endpoint.Path]...)
	s.mu.Unlock()

	all, err := filterCreatedAt(all, params)
	if err != nil {
		return loyverse.Page{}, err
	}

	offset := 0
	if cursor != "" {
		if !strings.HasPrefix(cursor, cursorPrefix) {
			return loyverse.Page{}, &loyverse.RemoteServiceError{Endpoint: endpoint.String(), StatusCode: 400, Message: "invalid cursor"}
		}
		offset, err = strconv.Atoi(strings.TrimPrefix(cursor, cursorPrefix))
		if err != nil || offset < 0 || offset > len(all) {
			return loyverse.Page{}, &loyverse.RemoteServiceError{Endpoint: endpoint.String(), StatusCode: 400, Message: "invalid cursor"}
		}
	}

	end := offset + s.pageSize
	if end > len(all) {
		end = len(all)
	}
	page := loyverse.Page{Records: all[offset:end]}
	if end < len(all) {
		page.Cursor = cursorPrefix + strconv.Itoa(end)
	}
	return page, nil
}

func filterCreatedAt(records []json.RawMessage, params url.Values) ([]json.RawMessage, error) {
	minS, maxS := params.Get("created_at_min"), params.Get("created_at_max")
	if minS == "" && maxS == "" {
		return records, nil
	}
	var lo, hi time.Time
	var err error
	if minS != "" {
		if lo, err = time.Parse(time.RFC3339, minS); err != nil {
			return nil, fmt.Errorf("created_at_min: %w", err)
		}
	}
	if maxS != "" {
		if hi, err = time.Parse(time.RFC3339, maxS); err != nil {
			return nil, fmt.Errorf("created_at_max: %w", err)
		}
	}
	out := records[:0]
	for _, r := range records {
		var rec struct {
			CreatedAt time.Time `json:"created_at"`
		}
		if err := json.Unmarshal(r, &rec); err != nil || rec.CreatedAt.IsZero() {
			out = append(out, r)
			continue
		}
		if !lo.IsZero() && rec.CreatedAt.Before(lo) {
			continue
		}
		if !hi.IsZero() && rec.CreatedAt.After(hi) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
