package loyverse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	applog "possales/internal/log"
)

// DefaultMaxPages bounds a single cursor chain.
const DefaultMaxPages = 10000

// Paginator follows cursor chains to the end. Each call keeps its own
// accumulator; a Paginator is safe for concurrent use as long as its
// PageFetcher is.
type Paginator struct {
	fetcher  PageFetcher
	maxPages int
	logger   *applog.Logger
}

// NewPaginator returns a paginator over fetcher. maxPages <= 0 means DefaultMaxPages.
func NewPaginator(fetcher PageFetcher, maxPages int, logger *applog.Logger) *Paginator {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = applog.Wrap(nil, applog.ComponentLoyverse)
	}
	return &Paginator{fetcher: fetcher, maxPages: maxPages, logger: logger}
}

// FetchAll returns every record of endpoint in server order.
//
// The next page is requested only with the cursor the previous page
// returned. A cursor seen before, or a chain longer than the page cap,
// ends the call with a *PaginationLoopError.
func (p *Paginator) FetchAll(ctx context.Context, endpoint Endpoint, params url.Values) ([]json.RawMessage, error) {
	var (
		records []json.RawMessage
		cursor  string
		pages   int
	)
	seen := map[string]struct{}{}

	for {
		page, err := p.fetcher.FetchPage(ctx, endpoint, params, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch %s page %d: %w", endpoint, pages+1, err)
		}
		pages++
		records = append(records, page.Records...)

		if page.Cursor == "" {
			break
		}
		if _, dup := seen[page.Cursor]; dup {
			return nil, &PaginationLoopError{
				Endpoint: endpoint.String(),
				Cursor:   page.Cursor,
				Pages:    pages,
				Reason:   "cursor repeated",
			}
		}
		if pages >= p.maxPages {
			return nil, &PaginationLoopError{
				Endpoint: endpoint.String(),
				Cursor:   page.Cursor,
				Pages:    pages,
				Reason:   fmt.Sprintf("page cap %d reached", p.maxPages),
			}
		}
		seen[page.Cursor] = struct{}{}
		cursor = page.Cursor
	}

	p.logger.InfoContext(ctx, "Fetched collection",
		applog.FieldEndpoint, endpoint.String(),
		applog.FieldPage, pages,
		applog.FieldRecords, len(records))
	return records, nil
}

// FetchAllAs fetches every record of endpoint and decodes each into T.
func FetchAllAs[T any](ctx context.Context, p *Paginator, endpoint Endpoint, params url.Values) ([]T, error) {
	raw, err := p.FetchAll(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("decode %s record %d: %w", endpoint, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
