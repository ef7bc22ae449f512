package loyverse

import (
	"context"
	"net/url"
	"time"

	"possales/internal/core"
)

// Collections exposes the three typed collections used by reports.
type Collections struct {
	paginator *Paginator
}

func NewCollections(p *Paginator) *Collections {
	return &Collections{paginator: p}
}

// Receipts returns receipts created in [from, to). Loyverse filters on
// created_at; callers still filter on receipt_date.
func (c *Collections) Receipts(ctx context.Context, from, to time.Time) ([]core.Receipt, error) {
	return FetchAllAs[core.Receipt](ctx, c.paginator, ReceiptsEndpoint, ReceiptParams(from, to))
}

// Items returns every item.
func (c *Collections) Items(ctx context.Context) ([]core.Item, error) {
	return FetchAllAs[core.Item](ctx, c.paginator, ItemsEndpoint, nil)
}

// Categories returns every category.
func (c *Collections) Categories(ctx context.Context) ([]core.Category, error) {
	return FetchAllAs[core.Category](ctx, c.paginator, CategoriesEndpoint, nil)
}

const apiTimeLayout = "2006-01-02T15:04:05.000Z"

// ReceiptParams builds the created_at filters for the instant range [from, to).
func ReceiptParams(from, to time.Time) url.Values {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("created_at_min", from.UTC().Format(apiTimeLayout))
	}
	if !to.IsZero() {
		q.Set("created_at_max", to.UTC().Add(-time.Millisecond).Format(apiTimeLayout))
	}
	return q
}
