package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// UncategorizedLabel names the series of items without a resolvable category.
// A real category with the same name keeps it; the series is then suffixed.
const UncategorizedLabel = "Uncategorized"

type (
	Granularity string

	// Receipt is one point-of-sale transaction.
	Receipt struct {
		ReceiptNumber string     `json:"receipt_number"`
		ReceiptType   string     `json:"receipt_type,omitempty"`
		ReceiptDate   time.Time  `json:"receipt_date"`
		CreatedAt     time.Time  `json:"created_at"`
		CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
		LineItems     []LineItem `json:"line_items"`
	}

	// LineItem references an item and carries the raw monetary amount as sent
	// by the API; it may be a JSON string or a JSON number.
	LineItem struct {
		ID         string          `json:"id,omitempty"`
		ItemID     string          `json:"item_id"`
		ItemName   string          `json:"item_name,omitempty"`
		Quantity   float64         `json:"quantity,omitempty"`
		TotalMoney json.RawMessage `json:"total_money,omitempty"`
	}

	Item struct {
		ID         string  `json:"id"`
		Name       string  `json:"item_name"`
		CategoryID *string `json:"category_id"`
	}

	Category struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	// EnrichedItem is an Item with its category name resolved. CategoryName is
	// nil when the item has no category or the category is unknown.
	EnrichedItem struct {
		Item
		CategoryName *string `json:"category_name"`
	}
)

var (
	ErrInvalidGranularity = errors.New("invalid granularity")
	ErrInvalidRange       = errors.New("invalid date range")
	ErrInvalidDate        = errors.New("invalid date")
)

// InvalidGranularityError reports a granularity outside day, week and month.
type InvalidGranularityError struct {
	Value string
}

func (e *InvalidGranularityError) Error() string {
	return fmt.Sprintf("invalid granularity %q: must be one of day, week, month", e.Value)
}

func (e *InvalidGranularityError) Is(target error) bool {
	return target == ErrInvalidGranularity
}

// InvalidRangeError reports a start date after the end date.
type InvalidRangeError struct {
	Start time.Time
	End   time.Time
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start %s is after end %s",
		e.Start.Format(DateLayout), e.End.Format(DateLayout))
}

func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// ParseGranularity normalizes s and checks it against the supported set.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(strings.ToLower(strings.TrimSpace(s)))
	if err := g.Validate(); err != nil {
		return "", err
	}
	return g, nil
}

func (g Granularity) Validate() error {
	switch g {
	case Day, Week, Month:
		return nil
	default:
		return &InvalidGranularityError{Value: string(g)}
	}
}

func (g Granularity) String() string {
	return string(g)
}

// Granularities returns the supported granularities in increasing width.
func Granularities() []Granularity {
	return []Granularity{Day, Week, Month}
}

// HasCategory reports whether the item carries a non-empty category id.
func (i Item) HasCategory() bool {
	return i.CategoryID != nil && *i.CategoryID != ""
}
