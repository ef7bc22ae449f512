package core

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO date format accepted for report ranges.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date (YYYY-MM-DD) at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w: expected YYYY-MM-DD", s, ErrInvalidDate)
	}
	return t, nil
}

// ValidateRange checks that start is not after end. Both are dates; the
// range they describe includes the whole end day.
func ValidateRange(start, end time.Time) error {
	if start.After(end) {
		return &InvalidRangeError{Start: start, End: end}
	}
	return nil
}

// RangeBounds returns the half-open instant interval [start 00:00, end+1 00:00)
// covered by the inclusive date range.
func RangeBounds(start, end time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	from := startOfDay(start, loc)
	to := startOfDay(end, loc).AddDate(0, 0, 1)
	return from, to
}

// BucketStart returns the start of the half-open bucket containing t.
// Days start at midnight in loc, weeks on Monday (ISO-8601) and months on the 1st.
func BucketStart(t time.Time, g Granularity, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day := startOfDay(t, loc)
	switch g {
	case Day:
		return day, nil
	case Week:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset), nil
	case Month:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc), nil
	default:
		return time.Time{}, &InvalidGranularityError{Value: string(g)}
	}
}

// BucketEnd returns the exclusive end of the bucket starting at start.
func BucketEnd(start time.Time, g Granularity) time.Time {
	switch g {
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// BucketLabel formats a bucket start for display.
func BucketLabel(start time.Time, g Granularity) string {
	switch g {
	case Week:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case Month:
		return start.Format("2006-01")
	default:
		return start.Format(DateLayout)
	}
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
