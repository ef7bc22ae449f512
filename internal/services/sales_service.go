package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"possales/internal/amqp"
	"possales/internal/core"
	"possales/internal/join"
	applog "possales/internal/log"
	"possales/internal/loyverse"
	"possales/internal/report"
	"possales/internal/storage"
)

// ReportArchive stores generated summaries.
type ReportArchive interface {
	SaveRun(ctx context.Context, run storage.Run) (string, error)
}

// EventPublisher announces generated summaries.
type EventPublisher interface {
	PublishReportGenerated(ctx context.Context, msg *amqp.ReportGeneratedMessage) error
}

// Request describes one report. Start and End are dates; End is inclusive.
type Request struct {
	Start                time.Time
	End                  time.Time
	Granularity          core.Granularity
	ByCategory           bool
	IncludeUncategorized bool
	// Archive stores the result when an archive is configured.
	Archive bool
}

// NewRequest parses the textual form used by the CLI and the HTTP API.
func NewRequest(start, end, granularity string, byCategory bool, loc *time.Location) (Request, error) {
	s, err := core.ParseDate(start, loc)
	if err != nil {
		return Request{}, fmt.Errorf("start: %w", err)
	}
	e, err := core.ParseDate(end, loc)
	if err != nil {
		return Request{}, fmt.Errorf("end: %w", err)
	}
	g, err := core.ParseGranularity(granularity)
	if err != nil {
		return Request{}, err
	}
	req := Request{Start: s, End: e, Granularity: g, ByCategory: byCategory, IncludeUncategorized: true}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate checks the request before any network access.
func (r Request) Validate() error {
	if err := r.Granularity.Validate(); err != nil {
		return err
	}
	return core.ValidateRange(r.Start, r.End)
}

// Result is a generated report.
type Result struct {
	RunID       string
	GeneratedAt time.Time
	Summary     report.Summary
	Archived    bool
	Published   bool
}

// SalesService orchestrates fetching, joining and aggregating sales data.
type SalesService struct {
	collections *loyverse.Collections
	location    *time.Location
	archive     ReportArchive
	publisher   EventPublisher
	logger      *applog.Logger
	now         func() time.Time
}

// Option configures a SalesService.
type Option func(*SalesService)

// WithArchive enables storing requested reports.
func WithArchive(a ReportArchive) Option {
	return func(s *SalesService) { s.archive = a }
}

// WithPublisher enables report generated events.
func WithPublisher(p EventPublisher) Option {
	return func(s *SalesService) { s.publisher = p }
}

// WithLocation sets the time zone for date ranges and buckets.
func WithLocation(loc *time.Location) Option {
	return func(s *SalesService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *applog.Logger) Option {
	return func(s *SalesService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewSalesService(p *loyverse.Paginator, opts ...Option) *SalesService {
	s := &SalesService{
		collections: loyverse.NewCollections(p),
		location:    time.UTC,
		logger:      applog.Wrap(nil, applog.ComponentReport),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the configured report time zone.
func (s *SalesService) Location() *time.Location {
	return s.location
}

// Report fetches the three collections concurrently, then enriches and
// summarizes them. Archive and publish failures are logged only.
func (s *SalesService) Report(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	from, to := core.RangeBounds(req.Start, req.End, s.location)

	var (
		receipts   []core.Receipt
		items      []core.Item
		categories []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		receipts, err = s.collections.Receipts(gctx, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = s.collections.Items(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.collections.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("fetch sales data: %w", err)
	}

	enriched := join.EnrichItems(items, categories)
	summary, err := report.Summarize(receipts, enriched, report.Params{
		Start:                req.Start,
		End:                  req.End,
		Granularity:          req.Granularity,
		ByCategory:           req.ByCategory,
		ExcludeUncategorized: !req.IncludeUncategorized,
		Location:             s.location,
	})
	if err != nil {
		return Result{}, fmt.Errorf("summarize: %w", err)
	}

	logger := s.logger.With(
		applog.FieldStart, req.Start.Format(core.DateLayout),
		applog.FieldEnd, req.End.Format(core.DateLayout),
		applog.FieldGranularity, req.Granularity)
	if summary.Skipped > 0 {
		logger.WarnContext(ctx, "Line items with non-numeric totals were skipped",
			applog.FieldSkipped, summary.Skipped)
	}
	logger.InfoContext(ctx, "Sales report generated",
		"receipts", len(receipts),
		"buckets", len(summary.Buckets),
		applog.FieldExcluded, summary.Excluded)

	run := storage.NewRun(summary, s.now())
	res := Result{RunID: run.ID, GeneratedAt: run.CreatedAt, Summary: summary}

	if req.Archive {
		if s.archive == nil {
			logger.WarnContext(ctx, "Archive not configured, skipping save")
		} else if _, err := s.archive.SaveRun(ctx, run); err != nil {
			logger.ErrorContext(ctx, "Failed to archive report", applog.FieldRunID, run.ID, applog.FieldError, err)
		} else {
			res.Archived = true
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishReportGenerated(ctx, amqp.NewReportGeneratedMessage(run.ID, summary)); err != nil {
			logger.ErrorContext(ctx, "Failed to publish report event", applog.FieldRunID, run.ID, applog.FieldError, err)
		} else {
			res.Published = true
		}
	}

	return res, nil
}
