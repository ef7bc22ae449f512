package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"possales/internal/core"
	applog "possales/internal/log"
	"possales/internal/report"

	_ "modernc.org/sqlite"
)

var ErrRunNotFound = errors.New("report run not found")

// Run is one archived report. Summary rows, buckets and categories are
// only populated by GetRun; Total is always set.
type Run struct {
	ID        string
	CreatedAt time.Time
	Total     decimal.Decimal
	Summary   report.Summary
}

// NewRun wraps a summary with a fresh id.
func NewRun(s report.Summary, createdAt time.Time) Run {
	return Run{ID: uuid.NewString(), CreatedAt: createdAt, Total: s.Total(), Summary: s}
}

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *applog.Logger
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if logger == nil {
		logger = applog.Wrap(nil, applog.ComponentStorage)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Debug("Report archive ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{db: db, queries: New(db), logger: logger}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRun stores the run and its rows in one transaction. A missing id is
// generated.
func (r *SQLiteRepository) SaveRun(ctx context.Context, run Run) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	s := run.Summary

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := r.queries.WithTx(tx)
	err = q.CreateRun(ctx, ReportRun{
		ID:          run.ID,
		CreatedAt:   run.CreatedAt.UTC().Format(time.RFC3339Nano),
		StartDate:   s.Start.Format(core.DateLayout),
		EndDate:     s.End.Format(core.DateLayout),
		Granularity: s.Granularity.String(),
		ByCategory:  boolToInt(s.ByCategory),
		Total:       s.Total().String(),
		LineItems:   int64(s.LineItems),
		Skipped:     int64(s.Skipped),
		Excluded:    int64(s.Excluded),
	})
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	for i, row := range s.Rows {
		err := q.CreateRow(ctx, ReportRow{
			RunID:    run.ID,
			Position: int64(i),
			Bucket:   row.Bucket.Format(time.RFC3339),
			Category: row.Category,
			Total:    row.Total.String(),
		})
		if err != nil {
			return "", fmt.Errorf("create row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}

	r.logger.InfoContext(ctx, "Report run archived",
		applog.FieldRunID, run.ID,
		applog.FieldGranularity, s.Granularity,
		applog.FieldRecords, len(s.Rows))
	return run.ID, nil
}

// ListRuns returns the most recent runs first, without their rows.
func (r *SQLiteRepository) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	dbRuns, err := r.queries.ListRuns(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs := make([]Run, 0, len(dbRuns))
	for _, dr := range dbRuns {
		run, err := runFromDB(dr)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// GetRun loads a run and rebuilds its summary.
func (r *SQLiteRepository) GetRun(ctx context.Context, id string) (Run, error) {
	dr, err := r.queries.GetRun(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	run, err := runFromDB(dr)
	if err != nil {
		return Run{}, err
	}

	dbRows, err := r.queries.GetRows(ctx, id)
	if err != nil {
		return Run{}, fmt.Errorf("get rows for run %s: %w", id, err)
	}
	seenBucket := map[int64]bool{}
	seenCategory := map[string]bool{}
	for _, dr := range dbRows {
		bucket, err := time.Parse(time.RFC3339, dr.Bucket)
		if err != nil {
			return Run{}, fmt.Errorf("parse bucket %q: %w", dr.Bucket, err)
		}
		total, err := decimal.NewFromString(dr.Total)
		if err != nil {
			return Run{}, fmt.Errorf("parse total %q: %w", dr.Total, err)
		}
		if !seenBucket[bucket.Unix()] {
			seenBucket[bucket.Unix()] = true
			run.Summary.Buckets = append(run.Summary.Buckets, bucket)
		}
		if run.Summary.ByCategory && !seenCategory[dr.Category] {
			seenCategory[dr.Category] = true
			run.Summary.Categories = append(run.Summary.Categories, dr.Category)
		}
		run.Summary.Rows = append(run.Summary.Rows, report.Row{Bucket: bucket, Category: dr.Category, Total: total})
	}
	return run, nil
}

func runFromDB(dr ReportRun) (Run, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, dr.CreatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at for run %s: %w", dr.ID, err)
	}
	start, err := time.Parse(core.DateLayout, dr.StartDate)
	if err != nil {
		return Run{}, fmt.Errorf("parse start for run %s: %w", dr.ID, err)
	}
	end, err := time.Parse(core.DateLayout, dr.EndDate)
	if err != nil {
		return Run{}, fmt.Errorf("parse end for run %s: %w", dr.ID, err)
	}
	total, err := decimal.NewFromString(dr.Total)
	if err != nil {
		return Run{}, fmt.Errorf("parse total for run %s: %w", dr.ID, err)
	}
	return Run{
		ID:        dr.ID,
		CreatedAt: createdAt,
		Total:     total,
		Summary: report.Summary{
			Granularity: core.Granularity(dr.Granularity),
			ByCategory:  dr.ByCategory != 0,
			Start:       start,
			End:         end,
			LineItems:   int(dr.LineItems),
			Skipped:     int(dr.Skipped),
			Excluded:    int(dr.Excluded),
		},
	}, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
