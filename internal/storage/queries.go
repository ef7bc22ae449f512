package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type ReportRun struct {
	ID          string
	CreatedAt   string
	StartDate   string
	EndDate     string
	Granularity string
	ByCategory  int64
	Total       string
	LineItems   int64
	Skipped     int64
	Excluded    int64
}

type ReportRow struct {
	RunID    string
	Position int64
	Bucket   string
	Category string
	Total    string
}

const createRun = `
INSERT INTO report_runs (id, created_at, start_date, end_date, granularity, by_category, total, line_items, skipped, excluded)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateRun(ctx context.Context, arg ReportRun) error {
	_, err := q.db.ExecContext(ctx, createRun,
		arg.ID,
		arg.CreatedAt,
		arg.StartDate,
		arg.EndDate,
		arg.Granularity,
		arg.ByCategory,
		arg.Total,
		arg.LineItems,
		arg.Skipped,
		arg.Excluded,
	)
	return err
}

const createRow = `
INSERT INTO report_rows (run_id, position, bucket, category, total)
VALUES (?, ?, ?, ?, ?)
`

func (q *Queries) CreateRow(ctx context.Context, arg ReportRow) error {
	_, err := q.db.ExecContext(ctx, createRow,
		arg.RunID,
		arg.Position,
		arg.Bucket,
		arg.Category,
		arg.Total,
	)
	return err
}

const getRun = `
SELECT id, created_at, start_date, end_date, granularity, by_category, total, line_items, skipped, excluded
FROM report_runs
WHERE id = ?
`

func (q *Queries) GetRun(ctx context.Context, id string) (ReportRun, error) {
	row := q.db.QueryRowContext(ctx, getRun, id)
	var i ReportRun
	err := row.Scan(
		&i.ID,
		&i.CreatedAt,
		&i.StartDate,
		&i.EndDate,
		&i.Granularity,
		&i.ByCategory,
		&i.Total,
		&i.LineItems,
		&i.Skipped,
		&i.Excluded,
	)
	return i, err
}

const listRuns = `
SELECT id, created_at, start_date, end_date, granularity, by_category, total, line_items, skipped, excluded
FROM report_runs
ORDER BY created_at DESC, id
LIMIT ?
`

func (q *Queries) ListRuns(ctx context.Context, limit int64) ([]ReportRun, error) {
	rows, err := q.db.QueryContext(ctx, listRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReportRun
	for rows.Next() {
		var i ReportRun
		if err := rows.Scan(
			&i.ID,
			&i.CreatedAt,
			&i.StartDate,
			&i.EndDate,
			&i.Granularity,
			&i.ByCategory,
			&i.Total,
			&i.LineItems,
			&i.Skipped,
			&i.Excluded,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getRows = `
SELECT run_id, position, bucket, category, total
FROM report_rows
WHERE run_id = ?
ORDER BY position
`

func (q *Queries) GetRows(ctx context.Context, runID string) ([]ReportRow, error) {
	rows, err := q.db.QueryContext(ctx, getRows, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ReportRow
	for rows.Next() {
		var i ReportRow
		if err := rows.Scan(
			&i.RunID,
			&i.Position,
			&i.Bucket,
			&i.Category,
			&i.Total,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
