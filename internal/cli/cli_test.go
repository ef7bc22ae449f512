package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"possales/internal/config"
	applog "possales/internal/log"
	"possales/internal/loyverse"
	"possales/internal/loyverse/memory"
	"possales/internal/services"
	sheetsmem "possales/internal/sheets/memory"
	"possales/internal/storage"
)

const (
	categoriesJSON = `[{"id":"c1","name":"Drinks"}]`
	itemsJSON      = `[
		{"id":"cola","item_name":"Cola","category_id":"c1"},
		{"id":"bag","item_name":"Bag","category_id":null}
	]`
	receiptsJSON = `[
		{"receipt_number":"1-1001","receipt_date":"2025-01-01T09:00:00Z","created_at":"2025-01-01T09:00:01Z",
		 "line_items":[{"item_id":"cola","total_money":"100"},{"item_id":"bag","total_money":5}]},
		{"receipt_number":"1-1002","receipt_date":"2025-01-01T18:00:00Z","created_at":"2025-01-01T18:00:01Z",
		 "line_items":[{"item_id":"cola","total_money":200},{"item_id":"cola","total_money":"abc"}]},
		{"receipt_number":"1-1003","receipt_date":"2025-01-02T10:00:00Z","created_at":"2025-01-02T10:00:01Z",
		 "line_items":[{"item_id":"cola","total_money":"12.50"}]}
	]`
)

// writeFixtures writes a small Loyverse data set and returns its directory.
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "categories.json"), []byte(categoriesJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "items.json"), []byte(itemsJSON), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "receipts.json"), []byte(receiptsJSON), 0644))
	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:                 "0",
		PageLimit:            1,
		MaxPages:             100,
		ReportTimezone:       "UTC",
		IncludeUncategorized: true,
		DataBackend:          config.BackendMemory,
		FixturesDir:          writeFixtures(t),
		SQLiteDBPath:         filepath.Join(t.TempDir(), "possales.db"),
	}
}

// setupDeps builds collaborators by hand, the way buildDeps would for the
// memory backend.
func setupDeps(t *testing.T) *Deps {
	t.Helper()
	cfg := testConfig(t)
	logger := applog.Discard()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	store, err := memory.NewFromFiles(cfg.FixturesDir, cfg.PageLimit)
	require.NoError(t, err)

	svc := services.NewSalesService(
		loyverse.NewPaginator(store, cfg.MaxPages, logger),
		services.WithArchive(repo),
		services.WithLocation(cfg.Location()),
		services.WithLogger(logger),
	)
	return &Deps{
		Config:   cfg,
		Logger:   logger,
		Service:  svc,
		Archive:  repo,
		Exporter: sheetsmem.New(),
	}
}
