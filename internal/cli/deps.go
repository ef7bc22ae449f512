package cli

import (
	"context"
	"errors"
	"fmt"

	"possales/internal/amqp"
	"possales/internal/backend"
	"possales/internal/config"
	applog "possales/internal/log"
	"possales/internal/loyverse"
	"possales/internal/services"
	"possales/internal/sheets"
	gsheet "possales/internal/sheets/google"
	"possales/internal/storage"
)

// Deps are the collaborators a command runs against. Optional fields are
// nil when not configured or not requested.
type Deps struct {
	Config   *config.Config
	Logger   *applog.Logger
	Service  *services.SalesService
	Archive  *storage.SQLiteRepository
	Exporter sheets.SummaryExporter

	closers []func() error
}

// needs selects which optional collaborators to build.
type needs struct {
	service bool
	archive bool
	sheets  bool

	// sheetsIfConfigured builds the exporter only when a spreadsheet is set,
	// logging instead of failing when it cannot be built.
	sheetsIfConfigured bool
}

// Close releases every opened resource.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildDeps(ctx context.Context, cfg *config.Config, logger *applog.Logger, n needs) (*Deps, error) {
	d := &Deps{Config: cfg, Logger: logger}

	if n.archive {
		repo, err := InitSQLite(logger, cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		d.Archive = repo
		d.closers = append(d.closers, repo.Close)
	}

	switch {
	case n.sheets:
		if !cfg.SheetsEnabled() {
			d.Close()
			return nil, errors.New("sheets export requested but GOOGLE_SPREADSHEET_ID is not set")
		}
		exp, err := newSheetsExporter(ctx, cfg, logger)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.Exporter = exp
	case n.sheetsIfConfigured && cfg.SheetsEnabled():
		exp, err := newSheetsExporter(ctx, cfg, logger)
		if err != nil {
			logger.Warn("Google Sheets export disabled", applog.FieldError, err)
		} else {
			d.Exporter = exp
		}
	}

	if !n.service {
		return d, nil
	}

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		d.Close()
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateFetcher(ctx, bcfg)
	if err != nil {
		d.Close()
		return nil, err
	}
	if res.Cleanup != nil {
		d.closers = append(d.closers, res.Cleanup)
	}

	opts := []services.Option{
		services.WithLocation(cfg.Location()),
		services.WithLogger(logger.WithComponent(applog.ComponentReport)),
	}
	if d.Archive != nil {
		opts = append(opts, services.WithArchive(d.Archive))
	}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger.WithComponent(applog.ComponentAMQP))
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", applog.FieldError, err)
		} else {
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
			opts = append(opts, services.WithPublisher(client))
			d.closers = append(d.closers, client.Close)
		}
	}

	paginator := loyverse.NewPaginator(res.Fetcher, cfg.MaxPages, logger.WithComponent(applog.ComponentLoyverse))
	d.Service = services.NewSalesService(paginator, opts...)
	return d, nil
}

func newSheetsExporter(ctx context.Context, cfg *config.Config, logger *applog.Logger) (sheets.SummaryExporter, error) {
	svc, err := gsheet.NewService(ctx, gsheet.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	exp, err := gsheet.New(svc, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, logger.WithComponent(applog.ComponentSheets))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

// withDeps loads configuration, builds the requested collaborators and
// runs fn, closing everything afterwards.
func withDeps(ctx context.Context, n needs, fn func(*Deps) error) error {
	LoadEnvFile()
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg.LogLevel)

	d, err := buildDeps(ctx, cfg, logger, n)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Warn("Failed to close resources", applog.FieldError, err)
		}
	}()
	return fn(d)
}
