package backend

import (
	"context"
	"fmt"

	"possales/internal/auth"
	applog "possales/internal/log"
	"possales/internal/loyverse"
	"possales/internal/loyverse/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Wrap(nil, applog.ComponentApp)
	}
	return &DefaultFactory{logger: logger}
}

// CreateFetcher implements Factory.CreateFetcher
func (f *DefaultFactory) CreateFetcher(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case APIBackend:
		return f.createAPIFetcher(ctx, config)
	case MemoryBackend:
		return f.createMemoryFetcher(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createAPIFetcher(ctx context.Context, config Config) (*Result, error) {
	httpClient := auth.NewHTTPClient(ctx, auth.FileTokenSource{Path: config.TokenFile}, config.HTTPTimeout)
	client, err := loyverse.NewClient(httpClient, config.BaseURL, config.PageLimit,
		f.logger.WithComponent(applog.ComponentLoyverse))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Loyverse client: %w", err)
	}

	f.logger.Info("Initialized API backend",
		"base_url", config.BaseURL,
		"page_limit", client.Limit())

	return &Result{Fetcher: client}, nil
}

func (f *DefaultFactory) createMemoryFetcher(config Config) (*Result, error) {
	store, err := memory.NewFromFiles(config.FixturesDir, config.PageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}

	f.logger.Info("Initialized memory backend", "fixtures_dir", config.FixturesDir)

	return &Result{Fetcher: store}, nil
}
