// Package http serves sales reports over a small JSON and CSV API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	applog "possales/internal/log"
	"possales/internal/middleware/ratelimit"
	"possales/internal/middleware/security"
	"possales/internal/report"
	"possales/internal/services"
	"possales/internal/storage"
)

// ReportGenerator produces a sales report for a request.
type ReportGenerator interface {
	Report(ctx context.Context, req services.Request) (services.Result, error)
	Location() *time.Location
}

// RunReader reads archived runs.
type RunReader interface {
	ListRuns(ctx context.Context, limit int) ([]storage.Run, error)
	GetRun(ctx context.Context, id string) (storage.Run, error)
}

// Exporter publishes a summary to an external sheet.
type Exporter interface {
	Export(ctx context.Context, s report.Summary) (string, error)
}

type Server struct {
	http.Server
	reports  ReportGenerator
	runs     RunReader
	exporter Exporter
	limiter  *ratelimit.Limiter
	logger   *applog.Logger

	includeUncategorized bool
	shutdownOnce         sync.Once
}

// Option configures optional collaborators.
type Option func(*Server)

// WithRuns exposes the archive under /api/runs.
func WithRuns(r RunReader) Option {
	return func(s *Server) { s.runs = r }
}

// WithExporter enables export=sheets on /api/sales.
func WithExporter(e Exporter) Option {
	return func(s *Server) { s.exporter = e }
}

// WithRateLimit bounds report requests per client. Health checks are not limited.
func WithRateLimit(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithIncludeUncategorized sets the default for the include_uncategorized parameter.
func WithIncludeUncategorized(include bool) Option {
	return func(s *Server) { s.includeUncategorized = include }
}

func NewServer(addr string, reports ReportGenerator, logger *applog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = applog.Wrap(nil, applog.ComponentHTTP)
	}
	s := &Server{
		reports:              reports,
		logger:               logger,
		includeUncategorized: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(applog.Middleware(logger))
	r.Use(security.Headers(security.DefaultHeadersConfig()))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		if s.limiter != nil {
			r.Use(s.limiter.Middleware(ratelimit.ClientIP, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			}))
		}
		r.Get("/sales", s.handleSales)
		r.Get("/sales.csv", s.handleSalesCSV)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
		})
	})

	s.Server = http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		err = s.Server.Shutdown(ctx)
		if s.limiter != nil {
			s.limiter.Stop()
		}
	})
	return err
}
