package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	apphttp "possales/internal/http"
	applog "possales/internal/log"
	"possales/internal/middleware/ratelimit"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = LeafCommand{
	Use:   "serve",
	Short: "Serve reports over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeps(commandContext(cmd), needs{service: true, archive: true, sheetsIfConfigured: true}, func(d *Deps) error {
			return runServe(commandContext(cmd), d)
		})
	},
}.Build()

func newServer(d *Deps) *apphttp.Server {
	opts := []apphttp.Option{apphttp.WithIncludeUncategorized(d.Config.IncludeUncategorized)}
	if d.Archive != nil {
		opts = append(opts, apphttp.WithRuns(d.Archive))
	}
	if d.Exporter != nil {
		opts = append(opts, apphttp.WithExporter(d.Exporter))
	}
	if d.Config.RateLimitPerMinute > 0 {
		opts = append(opts, apphttp.WithRateLimit(ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: d.Config.RateLimitPerMinute,
		})))
	}
	return apphttp.NewServer(":"+d.Config.Port, d.Service, d.Logger.WithComponent(applog.ComponentHTTP), opts...)
}

func runServe(ctx context.Context, d *Deps) error {
	srv := newServer(d)

	_, done := GracefulShutdown(ctx, d.Logger, shutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			d.Logger.Error("HTTP server shutdown failed", applog.FieldError, err)
		}
	})

	d.Logger.Info("Server starting", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}
