package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seedops/flighttrack/internal/catalog"
	"github.com/seedops/flighttrack/internal/observability"
	"github.com/seedops/flighttrack/internal/pipeline"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.LogDir); err != nil {
		return fmt.Errorf("input directory '%s' is not usable: %w", config.LogDir, err)
	}

	var metrics *observability.Metrics
	if config.MetricsAddr != "" {
		metrics = observability.NewMetrics()
		serveMetrics(config.MetricsAddr, logger)
	}

	var store *catalog.Store
	if config.CatalogPath != "" {
		store = catalog.New(config.CatalogPath)
		defer store.Close()
	}

	builder := pipeline.NewTrackBuilder(pipeline.TrackConfig{
		LogDir:  config.LogDir,
		OutDir:  config.OutDir,
		Logger:  logger,
		Metrics: metrics,
		Catalog: store,
	})

	summary, err := builder.Run(ctx)
	if err != nil {
		return fmt.Errorf("building tracks: %w", err)
	}

	logger.Info("run complete",
		slog.Int("attempted", summary.Attempted),
		slog.Int("indexed", summary.Indexed),
		slog.Int("skipped", summary.Skipped))
	return nil
}

// serveMetrics exposes the Prometheus registry for the duration of the
// batch run. Serve errors are logged, never fatal.
func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("metrics listener stopped", "error", err)
		}
	}()
}
