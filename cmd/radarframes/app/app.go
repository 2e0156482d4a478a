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
	"github.com/seedops/flighttrack/internal/radar"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.OutDir); err != nil {
		return fmt.Errorf("output directory '%s' is not usable: %w", config.OutDir, err)
	}

	bounds, err := config.ClipBounds()
	if err != nil {
		return err
	}

	var annotator *radar.Annotator
	if config.FontPath != "" {
		if annotator, err = radar.NewAnnotator(config.FontPath); err != nil {
			return fmt.Errorf("loading annotation font: %w", err)
		}
		defer annotator.Close()
	} else {
		logger.Info("no annotation font configured, frames will be unlabelled")
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

	pool := radar.NewRenderPool(radar.PoolConfig{
		Bounds:    bounds,
		Annotator: annotator,
		Workers:   config.Workers,
		Logger:    logger,
	})

	renderer := pipeline.NewFrameRenderer(pipeline.RenderConfig{
		OutDir:     config.OutDir,
		ArchiveDir: config.ArchiveDir,
		Bounds:     bounds,
		Pool:       pool,
		Logger:     logger,
		Metrics:    metrics,
		Catalog:    store,
	})

	summary, err := renderer.Run(ctx)
	if err != nil {
		return fmt.Errorf("rendering frames: %w", err)
	}

	logger.Info("run complete",
		slog.Int("frames", summary.Frames),
		slog.Int("rendered", summary.Flights[pipeline.RenderDone]),
		slog.Int("skipped", summary.Flights[pipeline.RenderSkipped]),
		slog.Int("no_data", summary.Flights[pipeline.RenderNoData]))
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
