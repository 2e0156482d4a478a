package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/seedops/flighttrack/internal/catalog"
	"github.com/seedops/flighttrack/internal/observability"
	"github.com/seedops/flighttrack/internal/radar"
	"github.com/seedops/flighttrack/internal/track"
)

// RenderState is where a flight's rendering stage ended up.
type RenderState string

const (
	RenderDone    RenderState = "done"
	RenderSkipped RenderState = "skipped"   // metadata artifact already exists
	RenderNoData  RenderState = "no_data"   // nothing in the archive overlaps the flight
	RenderNoTrack RenderState = "no_track"  // flight directory without a track artifact
	RenderFailed  RenderState = "failed"    // track artifact unreadable
	RenderEmpty   RenderState = "no_frames" // every matched scan failed to render
)

// RenderConfig wires a FrameRenderer. Pool is required; Catalog and
// Metrics are optional.
type RenderConfig struct {
	OutDir     string
	ArchiveDir string
	Bounds     radar.Bounds
	Pool       *radar.RenderPool
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	Catalog    *catalog.Store
}

// FrameRenderer runs the rendering stage for every processed flight: match
// the shared archive against the flight's day span, render matched scans
// through the worker pool, and package the successes into the per-flight
// radar metadata artifact.
type FrameRenderer struct {
	outDir     string
	archiveDir string
	bounds     radar.Bounds
	pool       *radar.RenderPool
	logger     *slog.Logger
	metrics    *observability.Metrics
	catalog    *catalog.Store
}

func NewFrameRenderer(cfg RenderConfig) *FrameRenderer {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &FrameRenderer{
		outDir:     cfg.OutDir,
		archiveDir: cfg.ArchiveDir,
		bounds:     cfg.Bounds,
		pool:       cfg.Pool,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		catalog:    cfg.Catalog,
	}
}

// RenderSummary reports what one rendering run did.
type RenderSummary struct {
	Flights map[RenderState]int
	Frames  int
}

// Run iterates processed flight directories in sorted order and renders
// each one. A missing archive directory halts this stage; per-flight and
// per-scan failures stay inside their own boundary.
func (r *FrameRenderer) Run(ctx context.Context) (RenderSummary, error) {
	summary := RenderSummary{Flights: make(map[RenderState]int)}

	archive, err := radar.ListArchive(r.archiveDir)
	if err != nil {
		return summary, err
	}

	flightDirs, err := r.listFlightDirs()
	if err != nil {
		return summary, err
	}

	runID, recordFlight := r.beginCatalogRun(ctx)

	r.logger.Info("rendering radar frames",
		"flights", len(flightDirs), "archive_scans", len(archive))

	for _, id := range flightDirs {
		state, frames := r.renderFlight(id, archive)
		summary.Flights[state]++
		summary.Frames += frames
		recordFlight(catalog.FlightRecord{
			FlightID: id,
			Status:   renderStatus(state),
			Frames:   frames,
		})
	}

	r.finishCatalogRun(ctx, runID)
	return summary, nil
}

// listFlightDirs returns flight directory names under the output root in
// sorted order.
func (r *FrameRenderer) listFlightDirs() ([]string, error) {
	entries, err := os.ReadDir(r.outDir)
	if err != nil {
		return nil, fmt.Errorf("listing processed flights: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	return dirs, nil
}

// renderFlight runs one flight through the Pending → Rendering → Done
// state machine, returning its final state and frame count.
func (r *FrameRenderer) renderFlight(id string, archive []radar.ArchiveFile) (RenderState, int) {
	flightDir := filepath.Join(r.outDir, id)

	if radar.MetadataExists(flightDir) {
		// Existing metadata is this flight's completion marker; nothing
		// is decoded or rendered again.
		r.logger.Info("radar metadata exists, skipping", "flight", id)
		return RenderSkipped, 0
	}

	fc, err := track.LoadCollection(filepath.Join(flightDir, track.ArtifactFile))
	if errors.Is(err, fs.ErrNotExist) {
		r.logger.Info("no track artifact, skipping", "flight", id)
		return RenderNoTrack, 0
	}
	if err != nil {
		r.logger.Warn("track artifact unreadable", "flight", id, "error", err)
		return RenderFailed, 0
	}

	first, last, err := fc.TimeSpan()
	if err != nil {
		r.logger.Warn("track artifact has no usable points", "flight", id, "error", err)
		return RenderFailed, 0
	}

	dayKeys := track.DayKeys(first, last)
	matched := radar.MatchByDays(archive, dayKeys)
	if len(matched) == 0 {
		r.logger.Info("no radar data for flight window", "flight", id, "days", dayKeys)
		return RenderNoData, 0
	}

	framesDir := filepath.Join(flightDir, radar.FramesDir)
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		r.logger.Warn("cannot create frames directory", "flight", id, "error", err)
		return RenderFailed, 0
	}

	r.logger.Info("rendering matched scans", "flight", id, "scans", len(matched))

	start := time.Now()
	frames := r.pool.Render(matched, framesDir)
	if r.metrics != nil {
		r.metrics.RenderDuration.Observe(time.Since(start).Seconds())
		r.metrics.FramesRendered.Add(float64(len(frames)))
		r.metrics.FramesFailed.Add(float64(len(matched) - len(frames)))
	}

	if len(frames) == 0 {
		// No metadata artifact at all: the flight stays renderable on a
		// future run once the archive heals.
		r.logger.Warn("no frames rendered", "flight", id, "scans", len(matched))
		return RenderEmpty, 0
	}

	if err := radar.WriteMetadata(flightDir, radar.Metadata{Bounds: r.bounds, Frames: frames}); err != nil {
		r.logger.Warn("radar metadata write failed", "flight", id, "error", err)
		return RenderFailed, len(frames)
	}

	r.logger.Info("flight rendered", "flight", id,
		"frames", len(frames), "failed", len(matched)-len(frames))
	return RenderDone, len(frames)
}

func renderStatus(state RenderState) string {
	switch state {
	case RenderDone:
		return catalog.StatusRendered
	case RenderSkipped:
		return catalog.StatusSkipped
	case RenderNoData:
		return catalog.StatusNoMatches
	case RenderNoTrack:
		return catalog.StatusNoTrack
	case RenderEmpty:
		return catalog.StatusNoFrames
	default:
		return catalog.StatusIOError
	}
}

func (r *FrameRenderer) beginCatalogRun(ctx context.Context) (int64, func(catalog.FlightRecord)) {
	if r.catalog == nil {
		return 0, func(catalog.FlightRecord) {}
	}
	runID, err := r.catalog.BeginRun(ctx, catalog.RunFrames)
	if err != nil {
		r.logger.Warn("catalog unavailable for this run", "error", err)
		return 0, func(catalog.FlightRecord) {}
	}
	return runID, func(rec catalog.FlightRecord) {
		if err := r.catalog.RecordFlight(ctx, runID, rec); err != nil {
			r.logger.Warn("catalog record failed", "flight", rec.FlightID, "error", err)
		}
	}
}

func (r *FrameRenderer) finishCatalogRun(ctx context.Context, runID int64) {
	if r.catalog == nil || runID == 0 {
		return
	}
	if err := r.catalog.FinishRun(ctx, runID); err != nil {
		r.logger.Warn("catalog finish failed", "error", err)
	}
}
