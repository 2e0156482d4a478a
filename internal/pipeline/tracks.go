// Package pipeline orchestrates the two batch stages: building per-flight
// track artifacts with the master index, and rendering radar frames for
// processed flights. Failures respect a strict boundary: a bad row never
// fails its flight, a bad flight never fails the run, a bad scan never
// fails its flight's rendering.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/seedops/flighttrack/internal/catalog"
	"github.com/seedops/flighttrack/internal/flightlog"
	"github.com/seedops/flighttrack/internal/observability"
	"github.com/seedops/flighttrack/internal/track"
)

// IndexFile is the master index artifact at the output directory root.
const IndexFile = "flights.json"

// LogExt is the raw seeding-log extension in the input directory.
const LogExt = ".txt"

// IndexEntry is one master-index record, consumed by the map frontend.
type IndexEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	DataPath    string `json:"dataPath"`
}

// ErrNoLogs means the input directory held nothing to process; the run
// has categorically no work.
var ErrNoLogs = errors.New("no flight logs found")

// TrackConfig wires a TrackBuilder. Catalog and Metrics are optional.
type TrackConfig struct {
	LogDir  string
	OutDir  string
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Catalog *catalog.Store
}

// TrackBuilder turns raw seeding logs into per-flight track artifacts and
// one master index.
type TrackBuilder struct {
	logDir  string
	outDir  string
	logger  *slog.Logger
	metrics *observability.Metrics
	catalog *catalog.Store
}

func NewTrackBuilder(cfg TrackConfig) *TrackBuilder {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TrackBuilder{
		logDir:  cfg.LogDir,
		outDir:  cfg.OutDir,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		catalog: cfg.Catalog,
	}
}

// TrackSummary reports what one run did.
type TrackSummary struct {
	Attempted int
	Indexed   int
	Skipped   int
}

// Run processes every flight log in the input directory in sorted filename
// order and rewrites the master index from this run's successes. Flights
// that fail filename parsing, clean down to nothing, or hit I/O errors are
// logged and omitted; only an unusable input directory fails the run.
func (b *TrackBuilder) Run(ctx context.Context) (TrackSummary, error) {
	var summary TrackSummary

	logNames, err := b.listLogs()
	if err != nil {
		return summary, err
	}
	if len(logNames) == 0 {
		return summary, fmt.Errorf("%w in %s", ErrNoLogs, b.logDir)
	}

	runID, recordFlight := b.beginCatalogRun(ctx)

	b.logger.Info("processing flight logs", "count", len(logNames), "source", b.logDir)

	var index []IndexEntry
	for _, name := range logNames {
		entry, record := b.processOne(name)
		recordFlight(record)

		summary.Attempted++
		if entry != nil {
			index = append(index, *entry)
			summary.Indexed++
			if b.metrics != nil {
				b.metrics.FlightsProcessed.Inc()
			}
		} else {
			summary.Skipped++
			if b.metrics != nil {
				b.metrics.FlightsSkipped.Inc()
			}
		}
	}

	if len(index) > 0 {
		if err := b.writeIndex(index); err != nil {
			return summary, err
		}
		b.logger.Info("master index written",
			"flights", humanize.Comma(int64(len(index))),
			"path", filepath.Join(b.outDir, IndexFile))
	}

	b.finishCatalogRun(ctx, runID)
	return summary, nil
}

// listLogs returns the raw log filenames in deterministic sorted order,
// which fixes the master index ordering.
func (b *TrackBuilder) listLogs() ([]string, error) {
	entries, err := os.ReadDir(b.logDir)
	if err != nil {
		return nil, fmt.Errorf("listing raw logs: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), LogExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// processOne handles a single flight end to end. A nil entry means the
// flight is excluded from the index; the record says why.
func (b *TrackBuilder) processOne(name string) (*IndexEntry, catalog.FlightRecord) {
	id, start, err := flightlog.ParseFlightID(name)
	if err != nil {
		b.logger.Warn("skipping flight: unparseable filename", "file", name, "error", err)
		return nil, catalog.FlightRecord{FlightID: name, Status: catalog.StatusBadFilename}
	}

	entry := &IndexEntry{
		ID:          id,
		DisplayName: flightlog.DisplayName(id),
		DataPath:    path.Join(id, track.ArtifactFile),
	}

	artifactPath := filepath.Join(b.outDir, id, track.ArtifactFile)
	if _, err := os.Stat(artifactPath); err == nil {
		// Track artifacts are written once and immutable; an existing one
		// still earns its index entry.
		b.logger.Info("track artifact exists, not overwriting", "flight", id)
		return entry, catalog.FlightRecord{FlightID: id, Status: catalog.StatusSkipped}
	}

	f, err := os.Open(filepath.Join(b.logDir, name))
	if err != nil {
		b.logger.Warn("skipping flight: unreadable log", "flight", id, "error", err)
		return nil, catalog.FlightRecord{FlightID: id, Status: catalog.StatusIOError}
	}
	samples, err := flightlog.ParseRecords(start, f)
	_ = f.Close()
	if err != nil {
		b.logger.Warn("skipping flight: log read failed", "flight", id, "error", err)
		return nil, catalog.FlightRecord{FlightID: id, Status: catalog.StatusIOError}
	}

	// A path geometry needs two points; anything less is "no data".
	if len(samples) < 2 {
		b.logger.Warn("skipping flight: no valid data after cleaning", "flight", id, "rows", len(samples))
		return nil, catalog.FlightRecord{FlightID: id, Status: catalog.StatusNoData}
	}

	events := flightlog.Classify(samples)
	tr, err := track.Build(id, samples, events)
	if err != nil {
		b.logger.Warn("skipping flight: track assembly failed", "flight", id, "error", err)
		return nil, catalog.FlightRecord{FlightID: id, Status: catalog.StatusIOError}
	}

	fc, err := tr.FeatureCollection()
	if err != nil {
		b.logger.Warn("skipping flight: feature collection failed", "flight", id, "error", err)
		return nil, catalog.FlightRecord{FlightID: id, Status: catalog.StatusNoData}
	}

	if err := b.writeArtifact(artifactPath, fc); err != nil {
		b.logger.Warn("skipping flight: artifact write failed", "flight", id, "error", err)
		return nil, catalog.FlightRecord{FlightID: id, Status: catalog.StatusIOError}
	}

	if b.metrics != nil {
		b.metrics.TrackPoints.Observe(float64(len(samples)))
	}
	b.logger.Info("flight processed", "flight", id, "points", len(samples))

	return entry, catalog.FlightRecord{
		FlightID: id,
		Status:   catalog.StatusProcessed,
		Points:   len(samples),
	}
}

func (b *TrackBuilder) writeArtifact(artifactPath string, fc *track.FeatureCollection) error {
	if err := os.MkdirAll(filepath.Dir(artifactPath), 0o755); err != nil {
		return fmt.Errorf("creating flight directory: %w", err)
	}
	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("encoding track artifact: %w", err)
	}
	if err := os.WriteFile(artifactPath, data, 0o644); err != nil {
		return fmt.Errorf("writing track artifact: %w", err)
	}
	return nil
}

// writeIndex rewrites the master index in full, replacing any prior
// version.
func (b *TrackBuilder) writeIndex(index []IndexEntry) error {
	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding master index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(b.outDir, IndexFile), data, 0o644); err != nil {
		return fmt.Errorf("writing master index: %w", err)
	}
	return nil
}

func (b *TrackBuilder) beginCatalogRun(ctx context.Context) (int64, func(catalog.FlightRecord)) {
	if b.catalog == nil {
		return 0, func(catalog.FlightRecord) {}
	}
	runID, err := b.catalog.BeginRun(ctx, catalog.RunTracks)
	if err != nil {
		b.logger.Warn("catalog unavailable for this run", "error", err)
		return 0, func(catalog.FlightRecord) {}
	}
	return runID, func(rec catalog.FlightRecord) {
		if err := b.catalog.RecordFlight(ctx, runID, rec); err != nil {
			b.logger.Warn("catalog record failed", "flight", rec.FlightID, "error", err)
		}
	}
}

func (b *TrackBuilder) finishCatalogRun(ctx context.Context, runID int64) {
	if b.catalog == nil || runID == 0 {
		return
	}
	if err := b.catalog.FinishRun(ctx, runID); err != nil {
		b.logger.Warn("catalog finish failed", "error", err)
	}
}
