package pipeline

import (
	"context"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedops/flighttrack/internal/flightlog"
	"github.com/seedops/flighttrack/internal/radar"
	"github.com/seedops/flighttrack/internal/track"
)

var testBounds = radar.Bounds{LatMin: 36.35, LonMin: -123.78, LatMax: 41.0, LonMax: -118.84}

// countingDecoder records decode calls and returns a one-cell scan.
type countingDecoder struct {
	calls atomic.Int32
}

func (d *countingDecoder) Decode(string) (*radar.VolumeScan, error) {
	d.calls.Add(1)
	return &radar.VolumeScan{
		Bounds:       testBounds,
		Rows:         1,
		Cols:         1,
		Reflectivity: []float32{30},
	}, nil
}

type tinyRasterizer struct{}

func (tinyRasterizer) Rasterize(*radar.VolumeScan, radar.Bounds, *radar.ColorScale) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
}

// writeTrackArtifact drops a two-point track artifact into a flight
// directory with points at the given timestamps.
func writeTrackArtifact(t *testing.T, outDir, id string, first, last time.Time) {
	t.Helper()

	tr := track.Track{ID: id, Points: []track.Point{
		{Latitude: 39.51, Longitude: -121.62, Time: first, Event: flightlog.Event{Type: flightlog.EventNone}},
		{Latitude: 39.52, Longitude: -121.63, Time: last, Event: flightlog.Event{Type: flightlog.EventNone}},
	}}
	fc, err := tr.FeatureCollection()
	require.NoError(t, err)

	flightDir := filepath.Join(outDir, id)
	require.NoError(t, os.MkdirAll(flightDir, 0o755))
	data, err := json.Marshal(fc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(flightDir, track.ArtifactFile), data, 0o644))
}

func writeArchiveFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
}

func newTestRenderer(outDir, archiveDir string, dec radar.Decoder) *FrameRenderer {
	pool := radar.NewRenderPool(radar.PoolConfig{
		Decoder:    dec,
		Rasterizer: tinyRasterizer{},
		Bounds:     testBounds,
		Workers:    2,
		Logger:     quietLogger(),
	})
	return NewFrameRenderer(RenderConfig{
		OutDir:     outDir,
		ArchiveDir: archiveDir,
		Bounds:     testBounds,
		Pool:       pool,
		Logger:     quietLogger(),
	})
}

func TestFrameRenderer_RendersMatchedScans(t *testing.T) {
	outDir, archiveDir := t.TempDir(), t.TempDir()
	id := "2024-06-01_18-04-22"
	writeTrackArtifact(t, outDir, id,
		time.Date(2024, 6, 1, 18, 4, 23, 0, time.UTC),
		time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC))
	writeArchiveFiles(t, archiveDir,
		"raw_grid_20240601_183000.nc",
		"raw_grid_20240601_181500.nc",
		"raw_grid_20240215_120000.nc") // outside the flight's day span

	dec := &countingDecoder{}
	r := newTestRenderer(outDir, archiveDir, dec)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Flights[RenderDone])
	assert.Equal(t, 2, summary.Frames)
	assert.Equal(t, int32(2), dec.calls.Load(), "only matched scans decoded")

	meta, err := radar.LoadMetadata(filepath.Join(outDir, id))
	require.NoError(t, err)
	assert.Equal(t, testBounds, meta.Bounds)
	require.Len(t, meta.Frames, 2)
	// Frames ascend by acquisition time regardless of archive listing order.
	assert.Equal(t, "radar_20240601_181500.png", meta.Frames[0].File)
	assert.Equal(t, "radar_20240601_183000.png", meta.Frames[1].File)

	for _, frame := range meta.Frames {
		_, err := os.Stat(filepath.Join(outDir, id, radar.FramesDir, frame.File))
		assert.NoError(t, err)
	}
}

func TestFrameRenderer_SkipsFlightWithMetadata(t *testing.T) {
	outDir, archiveDir := t.TempDir(), t.TempDir()
	id := "2024-06-01_18-04-22"
	writeTrackArtifact(t, outDir, id,
		time.Date(2024, 6, 1, 18, 4, 23, 0, time.UTC),
		time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC))
	writeArchiveFiles(t, archiveDir, "raw_grid_20240601_181500.nc")

	require.NoError(t, radar.WriteMetadata(filepath.Join(outDir, id), radar.Metadata{
		Bounds: testBounds,
		Frames: []radar.Frame{{Time: time.Now(), File: "radar_old.png"}},
	}))

	dec := &countingDecoder{}
	r := newTestRenderer(outDir, archiveDir, dec)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Flights[RenderSkipped])
	assert.Zero(t, dec.calls.Load(), "skipped flight must not decode anything")
}

func TestFrameRenderer_NoMatchingArchiveData(t *testing.T) {
	outDir, archiveDir := t.TempDir(), t.TempDir()
	id := "2024-06-01_18-04-22"
	writeTrackArtifact(t, outDir, id,
		time.Date(2024, 6, 1, 18, 4, 23, 0, time.UTC),
		time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC))
	writeArchiveFiles(t, archiveDir, "raw_grid_20240215_120000.nc")

	r := newTestRenderer(outDir, archiveDir, &countingDecoder{})
	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Flights[RenderNoData])
	assert.False(t, radar.MetadataExists(filepath.Join(outDir, id)))
}

func TestFrameRenderer_FlightDirWithoutTrack(t *testing.T) {
	outDir, archiveDir := t.TempDir(), t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(outDir, "2024-06-01_18-04-22"), 0o755))
	writeArchiveFiles(t, archiveDir, "raw_grid_20240601_181500.nc")

	r := newTestRenderer(outDir, archiveDir, &countingDecoder{})
	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Flights[RenderNoTrack])
}

func TestFrameRenderer_MissingArchiveDirHaltsStage(t *testing.T) {
	outDir := t.TempDir()
	r := newTestRenderer(outDir, filepath.Join(outDir, "does-not-exist"), &countingDecoder{})
	_, err := r.Run(context.Background())
	require.Error(t, err)
}
