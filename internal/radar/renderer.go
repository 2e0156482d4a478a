package radar

import (
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"
)

// DefaultWorkers is the render pool's concurrency when none is configured.
// Sized for decode throughput, independent of how many scans match.
const DefaultWorkers = 3

const frameNameLayout = "20060102_150405"

// PoolConfig wires a RenderPool. Decoder, Rasterizer and Scale default to
// the gridded-export implementations; Annotator is optional.
type PoolConfig struct {
	Decoder    Decoder
	Rasterizer Rasterizer
	Scale      *ColorScale
	Bounds     Bounds
	Annotator  *Annotator
	Workers    int
	Logger     *slog.Logger
}

// RenderPool renders matched volume scans with a fixed number of workers.
// The decoder, rasterizer, color scale and bounds are read-only; the
// annotator guards its own mutable state. Each task owns its input file
// and its output frame, so the pool itself needs no locking.
type RenderPool struct {
	decoder    Decoder
	rasterizer Rasterizer
	scale      *ColorScale
	bounds     Bounds
	annotator  *Annotator
	workers    int
	logger     *slog.Logger
}

func NewRenderPool(cfg PoolConfig) *RenderPool {
	if cfg.Decoder == nil {
		cfg.Decoder = GridDecoder{}
	}
	if cfg.Rasterizer == nil {
		cfg.Rasterizer = GridRasterizer{}
	}
	if cfg.Scale == nil {
		cfg.Scale = NWSReflectivity()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &RenderPool{
		decoder:    cfg.Decoder,
		rasterizer: cfg.Rasterizer,
		scale:      cfg.Scale,
		bounds:     cfg.Bounds,
		annotator:  cfg.Annotator,
		workers:    cfg.Workers,
		logger:     cfg.Logger,
	}
}

// Render renders every file into framesDir and returns the successful
// frames sorted ascending by acquisition time. A failed task (unparseable
// name, decode error, write error) is logged and excluded; it never aborts
// sibling tasks or the pool. The call returns only after every submitted
// task has finished: the pool runs to a barrier, a slow scan simply delays
// it. Each file is attempted exactly once.
func (p *RenderPool) Render(files []ArchiveFile, framesDir string) []Frame {
	tasks := make(chan ArchiveFile)
	results := make(chan *Frame, len(files))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for file := range tasks {
				results <- p.renderOne(file, framesDir)
			}
		}()
	}

	for _, f := range files {
		tasks <- f
	}
	close(tasks)
	wg.Wait()
	close(results)

	frames := make([]Frame, 0, len(files))
	for frame := range results {
		if frame != nil {
			frames = append(frames, *frame)
		}
	}

	// Completion order is whatever the workers produced; the ordering
	// contract is on the final artifact.
	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Time.Before(frames[j].Time)
	})
	return frames
}

// renderOne is one pool task: decode one scan, rasterize it, write one
// image. Any failure returns nil after logging.
func (p *RenderPool) renderOne(file ArchiveFile, framesDir string) *Frame {
	acquired, err := ParseArchiveTime(file.Name)
	if err != nil {
		p.logger.Warn("skipping scan with unparseable name", "file", file.Name, "error", err)
		return nil
	}

	scan, err := p.decoder.Decode(file.Path)
	if err != nil {
		p.logger.Warn("volume scan decode failed", "file", file.Name, "error", err)
		return nil
	}

	img, err := p.rasterizer.Rasterize(scan, p.bounds, p.scale)
	if err != nil {
		p.logger.Warn("rasterization failed", "file", file.Name, "error", err)
		return nil
	}

	if p.annotator != nil {
		if err := p.annotator.Stamp(img, acquired, file.Name); err != nil {
			// A missing label is cosmetic; keep the frame.
			p.logger.Warn("frame annotation failed", "file", file.Name, "error", err)
		}
	}

	name := fmt.Sprintf("radar_%s.png", acquired.Format(frameNameLayout))
	path := filepath.Join(framesDir, name)

	out, err := os.Create(path)
	if err != nil {
		p.logger.Warn("frame write failed", "file", file.Name, "error", err)
		return nil
	}
	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		p.logger.Warn("frame encode failed", "file", file.Name, "error", err)
		return nil
	}

	var size int64
	if info, err := out.Stat(); err == nil {
		size = info.Size()
	}
	if err := out.Close(); err != nil {
		p.logger.Warn("frame close failed", "file", file.Name, "error", err)
		return nil
	}

	p.logger.Debug("frame written",
		"frame", name,
		"size", humanize.Bytes(uint64(size)))

	return &Frame{Time: acquired, File: name}
}
