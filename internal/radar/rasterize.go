package radar

import (
	"fmt"
	"image"
)

const (
	defaultFrameWidth  = 960
	defaultFrameHeight = 960
)

// Rasterizer turns one decoded scan into pixels. The pipeline treats this
// as a collaborator so tests and alternative projections can swap it out.
type Rasterizer interface {
	Rasterize(scan *VolumeScan, clip Bounds, scale *ColorScale) (*image.RGBA, error)
}

// GridRasterizer paints a geographically clipped overhead projection of a
// regridded scan. Pixels outside the scan's coverage, and gates without a
// return, stay transparent so frames can overlay a basemap.
type GridRasterizer struct {
	Width, Height int // output frame size; defaults apply when zero
}

func (r GridRasterizer) Rasterize(scan *VolumeScan, clip Bounds, scale *ColorScale) (*image.RGBA, error) {
	w, h := r.Width, r.Height
	if w <= 0 {
		w = defaultFrameWidth
	}
	if h <= 0 {
		h = defaultFrameHeight
	}
	if !clip.Valid() {
		return nil, fmt.Errorf("invalid clip bounds: lat %v..%v lon %v..%v",
			clip.LatMin, clip.LatMax, clip.LonMin, clip.LonMax)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))

	latSpan := clip.LatMax - clip.LatMin
	lonSpan := clip.LonMax - clip.LonMin
	for y := 0; y < h; y++ {
		// Image rows run north to south; sample at pixel centers.
		lat := clip.LatMax - (float64(y)+0.5)/float64(h)*latSpan
		for x := 0; x < w; x++ {
			lon := clip.LonMin + (float64(x)+0.5)/float64(w)*lonSpan

			dbz, ok := scan.At(lat, lon)
			if !ok {
				continue
			}
			img.SetRGBA(x, y, scale.Lookup(dbz))
		}
	}
	return img, nil
}
