package radar

import (
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	annotateDPI      = 96
	annotateFontSize = 14.0
	annotateMargin   = 8
)

// Annotator stamps rendered frames with their acquisition time and source
// scan name. The font face loads from a configured TTF path; rendering
// works without an annotator, frames are just unlabelled.
//
// The freetype context holds mutable clip and destination state, so Stamp
// serializes; one Annotator is safe to share across render workers.
type Annotator struct {
	mu      sync.Mutex
	context *freetype.Context
	face    font.Face
}

func NewAnnotator(fontPath string) (*Annotator, error) {
	data, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("reading annotation font: %w", err)
	}

	parsedFont, err := freetype.ParseFont(data)
	if err != nil {
		return nil, fmt.Errorf("parsing annotation font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(annotateDPI)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(annotateFontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.White)

	return &Annotator{
		context: ctx,
		face: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    annotateFontSize,
			DPI:     annotateDPI,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *Annotator) Close() error {
	if a.face != nil {
		return a.face.Close()
	}
	return nil
}

// Stamp draws the acquisition timestamp and the source scan name into the
// bottom-left corner of a frame.
func (a *Annotator) Stamp(img *image.RGBA, acquired time.Time, source string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	metrics := a.face.Metrics()
	lineHeight := (metrics.Ascent + metrics.Descent).Round()

	lines := []string{
		acquired.UTC().Format(time.DateTime) + "Z",
		source,
	}

	y := img.Bounds().Max.Y - annotateMargin - lineHeight*(len(lines)-1)
	for _, line := range lines {
		pt := freetype.Pt(annotateMargin, y)
		if _, err := a.context.DrawString(line, pt); err != nil {
			return fmt.Errorf("drawing frame label: %w", err)
		}
		y += lineHeight
	}
	return nil
}
