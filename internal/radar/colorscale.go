package radar

import (
	"fmt"
	"image/color"
	"sort"
)

// ScaleBin is one bin of a reflectivity color scale: everything from From
// (inclusive) up to the next bin's lower bound maps to Color.
type ScaleBin struct {
	From  float64
	Color color.RGBA
}

// ColorScale maps reflectivity values to display colors through an ordered
// list of bin lower bounds. The scale is read-only after construction and
// safe to share across render workers.
type ColorScale struct {
	bounds []float64
	colors []color.RGBA
}

// NewColorScale builds a scale from bins ordered by strictly increasing
// lower bound.
func NewColorScale(bins []ScaleBin) (*ColorScale, error) {
	if len(bins) == 0 {
		return nil, fmt.Errorf("color scale needs at least one bin")
	}

	s := &ColorScale{
		bounds: make([]float64, len(bins)),
		colors: make([]color.RGBA, len(bins)),
	}
	for i, bin := range bins {
		if i > 0 && bin.From <= bins[i-1].From {
			return nil, fmt.Errorf("color scale bins must increase strictly: bin %d (%v) after %v", i, bin.From, bins[i-1].From)
		}
		s.bounds[i] = bin.From
		s.colors[i] = bin.Color
	}
	return s, nil
}

// Lookup returns the color for a reflectivity value. Values below the
// first bound clamp to the first bin; values at or above the last bound
// clamp to the last.
func (s *ColorScale) Lookup(dbz float64) color.RGBA {
	i := sort.SearchFloat64s(s.bounds, dbz)
	if i == len(s.bounds) || s.bounds[i] != dbz {
		i--
	}
	if i < 0 {
		i = 0
	}
	return s.colors[i]
}

// Bins returns the number of bins in the scale.
func (s *ColorScale) Bins() int {
	return len(s.bounds)
}

// NWSReflectivity returns the 21-bin scale used for composite reflectivity
// products, -25 to 75 dBZ in 5 dBZ steps with the NWS color table.
func NWSReflectivity() *ColorScale {
	rgb := [][3]uint8{
		{29, 46, 46}, {68, 99, 99}, {117, 161, 161}, {219, 219, 219},
		{177, 242, 242}, {124, 247, 247}, {0, 198, 242}, {0, 82, 245},
		{0, 128, 123}, {0, 227, 0}, {0, 171, 0}, {219, 219, 219},
		{242, 222, 0}, {245, 163, 0}, {255, 72, 0}, {232, 0, 0},
		{201, 0, 0}, {227, 0, 148}, {202, 41, 227}, {192, 158, 217},
		{255, 255, 255},
	}

	bins := make([]ScaleBin, len(rgb))
	for i, c := range rgb {
		bins[i] = ScaleBin{
			From:  -25 + float64(i)*5,
			Color: color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff},
		}
	}

	scale, err := NewColorScale(bins)
	if err != nil {
		panic(err) // static table, cannot fail
	}
	return scale
}
