package radar

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNWSReflectivity(t *testing.T) {
	scale := NWSReflectivity()
	require.Equal(t, 21, scale.Bins())

	tests := []struct {
		name string
		dbz  float64
		want color.RGBA
	}{
		{"below range clamps to first bin", -60, color.RGBA{29, 46, 46, 0xff}},
		{"first bound", -25, color.RGBA{29, 46, 46, 0xff}},
		{"interior value falls into its bin", -23.5, color.RGBA{29, 46, 46, 0xff}},
		{"exact interior bound", 0, color.RGBA{124, 247, 247, 0xff}},
		{"just under a bound stays in lower bin", 4.9, color.RGBA{124, 247, 247, 0xff}},
		{"next bound up", 5, color.RGBA{0, 198, 242, 0xff}},
		{"heavy precipitation", 52, color.RGBA{232, 0, 0, 0xff}},
		{"last bound", 75, color.RGBA{255, 255, 255, 0xff}},
		{"above range clamps to last bin", 90, color.RGBA{255, 255, 255, 0xff}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, scale.Lookup(tc.dbz))
		})
	}
}

func TestNewColorScale_RejectsNonMonotonicBins(t *testing.T) {
	_, err := NewColorScale([]ScaleBin{
		{From: 0},
		{From: 10},
		{From: 10},
	})
	assert.Error(t, err)
}

func TestNewColorScale_RejectsEmpty(t *testing.T) {
	_, err := NewColorScale(nil)
	assert.Error(t, err)
}
