package radar

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Bounds is a geographic window, south-west corner to north-east corner.
// It marshals as [[latMin, lonMin], [latMax, lonMax]] to match the
// frontend's map-bounds convention.
type Bounds struct {
	LatMin, LonMin float64
	LatMax, LonMax float64
}

func (b Bounds) Valid() bool {
	return b.LatMax > b.LatMin && b.LonMax > b.LonMin
}

func (b Bounds) MarshalJSON() ([]byte, error) {
	return json.Marshal([2][2]float64{{b.LatMin, b.LonMin}, {b.LatMax, b.LonMax}})
}

func (b *Bounds) UnmarshalJSON(data []byte) error {
	var raw [2][2]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.LatMin, b.LonMin = raw[0][0], raw[0][1]
	b.LatMax, b.LonMax = raw[1][0], raw[1][1]
	return nil
}

// VolumeScan is one decoded radar acquisition regridded onto a regular
// lat/lon grid. Reflectivity is row-major, northernmost row first; NaN
// marks gates with no return.
type VolumeScan struct {
	Bounds       Bounds
	Rows, Cols   int
	Reflectivity []float32
}

// At samples the nearest grid cell for a coordinate. The second return is
// false outside the scan's extent or where the gate holds no return.
func (v *VolumeScan) At(lat, lon float64) (float64, bool) {
	if lat < v.Bounds.LatMin || lat > v.Bounds.LatMax ||
		lon < v.Bounds.LonMin || lon > v.Bounds.LonMax {
		return 0, false
	}

	rowFrac := (v.Bounds.LatMax - lat) / (v.Bounds.LatMax - v.Bounds.LatMin)
	colFrac := (lon - v.Bounds.LonMin) / (v.Bounds.LonMax - v.Bounds.LonMin)

	row := int(rowFrac * float64(v.Rows))
	if row >= v.Rows {
		row = v.Rows - 1
	}
	col := int(colFrac * float64(v.Cols))
	if col >= v.Cols {
		col = v.Cols - 1
	}

	dbz := float64(v.Reflectivity[row*v.Cols+col])
	if math.IsNaN(dbz) {
		return 0, false
	}
	return dbz, true
}

// Decoder turns one archive file into a VolumeScan. Decoding the volume
// format itself is an external concern; implementations wrap whatever
// format the archive holds.
type Decoder interface {
	Decode(path string) (*VolumeScan, error)
}

// GridDecoder reads the pre-gridded binary export produced upstream of
// this pipeline: a fixed header (magic, grid dimensions, geographic
// extent) followed by row-major little-endian float32 reflectivity cells.
type GridDecoder struct{}

const gridMagic = "RGD1"

// maxGridCells rejects headers that would allocate absurd buffers from a
// corrupt or truncated file.
const maxGridCells = 64 << 20

type gridHeader struct {
	Magic      [4]byte
	Rows, Cols int32
	LatMin     float64
	LonMin     float64
	LatMax     float64
	LonMax     float64
}

func (GridDecoder) Decode(path string) (*VolumeScan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening volume scan: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)

	var hdr gridHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%s: reading grid header: %w", filepath.Base(path), err)
	}
	if string(hdr.Magic[:]) != gridMagic {
		return nil, fmt.Errorf("%s: not a gridded volume scan", filepath.Base(path))
	}
	if hdr.Rows <= 0 || hdr.Cols <= 0 || int64(hdr.Rows)*int64(hdr.Cols) > maxGridCells {
		return nil, fmt.Errorf("%s: implausible grid size %dx%d", filepath.Base(path), hdr.Rows, hdr.Cols)
	}

	bounds := Bounds{LatMin: hdr.LatMin, LonMin: hdr.LonMin, LatMax: hdr.LatMax, LonMax: hdr.LonMax}
	if !bounds.Valid() {
		return nil, fmt.Errorf("%s: inverted grid extent", filepath.Base(path))
	}

	cells := make([]float32, int(hdr.Rows)*int(hdr.Cols))
	if err := binary.Read(br, binary.LittleEndian, &cells); err != nil {
		return nil, fmt.Errorf("%s: reading grid cells: %w", filepath.Base(path), err)
	}

	return &VolumeScan{
		Bounds:       bounds,
		Rows:         int(hdr.Rows),
		Cols:         int(hdr.Cols),
		Reflectivity: cells,
	}, nil
}
