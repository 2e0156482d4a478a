package radar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Per-flight artifact names consumed by the map frontend.
const (
	MetadataFile = "radar_meta.json"
	FramesDir    = "radar_frames"
)

// Frame references one rendered image by its acquisition time.
type Frame struct {
	Time time.Time `json:"time"`
	File string    `json:"file"`
}

// Metadata is the per-flight radar artifact: the fixed clip bounds plus
// the rendered frames sorted ascending by acquisition time. Its existence
// on disk marks the flight's rendering stage complete; later runs skip the
// flight without decoding anything.
type Metadata struct {
	Bounds Bounds  `json:"bounds"`
	Frames []Frame `json:"frames"`
}

// MetadataExists reports whether a flight directory already carries a
// radar metadata artifact.
func MetadataExists(flightDir string) bool {
	_, err := os.Stat(filepath.Join(flightDir, MetadataFile))
	return err == nil
}

// WriteMetadata persists the artifact for a flight. Callers must only
// write when at least one frame rendered; an empty frame list means no
// artifact at all.
func WriteMetadata(flightDir string, meta Metadata) error {
	if len(meta.Frames) == 0 {
		return fmt.Errorf("refusing to write metadata with no frames for %s", flightDir)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding radar metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(flightDir, MetadataFile), data, 0o644); err != nil {
		return fmt.Errorf("writing radar metadata: %w", err)
	}
	return nil
}

// LoadMetadata reads a flight's radar metadata artifact.
func LoadMetadata(flightDir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(flightDir, MetadataFile))
	if err != nil {
		return nil, fmt.Errorf("reading radar metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decoding radar metadata: %w", err)
	}
	return &meta, nil
}
