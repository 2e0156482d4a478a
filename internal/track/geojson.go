package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// ArtifactFile is the track artifact's name inside a flight directory.
const ArtifactFile = "flight_data.geojson"

// GeoJSON geometry and property names are part of the on-disk contract
// consumed by the map frontend; do not rename.
const (
	propTimestamp    = "timestamp"
	propSeedingType  = "seeding_type"
	propSeedingCount = "seeding_count"
)

// ErrTooFewPoints is returned when a track cannot form a path geometry.
var ErrTooFewPoints = errors.New("track needs at least two points to form a path")

// FeatureCollection is the track artifact. Feature 0 is the full-flight
// LineString; features 1..N are the points in temporal order, so the
// feature index doubles as playback order.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

// FeatureCollection builds the artifact for the track. Coordinates follow
// the GeoJSON convention: longitude first.
func (t Track) FeatureCollection() (*FeatureCollection, error) {
	if len(t.Points) < 2 {
		return nil, fmt.Errorf("track %s: %w", t.ID, ErrTooFewPoints)
	}

	path := make([][2]float64, len(t.Points))
	for i, p := range t.Points {
		path[i] = [2]float64{p.Longitude, p.Latitude}
	}

	features := make([]Feature, 0, len(t.Points)+1)
	features = append(features, Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "LineString", Coordinates: path},
		Properties: map[string]any{},
	})
	for _, p := range t.Points {
		features = append(features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "Point", Coordinates: [2]float64{p.Longitude, p.Latitude}},
			Properties: map[string]any{
				propTimestamp:    p.Time.UTC().Format(time.RFC3339),
				propSeedingType:  string(p.Event.Type),
				propSeedingCount: p.Event.Count,
			},
		})
	}

	return &FeatureCollection{Type: "FeatureCollection", Features: features}, nil
}

// LoadCollection reads a previously written track artifact.
func LoadCollection(path string) (*FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading track artifact: %w", err)
	}
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decoding track artifact: %w", err)
	}
	return &fc, nil
}

// TimeSpan returns the first and last point timestamps in the collection,
// relying on the artifact's temporal feature ordering.
func (fc *FeatureCollection) TimeSpan() (first, last time.Time, err error) {
	var times []time.Time
	for _, f := range fc.Features {
		if f.Geometry.Type != "Point" {
			continue
		}
		raw, ok := f.Properties[propTimestamp].(string)
		if !ok {
			return first, last, fmt.Errorf("point feature missing %s property", propTimestamp)
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return first, last, fmt.Errorf("point feature timestamp: %w", err)
		}
		times = append(times, ts)
	}
	if len(times) == 0 {
		return first, last, errors.New("collection has no point features")
	}
	return times[0], times[len(times)-1], nil
}
