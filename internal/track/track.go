// Package track assembles cleaned flight samples into the time-ordered
// geospatial track artifact and derives the flight's calendar-day window.
package track

import (
	"fmt"
	"time"

	"github.com/seedops/flighttrack/internal/flightlog"
)

// Point is one geolocated sample on the flight path with its classified
// seeding event attached.
type Point struct {
	Latitude  float64
	Longitude float64
	Time      time.Time
	Event     flightlog.Event
}

// Track is the full time-ordered point sequence for one flight. Timestamps
// are non-decreasing; the parser's stable sort guarantees it.
type Track struct {
	ID     string
	Points []Point
}

// Build pairs samples with their classified events. Samples and events must
// be parallel slices from the same flight.
func Build(id string, samples []flightlog.Sample, events []flightlog.Event) (Track, error) {
	if len(samples) != len(events) {
		return Track{}, fmt.Errorf("track %s: %d samples but %d events", id, len(samples), len(events))
	}

	points := make([]Point, len(samples))
	for i, s := range samples {
		points[i] = Point{
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Time:      s.Time,
			Event:     events[i],
		}
	}
	return Track{ID: id, Points: points}, nil
}

// Span returns the first and last point timestamps.
func (t Track) Span() (first, last time.Time, err error) {
	if len(t.Points) == 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("track %s has no points", t.ID)
	}
	return t.Points[0].Time, t.Points[len(t.Points)-1].Time, nil
}
