package flightlog

import "time"

// Sample is one decoded row of the onboard seeding log. The raw export is
// headerless and comma-delimited with a fixed 17-field layout; only the
// fields the pipeline computes with are coerced, the rest pass through as
// text.
type Sample struct {
	Time        time.Time // flight date combined with the row's time-of-day, UTC
	TailNumber  string
	Latitude    float64
	Longitude   float64
	GroundSpeed string
	Warning     string
	AltitudeFt  string
	TempC       string
	LiquidWater string
	BIPActive   string
	BIPCount    int // cumulative burn-in-place flare counter
	EjectActive string
	EjectCount  int // cumulative ejectable flare counter
	RightGen    int
	LeftGen     int
	Ice         string
	Spare       string
}

// GeneratorOn reports whether either aerosol generator was active when the
// sample was taken.
func (s Sample) GeneratorOn() bool {
	return s.RightGen == 1 || s.LeftGen == 1
}
