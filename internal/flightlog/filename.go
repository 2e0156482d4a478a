package flightlog

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	stemDateLen   = 11 // "Jan 02 2006"
	stemTimeStart = 13
	stemTimeEnd   = 21 // "15-04-05"

	stemLayout = "Jan 02 2006 15:04:05"
)

// FlightIDLayout is the canonical identifier format derived from a log
// filename, also used as the per-flight output directory name.
const FlightIDLayout = "2006-01-02_15-04-05"

// ParseFlightID derives the canonical flight identifier and start time from
// a raw log filename. The logger names files with the start date in the
// stem's first 11 characters and the start time in characters 13-21, with
// dashes standing in for colons, e.g. "Jun 01 2024_ 18-04-22.txt".
func ParseFlightID(name string) (id string, start time.Time, err error) {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if len(stem) < stemTimeEnd {
		return "", time.Time{}, fmt.Errorf("log filename %q: stem too short for embedded date/time", name)
	}

	datePart := stem[:stemDateLen]
	timePart := strings.ReplaceAll(stem[stemTimeStart:stemTimeEnd], "-", ":")

	start, err = time.Parse(stemLayout, datePart+" "+timePart)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("log filename %q: %w", name, err)
	}
	return start.Format(FlightIDLayout), start, nil
}

// DisplayName renders a flight identifier as the label shown in the master
// index.
func DisplayName(id string) string {
	return "Flight from " + strings.ReplaceAll(id, "_", " at ")
}
