package flightlog

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Field positions in the raw export.
const (
	fieldTime = iota
	fieldTailNumber
	fieldLatitude
	fieldLongitude
	fieldGroundSpeed
	fieldWarning
	fieldAltitude
	fieldTemp
	fieldLiquidWater
	fieldBIPActive
	fieldBIPCount
	fieldEjectActive
	fieldEjectCount
	fieldRightGen
	fieldLeftGen
	fieldIce
	fieldSpare

	numFields = fieldSpare + 1
)

// timeOfDayLayout accepts an optional fractional second, which some logger
// firmware revisions emit.
const timeOfDayLayout = "15:04:05.999999"

// ParseRecords reads one raw seeding log and returns its samples in
// ascending time order. flightDate supplies the calendar date; each row
// carries only a time-of-day.
//
// Rows that cannot be trusted are dropped without error: malformed
// timestamps, non-numeric coordinates or flare counters, and the 0/0
// invalid-fix sentinel the GPS emits before lock. Generator flags that fail
// to coerce read as "off" rather than dropping the row, since the row's
// position and counters are still usable. The sort is stable, so rows
// sharing a timestamp keep their original order.
//
// An empty slice with a nil error means the log held no usable rows.
// Callers must treat that as a distinct "no data" outcome, not success.
func ParseRecords(flightDate time.Time, r io.Reader) ([]Sample, error) {
	year, month, day := flightDate.UTC().Date()

	var samples []Sample
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) <= fieldLeftGen || len(fields) > numFields {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		tod, err := time.Parse(timeOfDayLayout, fields[fieldTime])
		if err != nil {
			continue
		}

		lat, err := strconv.ParseFloat(fields[fieldLatitude], 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(fields[fieldLongitude], 64)
		if err != nil {
			continue
		}
		if lat == 0 || lon == 0 {
			continue
		}

		bipCount, err := parseCounter(fields[fieldBIPCount])
		if err != nil {
			continue
		}
		ejectCount, err := parseCounter(fields[fieldEjectCount])
		if err != nil {
			continue
		}

		s := Sample{
			Time: time.Date(year, month, day,
				tod.Hour(), tod.Minute(), tod.Second(), tod.Nanosecond(), time.UTC),
			TailNumber:  fields[fieldTailNumber],
			Latitude:    lat,
			Longitude:   lon,
			GroundSpeed: fields[fieldGroundSpeed],
			Warning:     fields[fieldWarning],
			AltitudeFt:  fields[fieldAltitude],
			TempC:       fields[fieldTemp],
			LiquidWater: fields[fieldLiquidWater],
			BIPActive:   fields[fieldBIPActive],
			BIPCount:    bipCount,
			EjectActive: fields[fieldEjectActive],
			EjectCount:  ejectCount,
			RightGen:    parseFlag(fields[fieldRightGen]),
			LeftGen:     parseFlag(fields[fieldLeftGen]),
		}
		if len(fields) > fieldIce {
			s.Ice = fields[fieldIce]
		}
		if len(fields) > fieldSpare {
			s.Spare = fields[fieldSpare]
		}
		samples = append(samples, s)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].Time.Before(samples[j].Time)
	})
	return samples, nil
}

// parseCounter coerces a cumulative flare counter. Counters are integers
// but some firmware writes them with a decimal point.
func parseCounter(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// parseFlag coerces a generator flag, reading anything unparseable as off.
func parseFlag(s string) int {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
