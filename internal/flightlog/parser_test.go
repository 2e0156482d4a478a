package flightlog

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var flightDate = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// row builds a full 17-field record with sane defaults.
func row(tod, lat, lon, bip, eject, rightGen, leftGen string) string {
	return strings.Join([]string{
		tod, "N123SD", lat, lon, "72.4", "0", "12500", "-8.2", "0.41",
		"0", bip, "0", eject, rightGen, leftGen, "0", "",
	}, ",")
}

func TestParseRecords(t *testing.T) {
	t.Run("valid rows", func(t *testing.T) {
		log := strings.Join([]string{
			row("18:04:22", "38.52", "-121.49", "5", "0", "0", "0"),
			row("18:04:23", "38.53", "-121.50", "5", "0", "1", "0"),
		}, "\n")

		samples, err := ParseRecords(flightDate, strings.NewReader(log))
		require.NoError(t, err)
		require.Len(t, samples, 2)

		assert.Equal(t, time.Date(2024, 6, 1, 18, 4, 22, 0, time.UTC), samples[0].Time)
		assert.Equal(t, 38.52, samples[0].Latitude)
		assert.Equal(t, -121.49, samples[0].Longitude)
		assert.Equal(t, 5, samples[0].BIPCount)
		assert.Equal(t, "N123SD", samples[0].TailNumber)
		assert.False(t, samples[0].GeneratorOn())
		assert.True(t, samples[1].GeneratorOn())
	})

	t.Run("drop rules", func(t *testing.T) {
		tests := []struct {
			name string
			line string
		}{
			{"malformed time", row("25:99:00", "38.5", "-121.5", "5", "0", "0", "0")},
			{"non-numeric latitude", row("18:04:22", "n/a", "-121.5", "5", "0", "0", "0")},
			{"non-numeric longitude", row("18:04:22", "38.5", "west", "5", "0", "0", "0")},
			{"zero latitude sentinel", row("18:04:22", "0", "-121.5", "5", "0", "0", "0")},
			{"zero longitude sentinel", row("18:04:22", "38.5", "0", "5", "0", "0", "0")},
			{"non-numeric bip counter", row("18:04:22", "38.5", "-121.5", "x", "0", "0", "0")},
			{"non-numeric eject counter", row("18:04:22", "38.5", "-121.5", "5", "x", "0", "0")},
			{"truncated row", "18:04:22,N123SD,38.5"},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				samples, err := ParseRecords(flightDate, strings.NewReader(tc.line))
				require.NoError(t, err)
				assert.Empty(t, samples)
			})
		}
	})

	t.Run("unparseable generator flag keeps row", func(t *testing.T) {
		samples, err := ParseRecords(flightDate,
			strings.NewReader(row("18:04:22", "38.5", "-121.5", "5", "0", "bad", "")))
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.False(t, samples[0].GeneratorOn())
	})

	t.Run("rows sorted by time, ties stable", func(t *testing.T) {
		log := strings.Join([]string{
			row("18:04:24", "38.54", "-121.51", "5", "0", "0", "0"),
			row("18:04:22", "38.52", "-121.49", "5", "0", "0", "0"),
			row("18:04:22", "38.53", "-121.50", "5", "0", "0", "0"),
		}, "\n")

		samples, err := ParseRecords(flightDate, strings.NewReader(log))
		require.NoError(t, err)
		require.Len(t, samples, 3)

		assert.Equal(t, 38.52, samples[0].Latitude)
		assert.Equal(t, 38.53, samples[1].Latitude) // original order preserved on tie
		assert.Equal(t, 38.54, samples[2].Latitude)
	})

	t.Run("fractional seconds accepted", func(t *testing.T) {
		samples, err := ParseRecords(flightDate,
			strings.NewReader(row("18:04:22.5", "38.5", "-121.5", "5", "0", "0", "0")))
		require.NoError(t, err)
		require.Len(t, samples, 1)
		assert.Equal(t, 500*time.Millisecond,
			time.Duration(samples[0].Time.Nanosecond()))
	})

	t.Run("empty input is no data, not an error", func(t *testing.T) {
		samples, err := ParseRecords(flightDate, strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, samples)
	})
}
