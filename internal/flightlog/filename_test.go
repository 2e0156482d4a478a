package flightlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlightID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		id, start, err := ParseFlightID("Jun 01 2024_ 18-04-22.txt")
		require.NoError(t, err)
		assert.Equal(t, "2024-06-01_18-04-22", id)
		assert.Equal(t, time.Date(2024, 6, 1, 18, 4, 22, 0, time.UTC), start)
	})

	t.Run("full path", func(t *testing.T) {
		id, _, err := ParseFlightID("/srv/raw_data/Dec 25 2023_ 07-30-00.txt")
		require.NoError(t, err)
		assert.Equal(t, "2023-12-25_07-30-00", id)
	})

	t.Run("stem too short", func(t *testing.T) {
		_, _, err := ParseFlightID("notes.txt")
		assert.Error(t, err)
	})

	t.Run("garbage date tokens", func(t *testing.T) {
		_, _, err := ParseFlightID("calibration run 18-04-22.txt")
		assert.Error(t, err)
	})
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Flight from 2024-06-01 at 18-04-22", DisplayName("2024-06-01_18-04-22"))
}
