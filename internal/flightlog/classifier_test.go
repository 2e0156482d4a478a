package flightlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWith(bip, eject, rightGen, leftGen int) Sample {
	return Sample{
		Time:       time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC),
		Latitude:   38.5,
		Longitude:  -121.5,
		BIPCount:   bip,
		EjectCount: eject,
		RightGen:   rightGen,
		LeftGen:    leftGen,
	}
}

func TestClassify_DeltasAgainstPreviousSampleOnly(t *testing.T) {
	// Counter sequence [5,5,7,7,9] must yield BIP deltas [0,0,2,0,2].
	bipCounts := []int{5, 5, 7, 7, 9}
	samples := make([]Sample, len(bipCounts))
	for i, c := range bipCounts {
		samples[i] = sampleWith(c, 0, 0, 0)
	}

	events := Classify(samples)
	require.Len(t, events, len(samples))

	wantCounts := []int{0, 0, 2, 0, 2}
	for i, want := range wantCounts {
		assert.Equal(t, want, events[i].Count, "sample %d", i)
		if want > 0 {
			assert.Equal(t, EventBIP, events[i].Type, "sample %d", i)
		} else {
			assert.Equal(t, EventNone, events[i].Type, "sample %d", i)
		}
	}
}

func TestClassify_Priority(t *testing.T) {
	t.Run("eject outranks generator", func(t *testing.T) {
		samples := []Sample{
			sampleWith(4, 10, 0, 0),
			sampleWith(4, 13, 1, 0), // ejectDelta=3 with generator on
		}
		events := Classify(samples)
		assert.Equal(t, Event{Type: EventEject, Count: 3}, events[1])
	})

	t.Run("bip outranks eject", func(t *testing.T) {
		samples := []Sample{
			sampleWith(4, 10, 0, 0),
			sampleWith(6, 15, 0, 0), // bipDelta=2 and ejectDelta=5
		}
		events := Classify(samples)
		assert.Equal(t, Event{Type: EventBIP, Count: 2}, events[1])
	})

	t.Run("generator when no drops", func(t *testing.T) {
		samples := []Sample{
			sampleWith(4, 10, 0, 1),
			sampleWith(4, 10, 1, 1),
		}
		events := Classify(samples)
		assert.Equal(t, Event{Type: EventGenerator, Count: 1}, events[0])
		assert.Equal(t, Event{Type: EventGenerator, Count: 1}, events[1])
	})
}

func TestClassify_FirstSampleHasZeroDeltas(t *testing.T) {
	// A flight starting mid-campaign carries non-zero counters in its first
	// row; those must not classify as a drop.
	events := Classify([]Sample{sampleWith(42, 17, 0, 0)})
	require.Len(t, events, 1)
	assert.Equal(t, Event{Type: EventNone, Count: 0}, events[0])
}

func TestClassify_CounterResetClampsToZero(t *testing.T) {
	samples := []Sample{
		sampleWith(42, 17, 0, 0),
		sampleWith(0, 0, 0, 0),  // counter reset mid-flight
		sampleWith(1, 0, 0, 0),  // counting resumes
	}
	events := Classify(samples)
	assert.Equal(t, Event{Type: EventNone, Count: 0}, events[1])
	assert.Equal(t, Event{Type: EventBIP, Count: 1}, events[2])
}

func TestClassify_Empty(t *testing.T) {
	assert.Empty(t, Classify(nil))
}
