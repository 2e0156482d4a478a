package flightlog

// EventType identifies which seeding mechanism fired for a sample.
type EventType string

const (
	EventNone      EventType = "None"
	EventBIP       EventType = "BIP"       // burn-in-place flare drop
	EventEject     EventType = "Eject"     // ejectable flare drop
	EventGenerator EventType = "Generator" // aerosol generator active
)

// Event is the discrete seeding event derived for one sample. For flare
// drops Count is the number of flares released since the previous sample;
// for generators it is always 1, meaning "active", not a quantity.
type Event struct {
	Type  EventType
	Count int
}

// counters is the fold accumulator: the previous sample's two cumulative
// flare counters. No broader history feeds classification.
type counters struct {
	bip   int
	eject int
}

// Classify derives one Event per sample, in order, from cumulative counter
// deltas and generator flags. It is a left fold over the time-ordered
// samples; the first sample sees zero deltas by definition. Priority is
// strict: BIP outranks Eject outranks Generator. A counter jumping by more
// than one attributes all drops in the gap to a single event with the
// aggregate count. A counter that decreases (mid-flight reset) yields a
// zero delta rather than a negative count.
func Classify(samples []Sample) []Event {
	events := make([]Event, len(samples))

	var prev counters
	for i, s := range samples {
		if i == 0 {
			prev = counters{bip: s.BIPCount, eject: s.EjectCount}
		}

		bipDelta := clampDelta(s.BIPCount - prev.bip)
		ejectDelta := clampDelta(s.EjectCount - prev.eject)

		switch {
		case bipDelta > 0:
			events[i] = Event{Type: EventBIP, Count: bipDelta}
		case ejectDelta > 0:
			events[i] = Event{Type: EventEject, Count: ejectDelta}
		case s.GeneratorOn():
			events[i] = Event{Type: EventGenerator, Count: 1}
		default:
			events[i] = Event{Type: EventNone}
		}

		prev = counters{bip: s.BIPCount, eject: s.EjectCount}
	}
	return events
}

func clampDelta(d int) int {
	if d < 0 {
		return 0
	}
	return d
}
