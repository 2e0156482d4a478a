package track

import "time"

// DayKeyLayout is the calendar-day key format matched against radar
// archive filenames.
const DayKeyLayout = "20060102"

// DayKeys returns the inclusive list of UTC calendar-day keys spanning
// first through last. It steps day by day rather than taking the two
// endpoint dates, so a flight spanning more than 24 hours or crossing
// midnight multiple times is still fully covered. Keys are ascending and
// unique.
func DayKeys(first, last time.Time) []string {
	cur := startOfDay(first.UTC())
	end := startOfDay(last.UTC())

	var keys []string
	for !cur.After(end) {
		keys = append(keys, cur.Format(DayKeyLayout))
		cur = cur.AddDate(0, 0, 1)
	}
	return keys
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
