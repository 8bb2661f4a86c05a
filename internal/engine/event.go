package engine

import "time"

// EventEntry is one upcoming calendar event. Entries are ordered by Start.
type EventEntry struct {
	Start   time.Time
	AllDay  bool
	Summary string
}

// FilterEvents narrows the upcoming events to a window. The year window keeps
// every entry, as the source already returns only the next few events.
// Other windows apply the birthday predicates to the start date, without
// moving it to the current year.
func FilterEvents(events []EventEntry, w Window, today time.Time) []EventEntry {
	if w == WindowYear {
		return events
	}
	today = midnight(today)

	var out []EventEntry
	for _, e := range events {
		start := midnight(e.Start.In(today.Location()))
		if e.AllDay {
			// All-day dates carry no zone; keep the calendar day as written.
			y, m, d := e.Start.Date()
			start = time.Date(y, m, d, 0, 0, 0, 0, today.Location())
		}
		if start.Year() == today.Year() && matches(start, w, today) {
			out = append(out, e)
		}
	}
	return out
}
