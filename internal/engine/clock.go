package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The dispatcher and the feed builder derive "today" from it.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
// A nil Location keeps the process local time.
type RealClock struct {
	Location *time.Location
}

// Now returns the current time in the configured location.
func (c RealClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// Today returns midnight of the clock's current day, in the clock's location.
func Today(c Clock) time.Time {
	return midnight(c.Now())
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
