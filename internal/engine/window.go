package engine

import (
	"slices"
	"strings"
	"time"

	"github.com/tartampluch/go-encounter/internal/config"
)

// Window selects which upcoming dates a list command reports.
type Window string

const (
	WindowYear  Window = config.WindowYear
	WindowMonth Window = config.WindowMonth
	WindowWeek  Window = config.WindowWeek
	WindowDay   Window = config.WindowDay
)

// windows is the matching order of ParseWindow.
var windows = []Window{WindowYear, WindowMonth, WindowWeek, WindowDay}

// ParseWindow matches the start of arg, after leading spaces, against the
// known windows. Trailing text is ignored, so "weekly" selects the week.
func ParseWindow(arg string) (Window, bool) {
	arg = strings.TrimLeft(arg, " ")
	for _, w := range windows {
		if strings.HasPrefix(arg, string(w)) {
			return w, true
		}
	}
	return "", false
}

// Filter keeps the groups whose date, moved to today's year, falls in the
// window. The result is ordered by that moved date, then by the stored date.
//
// Each window is a subset of the previous one in the year > month > week
// chain, and day is a subset of week.
func Filter(groups []BirthdayGroup, w Window, today time.Time) []BirthdayGroup {
	today = midnight(today)

	var out []BirthdayGroup
	for _, g := range groups {
		if matches(normalize(g.Date, today), w, today) {
			out = append(out, g)
		}
	}

	slices.SortStableFunc(out, func(a, b BirthdayGroup) int {
		if c := normalize(a.Date, today).Compare(normalize(b.Date, today)); c != 0 {
			return c
		}
		return a.Date.Compare(b.Date)
	})
	return out
}

// Age is the number of completed years on today.
func Age(birth, today time.Time) int {
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	return age
}

// normalize moves d to today's year at midnight in today's location.
// Feb 29 becomes Mar 1 in common years.
func normalize(d, today time.Time) time.Time {
	return time.Date(today.Year(), d.Month(), d.Day(), 0, 0, 0, 0, today.Location())
}

// matches applies the window predicate to an already normalized date.
func matches(d time.Time, w Window, today time.Time) bool {
	upcoming := !d.Before(today)
	switch w {
	case WindowYear:
		return upcoming
	case WindowMonth:
		return upcoming && d.Month() == today.Month()
	case WindowWeek:
		return upcoming && d.Month() == today.Month() && weekOfYear(d) == weekOfYear(today)
	case WindowDay:
		return d.Equal(today)
	}
	return false
}

// weekOfYear numbers weeks starting on Sunday. Days before the first Sunday
// of the year are in week 0.
func weekOfYear(t time.Time) int {
	return (t.YearDay() - 1 + 7 - int(t.Weekday())) / 7
}
