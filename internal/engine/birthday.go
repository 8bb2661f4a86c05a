package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-encounter/internal/config"
)

// BirthdayRecord is one raw registry row: a display name and an M/D/YYYY date.
type BirthdayRecord struct {
	Name string
	Date string
}

// BirthdayGroup holds every name sharing the exact same stored date,
// birth year included.
type BirthdayGroup struct {
	Date  time.Time
	Names []string
}

// ParseBirthDate parses the registry date format. Single digit months and
// days are accepted, the year must have four digits.
func ParseBirthDate(value string) (time.Time, error) {
	t, err := time.Parse(config.DateFormatInput, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, &ParseError{Input: value, Reason: config.ErrDateParse, Err: err}
	}
	return t, nil
}

// FormatBirthDate renders the zero padded form written to the registry.
func FormatBirthDate(t time.Time) string {
	return t.Format(config.DateFormatCanonical)
}

// GroupBirthdays parses the records and groups names by stored date.
// Blank rows are skipped. Any other unparsable row fails the whole call so a
// listing never silently omits someone.
func GroupBirthdays(records []BirthdayRecord) ([]BirthdayGroup, error) {
	index := make(map[time.Time]int)
	var groups []BirthdayGroup

	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" && strings.TrimSpace(r.Date) == "" {
			continue
		}
		d, err := ParseBirthDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", config.ErrMalformedRow, i, err)
		}
		if pos, ok := index[d]; ok {
			groups[pos].Names = append(groups[pos].Names, r.Name)
			continue
		}
		index[d] = len(groups)
		groups = append(groups, BirthdayGroup{Date: d, Names: []string{r.Name}})
	}
	return groups, nil
}
