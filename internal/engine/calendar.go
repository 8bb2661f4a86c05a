package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-encounter/internal/config"
)

// FeedBuilder renders the registry as an iCalendar feed of all-day birthday
// events, so any calendar client can subscribe to the group's birthdays.
type FeedBuilder struct {
	Clock   Clock
	Catalog *Catalog
}

// Build encodes one event per person for the previous, current and next year.
// Rows that do not parse are skipped with a warning; a feed must keep
// serving when one row is broken.
func (b *FeedBuilder) Build(records []BirthdayRecord) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)

	// Birthdays follow the local calendar date; only DTSTAMP is UTC.
	now := b.Clock.Now()
	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(now.UTC())

	skipped := 0
	for _, r := range records {
		if r.Name == "" && r.Date == "" {
			continue
		}
		birth, err := ParseBirthDate(r.Date)
		if err != nil {
			skipped++
			slog.Warn(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompEngine,
				config.LogKeyName, r.Name,
				config.LogKeyValue, r.Date,
			)
			continue
		}
		for _, e := range b.events(r.Name, birth, now) {
			e.Props.Set(stamp)
			cal.Children = append(cal.Children, e.Component)
		}
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Info(config.MsgGenSuccess,
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, len(records)),
			slog.Int(config.LogKeySkipped, skipped),
		),
	)
	return buf.Bytes(), nil
}

// events never produces an occurrence before the birth year.
func (b *FeedBuilder) events(name string, birth, now time.Time) []*ical.Event {
	input := fmt.Sprintf(config.FormatHashInput, name, birth.Format(time.RFC3339), config.UIDSalt)
	hash := sha256.Sum256([]byte(input))
	uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])

	var out []*ical.Event
	for _, y := range []int{now.Year() - 1, now.Year(), now.Year() + 1} {
		if y < birth.Year() {
			continue
		}
		age := y - birth.Year()

		e := ical.NewEvent()
		e.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, uidBase, y, config.ICalDomain))
		e.Props.SetText(config.PropSummary, b.summary(name, age))

		start := ical.NewProp(config.PropDTStart)
		start.SetDate(time.Date(y, birth.Month(), birth.Day(), 0, 0, 0, 0, now.Location()))
		e.Props.Set(start)

		out = append(out, e)
	}
	return out
}

func (b *FeedBuilder) summary(name string, age int) string {
	if b.Catalog == nil {
		if age == 0 {
			return fmt.Sprintf(config.FallbackSummaryBirth, name)
		}
		return fmt.Sprintf(config.FallbackSummaryAge, name, age)
	}
	if age == 0 {
		return b.Catalog.Text(config.TKeyFeedBirth, map[string]any{"Name": name})
	}
	return b.Catalog.Text(config.TKeyFeedSummary, map[string]any{"Name": name, "Age": age})
}
