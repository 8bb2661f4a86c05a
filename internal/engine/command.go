package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/go-encounter/internal/config"
)

// BirthdayRegistry stores birthday rows.
type BirthdayRegistry interface {
	ListBirthdays(ctx context.Context) ([]BirthdayRecord, error)
	AddBirthday(ctx context.Context, r BirthdayRecord) error
}

// EventSource returns at most max events starting from from, ordered by start.
type EventSource interface {
	UpcomingEvents(ctx context.Context, from time.Time, max int) ([]EventEntry, error)
}

// Dispatcher interprets chat commands and answers through the Renderer.
type Dispatcher struct {
	Birthdays BirthdayRegistry
	Events    EventSource // Optional. Event commands fail with ErrNoCalendar without it.
	Renderer  *Renderer
	Catalog   *Catalog
	Clock     Clock

	// OnBirthdayAdded runs after a successful add, e.g. to refresh the feed.
	OnBirthdayAdded func(ctx context.Context)
}

// Dispatch handles one inbound chat message. Messages without the command
// prefix are ignored. Unknown verbs answer with the matching help text.
// A malformed add returns a *ParseError; registry, calendar and transport
// failures are returned wrapped.
func (d *Dispatcher) Dispatch(ctx context.Context, text, sender string) error {
	if text == config.CommandAlias || strings.HasPrefix(text, config.CommandAlias+" ") {
		text = strings.Replace(text, config.CommandAlias, config.CommandPrefix, 1)
	}

	command, ok := strings.CutPrefix(text, config.CommandPrefix)
	if !ok {
		slog.DebugContext(ctx, config.MsgIgnoredText,
			config.LogKeyComponent, config.CompDispatch,
			config.LogKeySender, sender,
		)
		return nil
	}
	return d.Execute(ctx, command, sender)
}

// Execute runs a command with the invocation prefix already removed.
func (d *Dispatcher) Execute(ctx context.Context, command, sender string) error {
	command = strings.TrimLeft(command, " ")
	slog.InfoContext(ctx, config.MsgCommand,
		config.LogKeyComponent, config.CompDispatch,
		config.LogKeySender, sender,
		config.LogKeyCommand, command,
	)

	if rest, ok := strings.CutPrefix(command, config.VerbBirthday); ok {
		return d.birthday(ctx, rest, sender)
	}
	if rest, ok := strings.CutPrefix(command, config.VerbEvent); ok {
		return d.event(ctx, rest)
	}
	return d.Renderer.Send(ctx, d.Catalog.Text(config.TKeyHelp, nil))
}

// DailyCheck posts today's birthdays and stays silent when there are none.
func (d *Dispatcher) DailyCheck(ctx context.Context) error {
	slog.InfoContext(ctx, config.MsgDailyCheck, config.LogKeyComponent, config.CompDispatch)
	return d.listBirthdays(ctx, WindowDay, true)
}

func (d *Dispatcher) birthday(ctx context.Context, command, sender string) error {
	command = strings.TrimLeft(command, " ")

	if rest, ok := strings.CutPrefix(command, config.VerbAdd); ok {
		return d.addBirthday(ctx, rest, sender)
	}
	if rest, ok := strings.CutPrefix(command, config.VerbList); ok {
		if w, ok := ParseWindow(rest); ok {
			return d.listBirthdays(ctx, w, false)
		}
	}
	return d.Renderer.Send(ctx, d.Catalog.Text(config.TKeyHelpBirthday, nil))
}

func (d *Dispatcher) event(ctx context.Context, command string) error {
	command = strings.TrimLeft(command, " ")

	if rest, ok := strings.CutPrefix(command, config.VerbList); ok {
		if w, ok := ParseWindow(rest); ok {
			return d.listEvents(ctx, w, false)
		}
	}
	return d.Renderer.Send(ctx, d.Catalog.Text(config.TKeyHelpEvent, nil))
}

func (d *Dispatcher) addBirthday(ctx context.Context, args, sender string) error {
	args = strings.TrimLeft(args, " ")
	datePart, name, _ := strings.Cut(args, " ")

	date, err := ParseBirthDate(datePart)
	if err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return &ParseError{Input: args, Reason: config.ErrMissingName}
	}

	rec := BirthdayRecord{Name: name, Date: FormatBirthDate(date)}
	if err := d.Birthdays.AddBirthday(ctx, rec); err != nil {
		return fmt.Errorf("%s: %w", config.ErrAddBirthday, err)
	}
	slog.InfoContext(ctx, config.MsgBirthdayAdded,
		config.LogKeyComponent, config.CompDispatch,
		config.LogKeySender, sender,
		config.LogKeyName, rec.Name,
		config.LogKeyDOB, rec.Date,
	)
	if d.OnBirthdayAdded != nil {
		d.OnBirthdayAdded(ctx)
	}

	return d.Renderer.Send(ctx, d.Catalog.Text(config.TKeyBirthdayAdded, map[string]any{
		"Sender": sender,
		"Name":   rec.Name,
		"Date":   rec.Date,
	}))
}

func (d *Dispatcher) listBirthdays(ctx context.Context, w Window, silent bool) error {
	records, err := d.Birthdays.ListBirthdays(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrListBirthdays, err)
	}
	groups, err := GroupBirthdays(records)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrListBirthdays, err)
	}

	today := Today(d.Clock)
	var lines []string
	for _, g := range Filter(groups, w, today) {
		date := normalize(g.Date, today).Format(config.DateFormatDisplay)
		age := Age(g.Date, today)
		for _, name := range g.Names {
			lines = append(lines, d.Catalog.Text(config.TKeyBirthdayLine, map[string]any{
				"Name": name,
				"Date": date,
				"Age":  age,
			}))
		}
	}

	slog.DebugContext(ctx, config.MsgListing,
		config.LogKeyComponent, config.CompDispatch,
		config.LogKeyWindow, string(w),
		config.LogKeyCount, len(lines),
	)
	return d.Renderer.SendLines(ctx,
		d.Catalog.Text(config.TKeyHeaderBirthdays, nil),
		lines,
		d.Catalog.Text(config.TKeyEmptyBirthdays, nil),
		silent,
	)
}

func (d *Dispatcher) listEvents(ctx context.Context, w Window, silent bool) error {
	if d.Events == nil {
		return ErrNoCalendar
	}

	slog.DebugContext(ctx, config.MsgEventsFetching, config.LogKeyComponent, config.CompDispatch)
	events, err := d.Events.UpcomingEvents(ctx, d.Clock.Now(), config.MaxUpcomingEvents)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrListEvents, err)
	}

	var lines []string
	for _, e := range FilterEvents(events, w, Today(d.Clock)) {
		lines = append(lines, d.formatEvent(e))
	}

	slog.DebugContext(ctx, config.MsgListing,
		config.LogKeyComponent, config.CompDispatch,
		config.LogKeyWindow, string(w),
		config.LogKeyCount, len(lines),
	)
	return d.Renderer.SendLines(ctx,
		d.Catalog.Text(config.TKeyHeaderEvents, nil),
		lines,
		d.Catalog.Text(config.TKeyEmptyEvents, nil),
		silent,
	)
}

func (d *Dispatcher) formatEvent(e EventEntry) string {
	data := map[string]any{
		"Summary": e.Summary,
		"Date":    e.Start.Format(config.DateFormatDisplay),
	}
	if e.AllDay {
		return d.Catalog.Text(config.TKeyEventLineAllDay, data)
	}
	data["Time"] = e.Start.Format(config.TimeFormatDisplay)
	return d.Catalog.Text(config.TKeyEventLineTimed, data)
}
