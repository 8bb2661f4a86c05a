// Package google reads upcoming events from a Google Calendar.
package google

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/tartampluch/go-encounter/internal/config"
	"github.com/tartampluch/go-encounter/internal/engine"
	"github.com/tartampluch/go-encounter/internal/googleauth"
)

// Client implements engine.EventSource for one calendar.
type Client struct {
	svc        *calendar.Service
	calendarID string
}

func NewClient(ctx context.Context, calendarID string, opts ...option.ClientOption) (*Client, error) {
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrGoogleService, err)
	}
	return &Client{svc: svc, calendarID: calendarID}, nil
}

// UpcomingEvents lists single (expanded) events starting after from, in
// start order. Cancelled events are left out by the API.
func (c *Client) UpcomingEvents(ctx context.Context, from time.Time, max int) ([]engine.EventEntry, error) {
	slog.DebugContext(ctx, config.MsgGoogleRequest,
		config.LogKeyComponent, config.CompCalendar,
		config.LogKeyCount, max,
	)

	events, err := c.svc.Events.
		List(c.calendarID).
		Context(ctx).
		TimeMin(from.Format(time.RFC3339)).
		MaxResults(int64(max)).
		SingleEvents(true).
		OrderBy(config.CalendarOrderBy).
		Do()
	if err != nil {
		return nil, googleauth.Wrap(config.ErrListEvents, err)
	}

	res := make([]engine.EventEntry, 0, len(events.Items))
	for _, item := range events.Items {
		e, err := newEvent(item)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, nil
}

// newEvent keeps the offset of timed events so they display in the
// calendar's own zone.
func newEvent(item *calendar.Event) (engine.EventEntry, error) {
	e := engine.EventEntry{Summary: item.Summary}
	if item.Start == nil {
		return e, fmt.Errorf("%s: %s", config.ErrEventParse, item.Id)
	}

	if item.Start.DateTime != "" {
		t, err := time.Parse(config.GoogleDateTimeFormat, item.Start.DateTime)
		if err != nil {
			return e, fmt.Errorf("%s: %w", config.ErrEventParse, err)
		}
		e.Start = t
		return e, nil
	}

	t, err := time.Parse(config.GoogleDateFormat, item.Start.Date)
	if err != nil {
		return e, fmt.Errorf("%s: %w", config.ErrEventParse, err)
	}
	e.Start = t
	e.AllDay = true
	return e, nil
}
