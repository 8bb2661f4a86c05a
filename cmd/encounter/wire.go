package main

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/option"

	"github.com/tartampluch/go-encounter/internal/calendar/google"
	"github.com/tartampluch/go-encounter/internal/config"
	"github.com/tartampluch/go-encounter/internal/engine"
	"github.com/tartampluch/go-encounter/internal/googleauth"
	"github.com/tartampluch/go-encounter/internal/registry/sheets"
	"github.com/tartampluch/go-encounter/internal/registry/sqlite"
)

// bot groups the components one command works with.
type bot struct {
	registry   engine.BirthdayRegistry
	dispatcher *engine.Dispatcher
	builder    *engine.FeedBuilder
}

// feed renders the current registry as iCalendar.
func (b *bot) feed(ctx context.Context) ([]byte, error) {
	records, err := b.registry.ListBirthdays(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrFeedBuild, err)
	}
	return b.builder.Build(records)
}

// settings loads the configuration and checks what the command needs.
func (a *app) settings(reqs ...config.Requirement) (*config.Settings, error) {
	s, err := config.Load(a.envFile)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(reqs...); err != nil {
		return nil, err
	}
	return s, nil
}

// wire builds the registry, the optional calendar and the dispatcher.
// poster may be nil for commands that never reply in the chat.
func (a *app) wire(ctx context.Context, s *config.Settings, poster engine.Poster) (*bot, error) {
	catalog, err := engine.NewCatalog(s.Language)
	if err != nil {
		return nil, err
	}
	clock := engine.RealClock{Location: s.Location}

	registry, err := a.openRegistry(ctx, s)
	if err != nil {
		return nil, err
	}

	d := &engine.Dispatcher{
		Birthdays: registry,
		Renderer:  engine.NewRenderer(poster),
		Catalog:   catalog,
		Clock:     clock,
	}
	if s.HasCalendar() {
		auth, err := googleClient(ctx, s, config.GoogleCalendarScope)
		if err != nil {
			return nil, err
		}
		events, err := google.NewClient(ctx, s.CalendarID, auth)
		if err != nil {
			return nil, err
		}
		d.Events = events
	}

	return &bot{
		registry:   registry,
		dispatcher: d,
		builder:    &engine.FeedBuilder{Clock: clock, Catalog: catalog},
	}, nil
}

func (a *app) openRegistry(ctx context.Context, s *config.Settings) (engine.BirthdayRegistry, error) {
	switch s.Registry {
	case config.RegistrySQLite:
		store, err := sqlite.Open(s.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.cleanup = append(a.cleanup, store.Close)
		return store, nil
	case config.RegistrySheets:
		auth, err := googleClient(ctx, s, config.GoogleSheetsScope)
		if err != nil {
			return nil, err
		}
		reg, err := sheets.New(ctx, s.SheetID, auth)
		if err != nil {
			return nil, err
		}
		return reg, nil
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrUnknownRegistry, s.Registry)
	}
}

func googleClient(ctx context.Context, s *config.Settings, scope string) (option.ClientOption, error) {
	client, err := googleauth.HTTPClient(ctx, []byte(s.ServiceAccountJSON), scope)
	if err != nil {
		return nil, err
	}
	return option.WithHTTPClient(client), nil
}

// printPoster writes replies to a terminal instead of the chat.
type printPoster struct {
	w io.Writer
}

func (p *printPoster) Post(_ context.Context, text string) error {
	_, err := fmt.Fprintln(p.w, text)
	return err
}
