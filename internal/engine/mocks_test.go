package engine_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-encounter/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockRegistry simulates the birthday storage using `testify/mock`.
type MockRegistry struct {
	mock.Mock
}

func (m *MockRegistry) ListBirthdays(ctx context.Context) ([]engine.BirthdayRecord, error) {
	args := m.Called(ctx)
	if r := args.Get(0); r != nil {
		return r.([]engine.BirthdayRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRegistry) AddBirthday(ctx context.Context, r engine.BirthdayRecord) error {
	return m.Called(ctx, r).Error(0)
}

// MockEvents simulates the calendar.
type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) UpcomingEvents(ctx context.Context, from time.Time, max int) ([]engine.EventEntry, error) {
	args := m.Called(ctx, from, max)
	if r := args.Get(0); r != nil {
		return r.([]engine.EventEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingPoster keeps every posted message in order.
type recordingPoster struct {
	mu    sync.Mutex
	posts []string
	err   error
}

func (p *recordingPoster) Post(_ context.Context, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.posts = append(p.posts, text)
	return nil
}

func (p *recordingPoster) Posts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.posts...)
}

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

// friday is 2024-03-15, a Friday, in the middle of the week of Mar 10..16.
var friday = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func noSleep(ctx context.Context, _ time.Duration) bool {
	return ctx.Err() == nil
}

func newCatalog(t *testing.T) *engine.Catalog {
	t.Helper()
	c, err := engine.NewCatalog("en")
	require.NoError(t, err)
	return c
}

func newDispatcher(t *testing.T, now time.Time, reg engine.BirthdayRegistry, ev engine.EventSource) (*engine.Dispatcher, *recordingPoster) {
	t.Helper()
	poster := &recordingPoster{}
	r := engine.NewRenderer(poster)
	r.Sleep = noSleep
	return &engine.Dispatcher{
		Birthdays: reg,
		Events:    ev,
		Renderer:  r,
		Catalog:   newCatalog(t),
		Clock:     MockClock{CurrentTime: now},
	}, poster
}
