package scheduler_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-encounter/internal/config"
	"github.com/tartampluch/go-encounter/internal/scheduler"
)

func TestAddJob_InvalidSpec(t *testing.T) {
	e := scheduler.NewCronEngine(time.UTC)

	err := e.AddJob("daily", "not a schedule", func(context.Context) error { return nil })

	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrSchedule)
}

func TestAddJob_DefaultSpecs(t *testing.T) {
	e := scheduler.NewCronEngine(nil)
	noop := func(context.Context) error { return nil }

	assert.NoError(t, e.AddJob("daily", config.DefaultDailySchedule, noop))
	assert.NoError(t, e.AddJob("feed", config.DefaultFeedSchedule, noop))
}

func TestCronEngine_RunsJobs(t *testing.T) {
	e := scheduler.NewCronEngine(time.UTC)
	var runs atomic.Int32
	done := make(chan struct{}, 1)

	require.NoError(t, e.AddJob("tick", "@every 1s", func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			done <- struct{}{}
		}
		return errors.New("logged, not fatal")
	}))
	e.Start()
	defer e.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(1))
}

func TestCronEngine_StopCancelsJobContext(t *testing.T) {
	e := scheduler.NewCronEngine(time.UTC)
	started := make(chan struct{})
	var cancelled atomic.Bool

	require.NoError(t, e.AddJob("slow", "@every 1s", func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
			return nil
		}
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}))
	e.Start()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("job never ran")
	}
	e.Stop()
	assert.True(t, cancelled.Load(), "Stop waits for the running job to observe cancellation")
}

func TestRunNow(t *testing.T) {
	e := scheduler.NewCronEngine(time.UTC)
	ran := false

	e.RunNow("manual", func(context.Context) error {
		ran = true
		return nil
	})

	assert.True(t, ran)
}
