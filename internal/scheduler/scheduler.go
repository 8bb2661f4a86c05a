// Package scheduler runs the bot's periodic jobs: the daily birthday check
// and the feed refresh.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tartampluch/go-encounter/internal/config"
)

// Job is a unit of scheduled work. Its context is cancelled on Stop.
type Job func(ctx context.Context) error

// CronEngine wraps a cron scheduler bound to the bot's timezone.
type CronEngine struct {
	scheduler *cron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewCronEngine uses standard five field specs plus descriptors like "@every 1h".
func NewCronEngine(loc *time.Location) *CronEngine {
	if loc == nil {
		loc = time.Local
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &CronEngine{
		scheduler: cron.New(cron.WithLocation(loc)),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// AddJob registers job under name. A failing run is logged and retried at
// the next tick.
func (e *CronEngine) AddJob(name, spec string, job Job) error {
	_, err := e.scheduler.AddFunc(spec, func() {
		e.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrSchedule, spec, err)
	}
	slog.Info(config.MsgJobAdded,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyJob, name,
		config.LogKeySchedule, spec,
	)
	return nil
}

func (e *CronEngine) run(name string, job Job) {
	start := time.Now()
	if err := job(e.ctx); err != nil {
		slog.Error(config.MsgJobFailed,
			config.LogKeyComponent, config.CompScheduler,
			config.LogKeyJob, name,
			config.LogKeyError, err,
		)
		return
	}
	slog.Debug(config.MsgJobDone,
		config.LogKeyComponent, config.CompScheduler,
		config.LogKeyJob, name,
		config.LogKeyDuration, time.Since(start).Milliseconds(),
	)
}

// RunNow executes a registered job body immediately, outside the schedule.
func (e *CronEngine) RunNow(name string, job Job) {
	e.run(name, job)
}

func (e *CronEngine) Start() {
	e.scheduler.Start()
	slog.Info(config.MsgSchedulerStart, config.LogKeyComponent, config.CompScheduler)
}

// Stop cancels running jobs and waits for them to return.
func (e *CronEngine) Stop() {
	e.cancel()
	<-e.scheduler.Stop().Done()
	slog.Info(config.MsgSchedulerStop, config.LogKeyComponent, config.CompScheduler)
}
