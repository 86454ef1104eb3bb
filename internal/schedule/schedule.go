// Package schedule runs a job on a fixed interval until its context ends.
// It backs the watch command, which keeps one location's conditions fresh.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is one refresh. It receives the context passed to Run.
type Job func(ctx context.Context)

// Ticker periodically runs a Job.
type Ticker struct {
	scheduler *gocron.Scheduler
	interval  time.Duration
	log       *slog.Logger
}

// New creates a Ticker. A nil logger uses slog.Default.
func New(interval time.Duration, logger *slog.Logger) *Ticker {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Ticker{
		scheduler: s,
		interval:  interval,
		log:       logger,
	}
}

// Run schedules job every interval, first firing one interval from now, and
// blocks until ctx is done. Runs never overlap.
func (t *Ticker) Run(ctx context.Context, job Job) error {
	if t.interval <= 0 {
		return errors.New("schedule: interval must be positive")
	}

	var runs atomic.Int64
	_, err := t.scheduler.Every(t.interval).WaitForSchedule().Do(func() {
		if ctx.Err() != nil {
			return
		}
		n := runs.Add(1)
		t.log.Debug("scheduled refresh", "run", n, "interval", t.interval)
		job(ctx)
	})
	if err != nil {
		return err
	}

	t.scheduler.StartAsync()
	<-ctx.Done()
	t.scheduler.Stop()
	t.log.Debug("scheduler stopped", "runs", runs.Load())
	return nil
}
