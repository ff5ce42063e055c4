// Package scheduler fires the daily callout run on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fionafan/callout/internal/config"
	calloutErrors "github.com/fionafan/callout/internal/errors"
)

// Job is the work a Watcher fires on schedule.
type Job func(ctx context.Context) error

type Watcher struct {
	schedule cron.Schedule
	spec     string
	job      Job

	mu      sync.Mutex
	running bool
}

func NewWatcher(spec string, job Job) (*Watcher, error) {
	if job == nil {
		return nil, fmt.Errorf("job cannot be nil")
	}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = config.DefaultScheduleCron
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse cron schedule %q: %w", spec, err)
	}
	return &Watcher{schedule: schedule, spec: spec, job: job}, nil
}

// Next reports the fire time after now.
func (w *Watcher) Next(now time.Time) time.Time {
	return w.schedule.Next(now)
}

// Run blocks until ctx is cancelled, firing the job at every scheduled
// time. A failed run is logged and the watcher keeps going; the next
// fire is always computed from the current clock, so a run that
// overshoots its slot never causes a burst of catch-up runs.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return calloutErrors.Internal("watcher already running")
	}
	w.running = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	slog.Info("Watch schedule active",
		"cron", w.spec,
		"next_fire", w.Next(time.Now()).Format(time.RFC3339),
	)

	for {
		next := w.Next(time.Now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("Watch loop stopped")
			return nil
		case <-timer.C:
			w.fire(ctx, next)
		}
	}
}

func (w *Watcher) fire(ctx context.Context, at time.Time) {
	slog.Info("Scheduled run firing", "fire_time", at.Format(time.RFC3339))
	start := time.Now()

	if err := w.job(ctx); err != nil {
		slog.Error("Scheduled run failed", "error", err)
		return
	}
	slog.Info("Scheduled run finished", "duration", time.Since(start).Round(time.Millisecond))
}
