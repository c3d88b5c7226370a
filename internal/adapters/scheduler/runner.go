// Package scheduler drives the poll trigger scheduler on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/observability/metrics"
	"github.com/target/citation-poller/internal/observability/statsd"
)

const defaultInterval = time.Second

// RunnerOptions holds the dependencies for creating a Runner.
type RunnerOptions struct {
	Scheduler core.TriggerScheduler
	Interval  time.Duration
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// Runner calls Tick once at start and then every interval. A failed tick is logged and
// counted; the loop keeps going so one bad database round trip does not stop scheduling.
type Runner struct {
	scheduler core.TriggerScheduler
	interval  time.Duration
	logger    *slog.Logger
	metrics   statsd.Sink
	now       func() time.Time
}

// NewRunner requires a scheduler. Interval defaults to one second.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Scheduler == nil {
		return nil, errors.New("scheduler is required")
	}
	r := &Runner{
		scheduler: opts.Scheduler,
		interval:  opts.Interval,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       time.Now,
	}
	if r.interval <= 0 {
		r.interval = defaultInterval
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.logger = r.logger.With("component", "scheduler_runner")
	return r, nil
}

// Run blocks until ctx ends. Cancellation is a clean stop; a deadline is returned.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "starting scheduler runner", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		r.tick(ctx)

		select {
		case <-ctx.Done():
			err := ctx.Err()
			r.logger.InfoContext(ctx, "scheduler runner stopping", "reason", err)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case <-ticker.C:
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	start := r.now()
	fired, err := r.scheduler.Tick(ctx, start.UTC())
	end := r.now()

	metrics.EmitSchedulerTick(r.metrics, metrics.TickMetric{
		Fired:    fired,
		Duration: end.Sub(start),
		Err:      err,
		At:       end,
	})

	switch {
	case err != nil:
		r.logger.ErrorContext(ctx, "scheduler tick error", "fired", fired, "error", err)
	case fired > 0:
		r.logger.InfoContext(ctx, "scheduler fired poll triggers", "fired", fired)
	}
}
