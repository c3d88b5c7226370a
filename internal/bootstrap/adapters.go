package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/citation-poller/config"
	"github.com/target/citation-poller/internal/adapters/brightlocal"
	redisadapter "github.com/target/citation-poller/internal/adapters/redis"
	schedrunner "github.com/target/citation-poller/internal/adapters/scheduler"
	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/observability/statsd"
)

// newStatusProbe builds the provider client used by poll cycles.
func newStatusProbe(cfg config.ProviderConfig, logger *slog.Logger) *brightlocal.Client {
	return brightlocal.NewClient(cfg.APIKey,
		brightlocal.WithBaseURL(cfg.BaseURL),
		brightlocal.WithTimeout(cfg.Timeout),
		brightlocal.WithRateLimit(cfg.RateLimit, cfg.Burst),
		brightlocal.WithLogger(logger),
	)
}

// newCompletionNotifier builds the Redis broadcaster for completion events.
func newCompletionNotifier(
	client redis.UniversalClient,
	cfg config.BroadcastConfig,
	logger *slog.Logger,
) (*redisadapter.Broadcaster, error) {
	if client == nil {
		return nil, errors.New("redis client is required for completion broadcasts")
	}
	return redisadapter.NewBroadcaster(redisadapter.BroadcasterOptions{
		Client:        client,
		ChannelPrefix: cfg.ChannelPrefix,
		EventKind:     cfg.EventKind,
		Logger:        logger,
	})
}

// SchedulerRunConfig contains configuration for the scheduler loop.
type SchedulerRunConfig struct {
	Scheduler core.TriggerScheduler
	Interval  time.Duration
	Logger    *slog.Logger
	Metrics   statsd.Sink
}

// RunScheduler starts the scheduler loop and blocks until ctx is done.
func RunScheduler(ctx context.Context, cfg SchedulerRunConfig) error {
	runner, err := schedrunner.NewRunner(schedrunner.RunnerOptions{
		Scheduler: cfg.Scheduler,
		Interval:  cfg.Interval,
		Logger:    cfg.Logger,
		Metrics:   cfg.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create scheduler runner: %w", err)
	}
	return runner.Run(ctx)
}
