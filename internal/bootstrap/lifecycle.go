package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/target/citation-poller/config"
)

// stopGrace is how long components get to return once shutdown starts.
// In-flight poll cycles run detached and are bounded by their own timeout.
const stopGrace = 15 * time.Second

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// component is a long-running part of the process. run blocks until ctx ends or it fails.
type component struct {
	mode config.ServiceMode
	name string
	run  func(ctx context.Context) error
}

// RunServicesWithShutdown runs every enabled component until SIGINT/SIGTERM or the first
// component failure, then waits for the rest to stop.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config with AppConfig is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabled, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var comps []component
	for _, c := range components(cfg, logger) {
		if enabled[c.mode] {
			comps = append(comps, c)
		}
	}
	return runComponents(ctx, logger, comps, stopGrace+cfg.Config.HTTP.ShutdownTimeout)
}

func components(cfg *ServiceOrchestrationConfig, logger *slog.Logger) []component {
	appCfg, svc := cfg.Config, cfg.Services
	return []component{
		{
			mode: config.ServiceModeHTTP,
			name: "http",
			run: func(ctx context.Context) error {
				return serveHTTP(ctx, NewHTTPServer(appCfg, svc, logger), appCfg.HTTP.ShutdownTimeout, logger)
			},
		},
		{
			mode: config.ServiceModeScheduler,
			name: "scheduler",
			run: func(ctx context.Context) error {
				if svc.Scheduler == nil {
					return errors.New("scheduler service is not configured")
				}
				return RunScheduler(ctx, SchedulerRunConfig{
					Scheduler: svc.Scheduler,
					Interval:  appCfg.Scheduler.Interval,
					Logger:    logger,
					Metrics:   svc.Observability.Metrics(),
				})
			},
		},
	}
}

// runComponents starts comps under one errgroup. The first failure cancels the others and is
// returned; cancellation of ctx is a clean stop. After shutdown starts, components that do not
// return within grace are abandoned.
func runComponents(ctx context.Context, logger *slog.Logger, comps []component, grace time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range comps {
		g.Go(func() error {
			logger.InfoContext(gctx, "background service started", "service", c.name, "mode", c.mode)
			err := c.run(gctx)
			if err != nil && !(errors.Is(err, context.Canceled) && gctx.Err() != nil) {
				return fmt.Errorf("%s failed: %w", c.name, err)
			}
			logger.InfoContext(gctx, c.name+" stopped")
			return nil
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-gctx.Done():
	}

	if ctx.Err() != nil {
		logger.Info("shutting down services...")
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case err := <-done:
		if err != nil {
			logger.Error("service error", "error", err)
		}
		return err
	case <-timer.C:
		logger.Warn("timeout waiting for services to stop", "grace", grace)
		return errors.New("services did not stop within the shutdown grace period")
	}
}
