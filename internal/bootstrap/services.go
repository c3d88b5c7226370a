package bootstrap

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/target/citation-poller/config"
	"github.com/target/citation-poller/internal/data"
	"github.com/target/citation-poller/internal/observability/notify"
	"github.com/target/citation-poller/internal/observability/notify/pagerduty"
	"github.com/target/citation-poller/internal/observability/notify/slack"
	"github.com/target/citation-poller/internal/observability/statsd"
	"github.com/target/citation-poller/internal/service"
	"github.com/target/citation-poller/internal/service/failurenotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Cycle     *service.PollCycleService
	Triggers  *service.TriggerService
	Scheduler *service.SchedulerService
	Campaigns *data.CampaignRepo

	// Connections are kept for readiness checks.
	DB    *sql.DB
	Redis redis.UniversalClient

	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     *statsd.Client
	FailureNotifier *failurenotifier.Service
}

// Metrics returns the configured sink, or nil when metrics are disabled.
//
//nolint:ireturn // a nil interface keeps consumers' nil checks meaningful.
func (o ObservabilityContainer) Metrics() statsd.Sink {
	if o.MetricsSink == nil {
		return nil
	}
	return o.MetricsSink
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Campaigns     *data.CampaignRepo
	Triggers      *data.TriggerRepo
	TriggersAdmin *data.TriggerAdminRepo
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Campaigns:     data.NewCampaignRepo(db),
		Triggers:      data.NewTriggerRepo(db),
		TriggersAdmin: data.NewTriggerAdminRepo(db),
	}
}

// buildObservability configures metrics and notification adapters. A sink that fails to
// initialise is logged and left out; the poller runs without it.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	if logger == nil {
		logger = slog.Default()
	}
	var obs ObservabilityContainer

	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled:    true,
			Address:    cfg.Metrics.StatsdAddress,
			Prefix:     cfg.Metrics.Prefix,
			GlobalTags: cfg.Metrics.GlobalTags(),
			Logger:     logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			obs.MetricsSink = client
		}
	}

	obs.FailureNotifier = failurenotifier.NewService(failurenotifier.Options{
		Logger:          logger.With("component", "failure_notifier"),
		Sinks:           alertSinks(logger, cfg.Notifications),
		Metrics:         obs.Metrics(),
		DeliveryTimeout: cfg.Notifications.DeliveryTimeout(),
	})
	return obs
}

// alertSinks builds the enabled paging sinks. Nothing is built unless notifications are enabled.
func alertSinks(logger *slog.Logger, cfg config.ObservabilityNotificationsConfig) []failurenotifier.SinkRegistration {
	if !cfg.Enabled {
		return nil
	}

	type candidate struct {
		name    string
		enabled bool
		build   func() (notify.Sink, error)
	}
	candidates := []candidate{
		{"slack", cfg.Slack.Enabled, func() (notify.Sink, error) {
			return slack.NewClient(slack.Config{
				WebhookURL:        cfg.Slack.WebhookURL,
				Channel:           cfg.Slack.Channel,
				Username:          cfg.Slack.Username,
				Timeout:           cfg.Timeout,
				RetryLimit:        cfg.RetryLimit,
				CampaignURLPrefix: cfg.Slack.CampaignURLPrefix,
			})
		}},
		{"pagerduty", cfg.PagerDuty.Enabled, func() (notify.Sink, error) {
			return pagerduty.NewClient(pagerduty.Config{
				RoutingKey: cfg.PagerDuty.RoutingKey,
				Source:     cfg.PagerDuty.Source,
				Component:  cfg.PagerDuty.Component,
				Timeout:    cfg.Timeout,
				RetryLimit: cfg.RetryLimit,
			})
		}},
	}

	var sinks []failurenotifier.SinkRegistration
	for _, c := range candidates {
		if !c.enabled {
			continue
		}
		sink, err := c.build()
		if err != nil {
			logger.Error("failed to initialise "+c.name+" notifier", "error", err)
			continue
		}
		sinks = append(sinks, failurenotifier.SinkRegistration{Name: c.name, Sink: sink})
	}
	return sinks
}

// NewServices wires repositories, adapters and services for the enabled modes.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.DB == nil {
		return ServiceContainer{}, errors.New("database is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	obs := buildObservability(logger, cfg.Observability)
	repos := buildRepositories(deps.DB)

	triggers, err := service.NewTriggerService(service.TriggerServiceOptions{
		Repo:   repos.TriggersAdmin,
		Logger: logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create trigger service: %w", err)
	}

	broadcaster, err := newCompletionNotifier(deps.RedisClient, cfg.Broadcast, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create completion notifier: %w", err)
	}

	cycle, err := service.NewPollCycleService(service.PollCycleServiceOptions{
		Probe:            newStatusProbe(cfg.Provider, logger),
		Store:            repos.Campaigns,
		Canceller:        triggers,
		Notifier:         broadcaster,
		Timeout:          cfg.Poll.Timeout,
		PreserveTerminal: cfg.Poll.PreserveTerminal,
		FailureNotifier:  obs.FailureNotifier,
		Metrics:          obs.Metrics(),
		Logger:           logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create poll cycle service: %w", err)
	}

	scheduler, err := service.NewSchedulerService(service.SchedulerServiceOptions{
		Repo:        repos.Triggers,
		Cycle:       cycle,
		BatchSize:   cfg.Scheduler.BatchSize,
		Concurrency: cfg.Scheduler.Concurrency,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("create scheduler service: %w", err)
	}

	return ServiceContainer{
		Cycle:         cycle,
		Triggers:      triggers,
		Scheduler:     scheduler,
		Campaigns:     repos.Campaigns,
		DB:            deps.DB,
		Redis:         deps.RedisClient,
		Observability: obs,
	}, nil
}
