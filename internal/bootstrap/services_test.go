package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/citation-poller/config"
	"github.com/target/citation-poller/internal/testutil"
)

func TestGetEnabledServices(t *testing.T) {
	cfg := &config.AppConfig{Services: "scheduler, http"}
	assert.Equal(t, []string{"http", "scheduler"}, GetEnabledServices(cfg))

	assert.Empty(t, GetEnabledServices(&config.AppConfig{Services: "rules-engine"}))
	assert.Empty(t, GetEnabledServices(nil))
}

func TestValidateServiceConfig(t *testing.T) {
	require.Error(t, ValidateServiceConfig(nil))
	require.Error(t, ValidateServiceConfig(&config.AppConfig{Services: "bogus"}))

	err := ValidateServiceConfig(&config.AppConfig{Services: "http"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVIDER_API_KEY")

	err = ValidateServiceConfig(&config.AppConfig{Services: "http", Provider: config.ProviderConfig{BaseURL: "ftp://x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROVIDER_API_KEY")
	assert.Contains(t, err.Error(), "PROVIDER_BASE_URL")

	cfg := &config.AppConfig{Services: "http", Provider: config.ProviderConfig{APIKey: "k"}}
	cfg.Sanitize()
	require.NoError(t, ValidateServiceConfig(cfg))
}

func TestNewServices_RequiresRedisForBroadcasts(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.AppConfig{Services: "http"}
	cfg.Sanitize()

	_, err = NewServices(&ServiceDeps{
		Config: cfg,
		DB:     db,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion notifier")
}

func TestNewServices_WiresEverything(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	redisClient := testutil.SetupTestRedis(t)

	cfg := &config.AppConfig{Services: "http,scheduler", Provider: config.ProviderConfig{APIKey: "k"}}
	cfg.Sanitize()

	svc, err := NewServices(&ServiceDeps{
		Config:      cfg,
		DB:          db,
		RedisClient: redisClient,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	assert.NotNil(t, svc.Cycle)
	assert.NotNil(t, svc.Triggers)
	assert.NotNil(t, svc.Scheduler)
	assert.NotNil(t, svc.Campaigns)
	assert.Nil(t, svc.Observability.Metrics(), "metrics are disabled by default")
}

func TestAlertSinks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := config.ObservabilityNotificationsConfig{
		Enabled:   true,
		Slack:     config.SlackNotificationConfig{Enabled: true},
		PagerDuty: config.PagerDutyNotificationConfig{Enabled: true, RoutingKey: "rk"},
	}
	cfg.Sanitize()

	sinks := alertSinks(logger, cfg)
	require.Len(t, sinks, 1, "slack without a webhook url is dropped")
	assert.Equal(t, "pagerduty", sinks[0].Name)

	cfg.Enabled = false
	assert.Empty(t, alertSinks(logger, cfg))

	obs := buildObservability(logger, config.ObservabilityConfig{Notifications: cfg})
	require.NotNil(t, obs.FailureNotifier)
	assert.False(t, obs.FailureNotifier.Enabled())
}

func TestRunComponents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	waitForCancel := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	t.Run("first failure stops the rest", func(t *testing.T) {
		err := runComponents(context.Background(), logger, []component{
			{mode: config.ServiceModeHTTP, name: "http", run: waitForCancel},
			{mode: config.ServiceModeScheduler, name: "scheduler", run: func(context.Context) error {
				return errors.New("boom")
			}},
		}, time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheduler failed: boom")
	})

	t.Run("cancellation is a clean stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)
		err := runComponents(ctx, logger, []component{
			{mode: config.ServiceModeScheduler, name: "scheduler", run: waitForCancel},
		}, time.Second)
		assert.NoError(t, err)
	})

	t.Run("stuck component hits the grace period", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		release := make(chan struct{})
		t.Cleanup(func() { close(release) })
		err := runComponents(ctx, logger, []component{
			{mode: config.ServiceModeScheduler, name: "scheduler", run: func(context.Context) error {
				<-release
				return nil
			}},
		}, 20*time.Millisecond)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "grace period")
	})

	t.Run("nothing enabled", func(t *testing.T) {
		assert.NoError(t, runComponents(context.Background(), logger, nil, time.Second))
	})
}

func TestServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewHTTPServer(&config.AppConfig{HTTP: config.HTTPConfig{Addr: "127.0.0.1:0"}}, ServiceContainer{}, logger)
	assert.Equal(t, minWriteTimeout, srv.WriteTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- serveHTTP(ctx, srv, time.Second, logger) }()
	cancel()

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serveHTTP did not return after cancellation")
	}
}

func TestServeHTTP_ListenError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := NewHTTPServer(&config.AppConfig{HTTP: config.HTTPConfig{Addr: "256.0.0.1:bad"}}, ServiceContainer{}, logger)
	require.Error(t, serveHTTP(context.Background(), srv, time.Second, logger))
}
