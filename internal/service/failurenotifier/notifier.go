// Package failurenotifier fans poll failure alerts out to the configured paging sinks.
package failurenotifier

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/target/citation-poller/internal/observability/metrics"
	"github.com/target/citation-poller/internal/observability/notify"
	"github.com/target/citation-poller/internal/observability/statsd"
)

// DefaultDeliveryTimeout bounds one sink's delivery, retries included.
const DefaultDeliveryTimeout = 30 * time.Second

// SinkRegistration names a sink for logs and metric tags.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the failure notifier service.
type Options struct {
	Logger  *slog.Logger
	Sinks   []SinkRegistration
	Metrics statsd.Sink
	// DeliveryTimeout defaults to DefaultDeliveryTimeout.
	DeliveryTimeout time.Duration
}

// Service dispatches failure events to all registered sinks. Delivery errors are logged
// and counted, never returned: a failed page must not fail the poll that raised it.
type Service struct {
	logger  *slog.Logger
	metrics statsd.Sink
	timeout time.Duration
	sinks   []SinkRegistration
}

// NewService drops registrations without a sink.
func NewService(opts Options) *Service {
	s := &Service{
		logger:  opts.Logger,
		metrics: opts.Metrics,
		timeout: opts.DeliveryTimeout,
	}
	if s.logger == nil {
		s.logger = slog.Default().With("component", "failure_notifier")
	}
	if s.timeout <= 0 {
		s.timeout = DefaultDeliveryTimeout
	}
	for _, reg := range opts.Sinks {
		if reg.Sink == nil {
			continue
		}
		if strings.TrimSpace(reg.Name) == "" {
			reg.Name = "sink"
		}
		s.sinks = append(s.sinks, reg)
	}
	return s
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return len(s.sinks) > 0
}

// NotifyPollFailure delivers payload to every sink concurrently and waits for all of them.
// Severity defaults to critical.
func (s *Service) NotifyPollFailure(ctx context.Context, payload notify.PollFailurePayload) {
	if !s.Enabled() {
		return
	}
	if payload.Severity == "" {
		payload.Severity = notify.SeverityCritical
	}

	var wg sync.WaitGroup
	wg.Add(len(s.sinks))
	for _, reg := range s.sinks {
		go func() {
			defer wg.Done()
			s.deliver(ctx, reg, payload)
		}()
	}
	wg.Wait()
}

func (s *Service) deliver(ctx context.Context, reg SinkRegistration, payload notify.PollFailurePayload) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := reg.Sink.SendPollFailure(ctx, payload)
	metrics.EmitAlertDelivery(s.metrics, reg.Name, time.Since(start), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "poll failure alert not delivered",
			"sink", reg.Name,
			"campaign_id", payload.CampaignID,
			"schedule_name", payload.ScheduleName,
			"error", err,
		)
	}
}
