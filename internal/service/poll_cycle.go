// Package service provides the citation poller's business logic services.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/domain/lookup"
	apperrors "github.com/target/citation-poller/internal/errors"
	obserrors "github.com/target/citation-poller/internal/observability/errors"
	"github.com/target/citation-poller/internal/observability/metrics"
	"github.com/target/citation-poller/internal/observability/notify"
	"github.com/target/citation-poller/internal/observability/statsd"
)

// DefaultPollTimeout bounds a single poll cycle when no timeout is configured.
const DefaultPollTimeout = 60 * time.Second

// PollFailureNotifier pages operators about failures that retrying will not fix.
type PollFailureNotifier interface {
	NotifyPollFailure(ctx context.Context, payload notify.PollFailurePayload)
}

// PollCycleServiceOptions holds the dependencies for creating a PollCycleService.
type PollCycleServiceOptions struct {
	Probe     core.StatusProbe
	Store     core.StatusStore
	Canceller core.TriggerCanceller
	Notifier  core.CompletionNotifier

	// Timeout bounds the whole cycle; the caller's cancellation is not inherited.
	Timeout time.Duration
	// PreserveTerminal keeps a complete record from being rolled back by a stale read.
	PreserveTerminal bool

	FailureNotifier PollFailureNotifier // Optional
	Metrics         statsd.Sink         // Optional
	Logger          *slog.Logger
}

// PollCycleService runs one invocation of the lookup poll:
// validate, probe, project, persist, then cancel and notify once the lookup is complete.
type PollCycleService struct {
	probe     core.StatusProbe
	store     core.StatusStore
	canceller core.TriggerCanceller
	notifier  core.CompletionNotifier

	timeout          time.Duration
	preserveTerminal bool

	failures PollFailureNotifier
	metrics  statsd.Sink
	logger   *slog.Logger
}

var _ core.PollCycle = (*PollCycleService)(nil)

// NewPollCycleService creates a PollCycleService; every port is required.
func NewPollCycleService(opts PollCycleServiceOptions) (*PollCycleService, error) {
	if opts.Probe == nil || opts.Store == nil || opts.Canceller == nil || opts.Notifier == nil {
		return nil, errors.New("probe, store, canceller and notifier are required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultPollTimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &PollCycleService{
		probe:            opts.Probe,
		store:            opts.Store,
		canceller:        opts.Canceller,
		notifier:         opts.Notifier,
		timeout:          opts.Timeout,
		preserveTerminal: opts.PreserveTerminal,
		failures:         opts.FailureNotifier,
		metrics:          opts.Metrics,
		logger:           opts.Logger.With("component", "poll_cycle"),
	}, nil
}

// Run executes one poll cycle and reports its outcome as a Result.
//
// A probe, projection or persist failure ends the cycle with a failure result and no side effects.
// Once a complete status is persisted, cancellation and notification are both attempted;
// their failures are logged and do not change the result.
func (s *PollCycleService) Run(ctx context.Context, inv lookup.Invocation) lookup.Result {
	start := time.Now()
	inv.Normalize()

	outcome, err := s.run(ctx, inv)
	s.emit(outcome, time.Since(start), err)
	if err != nil {
		s.logger.ErrorContext(ctx, "poll cycle failed",
			"campaign_id", inv.CampaignID,
			"trigger", inv.ScheduleName,
			"org", inv.OrganizationID,
			"error_class", obserrors.Classify(err),
			"error", err,
		)
		return lookup.Failed(err)
	}
	return lookup.Succeeded()
}

func (s *PollCycleService) run(ctx context.Context, inv lookup.Invocation) (string, error) {
	if err := inv.Validate(); err != nil {
		return metrics.OutcomeFailed, err
	}

	// Once started a cycle runs to completion or its own deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	snapshot, err := s.probe.FetchStatus(ctx, inv.CampaignID)
	if err != nil {
		return metrics.OutcomeFailed, classifyDeadline(err, apperrors.ErrCodeProviderUnavailable)
	}

	delta, err := lookup.Project(snapshot)
	if err != nil {
		s.reportProjectionFailure(ctx, inv, err)
		return metrics.OutcomeFailed, err
	}

	applied, err := s.store.ApplyDelta(ctx, core.ApplyDeltaParams{
		CampaignID:       inv.CampaignID,
		Delta:            delta,
		PreserveTerminal: s.preserveTerminal,
	})
	if err != nil {
		return metrics.OutcomeFailed, classifyDeadline(err, apperrors.ErrCodeStoreUnavailable)
	}

	if applied.Preserved {
		s.logger.InfoContext(ctx, "terminal preserved",
			"campaign_id", inv.CampaignID,
			"trigger", inv.ScheduleName,
			"status", delta.Status,
		)
		return metrics.OutcomePreserved, nil
	}

	if !delta.Status.IsTerminal() {
		s.logger.InfoContext(ctx, "lookup still in progress",
			"campaign_id", inv.CampaignID,
			"trigger", inv.ScheduleName,
			"status", delta.Status,
		)
		return metrics.OutcomePending, nil
	}

	s.finish(ctx, inv, delta.Status)
	return metrics.OutcomeComplete, nil
}

// finish cancels the trigger and then notifies subscribers; neither failure blocks the other.
func (s *PollCycleService) finish(ctx context.Context, inv lookup.Invocation, status lookup.Status) {
	if err := s.canceller.Cancel(ctx, inv.ScheduleName); err != nil {
		err = ensureCode(err, apperrors.ErrCodeCancellationFailure, "cancel poll trigger")
		metrics.EmitSideEffectFailure(s.metrics, "cancel", err)
		s.logger.WarnContext(ctx, "failed to cancel poll trigger",
			"campaign_id", inv.CampaignID,
			"trigger", inv.ScheduleName,
			"error", err,
		)
	}

	err := s.notifier.NotifyCompletion(ctx, lookup.CompletionEvent{
		CampaignID:     inv.CampaignID,
		LookupStatus:   status,
		OrganizationID: inv.OrganizationID,
	})
	if err != nil {
		err = ensureCode(err, apperrors.ErrCodeNotificationFailure, "notify completion")
		metrics.EmitSideEffectFailure(s.metrics, "notify", err)
		s.logger.WarnContext(ctx, "failed to notify completion",
			"campaign_id", inv.CampaignID,
			"org", inv.OrganizationID,
			"error", err,
		)
		return
	}

	s.logger.InfoContext(ctx, "citation lookup complete",
		"campaign_id", inv.CampaignID,
		"trigger", inv.ScheduleName,
		"org", inv.OrganizationID,
	)
}

func (s *PollCycleService) reportProjectionFailure(ctx context.Context, inv lookup.Invocation, err error) {
	if s.failures == nil {
		return
	}
	s.failures.NotifyPollFailure(ctx, notify.PollFailurePayload{
		CampaignID:     inv.CampaignID,
		OrganizationID: inv.OrganizationID,
		ScheduleName:   inv.ScheduleName,
		Error:          err.Error(),
		ErrorClass:     obserrors.Classify(err),
		Severity:       notify.SeverityError,
		OccurredAt:     time.Now().UTC(),
	})
}

func (s *PollCycleService) emit(outcome string, elapsed time.Duration, err error) {
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.EmitPollCycle(s.metrics, metrics.PollMetric{
		Outcome:  outcome,
		Result:   result,
		Duration: elapsed,
		Err:      err,
	})
}

// classifyDeadline maps a bare deadline or cancellation into code so that a cycle timeout
// reads like the failure of the step it interrupted.
func classifyDeadline(err error, code apperrors.ErrorCode) error {
	if apperrors.GetCode(err) != "" && !apperrors.IsTimeout(err) && !apperrors.IsCanceled(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		apperrors.IsTimeout(err) || apperrors.IsCanceled(err) {
		return apperrors.Wrap(err, code, "poll cycle deadline exceeded")
	}
	return err
}

func ensureCode(err error, code apperrors.ErrorCode, msg string) error {
	if apperrors.GetCode(err) == code {
		return err
	}
	return apperrors.Wrap(err, code, msg)
}
