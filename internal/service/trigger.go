package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/domain/trigger"
	apperrors "github.com/target/citation-poller/internal/errors"
)

// TriggerServiceOptions groups dependencies for TriggerService.
type TriggerServiceOptions struct {
	Repo   core.TriggerAdminRepository // Required
	Logger *slog.Logger                // Optional
	Now    func() time.Time            // Optional: clock override for tests
}

// TriggerService manages poll triggers for operators and cancels them for the poll cycle.
type TriggerService struct {
	repo   core.TriggerAdminRepository
	logger *slog.Logger
	now    func() time.Time
}

var _ core.TriggerCanceller = (*TriggerService)(nil)

// NewTriggerService constructs a TriggerService.
func NewTriggerService(opts TriggerServiceOptions) (*TriggerService, error) {
	if opts.Repo == nil {
		return nil, errors.New("trigger repository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &TriggerService{
		repo:   opts.Repo,
		logger: logger.With("component", "trigger_service"),
		now:    now,
	}, nil
}

// Upsert validates req and creates or replaces the named trigger.
// The first firing is StartAt when given, otherwise the next schedule activation.
func (s *TriggerService) Upsert(ctx context.Context, req trigger.UpsertRequest) (*trigger.Trigger, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	next, err := req.FirstRun(s.now().UTC())
	if err != nil {
		return nil, err
	}

	t, err := s.repo.Upsert(ctx, core.UpsertTriggerParams{Request: req, NextRunAt: next})
	if err != nil {
		return nil, fmt.Errorf("upsert trigger %s: %w", req.Name, err)
	}

	s.logger.InfoContext(ctx, "poll trigger saved",
		"trigger", t.Name,
		"campaign_id", t.CampaignID,
		"schedule", t.Schedule,
		"next_run_at", t.NextRunAt,
	)
	return t, nil
}

// Get returns the named trigger.
func (s *TriggerService) Get(ctx context.Context, name string) (*trigger.Trigger, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ValidationField("name", "name is required")
	}
	return s.repo.GetByName(ctx, name)
}

// List returns triggers, optionally filtered by campaign.
func (s *TriggerService) List(ctx context.Context, opts core.ListTriggersOptions) ([]*trigger.Trigger, error) {
	return s.repo.List(ctx, opts)
}

// Delete removes the named trigger. Deleting an absent trigger reports NotFound.
func (s *TriggerService) Delete(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.ValidationField("name", "name is required")
	}
	deleted, err := s.repo.DeleteByName(ctx, name)
	if err != nil {
		return fmt.Errorf("delete trigger %s: %w", name, err)
	}
	if !deleted {
		return apperrors.NotFoundf("poll trigger %q not found", name)
	}
	return nil
}

// Cancel stops further firings of the named trigger. An absent trigger is already cancelled.
func (s *TriggerService) Cancel(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.Wrap(errors.New("trigger name is empty"), apperrors.ErrCodeCancellationFailure,
			"cancel poll trigger")
	}

	deleted, err := s.repo.DeleteByName(ctx, name)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeCancellationFailure, "cancel poll trigger %s", name)
	}
	if !deleted {
		s.logger.DebugContext(ctx, "poll trigger already cancelled", "trigger", name)
		return nil
	}
	s.logger.InfoContext(ctx, "poll trigger cancelled", "trigger", name)
	return nil
}
