package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/domain/trigger"
)

const (
	defaultSchedulerBatchSize   = 25
	defaultSchedulerConcurrency = 4
)

// SchedulerServiceOptions holds the dependencies for creating a SchedulerService.
type SchedulerServiceOptions struct {
	Repo  core.TriggerRepository
	Cycle core.PollCycle

	// BatchSize caps the triggers claimed per tick.
	BatchSize int
	// Concurrency caps the poll cycles run in parallel per tick.
	Concurrency int

	Logger *slog.Logger
}

// SchedulerService implements the TriggerScheduler interface.
// It claims due poll triggers, advances their next run and fires one poll cycle per claim.
// Safe under concurrent replicas through database-level concurrency controls.
type SchedulerService struct {
	repo        core.TriggerRepository
	cycle       core.PollCycle
	batchSize   int
	concurrency int
	logger      *slog.Logger
}

var _ core.TriggerScheduler = (*SchedulerService)(nil)

// NewSchedulerService creates a new SchedulerService with the given dependencies.
func NewSchedulerService(opts SchedulerServiceOptions) (*SchedulerService, error) {
	if opts.Repo == nil || opts.Cycle == nil {
		return nil, errors.New("trigger repository and poll cycle are required")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultSchedulerBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultSchedulerConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &SchedulerService{
		repo:        opts.Repo,
		cycle:       opts.Cycle,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
		logger:      opts.Logger.With("component", "scheduler"),
	}, nil
}

// Tick fires due poll triggers and returns how many poll cycles ran.
//
// Algorithm:
// 1. Find due triggers using the batch size limit
// 2. For each trigger, try to acquire an advisory lock by trigger name
// 3. If locked, advance next_run_at; the guarded update makes a double claim a no-op
// 4. After the claim commits, run the trigger's poll cycle with bounded parallelism
//
// The poll cycle runs outside the claim transaction so that cancelling the trigger
// from inside the cycle does not wait on the claim's row lock.
func (s *SchedulerService) Tick(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.FindDue(ctx, trigger.FindDueParams{Now: now, Limit: s.batchSize})
	if err != nil {
		return 0, fmt.Errorf("find due triggers: %w", err)
	}

	var claimErrs []error
	claimed := make([]trigger.Trigger, 0, len(due))
	for _, t := range due {
		ok, claimErr := s.claim(ctx, t, now)
		if claimErr != nil {
			claimErrs = append(claimErrs, fmt.Errorf("claim trigger %s: %w", t.Name, claimErr))
			continue
		}
		if ok {
			claimed = append(claimed, t)
		}
		// Not claimed: another replica holds the lock or already advanced it.
	}

	s.fire(ctx, claimed)

	return len(claimed), errors.Join(claimErrs...)
}

// claim locks the trigger and advances it to its next run after now.
func (s *SchedulerService) claim(ctx context.Context, t trigger.Trigger, now time.Time) (bool, error) {
	next, err := trigger.NextRun(t.Schedule, now)
	if err != nil {
		return false, err
	}

	var marked bool
	locked, err := s.repo.TryWithTriggerLock(ctx, t.Name, func(ctx context.Context, tx *sql.Tx) error {
		ok, markErr := s.repo.MarkFiredTx(ctx, tx, trigger.MarkFiredParams{
			ID:        t.ID,
			FiredAt:   now,
			NextRunAt: next,
		})
		if markErr != nil {
			return markErr
		}
		marked = ok
		return nil
	})
	if err != nil {
		return false, err
	}
	return locked && marked, nil
}

// fire runs one poll cycle per claimed trigger. Cycle failures are reported in
// the cycle's own result and logs; they do not fail the tick.
func (s *SchedulerService) fire(ctx context.Context, claimed []trigger.Trigger) {
	if len(claimed) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, t := range claimed {
		g.Go(func() error {
			res := s.cycle.Run(gctx, t.Invocation())
			if !res.OK() {
				s.logger.WarnContext(gctx, "scheduled poll cycle failed",
					"trigger", t.Name,
					"campaign_id", t.CampaignID,
					"error", res.Body.Error,
				)
			}
			return nil
		})
	}
	_ = g.Wait()
}
