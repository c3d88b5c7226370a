// Package core declares the ports between the poll services and their adapters.
package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/target/citation-poller/internal/domain/lookup"
	"github.com/target/citation-poller/internal/domain/trigger"
)

// StatusProbe queries the external provider for a campaign's lookup state.
// Errors carry ErrCodeProviderUnavailable or ErrCodeProviderProtocol.
type StatusProbe interface {
	FetchStatus(ctx context.Context, campaignID string) (lookup.Snapshot, error)
}

// ApplyDeltaParams groups the inputs of StatusStore.ApplyDelta.
type ApplyDeltaParams struct {
	CampaignID string
	Delta      lookup.Delta
	// PreserveTerminal refuses to replace a complete status with a non-terminal one.
	PreserveTerminal bool
}

// ApplyResult reports what a persist actually did.
type ApplyResult struct {
	// Preserved is true when the row was left untouched because it is already complete.
	Preserved bool
}

// StatusStore applies keyed partial updates to campaign records.
// A missing record is ErrCodeNotFound; transient failures are ErrCodeStoreUnavailable.
type StatusStore interface {
	ApplyDelta(ctx context.Context, params ApplyDeltaParams) (ApplyResult, error)
}

// CampaignReader loads campaign records for inspection.
type CampaignReader interface {
	GetByID(ctx context.Context, campaignID string) (*lookup.Campaign, error)
}

// TriggerCanceller cancels a named recurring trigger. Cancelling an absent trigger succeeds.
type TriggerCanceller interface {
	Cancel(ctx context.Context, triggerName string) error
}

// CompletionNotifier publishes a completion event to an organization's live subscribers.
type CompletionNotifier interface {
	NotifyCompletion(ctx context.Context, event lookup.CompletionEvent) error
}

// PollCycle runs one invocation of the poll state machine.
type PollCycle interface {
	Run(ctx context.Context, inv lookup.Invocation) lookup.Result
}

// TriggerRepository provides the scheduler's concurrency-safe view of poll triggers.
type TriggerRepository interface {
	// FindDue returns triggers whose next_run_at is at or before now, skipping rows locked elsewhere.
	FindDue(ctx context.Context, p trigger.FindDueParams) ([]trigger.Trigger, error)

	// MarkFiredTx advances next_run_at and stamps last_fired_at inside tx.
	// It returns false when the trigger is gone or was already advanced by another scheduler.
	MarkFiredTx(ctx context.Context, tx *sql.Tx, p trigger.MarkFiredParams) (bool, error)

	// TryWithTriggerLock takes a transaction-scoped advisory lock on the trigger name.
	// Return semantics:
	//   - (false, nil): lock not acquired; fn was not executed
	//   - (true, nil): lock acquired; fn executed and succeeded
	//   - (true, err): lock acquired; fn executed and failed with err
	TryWithTriggerLock(
		ctx context.Context,
		name string,
		fn func(context.Context, *sql.Tx) error,
	) (bool, error)
}

// UpsertTriggerParams groups the inputs of TriggerAdminRepository.Upsert.
type UpsertTriggerParams struct {
	Request   trigger.UpsertRequest
	NextRunAt time.Time
}

// ListTriggersOptions filters TriggerAdminRepository.List.
type ListTriggersOptions struct {
	CampaignID string
	Limit      int
	Offset     int
}

// TriggerAdminRepository manages poll triggers by name.
type TriggerAdminRepository interface {
	// Upsert creates the trigger or replaces its binding and schedule; last_fired_at is preserved.
	Upsert(ctx context.Context, p UpsertTriggerParams) (*trigger.Trigger, error)
	// DeleteByName removes a trigger. Returns true if a row was deleted.
	DeleteByName(ctx context.Context, name string) (bool, error)
	GetByName(ctx context.Context, name string) (*trigger.Trigger, error)
	List(ctx context.Context, opts ListTriggersOptions) ([]*trigger.Trigger, error)
}

// TriggerScheduler fires due triggers.
type TriggerScheduler interface {
	// Tick claims due triggers and runs their poll cycles. Returns the number of triggers fired.
	Tick(ctx context.Context, now time.Time) (int, error)
}
