package data

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/data/pgxutil"
	"github.com/target/citation-poller/internal/domain/trigger"
)

// TriggerRepo provides the scheduler's concurrency-safe operations on poll_triggers.
type TriggerRepo struct {
	DB  *sql.DB
	now Clock
}

// NewTriggerRepo creates a new TriggerRepo instance with the given database connection.
func NewTriggerRepo(db *sql.DB) *TriggerRepo {
	return &TriggerRepo{DB: db, now: SystemClock}
}

// NewTriggerRepoWithClock stamps rows with clock instead of the wall clock.
func NewTriggerRepoWithClock(db *sql.DB, clock Clock) *TriggerRepo {
	return &TriggerRepo{DB: db, now: clock}
}

var _ core.TriggerRepository = (*TriggerRepo)(nil)

// fnvHash computes FNV-1a 64-bit hash of the given string for use as advisory lock key.
func fnvHash(s string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	// Advisory locks accept BIGINT; constrain the unsigned hash into int64 range before casting.
	u := h.Sum64()
	if u > uint64(math.MaxInt64) {
		u %= uint64(math.MaxInt64)
	}
	return int64(u) // #nosec G115 -- value is explicitly bounded to <= MaxInt64 before casting to int64.
}

const triggerColumns = `
  id::text AS id,
  name,
  campaign_id,
  organization_id,
  schedule,
  next_run_at,
  last_fired_at,
  created_at,
  updated_at
`

// FindDue returns triggers whose next_run_at is at or before now, oldest first.
// Rows locked by another scheduler are skipped.
func (r *TriggerRepo) FindDue(ctx context.Context, p trigger.FindDueParams) ([]trigger.Trigger, error) {
	if p.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", p.Limit)
	}

	query := `
		SELECT ` + triggerColumns + `
		FROM poll_triggers
		WHERE next_run_at <= $1
		ORDER BY next_run_at ASC, created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`

	triggers, err := pgxutil.Collect(ctx, r.DB, rowToTrigger, query, p.Now.UTC(), p.Limit)
	if err != nil {
		return nil, fmt.Errorf("query due poll triggers: %w", err)
	}

	return triggers, nil
}

// MarkFiredTx advances the trigger inside tx. The next_run_at guard makes a second claim of the
// same due time by another scheduler a no-op.
// Return semantics:
//   - (true, nil): trigger claimed and advanced
//   - (false, nil): trigger gone or already advanced
//   - (false, err): update failed due to error
func (r *TriggerRepo) MarkFiredTx(ctx context.Context, tx *sql.Tx, p trigger.MarkFiredParams) (bool, error) {
	if p.ID == "" {
		return false, ErrTriggerIDRequired
	}

	const q = `
		UPDATE poll_triggers
		SET last_fired_at = $2, next_run_at = $3, updated_at = $4
		WHERE id = $1::uuid AND next_run_at <= $2`

	res, err := tx.ExecContext(ctx, q, p.ID, p.FiredAt.UTC(), p.NextRunAt.UTC(), r.now())
	if err != nil {
		return false, fmt.Errorf("mark poll trigger fired (tx): %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected (tx): %w", err)
	}

	return rowsAffected > 0, nil
}

// TryWithTriggerLock attempts to acquire an advisory lock for the given trigger name.
// Uses FNV-1a 64-bit hash of the name for the lock key.
// If the lock is acquired, executes fn within the same transaction.
// Return semantics:
//   - (false, nil): lock not acquired; fn was not executed
//   - (true, nil): lock acquired; fn executed and succeeded
//   - (true, err): lock acquired; fn executed and failed with err
func (r *TriggerRepo) TryWithTriggerLock(
	ctx context.Context,
	name string,
	fn func(context.Context, *sql.Tx) error,
) (bool, error) {
	lockKey := fnvHash(name)

	var locked bool
	var fnErr error

	err := pgxutil.InTx(ctx, r.DB, nil, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, "SELECT pg_try_advisory_xact_lock($1)", lockKey).Scan(&locked); err != nil {
			return fmt.Errorf("acquire advisory lock for trigger %s: %w", name, err)
		}
		if locked {
			// fn's error is reported separately; the transaction still commits what fn wrote.
			fnErr = fn(ctx, tx)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return locked, fnErr
}

// triggerRow represents the database row structure for poll triggers.
// This struct matches the selected columns exactly, allowing pgx.RowToStructByName to work.
type triggerRow struct {
	ID             string       `db:"id"`
	Name           string       `db:"name"`
	CampaignID     string       `db:"campaign_id"`
	OrganizationID string       `db:"organization_id"`
	Schedule       string       `db:"schedule"`
	NextRunAt      time.Time    `db:"next_run_at"`
	LastFiredAt    sql.NullTime `db:"last_fired_at"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

func (r *triggerRow) toDomain() trigger.Trigger {
	t := trigger.Trigger{
		ID:             r.ID,
		Name:           r.Name,
		CampaignID:     r.CampaignID,
		OrganizationID: r.OrganizationID,
		Schedule:       r.Schedule,
		NextRunAt:      r.NextRunAt.UTC(),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.LastFiredAt.Valid {
		fired := r.LastFiredAt.Time.UTC()
		t.LastFiredAt = &fired
	}
	return t
}

// rowToTrigger maps a pgx row to trigger.Trigger using pgx v5 generics.
func rowToTrigger(row pgx.CollectableRow) (trigger.Trigger, error) {
	dbRow, err := pgx.RowToStructByName[triggerRow](row)
	if err != nil {
		return trigger.Trigger{}, fmt.Errorf("scan poll trigger row: %w", err)
	}
	return dbRow.toDomain(), nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTrigger scans a database/sql row selected with triggerColumns.
func scanTrigger(s rowScanner) (trigger.Trigger, error) {
	var dbRow triggerRow
	err := s.Scan(
		&dbRow.ID,
		&dbRow.Name,
		&dbRow.CampaignID,
		&dbRow.OrganizationID,
		&dbRow.Schedule,
		&dbRow.NextRunAt,
		&dbRow.LastFiredAt,
		&dbRow.CreatedAt,
		&dbRow.UpdatedAt,
	)
	if err != nil {
		return trigger.Trigger{}, err
	}
	return dbRow.toDomain(), nil
}
