package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/data/pgxutil"
	"github.com/target/citation-poller/internal/domain/trigger"
	apperrors "github.com/target/citation-poller/internal/errors"
)

const (
	defaultTriggerListLimit = 50
	maxTriggerListLimit     = 500
)

// TriggerAdminRepo provides admin operations for poll_triggers (upsert/delete/read by name).
// This is separate from the concurrency-focused TriggerRepo used by the scheduler tick loop.
type TriggerAdminRepo struct {
	DB  *sql.DB
	now Clock
}

// NewTriggerAdminRepo creates a new TriggerAdminRepo instance with the given database connection.
func NewTriggerAdminRepo(db *sql.DB) *TriggerAdminRepo {
	return &TriggerAdminRepo{DB: db, now: SystemClock}
}

// NewTriggerAdminRepoWithClock stamps rows with clock instead of the wall clock.
func NewTriggerAdminRepoWithClock(db *sql.DB, clock Clock) *TriggerAdminRepo {
	return &TriggerAdminRepo{DB: db, now: clock}
}

var _ core.TriggerAdminRepository = (*TriggerAdminRepo)(nil)

// Upsert creates or updates a trigger identified by name.
// Updates the campaign binding, schedule and next_run_at; preserves last_fired_at.
func (r *TriggerAdminRepo) Upsert(ctx context.Context, p core.UpsertTriggerParams) (*trigger.Trigger, error) {
	req := p.Request
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrTriggerNameRequired
	}
	if p.NextRunAt.IsZero() {
		return nil, errors.New("next run time is required")
	}
	now := r.now()

	q := `
		INSERT INTO poll_triggers (name, campaign_id, organization_id, schedule, next_run_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (name) DO UPDATE
		SET campaign_id = EXCLUDED.campaign_id,
		    organization_id = EXCLUDED.organization_id,
		    schedule = EXCLUDED.schedule,
		    next_run_at = EXCLUDED.next_run_at,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + triggerColumns

	row := r.DB.QueryRowContext(ctx, q,
		req.Name, req.CampaignID, req.OrganizationID, req.Schedule, p.NextRunAt.UTC(), now)
	t, err := scanTrigger(row)
	if err != nil {
		return nil, adminError("upsert poll trigger", err)
	}
	return &t, nil
}

// DeleteByName deletes a trigger identified by name.
func (r *TriggerAdminRepo) DeleteByName(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, ErrTriggerNameRequired
	}
	q := `DELETE FROM poll_triggers WHERE name = $1`
	res, err := r.DB.ExecContext(ctx, q, name)
	if err != nil {
		return false, adminError("delete poll trigger", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, adminError("rows affected", err)
	}
	return n > 0, nil
}

// GetByName loads a single trigger; a missing trigger is ErrCodeNotFound.
func (r *TriggerAdminRepo) GetByName(ctx context.Context, name string) (*trigger.Trigger, error) {
	if name == "" {
		return nil, ErrTriggerNameRequired
	}
	q := `SELECT ` + triggerColumns + ` FROM poll_triggers WHERE name = $1`

	t, err := scanTrigger(r.DB.QueryRowContext(ctx, q, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFoundf("poll trigger %q not found", name)
	}
	if err != nil {
		return nil, adminError("get poll trigger", err)
	}
	return &t, nil
}

// List returns triggers ordered by next_run_at, optionally filtered by campaign.
func (r *TriggerAdminRepo) List(ctx context.Context, opts core.ListTriggersOptions) ([]*trigger.Trigger, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultTriggerListLimit
	}
	if limit > maxTriggerListLimit {
		limit = maxTriggerListLimit
	}
	offset := max(opts.Offset, 0)

	q := `
		SELECT ` + triggerColumns + `
		FROM poll_triggers
		WHERE ($1 = '' OR campaign_id = $1)
		ORDER BY next_run_at ASC, name ASC
		LIMIT $2 OFFSET $3`

	collected, err := pgxutil.Collect(ctx, r.DB, rowToTrigger, q, strings.TrimSpace(opts.CampaignID), limit, offset)
	if err != nil {
		return nil, adminError("list poll triggers", err)
	}
	out := make([]*trigger.Trigger, len(collected))
	for i := range collected {
		out[i] = &collected[i]
	}
	return out, nil
}
