package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/data/pgxutil"
	"github.com/target/citation-poller/internal/domain/lookup"
	apperrors "github.com/target/citation-poller/internal/errors"
)

// CampaignRepo persists lookup status on citation_campaigns rows.
type CampaignRepo struct {
	DB  *sql.DB
	now Clock
}

// NewCampaignRepo creates a new CampaignRepo with the given database connection.
func NewCampaignRepo(db *sql.DB) *CampaignRepo {
	return &CampaignRepo{DB: db, now: SystemClock}
}

// NewCampaignRepoWithClock stamps rows with clock instead of the wall clock.
func NewCampaignRepoWithClock(db *sql.DB, clock Clock) *CampaignRepo {
	return &CampaignRepo{DB: db, now: clock}
}

var _ core.StatusStore = (*CampaignRepo)(nil)

// ApplyDelta writes the delta to the campaign keyed by CampaignID in a single statement.
//
// Only lookup_status and updated_at change for a non-terminal delta; completion columns are
// written only when the delta carries them. updated_at advances only when one of those
// values actually changes. With PreserveTerminal set, a non-terminal delta
// never replaces a complete row and the call reports Preserved instead.
func (r *CampaignRepo) ApplyDelta(ctx context.Context, p core.ApplyDeltaParams) (core.ApplyResult, error) {
	if strings.TrimSpace(p.CampaignID) == "" {
		return core.ApplyResult{}, ErrCampaignIDRequired
	}
	if p.Delta.Status == "" {
		return core.ApplyResult{}, ErrLookupStatusEmpty
	}

	query, args := buildApplyDeltaQuery(p, r.now())

	var found, updated bool
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&found, &updated); err != nil {
		return core.ApplyResult{}, storeError("update citation campaign", err)
	}
	if !found {
		return core.ApplyResult{}, apperrors.NotFoundf("citation campaign %q not found", p.CampaignID)
	}
	return core.ApplyResult{Preserved: !updated}, nil
}

func buildApplyDeltaQuery(p core.ApplyDeltaParams, now time.Time) (string, []any) {
	clauses := []string{"lookup_status = $2"}
	changed := []string{"c.lookup_status IS DISTINCT FROM $2"}
	args := []any{p.CampaignID, string(p.Delta.Status), now}

	if p.Delta.HasCompletion() {
		completedAt, citations := len(args)+1, len(args)+2
		clauses = append(clauses,
			fmt.Sprintf("lookup_completed_at = $%d", completedAt),
			fmt.Sprintf("citations = $%d", citations),
		)
		changed = append(changed,
			fmt.Sprintf("c.lookup_completed_at IS DISTINCT FROM $%d", completedAt),
			fmt.Sprintf("c.citations IS DISTINCT FROM $%d", citations),
		)
		args = append(args, p.Delta.CompletedAt.UTC(), *p.Delta.Citations)
	}
	// A repeated identical write leaves updated_at alone.
	clauses = append(clauses,
		"updated_at = CASE WHEN "+strings.Join(changed, " OR ")+" THEN $3 ELSE c.updated_at END")

	guard := ""
	if p.PreserveTerminal && !p.Delta.Status.IsTerminal() {
		guard = fmt.Sprintf(" AND target.lookup_status IS DISTINCT FROM $%d", len(args)+1)
		args = append(args, string(lookup.StatusComplete))
	}

	var b strings.Builder
	b.WriteString(`
		WITH target AS (
			SELECT campaign_id, lookup_status
			FROM citation_campaigns
			WHERE campaign_id = $1
			FOR UPDATE
		), updated AS (
			UPDATE citation_campaigns AS c SET `)
	b.WriteString(strings.Join(clauses, ", "))
	b.WriteString(`
			FROM target
			WHERE c.campaign_id = target.campaign_id`)
	b.WriteString(guard)
	b.WriteString(`
			RETURNING c.campaign_id
		)
		SELECT EXISTS (SELECT 1 FROM target), EXISTS (SELECT 1 FROM updated)`)

	return b.String(), args
}

// campaignRow matches the citation_campaigns columns for pgx.RowToStructByName.
type campaignRow struct {
	CampaignID        string         `db:"campaign_id"`
	LookupStatus      string         `db:"lookup_status"`
	LookupCompletedAt sql.NullTime   `db:"lookup_completed_at"`
	Citations         sql.NullString `db:"citations"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func (r *campaignRow) toDomain() *lookup.Campaign {
	c := &lookup.Campaign{
		CampaignID:   r.CampaignID,
		LookupStatus: lookup.Status(r.LookupStatus),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.LookupCompletedAt.Valid {
		t := r.LookupCompletedAt.Time.UTC()
		c.LookupCompletedAt = &t
	}
	if r.Citations.Valid {
		s := r.Citations.String
		c.Citations = &s
	}
	return c
}

// GetByID loads one campaign; a missing row is ErrCodeNotFound.
func (r *CampaignRepo) GetByID(ctx context.Context, campaignID string) (*lookup.Campaign, error) {
	if strings.TrimSpace(campaignID) == "" {
		return nil, ErrCampaignIDRequired
	}

	const query = `
		SELECT campaign_id, lookup_status, lookup_completed_at, citations, created_at, updated_at
		FROM citation_campaigns
		WHERE campaign_id = $1`

	row, err := pgxutil.CollectOne(ctx, r.DB, pgx.RowToStructByName[campaignRow], query, campaignID)
	if err != nil {
		return nil, storeError("get citation campaign", err)
	}
	return row.toDomain(), nil
}
