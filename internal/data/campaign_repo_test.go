package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/domain/lookup"
	apperrors "github.com/target/citation-poller/internal/errors"
	"github.com/target/citation-poller/internal/testutil"
)

var applyDeltaPattern = regexp.QuoteMeta("WITH target AS (")

func newMockCampaignRepo(t *testing.T) (*CampaignRepo, sqlmock.Sqlmock, time.Time) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return NewCampaignRepoWithClock(db, FixedClock(now)), mock, now
}

func completeDelta(t *testing.T) lookup.Delta {
	t.Helper()
	completedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	citations := `[{"site":"yelp"}]`
	return lookup.Delta{Status: lookup.StatusComplete, CompletedAt: &completedAt, Citations: &citations}
}

func TestCampaignRepo_ApplyDelta_StatusOnly(t *testing.T) {
	repo, mock, now := newMockCampaignRepo(t)

	mock.ExpectQuery(applyDeltaPattern).
		WithArgs("42", "pending", now, "complete").
		WillReturnRows(sqlmock.NewRows([]string{"found", "updated"}).AddRow(true, true))

	res, err := repo.ApplyDelta(context.Background(), core.ApplyDeltaParams{
		CampaignID:       "42",
		Delta:            lookup.Delta{Status: lookup.StatusPending},
		PreserveTerminal: true,
	})
	require.NoError(t, err)
	assert.False(t, res.Preserved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepo_ApplyDelta_Completion(t *testing.T) {
	repo, mock, now := newMockCampaignRepo(t)
	delta := completeDelta(t)

	mock.ExpectQuery(applyDeltaPattern).
		WithArgs("42", "complete", now, *delta.CompletedAt, *delta.Citations).
		WillReturnRows(sqlmock.NewRows([]string{"found", "updated"}).AddRow(true, true))

	res, err := repo.ApplyDelta(context.Background(), core.ApplyDeltaParams{
		CampaignID:       "42",
		Delta:            delta,
		PreserveTerminal: true,
	})
	require.NoError(t, err)
	assert.False(t, res.Preserved)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepo_ApplyDelta_PreservedWhenAlreadyComplete(t *testing.T) {
	repo, mock, _ := newMockCampaignRepo(t)

	mock.ExpectQuery(applyDeltaPattern).
		WillReturnRows(sqlmock.NewRows([]string{"found", "updated"}).AddRow(true, false))

	res, err := repo.ApplyDelta(context.Background(), core.ApplyDeltaParams{
		CampaignID:       "42",
		Delta:            lookup.Delta{Status: lookup.StatusPending},
		PreserveTerminal: true,
	})
	require.NoError(t, err)
	assert.True(t, res.Preserved)
}

func TestCampaignRepo_ApplyDelta_NotFound(t *testing.T) {
	repo, mock, _ := newMockCampaignRepo(t)

	mock.ExpectQuery(applyDeltaPattern).
		WillReturnRows(sqlmock.NewRows([]string{"found", "updated"}).AddRow(false, false))

	_, err := repo.ApplyDelta(context.Background(), core.ApplyDeltaParams{
		CampaignID: "missing",
		Delta:      lookup.Delta{Status: lookup.StatusPending},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCampaignRepo_ApplyDelta_StoreFailure(t *testing.T) {
	repo, mock, _ := newMockCampaignRepo(t)

	mock.ExpectQuery(applyDeltaPattern).
		WillReturnError(&pgconn.PgError{Code: "08006", Message: "connection failure"})

	_, err := repo.ApplyDelta(context.Background(), core.ApplyDeltaParams{
		CampaignID: "42",
		Delta:      lookup.Delta{Status: lookup.StatusPending},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsStoreUnavailable(err))

	mock.ExpectQuery(applyDeltaPattern).WillReturnError(errors.New("boom"))
	_, err = repo.ApplyDelta(context.Background(), core.ApplyDeltaParams{
		CampaignID: "42",
		Delta:      lookup.Delta{Status: lookup.StatusPending},
	})
	assert.True(t, apperrors.IsStoreUnavailable(err))
}

func TestCampaignRepo_ApplyDelta_Validation(t *testing.T) {
	repo, _, _ := newMockCampaignRepo(t)

	_, err := repo.ApplyDelta(context.Background(), core.ApplyDeltaParams{Delta: lookup.Delta{Status: lookup.StatusPending}})
	require.ErrorIs(t, err, ErrCampaignIDRequired)

	_, err = repo.ApplyDelta(context.Background(), core.ApplyDeltaParams{CampaignID: "42"})
	require.ErrorIs(t, err, ErrLookupStatusEmpty)
}

func TestBuildApplyDeltaQuery(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("guard only for non-terminal deltas", func(t *testing.T) {
		q, args := buildApplyDeltaQuery(core.ApplyDeltaParams{
			CampaignID:       "1",
			Delta:            lookup.Delta{Status: lookup.StatusPending},
			PreserveTerminal: true,
		}, now)
		assert.Contains(t, q, "target.lookup_status IS DISTINCT FROM $4")
		assert.NotContains(t, q, "lookup_completed_at")
		assert.Len(t, args, 4)
	})

	t.Run("no guard when last write wins", func(t *testing.T) {
		q, args := buildApplyDeltaQuery(core.ApplyDeltaParams{
			CampaignID: "1",
			Delta:      lookup.Delta{Status: lookup.StatusPending},
		}, now)
		assert.NotContains(t, q, "target.lookup_status IS DISTINCT FROM")
		assert.Len(t, args, 3)
	})

	t.Run("completion writes all columns", func(t *testing.T) {
		q, args := buildApplyDeltaQuery(core.ApplyDeltaParams{
			CampaignID:       "1",
			Delta:            completeDelta(t),
			PreserveTerminal: true,
		}, now)
		assert.Contains(t, q, "lookup_completed_at = $4")
		assert.Contains(t, q, "citations = $5")
		assert.NotContains(t, q, "target.lookup_status IS DISTINCT FROM")
		assert.Len(t, args, 5)
	})

	t.Run("updated_at only moves when a written column changes", func(t *testing.T) {
		q, _ := buildApplyDeltaQuery(core.ApplyDeltaParams{CampaignID: "1", Delta: completeDelta(t)}, now)
		assert.Contains(t, q, "updated_at = CASE WHEN c.lookup_status IS DISTINCT FROM $2"+
			" OR c.lookup_completed_at IS DISTINCT FROM $4"+
			" OR c.citations IS DISTINCT FROM $5 THEN $3 ELSE c.updated_at END")

		q, _ = buildApplyDeltaQuery(core.ApplyDeltaParams{CampaignID: "1", Delta: lookup.Delta{Status: lookup.StatusPending}}, now)
		assert.Contains(t, q, "updated_at = CASE WHEN c.lookup_status IS DISTINCT FROM $2 THEN $3 ELSE c.updated_at END")
	})
}

func TestCampaignRepo_Integration(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewCampaignRepo(db)
		id := fmt.Sprintf("it-%d", time.Now().UnixNano())
		testutil.InsertCampaign(t, db, testutil.CampaignSeed{CampaignID: id})

		res, err := repo.ApplyDelta(ctx, core.ApplyDeltaParams{
			CampaignID:       id,
			Delta:            lookup.Delta{Status: lookup.StatusPending},
			PreserveTerminal: true,
		})
		require.NoError(t, err)
		assert.False(t, res.Preserved)

		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, lookup.StatusPending, got.LookupStatus)
		assert.Nil(t, got.LookupCompletedAt)
		assert.Nil(t, got.Citations)

		delta := completeDelta(t)
		_, err = repo.ApplyDelta(ctx, core.ApplyDeltaParams{CampaignID: id, Delta: delta, PreserveTerminal: true})
		require.NoError(t, err)

		got, err = repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, lookup.StatusComplete, got.LookupStatus)
		require.NotNil(t, got.LookupCompletedAt)
		assert.True(t, delta.CompletedAt.Equal(*got.LookupCompletedAt))
		require.NotNil(t, got.Citations)
		assert.Equal(t, *delta.Citations, *got.Citations)

		// A duplicate firing with the same completion leaves the row untouched.
		stamped := got.UpdatedAt
		later := NewCampaignRepoWithClock(db, FixedClock(time.Now().Add(time.Hour)))
		res, err = later.ApplyDelta(ctx, core.ApplyDeltaParams{CampaignID: id, Delta: delta, PreserveTerminal: true})
		require.NoError(t, err)
		assert.False(t, res.Preserved)

		again, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.True(t, stamped.Equal(again.UpdatedAt), "updated_at moved on an identical write")
		assert.Equal(t, *got.Citations, *again.Citations)

		// A late pending read must not roll a complete row back.
		res, err = repo.ApplyDelta(ctx, core.ApplyDeltaParams{
			CampaignID:       id,
			Delta:            lookup.Delta{Status: lookup.StatusPending},
			PreserveTerminal: true,
		})
		require.NoError(t, err)
		assert.True(t, res.Preserved)

		got, err = repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, lookup.StatusComplete, got.LookupStatus)

		_, err = repo.GetByID(ctx, id+"-missing")
		assert.True(t, apperrors.IsNotFound(err))
	})
}
