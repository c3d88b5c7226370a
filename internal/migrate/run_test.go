package migrate

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedded_SortedAndNonEmpty(t *testing.T) {
	all, err := embedded()
	require.NoError(t, err)
	require.Len(t, all, 2)

	assert.Equal(t, migration{version: "0001_citation_campaigns", file: "0001_citation_campaigns.sql"}, all[0])
	assert.Equal(t, "0002_poll_triggers", all[1].version)

	for _, m := range all {
		body, readErr := migrationsFS.ReadFile("migrations/" + m.file)
		require.NoError(t, readErr)
		assert.NotEmpty(t, regexp.MustCompile(`\s+`).ReplaceAllString(string(body), ""), m.file)
	}
}

func TestMigrations_DefinePollTables(t *testing.T) {
	all, err := embedded()
	require.NoError(t, err)

	var schema string
	for _, m := range all {
		body, readErr := migrationsFS.ReadFile("migrations/" + m.file)
		require.NoError(t, readErr)
		schema += string(body)
	}

	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS citation_campaigns")
	assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS poll_triggers")
	assert.Contains(t, schema, "REFERENCES citation_campaigns (campaign_id) ON DELETE CASCADE")
}

func expectApplied(mock sqlmock.Sqlmock, versions ...string) {
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	rows := sqlmock.NewRows([]string{"version"})
	for _, v := range versions {
		rows.AddRow(v)
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).WillReturnRows(rows)
}

func TestPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	expectApplied(mock, "0001_citation_campaigns")

	got, err := Pending(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_poll_triggers"}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_AppliesPendingUnderLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_lock($1)")).
		WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	expectApplied(mock, "0001_citation_campaigns")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS poll_triggers")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
		WithArgs("0002_poll_triggers").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).
		WithArgs(lockKey).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Run(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRun_FailedMigrationRollsBackAndUnlocks(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_lock($1)")).WillReturnResult(sqlmock.NewResult(0, 0))
	expectApplied(mock)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS citation_campaigns")).
		WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()
	mock.ExpectExec(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).WillReturnResult(sqlmock.NewResult(0, 0))

	err = Run(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec migration 0001_citation_campaigns.sql: permission denied")
	require.NoError(t, mock.ExpectationsWereMet())
}
