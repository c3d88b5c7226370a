// Package migrate applies the embedded SQL schema migrations.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// lockKey serializes migration runs across replicas starting at the same time.
const lockKey int64 = 0x63697465706f6c6c

// migration is one embedded file; version is its name without ".sql".
type migration struct {
	version string
	file    string
}

// querier is satisfied by *sql.DB and *sql.Conn.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Run applies every embedded migration not yet recorded in schema_migrations, in file name order,
// each in its own transaction. Concurrent callers wait on a session advisory lock.
func Run(ctx context.Context, db *sql.DB) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get migration connection: %w", err)
	}
	defer conn.Close() //nolint:errcheck // returns the connection to the pool

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	// A cancelled run must still release the session lock.
	defer conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, lockKey) //nolint:errcheck

	todo, err := pending(ctx, conn)
	if err != nil {
		return err
	}
	logger := slog.Default().With("component", "migrations")
	for _, m := range todo {
		logger.InfoContext(ctx, "applying migration", "version", m.version)
		if err := apply(ctx, conn, m); err != nil {
			return err
		}
	}
	return nil
}

// Pending lists embedded migration versions that have not been applied yet.
func Pending(ctx context.Context, db *sql.DB) ([]string, error) {
	todo, err := pending(ctx, db)
	if err != nil {
		return nil, err
	}
	versions := make([]string, len(todo))
	for i, m := range todo {
		versions[i] = m.version
	}
	return versions, nil
}

func pending(ctx context.Context, q querier) ([]migration, error) {
	all, err := embedded()
	if err != nil {
		return nil, err
	}
	done, err := applied(ctx, q)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(m migration) bool { return done[m.version] }), nil
}

func embedded() ([]migration, error) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	slices.Sort(files)

	out := make([]migration, len(files))
	for i, f := range files {
		name := path.Base(f)
		out[i] = migration{version: strings.TrimSuffix(name, ".sql"), file: name}
	}
	return out, nil
}

// applied creates schema_migrations on first use and returns the recorded versions.
func applied(ctx context.Context, q querier) (map[string]bool, error) {
	const ddl = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`
	if _, err := q.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}

	rows, err := q.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		done[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	return done, nil
}

func apply(ctx context.Context, conn *sql.Conn, m migration) (err error) {
	body, err := migrationsFS.ReadFile("migrations/" + m.file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", m.file, err)
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.file, err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback migration %s: %w", m.file, rbErr))
		}
	}()

	if _, err = tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("exec migration %s: %w", m.file, err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, m.version); err != nil {
		return fmt.Errorf("record migration %s: %w", m.file, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.file, err)
	}
	return nil
}
