// Package pgxutil runs pgx v5 row collection and transactions on top of a database/sql pool.
// The pool stays a *sql.DB so migrations, sqlmock tests and advisory-lock transactions share it.
package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// Collect runs query on the pgx connection under one pooled connection and maps every row with fn.
func Collect[T any](ctx context.Context, db *sql.DB, fn pgx.RowToFunc[T], query string, args ...any) ([]T, error) {
	var out []T
	err := withConn(ctx, db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectRows(rows, fn)
		return err
	})
	return out, err
}

// CollectOne is Collect for queries that must return exactly one row.
// Zero rows yields pgx.ErrNoRows and more than one pgx.ErrTooManyRows.
func CollectOne[T any](ctx context.Context, db *sql.DB, fn pgx.RowToFunc[T], query string, args ...any) (T, error) {
	var out T
	err := withConn(ctx, db, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		out, err = pgx.CollectExactlyOneRow(rows, fn)
		return err
	})
	return out, err
}

func withConn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) error {
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn from pool: %w", err)
	}
	defer conn.Close() //nolint:errcheck // returns the connection to the pool

	return conn.Raw(func(driverConn any) error {
		std, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("driver connection is %T, want *stdlib.Conn", driverConn)
		}
		return fn(std.Conn())
	})
}

// InTx runs fn in a transaction. It commits when fn returns nil and rolls back otherwise.
func InTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
