package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapDBError_NilError(t *testing.T) {
	if err := MapDBError(nil); err != nil {
		t.Errorf("MapDBError(nil) = %v, want nil", err)
	}
}

func TestMapDBError_Codes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode ErrorCode
	}{
		{name: "deadline exceeded", err: context.DeadlineExceeded, wantCode: ErrCodeTimeout},
		{name: "wrapped deadline", err: fmt.Errorf("update: %w", context.DeadlineExceeded), wantCode: ErrCodeTimeout},
		{name: "canceled", err: context.Canceled, wantCode: ErrCodeCanceled},
		{name: "pgx no rows", err: pgx.ErrNoRows, wantCode: ErrCodeNotFound},
		{name: "sql no rows", err: fmt.Errorf("scan: %w", sql.ErrNoRows), wantCode: ErrCodeNotFound},
		{name: "connection failure", err: &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, wantCode: ErrCodeStoreUnavailable},
		{name: "too many connections", err: &pgconn.PgError{Code: pgerrcode.TooManyConnections}, wantCode: ErrCodeStoreUnavailable},
		{name: "admin shutdown", err: &pgconn.PgError{Code: pgerrcode.AdminShutdown}, wantCode: ErrCodeStoreUnavailable},
		{name: "serialization failure", err: &pgconn.PgError{Code: pgerrcode.SerializationFailure}, wantCode: ErrCodeStoreUnavailable},
		{name: "deadlock", err: &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, wantCode: ErrCodeStoreUnavailable},
		{name: "unknown pg error", err: &pgconn.PgError{Code: "99999"}, wantCode: ErrCodeInternal},
		{name: "not null", err: &pgconn.PgError{Code: pgerrcode.NotNullViolation, ColumnName: "campaign_id"}, wantCode: ErrCodeValidation},
		{name: "check", err: &pgconn.PgError{Code: pgerrcode.CheckViolation}, wantCode: ErrCodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.err)
			if got := GetCode(err); got != tt.wantCode {
				t.Errorf("MapDBError() code = %v, want %v", got, tt.wantCode)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("MapDBError() should keep the cause in the chain")
			}
		})
	}
}

func TestMapDBError_StandardError(t *testing.T) {
	stdErr := errors.New("standard error")
	if err := MapDBError(stdErr); err != stdErr {
		t.Errorf("MapDBError() should return non-db errors unchanged, got %v", err)
	}
}

func TestMapDBError_KnownConstraints(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantCode  ErrorCode
		wantField string
		wantMsg   string
	}{
		{
			name:      "duplicate trigger name",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "poll_triggers_name_key"},
			wantCode:  ErrCodeConflict,
			wantField: "name",
			wantMsg:   "already exists",
		},
		{
			name:      "trigger name too long",
			pgErr:     &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "poll_triggers_name_length"},
			wantCode:  ErrCodeValidation,
			wantField: "name",
			wantMsg:   "1 to 64",
		},
		{
			name:      "trigger for unknown campaign",
			pgErr:     &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "poll_triggers_campaign_id_fkey"},
			wantCode:  ErrCodeForeignKey,
			wantField: "campaign_id",
			wantMsg:   "citation campaign does not exist",
		},
		{
			name:      "blank lookup status",
			pgErr:     &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "citation_campaigns_status_check"},
			wantCode:  ErrCodeValidation,
			wantField: "lookup_status",
			wantMsg:   "must not be blank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if GetCode(err) != tt.wantCode {
				t.Fatalf("code = %v, want %v", GetCode(err), tt.wantCode)
			}
			if GetField(err) != tt.wantField {
				t.Errorf("field = %q, want %q", GetField(err), tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("message %q should contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestMapDBError_UniqueViolationField(t *testing.T) {
	tests := []struct {
		name      string
		pgErr     *pgconn.PgError
		wantField string
	}{
		{
			name:      "column metadata",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, ColumnName: "campaign_id"},
			wantField: "campaign_id",
		},
		{
			name:      "detail key",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: `Key (campaign_id)=(c1) already exists.`},
			wantField: "campaign_id",
		},
		{
			name:      "multi-column key",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation, Detail: `Key (campaign_id, name)=(c1, s) already exists.`},
			wantField: "",
		},
		{
			name:      "no metadata",
			pgErr:     &pgconn.PgError{Code: pgerrcode.UniqueViolation},
			wantField: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if GetCode(err) != ErrCodeConflict {
				t.Fatalf("code = %v, want conflict", GetCode(err))
			}
			if field := GetField(err); field != tt.wantField {
				t.Errorf("field = %q, want %q", field, tt.wantField)
			}
		})
	}
}

func TestMapDBError_ForeignKeyMessage(t *testing.T) {
	tests := []struct {
		name         string
		pgErr        *pgconn.PgError
		wantContains string
	}{
		{
			name: "missing parent",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (campaign_id)=(c404) is not present in table "citation_campaigns".`,
			},
			wantContains: "referenced citation campaign does not exist",
		},
		{
			name: "still referenced",
			pgErr: &pgconn.PgError{
				Code:   pgerrcode.ForeignKeyViolation,
				Detail: `Key (campaign_id)=(c1) is still referenced from table "poll_triggers".`,
			},
			wantContains: "still used by a poll trigger",
		},
		{
			name:         "table name only",
			pgErr:        &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, TableName: "schema_migrations"},
			wantContains: "related schema migrations",
		},
		{
			name:         "no metadata",
			pgErr:        &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			wantContains: "related record",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapDBError(tt.pgErr)
			if GetCode(err) != ErrCodeForeignKey {
				t.Fatalf("code = %v, want foreign_key", GetCode(err))
			}
			if !strings.Contains(err.Error(), tt.wantContains) {
				t.Errorf("message = %q, want to contain %q", err.Error(), tt.wantContains)
			}
		})
	}
}
