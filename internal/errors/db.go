package errors

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// constraintInfo is how a violation of a named schema constraint is reported to callers.
type constraintInfo struct {
	field   string
	message string
}

// knownConstraints covers the constraints declared by the poller's own migrations.
var knownConstraints = map[string]constraintInfo{
	"poll_triggers_name_key": {
		field: "name", message: "A poll trigger with this name already exists.",
	},
	"poll_triggers_name_length": {
		field: "name", message: "Trigger names must be 1 to 64 characters long.",
	},
	"poll_triggers_campaign_id_fkey": {
		field: "campaign_id", message: "The referenced citation campaign does not exist.",
	},
	"citation_campaigns_status_check": {
		field: "lookup_status", message: "Lookup status must not be blank.",
	},
}

// tableNouns names tables in messages.
var tableNouns = map[string]string{
	"citation_campaigns": "citation campaign",
	"poll_triggers":      "poll trigger",
}

var (
	// "Key (name)=(sched-1) already exists."
	reDetailKey = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// `... is not present in table "citation_campaigns".`
	reDetailMissing = regexp.MustCompile(`is not present in table "?([^"]+)"?`)
	// `... is still referenced from table "poll_triggers".`
	reDetailReferenced = regexp.MustCompile(`is still referenced from table "?([^"]+)"?`)
)

// MapDBError translates driver and context errors into AppErrors:
//
//   - context deadline / cancellation → timeout / canceled
//   - pgx.ErrNoRows, sql.ErrNoRows → not_found
//   - connection, resource, shutdown, serialization and deadlock SQLSTATEs → store_unavailable
//   - unique → conflict; foreign key → foreign_key; check and NOT NULL → validation
//   - any other PgError → internal
//
// Errors it does not recognise are returned unchanged. The original error stays in the chain.
func MapDBError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "database operation timed out")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "database operation canceled")
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "record not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	return mapPgError(pgErr)
}

func mapPgError(pgErr *pgconn.PgError) *AppError {
	if isTransientPgError(pgErr.Code) {
		return Wrap(pgErr, ErrCodeStoreUnavailable, "database temporarily unavailable")
	}

	var out *AppError
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		out = Wrap(pgErr, ErrCodeConflict, "value already exists")
		out.Field = violationField(pgErr)
	case pgerrcode.ForeignKeyViolation:
		out = Wrap(pgErr, ErrCodeForeignKey, foreignKeyMessage(pgErr))
		out.Field = violationField(pgErr)
	case pgerrcode.CheckViolation:
		out = Wrap(pgErr, ErrCodeValidation, "value is not allowed")
		out.Field = pgErr.ColumnName
	case pgerrcode.NotNullViolation:
		out = Wrap(pgErr, ErrCodeValidation, "value is required")
		out.Field = pgErr.ColumnName
	default:
		return Wrap(pgErr, ErrCodeInternal, "database error")
	}

	if info, ok := knownConstraints[pgErr.ConstraintName]; ok {
		out.Message = info.message
		out.Field = info.field
	}
	return out
}

// isTransientPgError reports SQLSTATE classes that the next poll firing may not see again.
func isTransientPgError(code string) bool {
	return pgerrcode.IsConnectionException(code) ||
		pgerrcode.IsInsufficientResources(code) ||
		pgerrcode.IsOperatorIntervention(code) ||
		code == pgerrcode.SerializationFailure ||
		code == pgerrcode.DeadlockDetected
}

// violationField prefers the driver's column metadata and falls back to the Key (...) detail.
// Multi-column keys yield "".
func violationField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	m := reDetailKey.FindStringSubmatch(pgErr.Detail)
	if len(m) != 2 || strings.Contains(m[1], ",") {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func foreignKeyMessage(pgErr *pgconn.PgError) string {
	if m := reDetailMissing.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return "The referenced " + tableNoun(m[1]) + " does not exist."
	}
	if m := reDetailReferenced.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		return "This record is still used by a " + tableNoun(m[1]) + "."
	}
	if pgErr.TableName != "" {
		return "The operation conflicts with a related " + tableNoun(pgErr.TableName) + "."
	}
	return "The operation conflicts with a related record."
}

func tableNoun(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if noun, ok := tableNouns[table]; ok {
		return noun
	}
	return strings.ReplaceAll(table, "_", " ")
}
