package errors

import (
	"context"
	stderrs "errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE classes the catalog and files repos can hit
var codeBySQLState = map[string]ErrorCode{
	"23505": ErrorCodeDuplicateKey,    // unique_violation, e.g. a second selected file
	"23503": ErrorCodeInvalidArgument, // foreign_key_violation
	"23502": ErrorCodeValidation,      // not_null_violation
	"23514": ErrorCodeValidation,      // check_violation
	"22001": ErrorCodeInvalidArgument, // string_data_right_truncation
	"22P02": ErrorCodeInvalidArgument, // invalid_text_representation
	"25006": ErrorCodeUnavailable,     // read_only_sql_transaction
	"57P03": ErrorCodeUnavailable,     // cannot_connect_now
	"55P03": ErrorCodeConflict,        // lock_not_available
}

// PgError returns the postgres error in err's chain
func PgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	if stderrs.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsSQLState reports whether err is a postgres error with state
func IsSQLState(err error, state string) bool {
	pe, ok := PgError(err)
	return ok && pe.Code == state
}

// IsDuplicateKey reports a unique violation
func IsDuplicateKey(err error) bool { return IsSQLState(err, "23505") }

// FromPostgres codes a repo failure; nil stays nil
// Context ends become ErrorCodeCanceled, postgres errors get their SQLSTATE mapping
// and the column name as field, anything else is ErrorCodeDB
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrorCodeCanceled, msg)
	}
	pe, ok := PgError(err)
	if !ok {
		return Wrap(err, ErrorCodeDB, msg)
	}
	code, ok := codeBySQLState[pe.Code]
	if !ok {
		code = ErrorCodeDB
	}
	e := &Error{code: code, msg: msg, orig: err, field: pe.ColumnName}
	return e
}
