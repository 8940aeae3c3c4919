package xerrors

import "github.com/jackc/pgx/v5/pgconn"

// ParsePGErrorCode exposes the SQLSTATE of a postgres error, e.g. 23505 for
// unique_violation.
func ParsePGErrorCode(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.Code
	}
	return "unknown"
}

// PGConstraint returns the violated constraint name, if any.
func PGConstraint(err error) string {
	if pgErr, ok := err.(*pgconn.PgError); ok {
		return pgErr.ConstraintName
	}
	return ""
}
