package relational

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Postgres integrity constraint violation codes treated as rejected writes
var pgConstraintCodes = map[string]bool{
	"23502": true, // not_null_violation
	"23503": true, // foreign_key_violation
	"23505": true, // unique_violation
	"23514": true, // check_violation
}

// isConstraintViolation reports whether err is a constraint violation.
// Those are rejected writes rather than infrastructure failures.
func isConstraintViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pgConstraintCodes[string(pqErr.Code)]
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgConstraintCodes[pgErr.Code]
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// Extended codes carry the primary code in the low byte.
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
