package repository

import (
	"errors"
	"strings"

	"github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// isUniqueViolation recognises UNIQUE constraint failures from both SQLite
// drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var cgoErr sqlite3.Error
	if errors.As(err, &cgoErr) {
		return cgoErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}

	var pureErr *sqlite.Error
	if errors.As(err, &pureErr) {
		if pureErr.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
