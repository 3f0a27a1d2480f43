package objectstore

import (
	"errors"
	"fmt"

	crerr "github.com/cockroachdb/errors"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var (
	ErrNotFound     = crerr.New("objectstore: record not found")
	ErrConstraint   = crerr.New("objectstore: constraint violated")
	ErrUnknownStore = crerr.New("objectstore: unknown store")
	ErrUnknownIndex = crerr.New("objectstore: unknown index")
	ErrClosed       = crerr.New("objectstore: database is closed")
	ErrVersion      = crerr.New("objectstore: stored version is newer than schema")
)

// ConstraintError reports a write rejected by a primary key or unique index.
type ConstraintError struct {
	Store string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("objectstore: constraint violated in %s: %v", e.Store, e.Err)
}

func (e *ConstraintError) Unwrap() []error {
	return []error{ErrConstraint, e.Err}
}

func isConstraintViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY,
		sqlite3lib.SQLITE_CONSTRAINT_UNIQUE,
		sqlite3lib.SQLITE_CONSTRAINT_NOTNULL:
		return true
	}
	return false
}
