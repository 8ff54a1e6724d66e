//go:build !sqlite_cgo

package database

// Compiled by default: pure Go SQLite, no C toolchain required.
//
//	CGO_ENABLED=0 go build ./...

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteDriver is the database/sql driver name for SQLite in this build.
const SQLiteDriver = "sqlite"

// BuildMode describes the SQLite driver compiled in.
const BuildMode = "purego"

func isSQLiteConstraint(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}
	return false
}
