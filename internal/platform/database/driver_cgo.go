//go:build sqlite_cgo

package database

// Compiled with the sqlite_cgo tag: the C SQLite amalgamation via cgo.
//
//	CGO_ENABLED=1 go build -tags sqlite_cgo ./...

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// SQLiteDriver is the database/sql driver name for SQLite in this build.
const SQLiteDriver = "sqlite3"

// BuildMode describes the SQLite driver compiled in.
const BuildMode = "cgo"

func isSQLiteConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
