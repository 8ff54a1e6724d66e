// Package migrations bootstraps the fixed relational schema. Statements are
// idempotent so Apply can run on every start.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/R3E-Network/social_layer/internal/platform/database"
)

// Execer is satisfied by *sql.DB, *sql.Tx and *sqlx.DB.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS account (
		account_id SERIAL PRIMARY KEY,
		username VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(255) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS message (
		message_id SERIAL PRIMARY KEY,
		posted_by INTEGER NOT NULL REFERENCES account(account_id),
		message_text VARCHAR(255) NOT NULL,
		time_posted_epoch BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_message_posted_by ON message(posted_by)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS account (
		account_id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS message (
		message_id INTEGER PRIMARY KEY AUTOINCREMENT,
		posted_by INTEGER NOT NULL REFERENCES account(account_id),
		message_text TEXT NOT NULL,
		time_posted_epoch INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_message_posted_by ON message(posted_by)`,
}

// Statements returns the bootstrap statements for a dialect in execution order.
func Statements(dialect database.Dialect) ([]string, error) {
	switch dialect {
	case database.DialectPostgres:
		return postgresSchema, nil
	case database.DialectSQLite:
		return sqliteSchema, nil
	default:
		return nil, fmt.Errorf("no schema for dialect %q", dialect)
	}
}

// Apply executes every bootstrap statement for dialect against db.
func Apply(ctx context.Context, db Execer, dialect database.Dialect) error {
	stmts, err := Statements(dialect)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
