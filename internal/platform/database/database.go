// Package database opens the relational store shared by the storage gateway and
// classifies driver errors.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/R3E-Network/social_layer/internal/config"
)

// Dialect selects driver-specific SQL.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// PostgresDriver is the database/sql driver name registered by lib/pq.
const PostgresDriver = "postgres"

// DialectFor maps a configured driver name onto its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pq":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// DriverName returns the registered database/sql driver for a dialect.
func DriverName(d Dialect) string {
	if d == DialectSQLite {
		return SQLiteDriver
	}
	return PostgresDriver
}

// Open connects to the configured store, applies pool settings and verifies
// the connection. The returned pool hands out a connection per statement and
// reclaims it when the statement finishes.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn not configured")
	}
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(DriverName(dialect), cfg.DSN)
	if err != nil {
		return nil, err
	}

	if dialect == DialectSQLite {
		// Single writer; an in-memory database also lives only as long as its
		// one connection.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if dialect == DialectSQLite {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return db, nil
}

// IsConstraintViolation reports whether err is an integrity constraint
// violation raised by any supported driver.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 23: integrity_constraint_violation.
		return pqErr.Code.Class() == "23"
	}
	return isSQLiteConstraint(err)
}
