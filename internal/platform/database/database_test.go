package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/social_layer/internal/config"
)

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver string
		want   Dialect
		ok     bool
	}{
		{"postgres", DialectPostgres, true},
		{"PostgreSQL", DialectPostgres, true},
		{"sqlite", DialectSQLite, true},
		{"sqlite3", DialectSQLite, true},
		{"mysql", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			got, err := DialectFor(tt.driver)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, SQLiteDriver, DriverName(DialectSQLite))
	assert.Equal(t, PostgresDriver, DriverName(DialectPostgres))
}

func TestOpenValidatesConfig(t *testing.T) {
	ctx := context.Background()
	_, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite"})
	assert.Error(t, err)

	_, err = Open(ctx, config.DatabaseConfig{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestOpenSQLiteMemory(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 20})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)

	var fk int
	require.NoError(t, db.GetContext(ctx, &fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}

func TestIsConstraintViolationSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE t (name TEXT UNIQUE)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO t (name) VALUES ('a')`)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO t (name) VALUES ('a')`)
	require.Error(t, err)
	assert.True(t, IsConstraintViolation(err))
	assert.True(t, IsConstraintViolation(fmt.Errorf("insert: %w", err)))

	_, err = db.ExecContext(ctx, `INSERT INTO missing (name) VALUES ('a')`)
	require.Error(t, err)
	assert.False(t, IsConstraintViolation(err))
}

func TestIsConstraintViolationPostgres(t *testing.T) {
	assert.True(t, IsConstraintViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsConstraintViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsConstraintViolation(&pq.Error{Code: "08006"}))
	assert.False(t, IsConstraintViolation(errors.New("boom")))
	assert.False(t, IsConstraintViolation(nil))
}
