package sqlstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/social_layer/internal/app/domain/account"
	"github.com/R3E-Network/social_layer/internal/app/domain/message"
	"github.com/R3E-Network/social_layer/internal/app/storage"
	"github.com/R3E-Network/social_layer/internal/config"
	"github.com/R3E-Network/social_layer/internal/platform/database"
	"github.com/R3E-Network/social_layer/internal/platform/migrations"
)

func TestStoreIntegrationPostgres(t *testing.T) {
	_ = godotenv.Load() // allow .env for local runs
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Driver: "postgres", DSN: dsn})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrations.Apply(ctx, db, database.DialectPostgres))

	store := New(db)
	username := fmt.Sprintf("pg-%d", time.Now().UnixNano())

	acct, err := store.InsertAccount(ctx, account.Account{Username: username, Password: "password"})
	require.NoError(t, err)
	_, err = store.InsertAccount(ctx, account.Account{Username: username, Password: "password"})
	assert.ErrorIs(t, err, storage.ErrConstraint)

	msg, err := store.InsertMessage(ctx, message.Message{PostedBy: acct.ID, Text: "hello", TimePostedEpoch: 1})
	require.NoError(t, err)

	updated, err := store.UpdateMessageText(ctx, msg.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Text)

	deleted, err := store.DeleteMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, deleted)

	_, err = store.DeleteAccount(ctx, acct.ID)
	require.NoError(t, err)
}
