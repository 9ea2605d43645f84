package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateRequiresPool(t *testing.T) {
	t.Parallel()

	err := Migrate(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrFailedToApplyMigrations)
}

func TestEmbeddedMigrations(t *testing.T) {
	t.Parallel()

	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	data, err := migrationsFS.ReadFile("migrations/00001_create_notifications.sql")
	require.NoError(t, err)

	sql := string(data)
	assert.Contains(t, sql, "-- +goose Up")
	assert.Contains(t, sql, "-- +goose Down")
	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS notifications")
	assert.Contains(t, sql, "notifications_user_created_idx")
}
