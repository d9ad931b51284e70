package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_SortedAndEmbedded(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.Equal(t, "0001_init.sql", files[0])
	for i := 1; i < len(files); i++ {
		assert.Less(t, files[i-1], files[i])
	}
}

func TestMigrations_DefineAllTables(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)

	for _, table := range []string{
		"shop_sessions",
		"shop_caption_settings",
		"shop_product_description_updates",
		"shop_bulk_update_requests",
		"shop_bulk_update_requests_description_updates",
		"shop_webhook_requests",
		"shop_webhook_requests_description_updates",
	} {
		assert.Contains(t, string(raw), "CREATE TABLE IF NOT EXISTS "+table+" (", table)
	}
}

func TestMigrations_BulkHeartbeat(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/0002_bulk_heartbeat.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ADD COLUMN IF NOT EXISTS heartbeat_at TIMESTAMPTZ")

	files, err := migrationFiles()
	require.NoError(t, err)
	assert.Contains(t, files, "0002_bulk_heartbeat.sql")
}

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "0001_init", versionOf("0001_init.sql"))
}
