package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRunMigrations(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test_migrations.db"))
	require.NoError(t, err)
	defer db.Close()

	queue := NewDBQueue(db)
	defer queue.Close()

	require.NoError(t, InitSchema(queue))
	require.NoError(t, RunMigrations(queue))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, len(migrations), count)

	// fsm_sessions exists
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM fsm_sessions").Scan(&count))

	for _, index := range []string{"idx_triggers_key", "idx_triggers_category", "idx_triggers_kind"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'index' AND name = ?", index).Scan(&name)
		assert.NoError(t, err, "index %s should exist", index)
	}

	// Idempotent
	require.NoError(t, RunMigrations(queue))
	var newCount int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&newCount))
	assert.Equal(t, count, newCount)

	version, err := CurrentVersion(queue)
	require.NoError(t, err)
	assert.Equal(t, migrations[len(migrations)-1].Version, version)
}

func TestMigrationVersionsAscending(t *testing.T) {
	for i := 1; i < len(migrations); i++ {
		assert.Greater(t, migrations[i].Version, migrations[i-1].Version)
	}
}
