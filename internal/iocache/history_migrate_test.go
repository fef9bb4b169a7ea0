package iocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/deliverypulse/pulse/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateHistory_NoneBackend(t *testing.T) {
	err := MigrateHistory(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateHistory_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)

	version, dirty, err := MigrationVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(3), version)

	// Already at latest
	assert.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))

	assert.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 1))
	version, _, err = MigrationVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	assert.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, 0))
	version, _, err = MigrationVersion(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	assert.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))
}

func TestMigrateHistory_StoreOnMigratedDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "history.db")
	require.NoError(t, MigrateHistory(schema.SQLiteBackend, dbPath, -1))

	store, err := NewHistoryStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}

func TestMigrationVersion_NoneBackend(t *testing.T) {
	version, dirty, err := MigrationVersion(schema.NoneBackend, "")
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Zero(t, version)
}
