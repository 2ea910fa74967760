package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "devnet.sqlite")

	database, err := Open(path)
	require.NoError(t, err)
	defer database.Close()

	status, err := GetMigrationStatus(database)
	require.NoError(t, err)
	assert.Equal(t, uint(0), status.CurrentVersion)
	assert.Equal(t, uint(2), status.LatestVersion)
	assert.True(t, status.Pending)

	require.NoError(t, RunMigrations(database))
	require.NoError(t, RunMigrations(database), "second run is a no-op")

	status, err = GetMigrationStatus(database)
	require.NoError(t, err)
	assert.Equal(t, uint(2), status.CurrentVersion)
	assert.False(t, status.Pending)
	assert.False(t, status.Dirty)

	var tables []string
	require.NoError(t, database.Select(&tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('records', 'sequences', 'transactions') ORDER BY name`))
	assert.Equal(t, []string{"records", "sequences", "transactions"}, tables)
}

func TestRunMigrationsWithoutDatabase(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
	_, err := GetMigrationStatus(nil)
	assert.Error(t, err)
}
