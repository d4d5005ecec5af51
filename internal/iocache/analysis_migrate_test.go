package iocache

import (
	"bytes"
	"database/sql"
	"io"
	"path/filepath"
	"testing"

	"github.com/huangsam/govscope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, dbPath, table string) bool {
	t.Helper()
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestMigrateAnalysis_NoneBackend(t *testing.T) {
	err := MigrateAnalysis(io.Discard, schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateAnalysis_UnsupportedBackend(t *testing.T) {
	err := MigrateAnalysis(io.Discard, schema.DatabaseBackend("oracle"), "", -1)
	assert.Error(t, err)
}

func TestMigrateAnalysis_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	// Run migration to latest version
	var out bytes.Buffer
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "to version 2")
	assert.True(t, tableExists(t, dbPath, concentrationTable))
	assert.True(t, tableExists(t, dbPath, migrationsTable))

	// Run migration again (should be a no-op)
	out.Reset()
	require.NoError(t, MigrateAnalysis(&out, schema.SQLiteBackend, dbPath, -1))
	assert.Contains(t, out.String(), "No migration needed")

	// Step back to the first version
	require.NoError(t, MigrateAnalysis(io.Discard, schema.SQLiteBackend, dbPath, 1))
	assert.True(t, tableExists(t, dbPath, analysisRunsTable))

	// Rollback to version 0
	require.NoError(t, MigrateAnalysis(io.Discard, schema.SQLiteBackend, dbPath, 0))
	assert.False(t, tableExists(t, dbPath, analysisRunsTable))

	// Migrate back up to version 1
	require.NoError(t, MigrateAnalysis(io.Discard, schema.SQLiteBackend, dbPath, 1))
	assert.True(t, tableExists(t, dbPath, participantMetricsTable))
}

func TestMigrateAnalysis_StoreAfterMigration(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrated.db")
	require.NoError(t, MigrateAnalysis(io.Discard, schema.SQLiteBackend, dbPath, -1))

	// The store must accept a pre-migrated database
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.BeginAnalysis(sampleTime, "run", nil)
	assert.NoError(t, err)
}
