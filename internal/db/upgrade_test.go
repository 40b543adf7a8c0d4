package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate_UpgradePath_LegacyDocumentsTable simulates a database created
// before the metadata columns existed. Rows written under the old schema must
// survive and get their metadata backfilled.
func TestMigrate_UpgradePath_LegacyDocumentsTable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE documents (
		key        TEXT PRIMARY KEY,
		raw        TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	require.NoError(t, err)

	legacy := `{"version": 9, "project": {}, "tasks": [], "categories": {}}`
	_, err = db.Exec(`INSERT INTO documents (key, raw, updated_at) VALUES (?, ?, ?)`, "ganttboard", legacy, "2024-11-02T10:00:00Z")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO documents (key, raw, updated_at) VALUES (?, ?, ?)`, "ganttboard.backups", `[]`, "2024-11-02T10:00:00Z")
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	var (
		raw     string
		version int64
		size    int
	)
	err = db.QueryRow(`SELECT raw, schema_version, size_bytes FROM documents WHERE key = ?`, "ganttboard").Scan(&raw, &version, &size)
	require.NoError(t, err)
	assert.Equal(t, legacy, raw)
	assert.Equal(t, int64(9), version)
	assert.Equal(t, len(legacy), size)

	err = db.QueryRow(`SELECT schema_version, size_bytes FROM documents WHERE key = ?`, "ganttboard.backups").Scan(&version, &size)
	require.NoError(t, err)
	assert.Equal(t, int64(0), version)
	assert.Equal(t, 2, size)

	// Re-running is a no-op.
	require.NoError(t, Migrate(db))
}
