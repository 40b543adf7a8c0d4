package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		raw        TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`ALTER TABLE documents ADD COLUMN schema_version INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE documents ADD COLUMN size_bytes INTEGER NOT NULL DEFAULT 0`,
	`CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at)`,
}

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateBackfillDocumentMeta(db); err != nil {
		return fmt.Errorf("backfilling document metadata: %w", err)
	}
	return nil
}

// migrateBackfillDocumentMeta fills schema_version and size_bytes for rows
// written before those columns existed.
func migrateBackfillDocumentMeta(db *sql.DB) error {
	ctx := context.Background()

	rows, err := db.QueryContext(ctx, `SELECT key, raw FROM documents WHERE size_bytes = 0`)
	if err != nil {
		return fmt.Errorf("listing documents for backfill: %w", err)
	}
	type meta struct {
		key     string
		version int64
		size    int
	}
	var pending []meta
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			rows.Close()
			return fmt.Errorf("scanning document row: %w", err)
		}
		pending = append(pending, meta{key: key, version: SchemaVersionOf([]byte(raw)), size: len(raw)})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating document rows: %w", err)
	}
	if len(pending) == 0 {
		return nil // nothing to backfill
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting backfill transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, m := range pending {
		if _, err := tx.ExecContext(ctx,
			`UPDATE documents SET schema_version = ?, size_bytes = ? WHERE key = ?`,
			m.version, m.size, m.key,
		); err != nil {
			return fmt.Errorf("backfilling document %s: %w", m.key, err)
		}
	}
	return tx.Commit()
}

// SchemaVersionOf returns the top-level "version" of a stored JSON document,
// or 0 when the payload has none (backup rings, legacy documents).
func SchemaVersionOf(raw []byte) int64 {
	v := gjson.GetBytes(raw, "version")
	if v.Type != gjson.Number {
		return 0
	}
	return v.Int()
}

// Now formats the current time the way timestamp columns store it.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
