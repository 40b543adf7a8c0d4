package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/ganttboard/internal/db"
)

// SQLiteDocumentRepo implements DocumentStore on the documents table.
type SQLiteDocumentRepo struct {
	db    db.Conn
	batch db.Batch
}

// NewSQLiteDocumentRepo creates a repo. batch may be nil for a repo bound to
// one transaction that only needs Load and Save.
func NewSQLiteDocumentRepo(conn db.Conn, batch db.Batch) *SQLiteDocumentRepo {
	return &SQLiteDocumentRepo{db: conn, batch: batch}
}

func (r *SQLiteDocumentRepo) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT raw FROM documents WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading document %s: %w", key, err)
	}
	return []byte(raw), true, nil
}

func (r *SQLiteDocumentRepo) Save(ctx context.Context, key string, raw []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	query := `INSERT INTO documents (key, raw, updated_at, schema_version, size_bytes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			raw = excluded.raw,
			updated_at = excluded.updated_at,
			schema_version = excluded.schema_version,
			size_bytes = excluded.size_bytes`
	_, err := r.db.ExecContext(ctx, query,
		key,
		string(raw),
		db.Now(),
		db.SchemaVersionOf(raw),
		len(raw),
	)
	if err != nil {
		return fmt.Errorf("saving document %s: %w", key, err)
	}
	return nil
}

// SaveMany writes all entries in one transaction, in key order.
func (r *SQLiteDocumentRepo) SaveMany(ctx context.Context, entries map[string][]byte) error {
	if r.batch == nil {
		return fmt.Errorf("saving documents: no write batch configured")
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return r.batch.Run(ctx, func(ctx context.Context, tx db.Conn) error {
		txRepo := NewSQLiteDocumentRepo(tx, nil)
		for _, k := range keys {
			if err := txRepo.Save(ctx, k, entries[k]); err != nil {
				return err
			}
		}
		return nil
	})
}

// List describes every stored key, most recently updated first.
func (r *SQLiteDocumentRepo) List(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT key, schema_version, size_bytes, updated_at FROM documents ORDER BY updated_at DESC, key`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []DocumentInfo
	for rows.Next() {
		var (
			info    DocumentInfo
			updated string
		)
		if err := rows.Scan(&info.Key, &info.SchemaVersion, &info.SizeBytes, &updated); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
			info.UpdatedAt = t
		}
		out = append(out, info)
	}
	return out, rows.Err()
}
