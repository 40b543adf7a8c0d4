// Package db opens the SQLite document store and keeps its documents table
// schema current.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory store.
const MemoryPath = ":memory:"

// connPragmas apply to every pooled connection. busy_timeout lets a second
// process saving the same board wait for the write lock instead of failing.
const connPragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// Open opens the document store at path, creating its directory when needed,
// and brings the documents table up to date.
func Open(path string) (*sql.DB, error) {
	dsn := MemoryPath
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
		dsn = path + connPragmas
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	if path == MemoryPath {
		// each new connection would see an empty database
		conn.SetMaxOpenConns(1)
	}
	if err := Migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating store %s: %w", path, err)
	}
	return conn, nil
}
