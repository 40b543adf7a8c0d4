package repository

import (
	"context"
	"errors"
	"time"
)

var ErrInvalidKey = errors.New("invalid document key")

// DocumentStore persists serialized documents by key. Stores never interpret
// the payload beyond light metadata; absence is reported through the found
// flag, not an error.
type DocumentStore interface {
	Load(ctx context.Context, key string) (raw []byte, found bool, err error)
	Save(ctx context.Context, key string, raw []byte) error
	// SaveMany writes several keys together, e.g. a document and its
	// backup ring.
	SaveMany(ctx context.Context, entries map[string][]byte) error
}

// DocumentInfo describes a stored key without its payload.
type DocumentInfo struct {
	Key           string
	SchemaVersion int64
	SizeBytes     int
	UpdatedAt     time.Time
}

// BackupKey is the parallel key holding the backup ring for key.
func BackupKey(key string) string {
	return key + ".backups"
}
