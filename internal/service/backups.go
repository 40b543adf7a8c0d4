package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/repository"
)

// persist saves data under the workspace key and appends snapshots to the
// backup ring in one SaveMany call. Earlier payloads (a malformed payload Load
// gave up on, then e.g. the pre-migration original) are pushed before data so
// the newest entry is always data. Payloads that are not valid JSON cannot be
// kept.
func (w *Workspace) persist(ctx context.Context, data []byte, earlier ...[]byte) error {
	ring, err := w.loadBackups(ctx)
	if err != nil {
		w.log.WarnContext(ctx, "discarding unreadable backup ring", "key", repository.BackupKey(w.key), "error", err)
		ring = nil
	}
	now := w.now()
	snaps := make([][]byte, 0, len(earlier)+2)
	if w.rejected != nil {
		snaps = append(snaps, w.rejected)
	}
	snaps = append(append(snaps, earlier...), data)
	for _, snap := range snaps {
		if !json.Valid(snap) {
			continue
		}
		ring = append(ring, domain.Backup{Timestamp: now, Document: append(json.RawMessage(nil), snap...)})
	}
	if len(ring) > w.limit {
		ring = ring[len(ring)-w.limit:]
	}
	encoded, err := json.Marshal(ring)
	if err != nil {
		return fmt.Errorf("encoding backups: %w", err)
	}
	if err := w.store.SaveMany(ctx, map[string][]byte{
		w.key:                       data,
		repository.BackupKey(w.key): encoded,
	}); err != nil {
		return err
	}
	w.rejected = nil
	return nil
}

func (w *Workspace) loadBackups(ctx context.Context) ([]domain.Backup, error) {
	raw, found, err := w.store.Load(ctx, repository.BackupKey(w.key))
	if err != nil {
		return nil, fmt.Errorf("loading backups: %w", err)
	}
	if !found || len(raw) == 0 {
		return nil, nil
	}
	var ring []domain.Backup
	if err := json.Unmarshal(raw, &ring); err != nil {
		return nil, fmt.Errorf("decoding backups: %w", err)
	}
	return ring, nil
}

// Backups returns the backup ring, oldest first.
func (w *Workspace) Backups(ctx context.Context) ([]domain.Backup, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ring, err := w.loadBackups(ctx)
	if err != nil {
		return nil, err
	}
	if ring == nil {
		ring = []domain.Backup{}
	}
	return ring, nil
}

// Restore replaces the document with backup entry index (0 is the oldest).
// The entry goes through the same path as an import, so older snapshots are
// migrated and repaired before use.
func (w *Workspace) Restore(ctx context.Context, index int) (ImportResult, error) {
	ring, err := w.Backups(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	if index < 0 || index >= len(ring) {
		return ImportResult{}, fmt.Errorf("backup %d out of range (have %d)", index, len(ring))
	}
	return w.Import(ctx, ring[index].Document)
}
