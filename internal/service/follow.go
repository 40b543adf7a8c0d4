package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/ganttboard/internal/migrate"
	"github.com/alexanderramin/ganttboard/internal/notify"
)

// HandleChange applies an external write to the workspace key. A payload at
// the current schema version replaces the in-memory document wholesale, so
// unsaved local state is lost (last writer wins). Older payloads are ignored;
// they are migrated on the next Load. Echoes of this workspace's own writes
// are ignored too. The replacement is repaired like a loaded document but not
// written back until the next save.
func (w *Workspace) HandleChange(ctx context.Context, key string, raw []byte) (replaced bool, err error) {
	if key != w.key {
		return false, nil
	}
	startedAt := time.Now()
	defer func() {
		if replaced || err != nil {
			observe(ctx, w.observer, "external-change", startedAt, map[string]any{"key": key}, err)
		}
	}()

	w.mu.Lock()
	defer w.mu.Unlock()

	if bytes.Equal(raw, w.lastSaved) {
		return false, nil
	}
	v := migrate.SniffVersion(raw)
	switch {
	case v > migrate.CurrentVersion:
		return false, fmt.Errorf("external change at version %d: %w", v, migrate.ErrFutureVersion)
	case v < migrate.CurrentVersion:
		w.log.DebugContext(ctx, "ignoring external change at an older version", "key", key, "version", v)
		return false, nil
	}

	if err := migrate.RequireFields(raw); err != nil {
		return false, fmt.Errorf("external change: %w", err)
	}
	parsed, err := migrate.ParseRaw(raw)
	if err != nil {
		return false, fmt.Errorf("external change: %w", err)
	}
	doc, err := migrate.Decode(parsed)
	if err != nil {
		return false, fmt.Errorf("external change: %w", err)
	}
	if n := repair(doc).Removed(); n > 0 {
		w.log.DebugContext(ctx, "repaired external change", "key", key, "removed", n)
	}
	w.install(doc, append([]byte(nil), raw...))
	return true, nil
}

// Follow applies changes until ctx is done or the channel closes. Failed
// changes are logged and skipped.
func (w *Workspace) Follow(ctx context.Context, changes <-chan notify.Change) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			replaced, err := w.HandleChange(ctx, c.Key, c.Raw)
			if err != nil {
				w.log.WarnContext(ctx, "skipping external change", "key", c.Key, "error", err)
				continue
			}
			if replaced {
				w.log.InfoContext(ctx, "document replaced by external change", "key", c.Key)
			}
		}
	}
}
