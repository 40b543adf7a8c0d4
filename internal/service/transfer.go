package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/migrate"
)

// ImportResult summarizes an accepted import.
type ImportResult struct {
	FromVersion int
	Tasks       int
	Repaired    int
}

// Import replaces the document with an externally supplied one. Comments and
// trailing commas are tolerated. Unlike Load, every failure is returned and
// the current document stays in place: a missing required field, a migration
// gap and a document that still violates invariants after repair are all
// rejections.
func (w *Workspace) Import(ctx context.Context, data []byte) (result ImportResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"key": w.key, "bytes": len(data)}
	defer func() {
		fields["from_version"] = result.FromVersion
		fields["repaired"] = result.Repaired
		observe(ctx, w.observer, "import", startedAt, fields, err)
	}()

	doc, result, err := w.prepareImport(data)
	if err != nil {
		return result, err
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return result, fmt.Errorf("encoding imported document: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.persist(ctx, encoded); err != nil {
		return result, fmt.Errorf("saving imported document: %w", err)
	}
	w.install(doc, encoded)
	return result, nil
}

func (w *Workspace) prepareImport(data []byte) (*domain.Document, ImportResult, error) {
	var result ImportResult
	std := jsonc.ToJSON(data)
	if err := migrate.RequireFields(std); err != nil {
		return nil, result, fmt.Errorf("importing document: %w", err)
	}
	raw, err := migrate.ParseRaw(std)
	if err != nil {
		return nil, result, fmt.Errorf("importing document: %w", err)
	}
	result.FromVersion = raw.Version()

	migrated, err := w.registry.MigrateToLatest(raw)
	if err != nil {
		return nil, result, fmt.Errorf("importing document: %w", err)
	}
	doc, err := migrate.Decode(migrated)
	if err != nil {
		return nil, result, fmt.Errorf("importing document: %w", err)
	}
	result.Repaired = repair(doc).Removed()
	if errs := domain.Validate(doc); len(errs) > 0 {
		return nil, result, fmt.Errorf("importing document: %w: %w", migrate.ErrMalformedDocument, errors.Join(errs...))
	}
	result.Tasks = len(doc.Tasks)
	return doc, result, nil
}

// Export serializes the current document verbatim as indented JSON. A
// read-only workspace exports the payload it is holding.
func (w *Workspace) Export() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.staleErr != nil {
		var buf bytes.Buffer
		if err := json.Indent(&buf, w.staleRaw, "", "  "); err != nil {
			return nil, fmt.Errorf("exporting document: %w", err)
		}
		return buf.Bytes(), nil
	}
	if w.doc == nil {
		return nil, ErrNotLoaded
	}
	data, err := json.MarshalIndent(w.doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("exporting document: %w", err)
	}
	return data, nil
}
