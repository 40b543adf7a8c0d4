// Package service orchestrates the document engine: it loads a document by
// key, brings it to the current schema version, applies mutations and hands
// the result back to the store together with its backup ring.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alexanderramin/ganttboard/internal/board"
	"github.com/alexanderramin/ganttboard/internal/dependency"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/migrate"
	"github.com/alexanderramin/ganttboard/internal/planning"
	"github.com/alexanderramin/ganttboard/internal/repository"
)

var (
	// ErrStaleDocument is returned for mutations while the loaded document is
	// stuck below or above the current schema version.
	ErrStaleDocument = errors.New("document is not at the current schema version; read-only")
	ErrNotLoaded     = errors.New("workspace has no document loaded")
)

const DefaultBackupLimit = 10

// Options configures a Workspace. Zero values select defaults.
type Options struct {
	Key         string
	BackupLimit int
	Registry    *migrate.Registry
	Now         func() time.Time
	Logger      *slog.Logger
}

// LoadResult describes what Load did to bring the stored document into use.
type LoadResult struct {
	Created     bool  // nothing was stored under the key
	FellBack    bool  // the stored payload was malformed; a fresh document is in use
	Cause       error // why FellBack is set
	FromVersion int
	Version     int
	Repaired    int // dependency entries pruned after migration
	Persisted   bool
}

// Workspace owns the single in-memory document for one key. All methods are
// safe for concurrent use; change notifications typically arrive on another
// goroutine.
type Workspace struct {
	mu       sync.Mutex
	store    repository.DocumentStore
	key      string
	limit    int
	registry *migrate.Registry
	now      func() time.Time
	log      *slog.Logger
	observer UseCaseObserver

	doc       *domain.Document
	staleRaw  []byte // payload held read-only while staleErr is set
	staleErr  error
	lastSaved []byte
	rejected  []byte // malformed stored payload, backed up by the next persist
}

func NewWorkspace(store repository.DocumentStore, opts Options, observers ...UseCaseObserver) *Workspace {
	w := &Workspace{
		store:    store,
		key:      opts.Key,
		limit:    opts.BackupLimit,
		registry: opts.Registry,
		now:      opts.Now,
		log:      opts.Logger,
		observer: useCaseObserverOrNoop(observers),
	}
	if w.key == "" {
		w.key = "ganttboard"
	}
	if w.limit < 1 {
		w.limit = DefaultBackupLimit
	}
	if w.registry == nil {
		w.registry = migrate.DefaultRegistry()
	}
	if w.now == nil {
		w.now = func() time.Time { return time.Now().UTC() }
	}
	if w.log == nil {
		w.log = slog.New(slog.DiscardHandler)
	}
	return w
}

// Key is the store key this workspace reads and writes.
func (w *Workspace) Key() string { return w.key }

// Load reads the document from the store and migrates it. A missing key
// yields a fresh default document. A malformed payload also yields a fresh
// document, reported through LoadResult.FellBack; the payload itself is
// pushed into the backup ring by the first save. A migration gap persists the
// reached version and leaves the workspace read-only.
func (w *Workspace) Load(ctx context.Context) (result LoadResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"key": w.key}
	defer func() {
		fields["from_version"] = result.FromVersion
		fields["fell_back"] = result.FellBack
		observe(ctx, w.observer, "load", startedAt, fields, err)
	}()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.rejected = nil

	raw, found, err := w.store.Load(ctx, w.key)
	if err != nil {
		return LoadResult{}, fmt.Errorf("loading document %q: %w", w.key, err)
	}
	if !found {
		w.install(domain.NewDocument(w.now()), nil)
		return LoadResult{Created: true, FromVersion: migrate.CurrentVersion, Version: migrate.CurrentVersion}, nil
	}

	result.FromVersion = migrate.SniffVersion(raw)
	fallback := func(cause error) (LoadResult, error) {
		w.log.WarnContext(ctx, "stored document is malformed; using a fresh document", "key", w.key, "error", cause)
		w.install(domain.NewDocument(w.now()), nil)
		w.rejected = raw
		result.FellBack = true
		result.Cause = cause
		result.Version = migrate.CurrentVersion
		return result, nil
	}

	if err := migrate.RequireFields(raw); err != nil {
		return fallback(err)
	}
	parsed, err := migrate.ParseRaw(raw)
	if err != nil {
		return fallback(err)
	}

	migrated, err := w.registry.MigrateToLatest(parsed)
	switch {
	case errors.Is(err, migrate.ErrMigrationGap):
		result.Version = migrated.Version()
		data, encErr := json.Marshal(migrated)
		if encErr != nil {
			return result, fmt.Errorf("encoding partially migrated document: %w", encErr)
		}
		if saveErr := w.persist(ctx, data, raw); saveErr != nil {
			return result, fmt.Errorf("persisting version %d: %w", result.Version, saveErr)
		}
		result.Persisted = true
		w.markStale(data, err)
		return result, err
	case errors.Is(err, migrate.ErrFutureVersion):
		result.Version = result.FromVersion
		w.markStale(raw, err)
		return result, err
	case err != nil:
		return result, fmt.Errorf("migrating document: %w", err)
	}

	doc, err := migrate.Decode(migrated)
	if err != nil {
		return fallback(err)
	}
	result.Version = doc.Version
	result.Repaired = repair(doc).Removed()

	if result.FromVersion != migrate.CurrentVersion || result.Repaired > 0 {
		data, err := json.Marshal(doc)
		if err != nil {
			return result, fmt.Errorf("encoding document: %w", err)
		}
		// the pre-migration payload goes into the ring first
		if err := w.persist(ctx, data, raw); err != nil {
			return result, fmt.Errorf("saving migrated document: %w", err)
		}
		result.Persisted = true
		w.install(doc, data)
		return result, nil
	}

	w.install(doc, raw)
	return result, nil
}

// Snapshot returns a deep copy of the current document.
func (w *Workspace) Snapshot() (*domain.Document, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.readyLocked(); err != nil {
		return nil, err
	}
	return w.doc.Clone(), nil
}

// Apply runs fn against a copy of the document and, if fn succeeds, saves the
// copy and makes it current. A failing fn leaves the document untouched.
func (w *Workspace) Apply(ctx context.Context, name string, fn func(doc *domain.Document) error) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, w.observer, name, startedAt, map[string]any{"key": w.key}, err)
	}()

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.readyLocked(); err != nil {
		return err
	}

	next := w.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := w.persist(ctx, data); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	w.install(next, data)
	return nil
}

// Save writes the current document without changing it, e.g. after Load
// created a fresh one.
func (w *Workspace) Save(ctx context.Context) error {
	return w.Apply(ctx, "save", func(*domain.Document) error { return nil })
}

// Stale reports the error that made the workspace read-only, if any.
func (w *Workspace) Stale() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.staleErr
}

func (w *Workspace) readyLocked() error {
	if w.staleErr != nil {
		return fmt.Errorf("%w: %w", ErrStaleDocument, w.staleErr)
	}
	if w.doc == nil {
		return ErrNotLoaded
	}
	return nil
}

func (w *Workspace) install(doc *domain.Document, saved []byte) {
	w.doc = doc
	w.staleRaw = nil
	w.staleErr = nil
	w.lastSaved = saved
}

func (w *Workspace) markStale(raw []byte, cause error) {
	w.doc = nil
	w.staleRaw = raw
	w.staleErr = cause
	w.lastSaved = raw
}

// repair restores the document invariants after migration or import:
// dependency lists resolve and stay acyclic, unknown column and sprint
// references are dropped, and positions are dense.
func repair(doc *domain.Document) dependency.Report {
	report := dependency.ValidateDependencies(doc)
	for i := range doc.Tasks {
		t := &doc.Tasks[i]
		if doc.Column(t.Board.ColumnID) == nil {
			t.Board.ColumnID = board.DeriveColumn(t)
			t.Board.Position = len(doc.Tasks)
		}
		if t.SprintID != nil && doc.Sprint(*t.SprintID) == nil {
			t.SprintID = nil
			t.BacklogPosition = len(doc.Tasks)
		}
	}
	board.Renormalize(doc)
	planning.RenormalizeBacklog(doc)
	return report
}
