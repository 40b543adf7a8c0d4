package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alexanderramin/ganttboard/internal/db"
	"github.com/natefinch/atomic"
)

const fileExt = ".json"

// FileDocumentRepo implements DocumentStore with one JSON file per key in a
// directory. Writes replace files atomically, so a concurrent reader (or a
// file watcher) never observes a partial document.
type FileDocumentRepo struct {
	dir string
}

// NewFileDocumentRepo creates the directory if needed.
func NewFileDocumentRepo(dir string) (*FileDocumentRepo, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &FileDocumentRepo{dir: dir}, nil
}

// Dir returns the directory holding the documents.
func (r *FileDocumentRepo) Dir() string { return r.dir }

// Path returns the file backing key.
func (r *FileDocumentRepo) Path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%q: %w", key, ErrInvalidKey)
	}
	return filepath.Join(r.dir, key+fileExt), nil
}

// KeyForPath maps a file in the data directory back to its key.
func KeyForPath(path string) (string, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, fileExt) || strings.HasPrefix(base, ".") {
		return "", false
	}
	return strings.TrimSuffix(base, fileExt), true
}

func (r *FileDocumentRepo) Load(_ context.Context, key string) ([]byte, bool, error) {
	path, err := r.Path(key)
	if err != nil {
		return nil, false, err
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading document %s: %w", key, err)
	}
	return raw, true, nil
}

func (r *FileDocumentRepo) Save(_ context.Context, key string, raw []byte) error {
	path, err := r.Path(key)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("writing document %s: %w", key, err)
	}
	return nil
}

// SaveMany writes each entry atomically, in reverse key order so that a
// document is written after its ".backups" sibling. The batch as a whole is
// not atomic.
func (r *FileDocumentRepo) SaveMany(ctx context.Context, entries map[string][]byte) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		if _, err := r.Path(k); err != nil {
			return err
		}
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	for _, k := range keys {
		if err := r.Save(ctx, k, entries[k]); err != nil {
			return err
		}
	}
	return nil
}

// List describes every stored key, most recently modified first.
func (r *FileDocumentRepo) List(_ context.Context) ([]DocumentInfo, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("listing data directory: %w", err)
	}
	var out []DocumentInfo
	for _, e := range entries {
		key, ok := KeyForPath(e.Name())
		if !ok || e.IsDir() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(r.dir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, DocumentInfo{
			Key:           key,
			SchemaVersion: db.SchemaVersionOf(raw),
			SizeBytes:     len(raw),
			UpdatedAt:     fi.ModTime().UTC(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}
