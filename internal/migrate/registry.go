// Package migrate upgrades stored project documents from any historical
// schema version to the current one.
//
// A document is migrated as Raw, one registered step per version. Steps are
// total over malformed-but-parseable input: missing or mistyped fields get
// defaults instead of failing the chain.
package migrate

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/ganttboard/internal/domain"
)

// CurrentVersion is the schema version every step chain ends at.
const CurrentVersion = domain.SchemaVersion

var (
	ErrMigrationGap  = errors.New("no migration step registered")
	ErrFutureVersion = errors.New("document version is newer than this build supports")
)

// GapError reports a chain that stopped early. The document returned with it
// is valid at version Reached.
type GapError struct {
	Reached int
	Missing int
}

func (e *GapError) Error() string {
	return fmt.Sprintf("migrating document: stopped at version %d: no step to version %d", e.Reached, e.Missing)
}

func (e *GapError) Unwrap() error { return ErrMigrationGap }

// Step upgrades a document shaped like version N-1 to version N. Steps
// receive a private copy and may modify it in place.
type Step func(Raw) Raw

// Registry maps a target version to the step that produces it.
type Registry struct {
	current int
	steps   map[int]Step
}

// NewRegistry returns an empty registry whose chain ends at current.
func NewRegistry(current int) *Registry {
	return &Registry{current: current, steps: make(map[int]Step)}
}

// Register installs the step that upgrades to version to.
func (r *Registry) Register(to int, step Step) {
	r.steps[to] = step
}

// Current returns the version the registry migrates to.
func (r *Registry) Current() int { return r.current }

// DefaultRegistry returns the full chain from version 1 to CurrentVersion.
func DefaultRegistry() *Registry {
	r := NewRegistry(CurrentVersion)
	r.Register(2, toV2)
	r.Register(3, toV3)
	r.Register(4, toV4)
	r.Register(5, toV5)
	r.Register(6, toV6)
	r.Register(7, toV7)
	r.Register(8, toV8)
	r.Register(9, toV9)
	r.Register(10, toV10)
	r.Register(11, toV11)
	r.Register(12, toV12)
	return r
}

// MigrateToLatest runs doc through the default chain.
func MigrateToLatest(doc Raw) (Raw, error) {
	return DefaultRegistry().MigrateToLatest(doc)
}

// MigrateToLatest upgrades a copy of doc one version at a time. The input is
// never modified. A current document is returned as an unchanged copy; a
// newer one is returned untouched with ErrFutureVersion. When a step is
// missing the document is returned at the last version reached together with
// a *GapError.
func (r *Registry) MigrateToLatest(doc Raw) (Raw, error) {
	out := doc.Clone()
	if out == nil {
		out = Raw{}
	}
	v := out.Version()
	if v > r.current {
		return out, fmt.Errorf("version %d > %d: %w", v, r.current, ErrFutureVersion)
	}
	for v < r.current {
		step, ok := r.steps[v+1]
		if !ok {
			out["version"] = v
			return out, &GapError{Reached: v, Missing: v + 1}
		}
		out = step(out)
		v++
		out["version"] = v
	}
	return out, nil
}
