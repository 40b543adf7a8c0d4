package migrate

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/tidwall/gjson"
)

// ErrMalformedDocument marks input that cannot be treated as a document at
// all: invalid JSON, a non-object root, or missing required sections.
var ErrMalformedDocument = errors.New("malformed document")

// RequiredFields are the top-level sections an imported document must carry
// before migration is attempted.
var RequiredFields = []string{"project", "tasks", "categories"}

// RequireFields checks that data is a JSON object holding every required
// section.
func RequireFields(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid JSON", ErrMalformedDocument)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return fmt.Errorf("%w: top level is not an object", ErrMalformedDocument)
	}
	var missing []string
	for i, res := range gjson.GetManyBytes(data, RequiredFields...) {
		if !res.Exists() || res.Type == gjson.Null {
			missing = append(missing, RequiredFields[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields %v", ErrMalformedDocument, missing)
	}
	return nil
}

// SniffVersion reads the version field without decoding the document, with
// the same rule as Raw.Version. Unversioned documents report 1.
func SniffVersion(data []byte) int {
	v := gjson.GetBytes(data, "version")
	if v.Type != gjson.Number {
		return 1
	}
	return versionOf(v.Float())
}

// ParseRaw decodes JSON into a Raw document.
func ParseRaw(data []byte) (Raw, error) {
	var r Raw
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	if r == nil {
		return nil, fmt.Errorf("%w: document is null", ErrMalformedDocument)
	}
	return r, nil
}

// Decode converts a current-version Raw document to the typed model. Absent
// collections decode as empty, never nil. Fields holding the wrong JSON type
// are coerced or reset to their zero value rather than failing the whole
// document; r itself is left untouched.
func Decode(r Raw) (*domain.Document, error) {
	if v := r.Version(); v != CurrentVersion {
		return nil, fmt.Errorf("decoding document at version %d (want %d): %w", v, CurrentVersion, ErrMalformedDocument)
	}
	r = r.Clone()
	coerceDocument(r)
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding raw document: %w", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document: %w: %w", ErrMalformedDocument, err)
	}
	fillEmpty(&doc)
	return &doc, nil
}

// Encode converts a typed document back to Raw.
func Encode(doc *domain.Document) (Raw, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return ParseRaw(data)
}

func fillEmpty(doc *domain.Document) {
	if doc.Team == nil {
		doc.Team = []domain.Member{}
	}
	if doc.Categories == nil {
		doc.Categories = map[string]string{}
	}
	if len(doc.Workflow) == 0 {
		doc.Workflow = domain.DefaultWorkflow()
	}
	if doc.Sprints == nil {
		doc.Sprints = []domain.Sprint{}
	}
	if doc.TimeEntries == nil {
		doc.TimeEntries = []domain.TimeEntry{}
	}
	if doc.Tasks == nil {
		doc.Tasks = []domain.Task{}
	}
	if doc.Retrospectives == nil {
		doc.Retrospectives = []domain.Retrospective{}
	}
	for i := range doc.Tasks {
		t := &doc.Tasks[i]
		if t.Planned == nil {
			t.Planned = []int{}
		}
		if t.Reality == nil {
			t.Reality = []int{}
		}
		if t.Dependencies == nil {
			t.Dependencies = []string{}
		}
		if t.MilestoneDependencies == nil {
			t.MilestoneDependencies = []string{}
		}
	}
	for i := range doc.Retrospectives {
		if doc.Retrospectives[i].Items == nil {
			doc.Retrospectives[i].Items = []domain.RetroItem{}
		}
	}
}
