package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttboard/internal/domain"
)

type candidate struct {
	id   string
	name string
}

// resolveID matches input against candidates: exact ID first, then a unique
// case-insensitive name, then a unique ID prefix.
func resolveID(kind, input string, cands []candidate) (string, error) {
	if input == "" {
		return "", fmt.Errorf("%s ID is required", kind)
	}
	for _, c := range cands {
		if c.id == input {
			return c.id, nil
		}
	}

	var byName []string
	for _, c := range cands {
		if strings.EqualFold(c.name, input) {
			byName = append(byName, c.id)
		}
	}
	if len(byName) == 1 {
		return byName[0], nil
	}
	if len(byName) > 1 {
		return "", fmt.Errorf("%s name %q is ambiguous (%d matches)", kind, input, len(byName))
	}

	var matches []string
	for _, c := range cands {
		if strings.HasPrefix(c.id, input) {
			matches = append(matches, c.id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s not found: %q", kind, input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%s ID prefix %q is ambiguous (%d matches)", kind, input, len(matches))
	}
}

func resolveTask(doc *domain.Document, input string) (string, error) {
	cands := make([]candidate, len(doc.Tasks))
	for i, t := range doc.Tasks {
		cands[i] = candidate{id: t.ID, name: t.Name}
	}
	return resolveID("task", input, cands)
}

func resolveSprint(doc *domain.Document, input string) (string, error) {
	cands := make([]candidate, len(doc.Sprints))
	for i, s := range doc.Sprints {
		cands[i] = candidate{id: s.ID, name: s.Name}
	}
	return resolveID("sprint", input, cands)
}

func resolveColumn(doc *domain.Document, input string) (string, error) {
	cands := make([]candidate, len(doc.Workflow))
	for i, c := range doc.Workflow {
		cands[i] = candidate{id: c.ID, name: c.Name}
	}
	return resolveID("column", input, cands)
}

func resolveRetro(doc *domain.Document, input string) (string, error) {
	cands := make([]candidate, len(doc.Retrospectives))
	for i, r := range doc.Retrospectives {
		cands[i] = candidate{id: r.ID, name: r.Title}
	}
	return resolveID("retrospective", input, cands)
}

func resolveRetroItem(r *domain.Retrospective, input string) (string, error) {
	cands := make([]candidate, len(r.Items))
	for i, it := range r.Items {
		cands[i] = candidate{id: it.ID, name: it.Text}
	}
	return resolveID("item", input, cands)
}

func resolveEntry(doc *domain.Document, input string) (string, error) {
	cands := make([]candidate, len(doc.TimeEntries))
	for i, e := range doc.TimeEntries {
		cands[i] = candidate{id: e.ID}
	}
	return resolveID("time entry", input, cands)
}
