package dependency

import "github.com/alexanderramin/ganttboard/internal/domain"

// Report counts what ValidateDependencies removed.
type Report struct {
	Dangling   int
	Duplicates int
	SelfLinks  int
	CycleEdges int
}

// Removed is the total number of dependency entries pruned.
func (r Report) Removed() int {
	return r.Dangling + r.Duplicates + r.SelfLinks + r.CycleEdges
}

// ValidateDependencies prunes dependency and milestone entries that no longer
// resolve to a live task, self references, duplicates, and any edge that
// closes a cycle. Imported documents are untrusted and always pass through
// here before use.
func ValidateDependencies(doc *domain.Document) Report {
	var r Report
	live := make(map[string]bool, len(doc.Tasks))
	for _, t := range doc.Tasks {
		live[t.ID] = true
	}

	for i := range doc.Tasks {
		t := &doc.Tasks[i]
		t.Dependencies = pruneList(t.ID, t.Dependencies, live, &r)
		t.MilestoneDependencies = pruneList(t.ID, t.MilestoneDependencies, live, &r)
	}

	for _, e := range BuildGraph(doc).FindCycleEdges() {
		succ := doc.Task(e.Succ)
		succ.Dependencies = domain.RemoveString(succ.Dependencies, e.Pred)
		r.CycleEdges++
	}
	return r
}

func pruneList(owner string, ids []string, live map[string]bool, r *Report) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		switch {
		case id == owner:
			r.SelfLinks++
		case !live[id]:
			r.Dangling++
		case seen[id]:
			r.Duplicates++
		default:
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
