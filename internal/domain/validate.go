package domain

import (
	"fmt"
	"sort"
)

// Validate checks the structural invariants of a current-version document and
// returns every violation found. Acyclicity is checked by the dependency
// package, which owns the graph.
func Validate(d *Document) []error {
	var errs []error

	ids := make(map[string]bool, len(d.Tasks))
	for i, t := range d.Tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
			continue
		}
		if ids[t.ID] {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, t.ID))
		}
		ids[t.ID] = true
	}

	columns := make(map[string]bool, len(d.Workflow))
	for _, c := range d.Workflow {
		columns[c.ID] = true
	}
	for id := range ProtectedColumns {
		if !columns[id] {
			errs = append(errs, fmt.Errorf("workflow: protected column %q is missing", id))
		}
	}

	sprints := make(map[string]bool, len(d.Sprints))
	for _, s := range d.Sprints {
		sprints[s.ID] = true
	}

	byColumn := make(map[string][]int)
	byBacklog := make(map[string][]int)
	for i, t := range d.Tasks {
		prefix := fmt.Sprintf("tasks[%d]", i)
		for _, dep := range t.Dependencies {
			if !ids[dep] {
				errs = append(errs, fmt.Errorf("%s.dependencies: unknown task %q", prefix, dep))
			}
		}
		for _, dep := range t.MilestoneDependencies {
			if !ids[dep] {
				errs = append(errs, fmt.Errorf("%s.milestoneDependencies: unknown task %q", prefix, dep))
			}
		}
		if !columns[t.Board.ColumnID] {
			errs = append(errs, fmt.Errorf("%s.board.columnId: unknown column %q", prefix, t.Board.ColumnID))
		}
		if t.SprintID != nil && !sprints[*t.SprintID] {
			errs = append(errs, fmt.Errorf("%s.sprintId: unknown sprint %q", prefix, *t.SprintID))
		}
		byColumn[t.Board.ColumnID] = append(byColumn[t.Board.ColumnID], t.Board.Position)
		byBacklog[t.SprintKey()] = append(byBacklog[t.SprintKey()], t.BacklogPosition)
	}

	for col, positions := range byColumn {
		if !isDense(positions) {
			errs = append(errs, fmt.Errorf("board positions in column %q are not dense: %v", col, positions))
		}
	}
	for group, positions := range byBacklog {
		if !isDense(positions) {
			errs = append(errs, fmt.Errorf("backlog positions in group %q are not dense: %v", group, positions))
		}
	}

	errs = append(errs, validateRetrospectives(d.Retrospectives)...)
	return errs
}

func validateRetrospectives(retros []Retrospective) []error {
	var errs []error
	for i, r := range retros {
		items := make(map[string]*RetroItem, len(r.Items))
		for j := range r.Items {
			items[r.Items[j].ID] = &r.Items[j]
		}
		for _, it := range r.Items {
			if it.GroupID == nil {
				continue
			}
			parent, ok := items[*it.GroupID]
			if !ok {
				errs = append(errs, fmt.Errorf("retrospectives[%d]: item %q groups under unknown item %q", i, it.ID, *it.GroupID))
				continue
			}
			if parent.GroupID != nil {
				errs = append(errs, fmt.Errorf("retrospectives[%d]: item %q is nested more than two levels", i, it.ID))
			}
		}
	}
	return errs
}

// isDense reports whether positions form the sequence 0..n-1 in some order.
func isDense(positions []int) bool {
	sorted := append([]int(nil), positions...)
	sort.Ints(sorted)
	for i, p := range sorted {
		if p != i {
			return false
		}
	}
	return true
}
