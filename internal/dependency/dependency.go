// Package dependency maintains predecessor edges between tasks and keeps the
// relation acyclic. Milestone tracking lists share the id space but are an
// unordered completion set, so they skip the cycle check.
package dependency

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/graph"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrSelfDependency      = errors.New("task cannot depend on itself")
	ErrDuplicateDependency = errors.New("dependency already exists")
	ErrCycle               = errors.New("dependency would create a cycle")
	ErrNotMilestone        = errors.New("task is not a milestone")
)

// BuildGraph returns the predecessor graph of every task in the document.
// Dangling predecessor IDs are ignored.
func BuildGraph(doc *domain.Document) *graph.Graph {
	g := graph.New()
	for _, t := range doc.Tasks {
		g.AddNode(t.ID)
	}
	for _, t := range doc.Tasks {
		for _, pred := range t.Dependencies {
			if g.HasNode(pred) {
				g.AddEdge(pred, t.ID)
			}
		}
	}
	return g
}

// AddDependency records fromID as a predecessor of toID. The document is left
// untouched when the edge is a self-loop, already exists, or would close a
// cycle.
func AddDependency(doc *domain.Document, fromID, toID string) error {
	if fromID == toID {
		return ErrSelfDependency
	}
	if doc.Task(fromID) == nil {
		return fmt.Errorf("predecessor %q: %w", fromID, ErrTaskNotFound)
	}
	to := doc.Task(toID)
	if to == nil {
		return fmt.Errorf("successor %q: %w", toID, ErrTaskNotFound)
	}
	if to.HasDependency(fromID) {
		return ErrDuplicateDependency
	}
	if BuildGraph(doc).WouldCycle(fromID, toID) {
		return fmt.Errorf("%s -> %s: %w", fromID, toID, ErrCycle)
	}
	to.Dependencies = append(to.Dependencies, fromID)
	return nil
}

// RemoveDependency drops fromID from toID's predecessors. Removing an edge that
// does not exist is not an error.
func RemoveDependency(doc *domain.Document, fromID, toID string) error {
	if doc.Task(fromID) == nil {
		return fmt.Errorf("predecessor %q: %w", fromID, ErrTaskNotFound)
	}
	to := doc.Task(toID)
	if to == nil {
		return fmt.Errorf("successor %q: %w", toID, ErrTaskNotFound)
	}
	to.Dependencies = domain.RemoveString(to.Dependencies, fromID)
	return nil
}

// AddMilestoneDependency adds taskID to the milestone's completion set.
func AddMilestoneDependency(doc *domain.Document, milestoneID, taskID string) error {
	if milestoneID == taskID {
		return ErrSelfDependency
	}
	m := doc.Task(milestoneID)
	if m == nil {
		return fmt.Errorf("milestone %q: %w", milestoneID, ErrTaskNotFound)
	}
	if !m.IsMilestone {
		return fmt.Errorf("%q: %w", milestoneID, ErrNotMilestone)
	}
	if doc.Task(taskID) == nil {
		return fmt.Errorf("task %q: %w", taskID, ErrTaskNotFound)
	}
	if m.HasMilestoneDependency(taskID) {
		return ErrDuplicateDependency
	}
	m.MilestoneDependencies = append(m.MilestoneDependencies, taskID)
	return nil
}

// RemoveMilestoneDependency drops taskID from the milestone's completion set.
func RemoveMilestoneDependency(doc *domain.Document, milestoneID, taskID string) error {
	m := doc.Task(milestoneID)
	if m == nil {
		return fmt.Errorf("milestone %q: %w", milestoneID, ErrTaskNotFound)
	}
	m.MilestoneDependencies = domain.RemoveString(m.MilestoneDependencies, taskID)
	return nil
}

// PruneTask removes every reference to taskID from dependency and milestone
// lists. Used when a task is deleted.
func PruneTask(doc *domain.Document, taskID string) {
	for i := range doc.Tasks {
		t := &doc.Tasks[i]
		t.Dependencies = domain.RemoveString(t.Dependencies, taskID)
		t.MilestoneDependencies = domain.RemoveString(t.MilestoneDependencies, taskID)
	}
}

// Predecessors returns the direct predecessors of taskID.
func Predecessors(doc *domain.Document, taskID string) []string {
	return BuildGraph(doc).Predecessors(taskID)
}

// Successors returns the tasks that list taskID as a predecessor.
func Successors(doc *domain.Document, taskID string) []string {
	return BuildGraph(doc).Successors(taskID)
}

// Blocked returns the IDs of unfinished tasks with at least one predecessor
// that is not done, in document order.
func Blocked(doc *domain.Document) []string {
	var out []string
	for _, t := range doc.Tasks {
		if t.IsDone() {
			continue
		}
		for _, pred := range t.Dependencies {
			if p := doc.Task(pred); p != nil && !p.IsDone() {
				out = append(out, t.ID)
				break
			}
		}
	}
	return out
}

// Order returns task IDs in an order where every predecessor precedes its
// successors.
func Order(doc *domain.Document) ([]string, error) {
	order, ok := BuildGraph(doc).TopoOrder()
	if !ok {
		return nil, ErrCycle
	}
	return order, nil
}
