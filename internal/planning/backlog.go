package planning

import (
	"fmt"
	"sort"

	"github.com/alexanderramin/ganttboard/internal/domain"
)

// RenormalizeBacklog rewrites backlogPosition so that unassigned tasks and
// the tasks of each sprint each form a dense 0..n-1 sequence.
func RenormalizeBacklog(doc *domain.Document) {
	groups := make(map[string][]int)
	for i := range doc.Tasks {
		key := doc.Tasks[i].SprintKey()
		groups[key] = append(groups[key], i)
	}
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			return doc.Tasks[idx[a]].BacklogPosition < doc.Tasks[idx[b]].BacklogPosition
		})
		for pos, i := range idx {
			doc.Tasks[i].BacklogPosition = pos
		}
	}
}

// BacklogOrder returns task IDs of a backlog group in order. An empty
// sprintID selects the unassigned backlog.
func BacklogOrder(doc *domain.Document, sprintID string) []string {
	return backlogGroup(doc, sprintID, "")
}

// AssignSprint moves a task into a sprint (or back to the unassigned backlog
// when sprintID is nil), appending it to the end of the target group.
func AssignSprint(doc *domain.Document, taskID string, sprintID *string) error {
	t := doc.Task(taskID)
	if t == nil {
		return fmt.Errorf("task %q: %w", taskID, ErrTaskNotFound)
	}
	if sprintID != nil && doc.Sprint(*sprintID) == nil {
		return fmt.Errorf("sprint %q: %w", *sprintID, ErrSprintNotFound)
	}
	if domain.StringPtrEqual(t.SprintID, sprintID) {
		return nil
	}
	key := ""
	if sprintID != nil {
		key = *sprintID
	}
	t.BacklogPosition = len(backlogGroup(doc, key, taskID))
	if sprintID != nil {
		t.SprintID = domain.StringPtr(*sprintID)
	} else {
		t.SprintID = nil
	}
	RenormalizeBacklog(doc)
	return nil
}

// MoveInBacklog reorders a task within its current backlog group.
func MoveInBacklog(doc *domain.Document, taskID string, position int) error {
	t := doc.Task(taskID)
	if t == nil {
		return fmt.Errorf("task %q: %w", taskID, ErrTaskNotFound)
	}
	ids := backlogGroup(doc, t.SprintKey(), taskID)
	if position < 0 {
		position = 0
	}
	if position > len(ids) {
		position = len(ids)
	}
	ids = append(ids[:position], append([]string{taskID}, ids[position:]...)...)
	for pos, id := range ids {
		doc.Task(id).BacklogPosition = pos
	}
	return nil
}

// backlogGroup lists the task IDs of one backlog group by position, skipping
// exclude. Ties keep document order.
func backlogGroup(doc *domain.Document, sprintKey, exclude string) []string {
	type entry struct {
		id  string
		pos int
	}
	var entries []entry
	for _, t := range doc.Tasks {
		if t.SprintKey() == sprintKey && t.ID != exclude {
			entries = append(entries, entry{id: t.ID, pos: t.BacklogPosition})
		}
	}
	sort.SliceStable(entries, func(a, b int) bool { return entries[a].pos < entries[b].pos })
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}
