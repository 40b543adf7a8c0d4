package board

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/ganttboard/internal/domain"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrColumnNotFound = errors.New("column not found")
)

// MoveTask moves a task to toColumnID at toPosition (clamped to the column
// length), applies the board-origin sync rules, and renormalizes both the
// source and target columns.
func MoveTask(doc *domain.Document, taskID, toColumnID string, toPosition int, now time.Time) error {
	t := doc.Task(taskID)
	if t == nil {
		return fmt.Errorf("task %q: %w", taskID, ErrTaskNotFound)
	}
	if doc.Column(toColumnID) == nil {
		return fmt.Errorf("column %q: %w", toColumnID, ErrColumnNotFound)
	}

	SyncKanbanToGantt(t, toColumnID, CurrentWeek(doc.Project, now), now)

	// Order the target column without the moving task, then splice it in.
	ids := columnOrder(doc, toColumnID, taskID)
	if toPosition < 0 {
		toPosition = 0
	}
	if toPosition > len(ids) {
		toPosition = len(ids)
	}
	ids = append(ids[:toPosition], append([]string{taskID}, ids[toPosition:]...)...)

	t.Board.ColumnID = toColumnID
	for pos, id := range ids {
		doc.Task(id).Board.Position = pos
	}
	Renormalize(doc)
	return nil
}

// PlaceNew puts a freshly created task at the end of its column.
func PlaceNew(doc *domain.Document, t *domain.Task) {
	placeAtEnd(doc, t, t.Board.ColumnID)
}

func placeAtEnd(doc *domain.Document, t *domain.Task, columnID string) {
	t.Board.ColumnID = columnID
	t.Board.Position = len(columnOrder(doc, columnID, t.ID))
}

// Renormalize rewrites board positions so that every column holds a dense
// 0..n-1 sequence, keeping the current relative order (ties broken by task
// order in the document).
func Renormalize(doc *domain.Document) {
	byColumn := make(map[string][]int)
	for i := range doc.Tasks {
		col := doc.Tasks[i].Board.ColumnID
		byColumn[col] = append(byColumn[col], i)
	}
	for _, idx := range byColumn {
		sort.SliceStable(idx, func(a, b int) bool {
			return doc.Tasks[idx[a]].Board.Position < doc.Tasks[idx[b]].Board.Position
		})
		for pos, i := range idx {
			doc.Tasks[i].Board.Position = pos
		}
	}
}

// ColumnTasks returns the IDs of the tasks in a column, in board order.
func ColumnTasks(doc *domain.Document, columnID string) []string {
	return columnOrder(doc, columnID, "")
}

// columnOrder lists the task IDs in columnID sorted by position, skipping
// exclude.
func columnOrder(doc *domain.Document, columnID, exclude string) []string {
	type entry struct {
		id  string
		pos int
		idx int
	}
	var entries []entry
	for i, t := range doc.Tasks {
		if t.Board.ColumnID == columnID && t.ID != exclude {
			entries = append(entries, entry{id: t.ID, pos: t.Board.Position, idx: i})
		}
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].pos != entries[b].pos {
			return entries[a].pos < entries[b].pos
		}
		return entries[a].idx < entries[b].idx
	})
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}
