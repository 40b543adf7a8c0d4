// Package board keeps a task's timeline progress and its workflow column
// consistent, and maintains dense column positions.
//
// The two edit origins are deliberately asymmetric: timeline edits always
// recompute the column from progress, while board moves apply a narrower set
// of side effects and may leave the column ahead of or behind the timeline.
package board

import (
	"fmt"
	"time"

	"github.com/alexanderramin/ganttboard/internal/domain"
)

// DeriveColumnFromProgress maps timeline progress to a workflow column. It
// depends on planned and reality only.
func DeriveColumnFromProgress(planned, reality []int) string {
	if len(planned) > 0 && coversAll(reality, planned) {
		return domain.ColumnDone
	}
	if len(reality) > 0 {
		return domain.ColumnInProgress
	}
	if len(planned) > 0 {
		return domain.ColumnTodo
	}
	return domain.ColumnBacklog
}

// DeriveColumn applies DeriveColumnFromProgress to a task.
func DeriveColumn(t *domain.Task) string {
	return DeriveColumnFromProgress(t.Planned, t.Reality)
}

func coversAll(have, want []int) bool {
	set := make(map[int]bool, len(have))
	for _, w := range have {
		set[w] = true
	}
	for _, w := range want {
		if !set[w] {
			return false
		}
	}
	return true
}

// SyncKanbanToGantt applies the timeline side effects of moving t to
// newColumnID on the board. It does not touch board placement.
//
// Moving into done stamps CompletedAt but never fills reality: actual effort
// may legitimately differ from the plan. Moving out of done clears the stamp.
// Moving into in-progress with no recorded reality seeds the current week.
func SyncKanbanToGantt(t *domain.Task, newColumnID string, currentWeek int, now time.Time) {
	wasDone := t.Board.ColumnID == domain.ColumnDone
	switch newColumnID {
	case domain.ColumnDone:
		if !wasDone || t.CompletedAt == nil {
			stamp := now.UTC()
			t.CompletedAt = &stamp
		}
		return
	case domain.ColumnInProgress:
		if len(t.Reality) == 0 {
			t.Reality = []int{currentWeek}
		}
	}
	if wasDone {
		t.CompletedAt = nil
	}
}

// SyncGanttToKanban records a timeline edit: it replaces the task's progress,
// derives the column from it, and moves the task to the end of that column
// when the column changes. Entering done stamps CompletedAt if unset; leaving
// done clears it.
func SyncGanttToKanban(doc *domain.Document, taskID string, planned, reality []int, now time.Time) error {
	t := doc.Task(taskID)
	if t == nil {
		return fmt.Errorf("task %q: %w", taskID, ErrTaskNotFound)
	}
	t.Planned = NormalizeWeeks(planned)
	t.Reality = NormalizeWeeks(reality)

	derived := DeriveColumn(t)
	switch {
	case derived == domain.ColumnDone && t.CompletedAt == nil:
		stamp := now.UTC()
		t.CompletedAt = &stamp
	case derived != domain.ColumnDone:
		t.CompletedAt = nil
	}

	if derived != t.Board.ColumnID {
		placeAtEnd(doc, t, derived)
	}
	Renormalize(doc)
	return nil
}

// CurrentWeek returns the 1-based project week containing now, clamped to the
// project length when one is set. Projects without a valid start date report
// week 1.
func CurrentWeek(p domain.Project, now time.Time) int {
	start, err := p.StartTime()
	if err != nil {
		return 1
	}
	week := domain.WeekOf(start, now)
	if p.TotalWeeks > 0 && week > p.TotalWeeks {
		week = p.TotalWeeks
	}
	return week
}

// NormalizeWeeks drops non-positive and repeated weeks, keeping first-seen
// order, and never returns nil.
func NormalizeWeeks(weeks []int) []int {
	seen := make(map[int]bool, len(weeks))
	out := make([]int, 0, len(weeks))
	for _, w := range weeks {
		if w <= 0 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
