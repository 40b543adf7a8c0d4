package testutil

import (
	"time"

	"github.com/alexanderramin/ganttboard/internal/domain"
)

// TestStart is the project start used by every fixture document (a Monday).
var TestStart = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// Document options
type DocumentOption func(*domain.Document)

// WithTasks appends tasks and assigns dense board and backlog positions in
// the order given.
func WithTasks(tasks ...domain.Task) DocumentOption {
	return func(d *domain.Document) {
		d.Tasks = append(d.Tasks, tasks...)
		columns := make(map[string]int)
		groups := make(map[string]int)
		for i := range d.Tasks {
			t := &d.Tasks[i]
			t.Board.Position = columns[t.Board.ColumnID]
			columns[t.Board.ColumnID]++
			t.BacklogPosition = groups[t.SprintKey()]
			groups[t.SprintKey()]++
		}
	}
}

func WithSprints(sprints ...domain.Sprint) DocumentOption {
	return func(d *domain.Document) {
		d.Sprints = append(d.Sprints, sprints...)
	}
}

func WithProjectWeeks(weeks int) DocumentOption {
	return func(d *domain.Document) {
		d.Project.TotalWeeks = weeks
		d.Project.EndDate = domain.FormatDate(domain.WeekEnd(TestStart, weeks))
	}
}

func NewTestDocument(opts ...DocumentOption) *domain.Document {
	d := domain.NewDocument(TestStart)
	d.Project.Title = "Test Project"
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Task options
type TaskOption func(*domain.Task)

func WithName(name string) TaskOption {
	return func(t *domain.Task) {
		t.Name = name
	}
}

func WithPlanned(weeks ...int) TaskOption {
	return func(t *domain.Task) {
		t.Planned = weeks
	}
}

func WithReality(weeks ...int) TaskOption {
	return func(t *domain.Task) {
		t.Reality = weeks
	}
}

func WithColumn(columnID string) TaskOption {
	return func(t *domain.Task) {
		t.Board.ColumnID = columnID
	}
}

func WithPoints(n int) TaskOption {
	return func(t *domain.Task) {
		t.StoryPoints = &n
	}
}

func WithSprint(id string) TaskOption {
	return func(t *domain.Task) {
		t.SprintID = &id
	}
}

func WithCompletedAt(at time.Time) TaskOption {
	return func(t *domain.Task) {
		t.CompletedAt = &at
		t.Board.ColumnID = domain.ColumnDone
	}
}

func WithDependencies(ids ...string) TaskOption {
	return func(t *domain.Task) {
		t.Dependencies = ids
	}
}

// AsMilestone marks the task as a milestone with the given deadline
// (YYYY-MM-DD, empty for none) tracking deps.
func AsMilestone(deadline string, deps ...string) TaskOption {
	return func(t *domain.Task) {
		t.IsMilestone = true
		if deadline != "" {
			t.MilestoneDeadline = &deadline
		}
		t.MilestoneDependencies = deps
	}
}

func NewTestTask(id string, opts ...TaskOption) domain.Task {
	t := domain.Task{
		ID:                    id,
		Name:                  "Task " + id,
		Category:              "General",
		Planned:               []int{},
		Reality:               []int{},
		Board:                 domain.BoardPlacement{ColumnID: domain.ColumnBacklog},
		Priority:              domain.PriorityMedium,
		Dependencies:          []string{},
		MilestoneDependencies: []string{},
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// NewTestSprint returns a sprint spanning start..end (YYYY-MM-DD).
func NewTestSprint(id, start, end string, status domain.SprintStatus) domain.Sprint {
	return domain.Sprint{
		ID:        id,
		Name:      "Sprint " + id,
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
}
