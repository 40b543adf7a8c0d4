// Package planning owns the task, sprint and backlog lifecycle: creating and
// deleting work items, sprint assignment, and dense backlog ordering.
package planning

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/ganttboard/internal/board"
	"github.com/alexanderramin/ganttboard/internal/dependency"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrNameRequired    = errors.New("name is required")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidPoints   = errors.New("story points must not be negative")
)

// TaskInput describes a new work item.
type TaskInput struct {
	Name        string
	Category    string
	Assignee    string
	Priority    domain.Priority
	StoryPoints *int
	SprintID    *string
	Planned     []int
	Reality     []int
}

// CreateTask appends a new task with a fresh ID. Its column is derived from
// any initial progress (backlog when there is none) and it is placed at the
// end of that column and of its backlog group. A task created straight into
// done is stamped complete at now.
func CreateTask(doc *domain.Document, in TaskInput, now time.Time) (domain.Task, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Task{}, ErrNameRequired
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriorities[priority] {
		return domain.Task{}, fmt.Errorf("%q: %w", priority, ErrInvalidPriority)
	}
	if in.StoryPoints != nil && *in.StoryPoints < 0 {
		return domain.Task{}, ErrInvalidPoints
	}
	if in.SprintID != nil && doc.Sprint(*in.SprintID) == nil {
		return domain.Task{}, fmt.Errorf("sprint %q: %w", *in.SprintID, ErrSprintNotFound)
	}

	t := domain.Task{
		ID:                    uuid.New().String(),
		Name:                  name,
		Category:              in.Category,
		Planned:               board.NormalizeWeeks(in.Planned),
		Reality:               board.NormalizeWeeks(in.Reality),
		Assignee:              in.Assignee,
		Priority:              priority,
		StoryPoints:           in.StoryPoints,
		SprintID:              in.SprintID,
		Dependencies:          []string{},
		MilestoneDependencies: []string{},
	}
	t.Board.ColumnID = board.DeriveColumn(&t)
	if t.IsDone() {
		stamp := now.UTC()
		t.CompletedAt = &stamp
	}
	board.PlaceNew(doc, &t)
	t.BacklogPosition = len(backlogGroup(doc, t.SprintKey(), ""))

	doc.Tasks = append(doc.Tasks, t)
	return t, nil
}

// TaskPatch holds optional field updates; nil fields are left unchanged.
type TaskPatch struct {
	Name        *string
	Category    *string
	Assignee    *string
	Priority    *domain.Priority
	StoryPoints **int
}

// UpdateTask applies a patch to the task's descriptive fields. Progress,
// placement and dependencies have dedicated operations.
func UpdateTask(doc *domain.Document, id string, p TaskPatch) error {
	t := doc.Task(id)
	if t == nil {
		return fmt.Errorf("task %q: %w", id, ErrTaskNotFound)
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return ErrNameRequired
	}
	if p.Priority != nil && !domain.ValidPriorities[*p.Priority] {
		return fmt.Errorf("%q: %w", *p.Priority, ErrInvalidPriority)
	}
	if p.StoryPoints != nil && *p.StoryPoints != nil && **p.StoryPoints < 0 {
		return ErrInvalidPoints
	}

	if p.Name != nil {
		t.Name = strings.TrimSpace(*p.Name)
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.StoryPoints != nil {
		t.StoryPoints = *p.StoryPoints
	}
	return nil
}

// DeleteTask removes a task, prunes every reference to it, detaches its time
// entries, and renormalizes the board and backlog.
func DeleteTask(doc *domain.Document, id string) error {
	i := doc.TaskIndex(id)
	if i < 0 {
		return fmt.Errorf("task %q: %w", id, ErrTaskNotFound)
	}
	doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
	dependency.PruneTask(doc, id)
	for j := range doc.TimeEntries {
		if e := &doc.TimeEntries[j]; e.TaskID != nil && *e.TaskID == id {
			e.TaskID = nil
		}
	}
	board.Renormalize(doc)
	RenormalizeBacklog(doc)
	return nil
}

// PromoteMilestone turns a task into a milestone with an optional deadline.
func PromoteMilestone(doc *domain.Document, id string, deadline *string) error {
	t := doc.Task(id)
	if t == nil {
		return fmt.Errorf("task %q: %w", id, ErrTaskNotFound)
	}
	if deadline != nil {
		if _, err := domain.ParseDate(*deadline); err != nil {
			return fmt.Errorf("milestone deadline: %w", err)
		}
	}
	t.IsMilestone = true
	t.MilestoneDeadline = deadline
	if t.MilestoneDependencies == nil {
		t.MilestoneDependencies = []string{}
	}
	return nil
}

// DemoteMilestone turns a milestone back into an ordinary task, dropping its
// milestone-only fields.
func DemoteMilestone(doc *domain.Document, id string) error {
	t := doc.Task(id)
	if t == nil {
		return fmt.Errorf("task %q: %w", id, ErrTaskNotFound)
	}
	t.IsMilestone = false
	t.MilestoneDeadline = nil
	t.MilestoneDependencies = []string{}
	t.MilestoneStatusOverride = nil
	t.MilestoneProgressOverride = nil
	return nil
}

// SetMilestoneOverrides sets or clears (nil) the manual status and progress
// overrides of a milestone.
func SetMilestoneOverrides(doc *domain.Document, id string, status *domain.MilestoneStatus, progress *float64) error {
	t := doc.Task(id)
	if t == nil {
		return fmt.Errorf("task %q: %w", id, ErrTaskNotFound)
	}
	if !t.IsMilestone {
		return fmt.Errorf("%q: %w", id, dependency.ErrNotMilestone)
	}
	if status != nil && !domain.ValidMilestoneStatuses[*status] {
		return fmt.Errorf("invalid milestone status %q", *status)
	}
	if progress != nil && (*progress < 0 || *progress > 100) {
		return fmt.Errorf("milestone progress %.1f must be between 0 and 100", *progress)
	}
	t.MilestoneStatusOverride = status
	t.MilestoneProgressOverride = progress
	return nil
}

// SetCategory adds or recolors a category.
func SetCategory(doc *domain.Document, name, color string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	if doc.Categories == nil {
		doc.Categories = make(map[string]string)
	}
	doc.Categories[name] = color
	return nil
}

// RemoveCategory deletes a category; tasks that used it become uncategorized.
func RemoveCategory(doc *domain.Document, name string) {
	delete(doc.Categories, name)
	for i := range doc.Tasks {
		if doc.Tasks[i].Category == name {
			doc.Tasks[i].Category = ""
		}
	}
}
