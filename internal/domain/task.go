package domain

import "time"

// Task is the atomic planning unit. A milestone is a Task with IsMilestone
// set; both share one identity space so items can be promoted or demoted.
type Task struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`

	// Timeline progress, as week numbers.
	Planned []int `json:"planned"`
	Reality []int `json:"reality"`

	Board BoardPlacement `json:"board"`

	Assignee        string   `json:"assignee"`
	Priority        Priority `json:"priority"`
	StoryPoints     *int     `json:"storyPoints"`
	SprintID        *string  `json:"sprintId"`
	BacklogPosition int      `json:"backlogPosition"`

	// Predecessor task IDs.
	Dependencies []string `json:"dependencies"`

	IsMilestone               bool             `json:"isMilestone"`
	MilestoneDeadline         *string          `json:"milestoneDeadline"`
	MilestoneDependencies     []string         `json:"milestoneDependencies"`
	MilestoneStatusOverride   *MilestoneStatus `json:"milestoneStatusOverride"`
	MilestoneProgressOverride *float64         `json:"milestoneProgressOverride"`

	CompletedAt *time.Time `json:"completedAt"`
}

type BoardPlacement struct {
	ColumnID string `json:"columnId"`
	Position int    `json:"position"`
}

// IsDone reports whether the task sits in the done column.
func (t *Task) IsDone() bool {
	return t.Board.ColumnID == ColumnDone
}

// InSprint reports whether the task is assigned to the given sprint.
// An empty sprintID matches unassigned tasks.
func (t *Task) InSprint(sprintID string) bool {
	if t.SprintID == nil {
		return sprintID == ""
	}
	return *t.SprintID == sprintID
}

// SprintKey returns the backlog group the task belongs to ("" when unassigned).
func (t *Task) SprintKey() string {
	if t.SprintID == nil {
		return ""
	}
	return *t.SprintID
}

// HasDependency reports whether predecessorID is already a predecessor.
func (t *Task) HasDependency(predecessorID string) bool {
	return containsString(t.Dependencies, predecessorID)
}

// HasMilestoneDependency reports whether taskID is tracked by this milestone.
func (t *Task) HasMilestoneDependency(taskID string) bool {
	return containsString(t.MilestoneDependencies, taskID)
}

// Points returns the story points, treating unestimated as zero.
func (t *Task) Points() int {
	if t.StoryPoints == nil {
		return 0
	}
	return *t.StoryPoints
}

func containsString(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}

// RemoveString returns vals without any occurrence of s.
func RemoveString(vals []string, s string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
