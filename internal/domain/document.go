package domain

import (
	"encoding/json"
	"time"
)

// Document is the single root of a project's planning state. It is the unit
// of persistence, of migration, and of consistency.
type Document struct {
	Version        int               `json:"version"`
	Project        Project           `json:"project"`
	Team           []Member          `json:"team"`
	Categories     map[string]string `json:"categories"`
	Workflow       []WorkflowColumn  `json:"workflow"`
	Sprints        []Sprint          `json:"sprints"`
	TimeEntries    []TimeEntry       `json:"timeEntries"`
	Tasks          []Task            `json:"tasks"`
	Retrospectives []Retrospective   `json:"retrospectives"`
}

// Project defines the timeline's week-numbering origin.
type Project struct {
	Title      string `json:"title"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	TotalWeeks int    `json:"totalWeeks"`
}

type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type WorkflowColumn struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Position int    `json:"position"`
}

// IsProtected reports whether the column is one of the four built-in columns.
func (c WorkflowColumn) IsProtected() bool {
	return ProtectedColumns[c.ID]
}

type Sprint struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Goal      string       `json:"goal"`
	StartDate string       `json:"startDate"`
	EndDate   string       `json:"endDate"`
	Status    SprintStatus `json:"status"`
}

type TimeEntry struct {
	ID              string  `json:"id"`
	TaskID          *string `json:"taskId"`
	Date            string  `json:"date"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Billable        bool    `json:"billable"`
	Note            string  `json:"note,omitempty"`
}

type Retrospective struct {
	ID       string      `json:"id"`
	SprintID *string     `json:"sprintId"`
	Title    string      `json:"title"`
	Items    []RetroItem `json:"items"`
}

// RetroItem is a card on a retrospective board. Items reference a parent
// through GroupID; parents never have a GroupID themselves.
type RetroItem struct {
	ID       string  `json:"id"`
	Column   string  `json:"column"`
	Text     string  `json:"text"`
	Votes    int     `json:"votes"`
	GroupID  *string `json:"groupId"`
	Position int     `json:"position"`
}

// Backup is one entry of the disaster-recovery ring buffer.
type Backup struct {
	Timestamp time.Time       `json:"timestamp"`
	Document  json.RawMessage `json:"document"`
}

// DefaultWorkflow returns the four protected columns in board order.
func DefaultWorkflow() []WorkflowColumn {
	return []WorkflowColumn{
		{ID: ColumnBacklog, Name: "Backlog", Color: "#928374", Position: 0},
		{ID: ColumnTodo, Name: "To Do", Color: "#83a598", Position: 1},
		{ID: ColumnInProgress, Name: "In Progress", Color: "#fabd2f", Position: 2},
		{ID: ColumnDone, Name: "Done", Color: "#8ec07c", Position: 3},
	}
}

// SchemaVersion is the current document schema version. Every document handed
// to a component carries exactly this version.
const SchemaVersion = 12

// NewDocument returns the first-run default document.
func NewDocument(now time.Time) *Document {
	start := now.UTC().Truncate(24 * time.Hour)
	const weeks = 12
	return &Document{
		Version: SchemaVersion,
		Project: Project{
			Title:      "New Project",
			StartDate:  FormatDate(start),
			EndDate:    FormatDate(start.AddDate(0, 0, weeks*7-1)),
			TotalWeeks: weeks,
		},
		Team:           []Member{},
		Categories:     map[string]string{"General": "#83a598"},
		Workflow:       DefaultWorkflow(),
		Sprints:        []Sprint{},
		TimeEntries:    []TimeEntry{},
		Tasks:          []Task{},
		Retrospectives: []Retrospective{},
	}
}

// TaskIndex returns the slice index of the task with the given ID, or -1.
func (d *Document) TaskIndex(id string) int {
	for i := range d.Tasks {
		if d.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Task returns a pointer into d.Tasks for the given ID, or nil.
func (d *Document) Task(id string) *Task {
	if i := d.TaskIndex(id); i >= 0 {
		return &d.Tasks[i]
	}
	return nil
}

// Sprint returns a pointer into d.Sprints for the given ID, or nil.
func (d *Document) Sprint(id string) *Sprint {
	for i := range d.Sprints {
		if d.Sprints[i].ID == id {
			return &d.Sprints[i]
		}
	}
	return nil
}

// Column returns a pointer into d.Workflow for the given ID, or nil.
func (d *Document) Column(id string) *WorkflowColumn {
	for i := range d.Workflow {
		if d.Workflow[i].ID == id {
			return &d.Workflow[i]
		}
	}
	return nil
}

// Retrospective returns a pointer into d.Retrospectives for the given ID, or nil.
func (d *Document) Retrospective(id string) *Retrospective {
	for i := range d.Retrospectives {
		if d.Retrospectives[i].ID == id {
			return &d.Retrospectives[i]
		}
	}
	return nil
}

// TasksInSprint returns pointers to the tasks assigned to sprintID.
func (d *Document) TasksInSprint(sprintID string) []*Task {
	var out []*Task
	for i := range d.Tasks {
		if d.Tasks[i].SprintID != nil && *d.Tasks[i].SprintID == sprintID {
			out = append(out, &d.Tasks[i])
		}
	}
	return out
}
