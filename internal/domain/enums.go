package domain

// Protected workflow column IDs. Custom columns may sit between them but these
// four can never be removed.
const (
	ColumnBacklog    = "backlog"
	ColumnTodo       = "todo"
	ColumnInProgress = "in-progress"
	ColumnDone       = "done"
)

// ProtectedColumns is the canonical set of column IDs that cannot be deleted.
var ProtectedColumns = map[string]bool{
	ColumnBacklog:    true,
	ColumnTodo:       true,
	ColumnInProgress: true,
	ColumnDone:       true,
}

type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// ValidSprintStatuses is the canonical set of accepted sprint status strings.
var ValidSprintStatuses = map[SprintStatus]bool{
	SprintPlanning:  true,
	SprintActive:    true,
	SprintCompleted: true,
}

type MilestoneStatus string

const (
	MilestoneNotStarted MilestoneStatus = "not-started"
	MilestoneOnTrack    MilestoneStatus = "on-track"
	MilestoneAtRisk     MilestoneStatus = "at-risk"
	MilestoneDelayed    MilestoneStatus = "delayed"
	MilestoneComplete   MilestoneStatus = "complete"
)

// ValidMilestoneStatuses is the canonical set of accepted milestone status strings.
var ValidMilestoneStatuses = map[MilestoneStatus]bool{
	MilestoneNotStarted: true,
	MilestoneOnTrack:    true,
	MilestoneAtRisk:     true,
	MilestoneDelayed:    true,
	MilestoneComplete:   true,
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriorities is the canonical set of accepted priority strings.
var ValidPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// Retrospective board columns.
const (
	RetroWentWell   = "went-well"
	RetroToImprove  = "to-improve"
	RetroActionItem = "action-items"
)

// ValidRetroColumns is the canonical set of accepted retrospective columns.
var ValidRetroColumns = map[string]bool{
	RetroWentWell:   true,
	RetroToImprove:  true,
	RetroActionItem: true,
}
