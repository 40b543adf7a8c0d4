package planning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrSprintNotFound      = errors.New("sprint not found")
	ErrSprintAlreadyActive = errors.New("another sprint is already active")
	ErrSprintDates         = errors.New("sprint end date must not be before start date")
	ErrSprintTransition    = errors.New("invalid sprint status transition")
)

// AddSprint creates a sprint in planning status. Dates are YYYY-MM-DD.
func AddSprint(doc *domain.Document, name, goal, startDate, endDate string) (domain.Sprint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Sprint{}, ErrNameRequired
	}
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return domain.Sprint{}, fmt.Errorf("sprint start: %w", err)
	}
	end, err := domain.ParseDate(endDate)
	if err != nil {
		return domain.Sprint{}, fmt.Errorf("sprint end: %w", err)
	}
	if end.Before(start) {
		return domain.Sprint{}, ErrSprintDates
	}
	s := domain.Sprint{
		ID:        uuid.New().String(),
		Name:      name,
		Goal:      goal,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    domain.SprintPlanning,
	}
	doc.Sprints = append(doc.Sprints, s)
	return s, nil
}

// StartSprint moves a planning sprint to active. Only one sprint may be
// active at a time.
func StartSprint(doc *domain.Document, id string) error {
	s := doc.Sprint(id)
	if s == nil {
		return fmt.Errorf("sprint %q: %w", id, ErrSprintNotFound)
	}
	if s.Status != domain.SprintPlanning {
		return fmt.Errorf("%s -> %s: %w", s.Status, domain.SprintActive, ErrSprintTransition)
	}
	for _, other := range doc.Sprints {
		if other.Status == domain.SprintActive {
			return fmt.Errorf("%q: %w", other.Name, ErrSprintAlreadyActive)
		}
	}
	s.Status = domain.SprintActive
	return nil
}

// CompleteSprint closes an active sprint. When carryOver is set, tasks that
// are not done return to the unassigned backlog.
func CompleteSprint(doc *domain.Document, id string, carryOver bool) error {
	s := doc.Sprint(id)
	if s == nil {
		return fmt.Errorf("sprint %q: %w", id, ErrSprintNotFound)
	}
	if s.Status != domain.SprintActive {
		return fmt.Errorf("%s -> %s: %w", s.Status, domain.SprintCompleted, ErrSprintTransition)
	}
	s.Status = domain.SprintCompleted
	if carryOver {
		for _, t := range doc.TasksInSprint(id) {
			if !t.IsDone() {
				if err := AssignSprint(doc, t.ID, nil); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// DeleteSprint removes a sprint. Its tasks return to the end of the
// unassigned backlog and retrospectives are detached from it.
func DeleteSprint(doc *domain.Document, id string) error {
	idx := -1
	for i := range doc.Sprints {
		if doc.Sprints[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("sprint %q: %w", id, ErrSprintNotFound)
	}
	for _, t := range doc.TasksInSprint(id) {
		if err := AssignSprint(doc, t.ID, nil); err != nil {
			return err
		}
	}
	doc.Sprints = append(doc.Sprints[:idx], doc.Sprints[idx+1:]...)
	for i := range doc.Retrospectives {
		if r := &doc.Retrospectives[i]; r.SprintID != nil && *r.SprintID == id {
			r.SprintID = nil
		}
	}
	return nil
}

// ActiveSprint returns the active sprint, or nil.
func ActiveSprint(doc *domain.Document) *domain.Sprint {
	for i := range doc.Sprints {
		if doc.Sprints[i].Status == domain.SprintActive {
			return &doc.Sprints[i]
		}
	}
	return nil
}
