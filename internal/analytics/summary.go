package analytics

import (
	"sort"
	"time"

	"github.com/alexanderramin/ganttboard/internal/board"
	"github.com/alexanderramin/ganttboard/internal/dependency"
	"github.com/alexanderramin/ganttboard/internal/domain"
)

type ColumnCount struct {
	ColumnID string
	Name     string
	Tasks    int
	Points   int
}

// Summary is a project-wide snapshot for status output.
type Summary struct {
	Title        string
	CurrentWeek  int
	TotalWeeks   int
	Columns      []ColumnCount
	Tasks        int
	Done         int
	Points       Points
	Milestones   []MilestoneReport
	Blocked      []string
	ActiveSprint *domain.Sprint
}

// ProjectSummary gathers per-column counts, points, milestone health and
// blocked tasks.
func ProjectSummary(doc *domain.Document, now time.Time) Summary {
	s := Summary{
		Title:       doc.Project.Title,
		CurrentWeek: board.CurrentWeek(doc.Project, now),
		TotalWeeks:  doc.Project.TotalWeeks,
		Tasks:       len(doc.Tasks),
		Blocked:     dependency.Blocked(doc),
	}

	workflow := append([]domain.WorkflowColumn(nil), doc.Workflow...)
	sort.SliceStable(workflow, func(i, j int) bool { return workflow[i].Position < workflow[j].Position })
	idx := make(map[string]int, len(workflow))
	for i, c := range workflow {
		idx[c.ID] = i
		s.Columns = append(s.Columns, ColumnCount{ColumnID: c.ID, Name: c.Name})
	}

	all := make([]*domain.Task, 0, len(doc.Tasks))
	for i := range doc.Tasks {
		t := &doc.Tasks[i]
		all = append(all, t)
		if t.IsDone() {
			s.Done++
		}
		if ci, ok := idx[t.Board.ColumnID]; ok {
			s.Columns[ci].Tasks++
			s.Columns[ci].Points += t.Points()
		}
		if t.IsMilestone {
			if r, err := MilestoneStatus(doc, t.ID, now); err == nil {
				s.Milestones = append(s.Milestones, r)
			}
		}
	}
	s.Points = SprintPoints(all)

	for i := range doc.Sprints {
		if doc.Sprints[i].Status == domain.SprintActive {
			active := doc.Sprints[i]
			s.ActiveSprint = &active
			break
		}
	}
	return s
}
