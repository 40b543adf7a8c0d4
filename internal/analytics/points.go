// Package analytics derives sprint, burndown and milestone figures from the
// authoritative task fields. Every function here is a pure read; nothing it
// computes is stored in the document.
package analytics

import (
	"errors"
	"sort"

	"github.com/alexanderramin/ganttboard/internal/domain"
)

var (
	ErrSprintNotFound = errors.New("sprint not found")
	ErrSprintDates    = errors.New("sprint has invalid dates")
	ErrInvalidUnit    = errors.New("unit must be points or tasks")
)

// Points partitions a task set by estimation.
type Points struct {
	Total       int // sum of story points over estimated tasks
	Estimated   int // tasks with story points
	Unestimated int // tasks without
}

func SprintPoints(tasks []*domain.Task) Points {
	var p Points
	for _, t := range tasks {
		if t.StoryPoints == nil {
			p.Unestimated++
			continue
		}
		p.Estimated++
		p.Total += *t.StoryPoints
	}
	return p
}

type SprintVelocity struct {
	SprintID  string
	Name      string
	EndDate   string
	Committed int
	Completed int
}

type VelocityReport struct {
	PerSprint []SprintVelocity
	Average   float64
}

// Velocity reports completed points per completed sprint, oldest first, and
// their average. A task counts as completed when it sits in done.
func Velocity(doc *domain.Document) VelocityReport {
	var r VelocityReport
	for _, s := range doc.Sprints {
		if s.Status != domain.SprintCompleted {
			continue
		}
		v := SprintVelocity{SprintID: s.ID, Name: s.Name, EndDate: s.EndDate}
		for _, t := range doc.TasksInSprint(s.ID) {
			v.Committed += t.Points()
			if t.IsDone() {
				v.Completed += t.Points()
			}
		}
		r.PerSprint = append(r.PerSprint, v)
	}
	sort.SliceStable(r.PerSprint, func(i, j int) bool {
		return r.PerSprint[i].EndDate < r.PerSprint[j].EndDate
	})
	if len(r.PerSprint) > 0 {
		sum := 0
		for _, v := range r.PerSprint {
			sum += v.Completed
		}
		r.Average = float64(sum) / float64(len(r.PerSprint))
	}
	return r
}
