package analytics

import (
	"fmt"

	"github.com/alexanderramin/ganttboard/internal/domain"
)

type Unit string

const (
	UnitPoints Unit = "points"
	UnitTasks  Unit = "tasks"
)

// BurndownChart holds one sample per calendar day of a sprint, start to end
// inclusive.
type BurndownChart struct {
	SprintID string
	Unit     Unit
	Total    int
	Days     []string
	Ideal    []float64
	Actual   []int
}

// Burndown rebuilds a sprint's burndown from completion stamps. A task is
// remaining on day D when it has no completedAt or was completed after the
// end of D (UTC). The ideal line falls linearly from the total on the first
// day to zero on the last.
func Burndown(doc *domain.Document, sprintID string, unit Unit) (BurndownChart, error) {
	if unit != UnitPoints && unit != UnitTasks {
		return BurndownChart{}, fmt.Errorf("%q: %w", unit, ErrInvalidUnit)
	}
	s := doc.Sprint(sprintID)
	if s == nil {
		return BurndownChart{}, fmt.Errorf("sprint %q: %w", sprintID, ErrSprintNotFound)
	}
	start, err := domain.ParseDate(s.StartDate)
	if err != nil {
		return BurndownChart{}, fmt.Errorf("sprint %q start: %w", s.Name, ErrSprintDates)
	}
	end, err := domain.ParseDate(s.EndDate)
	if err != nil || end.Before(start) {
		return BurndownChart{}, fmt.Errorf("sprint %q end: %w", s.Name, ErrSprintDates)
	}

	tasks := doc.TasksInSprint(sprintID)
	weight := func(t *domain.Task) int {
		if unit == UnitTasks {
			return 1
		}
		return t.Points()
	}

	chart := BurndownChart{SprintID: sprintID, Unit: unit}
	for _, t := range tasks {
		chart.Total += weight(t)
	}

	n := int(end.Sub(start).Hours()/24) + 1
	for i := 0; i < n; i++ {
		day := start.AddDate(0, 0, i)
		eod := domain.EndOfDay(day)

		remaining := 0
		for _, t := range tasks {
			if t.CompletedAt == nil || t.CompletedAt.After(eod) {
				remaining += weight(t)
			}
		}

		ideal := float64(chart.Total)
		if n > 1 {
			ideal = float64(chart.Total) - float64(chart.Total)*float64(i)/float64(n-1)
		}
		chart.Days = append(chart.Days, domain.FormatDate(day))
		chart.Ideal = append(chart.Ideal, ideal)
		chart.Actual = append(chart.Actual, remaining)
	}
	return chart, nil
}
