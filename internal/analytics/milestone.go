package analytics

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alexanderramin/ganttboard/internal/domain"
)

var (
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrNotMilestone      = errors.New("task is not a milestone")
)

// Thresholds, in percentage points behind the expected progress.
const (
	atRiskBehind  = 10.0
	delayedBehind = 25.0
	atRiskWindow  = 7 * 24 * time.Hour
)

// MilestoneReport is the derived health of one milestone. Completed and Total
// are always the dependency counts, even when progress is overridden.
type MilestoneReport struct {
	MilestoneID string
	Status      domain.MilestoneStatus
	Progress    float64
	Expected    float64
	Completed   int
	Total       int
	Overridden  bool
	DaysLeft    *int
}

// MilestoneStatus evaluates a milestone in fixed order: a manual status
// override wins; all dependencies done is complete; no dependencies or none
// done is not started; otherwise actual progress is compared with progress
// expected by linear interpolation from project start to the deadline.
func MilestoneStatus(doc *domain.Document, milestoneID string, now time.Time) (MilestoneReport, error) {
	m := doc.Task(milestoneID)
	if m == nil {
		return MilestoneReport{}, fmt.Errorf("%q: %w", milestoneID, ErrMilestoneNotFound)
	}
	if !m.IsMilestone {
		return MilestoneReport{}, fmt.Errorf("%q: %w", milestoneID, ErrNotMilestone)
	}

	r := MilestoneReport{MilestoneID: m.ID, Total: len(m.MilestoneDependencies)}
	for _, id := range m.MilestoneDependencies {
		if t := doc.Task(id); t != nil && t.IsDone() {
			r.Completed++
		}
	}
	if r.Total > 0 {
		r.Progress = float64(r.Completed) / float64(r.Total) * 100
	}
	if m.MilestoneProgressOverride != nil {
		r.Progress = *m.MilestoneProgressOverride
	}

	var deadline time.Time
	hasDeadline := false
	if m.MilestoneDeadline != nil {
		if d, err := domain.ParseDate(*m.MilestoneDeadline); err == nil {
			deadline, hasDeadline = domain.EndOfDay(d), true
			days := int(math.Ceil(deadline.Sub(now).Hours() / 24))
			r.DaysLeft = &days
		}
	}
	if hasDeadline {
		r.Expected = expectedProgress(doc.Project, deadline, now)
	}

	switch {
	case m.MilestoneStatusOverride != nil:
		r.Status = *m.MilestoneStatusOverride
		r.Overridden = true
	case r.Total > 0 && r.Completed == r.Total:
		r.Status = domain.MilestoneComplete
	case r.Total == 0 || r.Completed == 0:
		r.Status = domain.MilestoneNotStarted
	case !hasDeadline:
		r.Status = domain.MilestoneOnTrack
	default:
		behind := r.Expected - r.Progress
		switch {
		case now.After(deadline) || behind > delayedBehind:
			r.Status = domain.MilestoneDelayed
		case behind > atRiskBehind || deadline.Sub(now) <= atRiskWindow:
			r.Status = domain.MilestoneAtRisk
		default:
			r.Status = domain.MilestoneOnTrack
		}
	}
	return r, nil
}

// expectedProgress is the share of the project-start-to-deadline span that has
// elapsed at now, clamped to 0..100. Without a usable project start nothing is
// expected yet.
func expectedProgress(p domain.Project, deadline, now time.Time) float64 {
	start, err := p.StartTime()
	if err != nil {
		return 0
	}
	span := deadline.Sub(start)
	if span <= 0 {
		return 100
	}
	pct := float64(now.Sub(start)) / float64(span) * 100
	return math.Max(0, math.Min(100, pct))
}
