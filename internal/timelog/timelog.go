// Package timelog records work sessions against tasks and totals them.
package timelog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrEntryNotFound  = errors.New("time entry not found")
	ErrTaskNotFound   = errors.New("task not found")
	ErrInvalidClock   = errors.New("invalid time of day (expected HH:MM)")
	ErrEndBeforeStart = errors.New("end time must be after start time")
)

const clockLayout = "15:04"

// EntryInput describes a work session. TaskID may be empty for time that is
// not attributed to a task.
type EntryInput struct {
	TaskID    string
	Date      string
	StartTime string
	EndTime   string
	Billable  bool
	Note      string
}

// DurationMinutes returns the minutes between two HH:MM clock times on the
// same day.
func DurationMinutes(start, end string) (int, error) {
	s, err := time.Parse(clockLayout, start)
	if err != nil {
		return 0, fmt.Errorf("start %q: %w", start, ErrInvalidClock)
	}
	e, err := time.Parse(clockLayout, end)
	if err != nil {
		return 0, fmt.Errorf("end %q: %w", end, ErrInvalidClock)
	}
	if !e.After(s) {
		return 0, ErrEndBeforeStart
	}
	return int(e.Sub(s).Minutes()), nil
}

// AddEntry validates and appends a time entry, returning it.
func AddEntry(doc *domain.Document, in EntryInput) (domain.TimeEntry, error) {
	if _, err := domain.ParseDate(in.Date); err != nil {
		return domain.TimeEntry{}, fmt.Errorf("entry date: %w", err)
	}
	minutes, err := DurationMinutes(in.StartTime, in.EndTime)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	var taskID *string
	if in.TaskID != "" {
		if doc.Task(in.TaskID) == nil {
			return domain.TimeEntry{}, fmt.Errorf("task %q: %w", in.TaskID, ErrTaskNotFound)
		}
		taskID = domain.StringPtr(in.TaskID)
	}

	e := domain.TimeEntry{
		ID:              uuid.New().String(),
		TaskID:          taskID,
		Date:            in.Date,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		DurationMinutes: minutes,
		Billable:        in.Billable,
		Note:            strings.TrimSpace(in.Note),
	}
	doc.TimeEntries = append(doc.TimeEntries, e)
	return e, nil
}

// RemoveEntry deletes a time entry by ID.
func RemoveEntry(doc *domain.Document, id string) error {
	for i := range doc.TimeEntries {
		if doc.TimeEntries[i].ID == id {
			doc.TimeEntries = append(doc.TimeEntries[:i], doc.TimeEntries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("entry %q: %w", id, ErrEntryNotFound)
}

// TaskTotal is the logged time for one task. TaskID is empty for
// unattributed entries.
type TaskTotal struct {
	TaskID          string
	TaskName        string
	Minutes         int
	BillableMinutes int
	Entries         int
}

// TotalsByTask sums logged minutes per task, largest first. Ties order by
// task ID.
func TotalsByTask(doc *domain.Document) []TaskTotal {
	byTask := make(map[string]*TaskTotal)
	for _, e := range doc.TimeEntries {
		key := ""
		if e.TaskID != nil {
			key = *e.TaskID
		}
		tt, ok := byTask[key]
		if !ok {
			tt = &TaskTotal{TaskID: key}
			if t := doc.Task(key); t != nil {
				tt.TaskName = t.Name
			}
			byTask[key] = tt
		}
		tt.Minutes += e.DurationMinutes
		tt.Entries++
		if e.Billable {
			tt.BillableMinutes += e.DurationMinutes
		}
	}

	out := make([]TaskTotal, 0, len(byTask))
	for _, tt := range byTask {
		out = append(out, *tt)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

// BillableMinutes sums billable time, optionally restricted to entries dated
// within [from, to] (inclusive, YYYY-MM-DD; empty bounds are open).
func BillableMinutes(doc *domain.Document, from, to string) int {
	total := 0
	for _, e := range doc.TimeEntries {
		if !e.Billable {
			continue
		}
		if from != "" && e.Date < from {
			continue
		}
		if to != "" && e.Date > to {
			continue
		}
		total += e.DurationMinutes
	}
	return total
}

// FormatMinutes renders minutes as "Hh MMm".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%dh %02dm", m/60, m%60)
}
