package domain

import (
	"fmt"
	"time"
)

// DateLayout is the calendar-date format used throughout the document.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string as a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate formats t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// EndOfDay returns the last instant of the UTC calendar day containing t.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// WeekStart returns the first day of the given 1-based week relative to start.
func WeekStart(start time.Time, week int) time.Time {
	return start.AddDate(0, 0, (week-1)*7)
}

// WeekEnd returns the last day of the given 1-based week relative to start.
func WeekEnd(start time.Time, week int) time.Time {
	return start.AddDate(0, 0, week*7-1)
}

// WeekOf returns the 1-based week number of t relative to start. Instants
// before start fall in week 1.
func WeekOf(start, t time.Time) int {
	days := int(t.UTC().Sub(start.UTC()).Hours() / 24)
	if days < 0 {
		return 1
	}
	return days/7 + 1
}

// StartTime parses the project's start date.
func (p Project) StartTime() (time.Time, error) {
	return ParseDate(p.StartDate)
}
