package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTask(id, column string, pos int) Task {
	return Task{
		ID:                    id,
		Name:                  id,
		Planned:               []int{},
		Reality:               []int{},
		Board:                 BoardPlacement{ColumnID: column, Position: pos},
		Priority:              PriorityMedium,
		Dependencies:          []string{},
		MilestoneDependencies: []string{},
	}
}

func TestNewDocument_IsValid(t *testing.T) {
	now := time.Date(2025, 3, 4, 17, 45, 0, 0, time.UTC)
	d := NewDocument(now)
	assert.Equal(t, SchemaVersion, d.Version)
	assert.Equal(t, "2025-03-04", d.Project.StartDate)
	assert.Equal(t, "2025-05-26", d.Project.EndDate)
	assert.Len(t, d.Workflow, 4)
	assert.Empty(t, Validate(d))
}

func TestValidate_ReportsViolations(t *testing.T) {
	d := NewDocument(time.Now())
	a := newTask("a", ColumnBacklog, 0)
	a.Dependencies = []string{"ghost"}
	b := newTask("b", ColumnBacklog, 2)
	b.BacklogPosition = 1
	b.SprintID = StringPtr("no-sprint")
	c := newTask("a", "nowhere", 0)
	d.Tasks = []Task{a, b, c}
	d.Workflow = d.Workflow[:3]

	errs := Validate(d)
	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	assert.Contains(t, msgs, `tasks[2].id: duplicate id "a"`)
	assert.Contains(t, msgs, `workflow: protected column "done" is missing`)
	assert.Contains(t, msgs, `tasks[0].dependencies: unknown task "ghost"`)
	assert.Contains(t, msgs, `tasks[1].sprintId: unknown sprint "no-sprint"`)
	assert.Contains(t, msgs, `tasks[2].board.columnId: unknown column "nowhere"`)
	assert.Contains(t, msgs, `board positions in column "backlog" are not dense: [0 2]`)
}

func TestValidate_RetroNesting(t *testing.T) {
	d := NewDocument(time.Now())
	d.Retrospectives = []Retrospective{{
		ID: "r1",
		Items: []RetroItem{
			{ID: "p", Column: RetroWentWell},
			{ID: "c", Column: RetroWentWell, GroupID: StringPtr("p"), Position: 1},
			{ID: "g", Column: RetroWentWell, GroupID: StringPtr("c"), Position: 2},
		},
	}}
	errs := Validate(d)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "nested more than two levels")
}

func TestClone_IsDeep(t *testing.T) {
	d := NewDocument(time.Now())
	task := newTask("a", ColumnDone, 0)
	task.StoryPoints = IntPtr(3)
	task.SprintID = StringPtr("s1")
	stamp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	task.CompletedAt = &stamp
	task.Planned = []int{1, 2}
	d.Tasks = []Task{task}
	d.Retrospectives = []Retrospective{{ID: "r", Items: []RetroItem{{ID: "i", GroupID: StringPtr("x")}}}}

	c := d.Clone()
	require.Equal(t, d, c)

	*c.Tasks[0].StoryPoints = 8
	*c.Tasks[0].SprintID = "s2"
	c.Tasks[0].Planned[0] = 9
	*c.Tasks[0].CompletedAt = stamp.AddDate(1, 0, 0)
	c.Categories["New"] = "#fff"
	*c.Retrospectives[0].Items[0].GroupID = "y"

	assert.Equal(t, 3, *d.Tasks[0].StoryPoints)
	assert.Equal(t, "s1", *d.Tasks[0].SprintID)
	assert.Equal(t, []int{1, 2}, d.Tasks[0].Planned)
	assert.Equal(t, stamp, *d.Tasks[0].CompletedAt)
	assert.NotContains(t, d.Categories, "New")
	assert.Equal(t, "x", *d.Retrospectives[0].Items[0].GroupID)
}

func TestClone_PreservesEmptySlices(t *testing.T) {
	d := NewDocument(time.Now())
	c := d.Clone()
	assert.NotNil(t, c.Tasks)
	assert.Empty(t, c.Tasks)
	assert.Nil(t, (*Document)(nil).Clone())
}

func TestWeekHelpers(t *testing.T) {
	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"before start", start.AddDate(0, 0, -3), 1},
		{"first day", start, 1},
		{"last day of week 1", start.AddDate(0, 0, 6).Add(23 * time.Hour), 1},
		{"week 2", start.AddDate(0, 0, 7), 2},
		{"week 5", start.AddDate(0, 0, 30), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekOf(start, tt.at))
		})
	}

	assert.Equal(t, "2025-01-13", FormatDate(WeekStart(start, 2)))
	assert.Equal(t, "2025-01-19", FormatDate(WeekEnd(start, 2)))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, "2025-02-28", FormatDate(d))

	_, err = ParseDate("28/02/2025")
	assert.Error(t, err)

	eod := EndOfDay(d.Add(5 * time.Hour))
	assert.Equal(t, 23, eod.Hour())
	assert.Equal(t, 28, eod.Day())
}

func TestRemoveString(t *testing.T) {
	vals := []string{"a", "b", "a", "c"}
	out := RemoveString(vals, "a")
	assert.Equal(t, []string{"b", "c"}, out)
	assert.Equal(t, []string{"a", "b", "a", "c"}, vals)
	assert.NotNil(t, RemoveString([]string{"a"}, "a"))
}
