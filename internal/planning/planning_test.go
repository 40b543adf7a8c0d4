package planning

import (
	"testing"
	"time"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask_Defaults(t *testing.T) {
	doc := testutil.NewTestDocument(testutil.WithTasks(testutil.NewTestTask("a")))

	task, err := CreateTask(doc, TaskInput{Name: "  Write docs "}, testutil.TestStart)
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Write docs", task.Name)
	assert.Equal(t, domain.ColumnBacklog, task.Board.ColumnID)
	assert.Equal(t, 1, task.Board.Position)
	assert.Equal(t, 1, task.BacklogPosition)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Len(t, doc.Tasks, 2)
	assert.Empty(t, domain.Validate(doc))
}

func TestCreateTask_DerivesColumnFromProgress(t *testing.T) {
	doc := testutil.NewTestDocument()
	task, err := CreateTask(doc, TaskInput{Name: "Build", Planned: []int{1, 2}, Reality: []int{1}}, testutil.TestStart)
	require.NoError(t, err)
	assert.Equal(t, domain.ColumnInProgress, task.Board.ColumnID)
}

func TestCreateTask_DoneStampsCompletion(t *testing.T) {
	doc := testutil.NewTestDocument()
	now := testutil.TestStart.Add(30 * time.Hour)

	task, err := CreateTask(doc, TaskInput{Name: "Shipped", Planned: []int{1}, Reality: []int{1}}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.ColumnDone, task.Board.ColumnID)
	require.NotNil(t, task.CompletedAt)
	assert.True(t, now.Equal(*task.CompletedAt))

	open, err := CreateTask(doc, TaskInput{Name: "Open", Planned: []int{1}}, now)
	require.NoError(t, err)
	assert.Nil(t, open.CompletedAt)
	assert.Empty(t, domain.Validate(doc))
}

func TestCreateTask_NormalizesWeeks(t *testing.T) {
	doc := testutil.NewTestDocument()

	task, err := CreateTask(doc, TaskInput{Name: "Worked", Planned: []int{1, 0, -3, 1}, Reality: []int{1, 1}}, testutil.TestStart)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, task.Planned)
	assert.Equal(t, []int{1}, task.Reality)
	assert.Equal(t, domain.ColumnDone, task.Board.ColumnID)
	assert.NotNil(t, task.CompletedAt)
}

func TestCreateTask_Validation(t *testing.T) {
	doc := testutil.NewTestDocument()
	_, err := CreateTask(doc, TaskInput{Name: ""}, testutil.TestStart)
	assert.ErrorIs(t, err, ErrNameRequired)
	_, err = CreateTask(doc, TaskInput{Name: "x", Priority: "whenever"}, testutil.TestStart)
	assert.ErrorIs(t, err, ErrInvalidPriority)
	_, err = CreateTask(doc, TaskInput{Name: "x", StoryPoints: domain.IntPtr(-1)}, testutil.TestStart)
	assert.ErrorIs(t, err, ErrInvalidPoints)
	_, err = CreateTask(doc, TaskInput{Name: "x", SprintID: domain.StringPtr("nope")}, testutil.TestStart)
	assert.ErrorIs(t, err, ErrSprintNotFound)
	assert.Empty(t, doc.Tasks)
}

func TestDeleteTask_PrunesAndRenormalizes(t *testing.T) {
	doc := testutil.NewTestDocument(testutil.WithTasks(
		testutil.NewTestTask("a"),
		testutil.NewTestTask("b", testutil.WithDependencies("a")),
		testutil.NewTestTask("c"),
		testutil.NewTestTask("m", testutil.AsMilestone("", "a")),
	))
	doc.TimeEntries = []domain.TimeEntry{{ID: "e1", TaskID: domain.StringPtr("a"), DurationMinutes: 30}}

	require.NoError(t, DeleteTask(doc, "a"))
	assert.Nil(t, doc.Task("a"))
	assert.Empty(t, doc.Task("b").Dependencies)
	assert.Empty(t, doc.Task("m").MilestoneDependencies)
	assert.Nil(t, doc.TimeEntries[0].TaskID)
	assert.Equal(t, 0, doc.Task("b").Board.Position)
	assert.Equal(t, 0, doc.Task("b").BacklogPosition)
	assert.Empty(t, domain.Validate(doc))

	assert.ErrorIs(t, DeleteTask(doc, "a"), ErrTaskNotFound)
}

func TestUpdateTask(t *testing.T) {
	doc := testutil.NewTestDocument(testutil.WithTasks(testutil.NewTestTask("a", testutil.WithPoints(3))))
	name := "Renamed"
	high := domain.PriorityHigh
	var unestimated *int
	require.NoError(t, UpdateTask(doc, "a", TaskPatch{Name: &name, Priority: &high, StoryPoints: &unestimated}))

	a := doc.Task("a")
	assert.Equal(t, "Renamed", a.Name)
	assert.Equal(t, domain.PriorityHigh, a.Priority)
	assert.Nil(t, a.StoryPoints)

	blank := " "
	assert.ErrorIs(t, UpdateTask(doc, "a", TaskPatch{Name: &blank}), ErrNameRequired)
	assert.Equal(t, "Renamed", a.Name)
}

func TestPromoteDemoteMilestone(t *testing.T) {
	doc := testutil.NewTestDocument(testutil.WithTasks(testutil.NewTestTask("a")))
	require.NoError(t, PromoteMilestone(doc, "a", domain.StringPtr("2025-03-01")))
	a := doc.Task("a")
	assert.True(t, a.IsMilestone)

	delayed := domain.MilestoneDelayed
	require.NoError(t, SetMilestoneOverrides(doc, "a", &delayed, nil))
	assert.Equal(t, domain.MilestoneDelayed, *a.MilestoneStatusOverride)

	require.NoError(t, DemoteMilestone(doc, "a"))
	assert.False(t, a.IsMilestone)
	assert.Nil(t, a.MilestoneDeadline)
	assert.Nil(t, a.MilestoneStatusOverride)

	assert.Error(t, PromoteMilestone(doc, "a", domain.StringPtr("March")))
	assert.Error(t, SetMilestoneOverrides(doc, "a", nil, nil), "not a milestone")
}

func TestCategories(t *testing.T) {
	doc := testutil.NewTestDocument(testutil.WithTasks(testutil.NewTestTask("a")))
	require.NoError(t, SetCategory(doc, "Design", "#f00"))
	doc.Task("a").Category = "Design"
	RemoveCategory(doc, "Design")
	assert.NotContains(t, doc.Categories, "Design")
	assert.Equal(t, "", doc.Task("a").Category)
}

func TestAssignSprint_KeepsBothGroupsDense(t *testing.T) {
	doc := testutil.NewTestDocument(
		testutil.WithSprints(testutil.NewTestSprint("s1", "2025-01-06", "2025-01-17", domain.SprintPlanning)),
		testutil.WithTasks(
			testutil.NewTestTask("a"),
			testutil.NewTestTask("b"),
			testutil.NewTestTask("c", testutil.WithSprint("s1")),
		),
	)

	require.NoError(t, AssignSprint(doc, "a", domain.StringPtr("s1")))
	assert.Equal(t, []string{"b"}, BacklogOrder(doc, ""))
	assert.Equal(t, []string{"c", "a"}, BacklogOrder(doc, "s1"))
	assert.Empty(t, domain.Validate(doc))

	require.NoError(t, AssignSprint(doc, "c", nil))
	assert.Equal(t, []string{"b", "c"}, BacklogOrder(doc, ""))
	assert.Equal(t, []string{"a"}, BacklogOrder(doc, "s1"))
	assert.Empty(t, domain.Validate(doc))

	assert.ErrorIs(t, AssignSprint(doc, "a", domain.StringPtr("nope")), ErrSprintNotFound)
}

func TestMoveInBacklog(t *testing.T) {
	doc := testutil.NewTestDocument(testutil.WithTasks(
		testutil.NewTestTask("a"),
		testutil.NewTestTask("b"),
		testutil.NewTestTask("c"),
	))
	require.NoError(t, MoveInBacklog(doc, "c", 0))
	assert.Equal(t, []string{"c", "a", "b"}, BacklogOrder(doc, ""))
	require.NoError(t, MoveInBacklog(doc, "c", 10))
	assert.Equal(t, []string{"a", "b", "c"}, BacklogOrder(doc, ""))
}

func TestSprintLifecycle(t *testing.T) {
	doc := testutil.NewTestDocument()
	s1, err := AddSprint(doc, "Sprint 1", "ship it", "2025-01-06", "2025-01-17")
	require.NoError(t, err)
	s2, err := AddSprint(doc, "Sprint 2", "", "2025-01-20", "2025-01-31")
	require.NoError(t, err)

	require.NoError(t, StartSprint(doc, s1.ID))
	assert.ErrorIs(t, StartSprint(doc, s2.ID), ErrSprintAlreadyActive)
	assert.Equal(t, s1.ID, ActiveSprint(doc).ID)

	done, err := CreateTask(doc, TaskInput{Name: "done", SprintID: domain.StringPtr(s1.ID)}, testutil.TestStart)
	require.NoError(t, err)
	doc.Task(done.ID).Board.ColumnID = domain.ColumnDone
	open, err := CreateTask(doc, TaskInput{Name: "open", SprintID: domain.StringPtr(s1.ID)}, testutil.TestStart)
	require.NoError(t, err)

	require.NoError(t, CompleteSprint(doc, s1.ID, true))
	assert.Equal(t, domain.SprintCompleted, doc.Sprint(s1.ID).Status)
	assert.Nil(t, doc.Task(open.ID).SprintID)
	assert.NotNil(t, doc.Task(done.ID).SprintID)
	assert.ErrorIs(t, CompleteSprint(doc, s1.ID, false), ErrSprintTransition)

	require.NoError(t, StartSprint(doc, s2.ID))
}

func TestAddSprint_Validation(t *testing.T) {
	doc := testutil.NewTestDocument()
	_, err := AddSprint(doc, "S", "", "2025-01-10", "2025-01-01")
	assert.ErrorIs(t, err, ErrSprintDates)
	_, err = AddSprint(doc, "S", "", "soon", "2025-01-01")
	assert.Error(t, err)
	_, err = AddSprint(doc, "", "", "2025-01-01", "2025-01-02")
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestDeleteSprint(t *testing.T) {
	doc := testutil.NewTestDocument(
		testutil.WithSprints(testutil.NewTestSprint("s1", "2025-01-06", "2025-01-17", domain.SprintPlanning)),
		testutil.WithTasks(
			testutil.NewTestTask("a"),
			testutil.NewTestTask("b", testutil.WithSprint("s1")),
		),
	)
	doc.Retrospectives = []domain.Retrospective{{ID: "r1", SprintID: domain.StringPtr("s1")}}

	require.NoError(t, DeleteSprint(doc, "s1"))
	assert.Empty(t, doc.Sprints)
	assert.Nil(t, doc.Task("b").SprintID)
	assert.Equal(t, []string{"a", "b"}, BacklogOrder(doc, ""))
	assert.Nil(t, doc.Retrospectives[0].SprintID)
	assert.Empty(t, domain.Validate(doc))
}
