package board

import (
	"testing"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func todoDoc() *domain.Document {
	return testutil.NewTestDocument(testutil.WithTasks(
		testutil.NewTestTask("a", testutil.WithColumn(domain.ColumnTodo)),
		testutil.NewTestTask("b", testutil.WithColumn(domain.ColumnTodo)),
		testutil.NewTestTask("c", testutil.WithColumn(domain.ColumnTodo)),
		testutil.NewTestTask("d", testutil.WithColumn(domain.ColumnInProgress), testutil.WithReality(1)),
	))
}

func TestMoveTask_WithinColumn(t *testing.T) {
	doc := todoDoc()
	require.NoError(t, MoveTask(doc, "c", domain.ColumnTodo, 0, testNow))
	assert.Equal(t, []string{"c", "a", "b"}, ColumnTasks(doc, domain.ColumnTodo))
	assert.Empty(t, domain.Validate(doc))
}

func TestMoveTask_AcrossColumns(t *testing.T) {
	doc := todoDoc()
	require.NoError(t, MoveTask(doc, "a", domain.ColumnInProgress, 0, testNow))

	assert.Equal(t, []string{"b", "c"}, ColumnTasks(doc, domain.ColumnTodo))
	assert.Equal(t, []string{"a", "d"}, ColumnTasks(doc, domain.ColumnInProgress))
	assert.Equal(t, []int{3}, doc.Task("a").Reality, "seeded with the current week")
	assert.Empty(t, domain.Validate(doc))
}

func TestMoveTask_PositionClamped(t *testing.T) {
	doc := todoDoc()
	require.NoError(t, MoveTask(doc, "a", domain.ColumnInProgress, 99, testNow))
	assert.Equal(t, []string{"d", "a"}, ColumnTasks(doc, domain.ColumnInProgress))
}

func TestMoveTask_Errors(t *testing.T) {
	doc := todoDoc()
	assert.ErrorIs(t, MoveTask(doc, "zz", domain.ColumnTodo, 0, testNow), ErrTaskNotFound)
	assert.ErrorIs(t, MoveTask(doc, "a", "nope", 0, testNow), ErrColumnNotFound)
}

func TestRenormalize_ClosesGaps(t *testing.T) {
	doc := todoDoc()
	doc.Task("a").Board.Position = 7
	doc.Task("b").Board.Position = 3
	doc.Task("c").Board.Position = 5
	Renormalize(doc)
	assert.Equal(t, []string{"b", "c", "a"}, ColumnTasks(doc, domain.ColumnTodo))
	assert.Empty(t, domain.Validate(doc))
}
