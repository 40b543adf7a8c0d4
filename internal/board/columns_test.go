package board

import (
	"testing"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columnIDs(doc *domain.Document) []string {
	var ids []string
	for _, c := range orderedColumns(doc) {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestAddColumn_InsertsAfter(t *testing.T) {
	doc := testutil.NewTestDocument()
	col, err := AddColumn(doc, "Review", "", domain.ColumnInProgress)
	require.NoError(t, err)

	assert.Equal(t, []string{domain.ColumnBacklog, domain.ColumnTodo, domain.ColumnInProgress, col.ID, domain.ColumnDone}, columnIDs(doc))
	assert.Equal(t, 3, col.Position)
	assert.False(t, col.IsProtected())
}

func TestAddColumn_Validation(t *testing.T) {
	doc := testutil.NewTestDocument()
	_, err := AddColumn(doc, "  ", "", "")
	assert.ErrorIs(t, err, ErrColumnName)
	_, err = AddColumn(doc, "QA", "", "missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestRemoveColumn_ProtectedRejected(t *testing.T) {
	doc := testutil.NewTestDocument()
	before := doc.Clone()
	for id := range domain.ProtectedColumns {
		assert.ErrorIs(t, RemoveColumn(doc, id), ErrProtectedColumn)
	}
	assert.Equal(t, before, doc)
}

func TestRemoveColumn_RederivesTasks(t *testing.T) {
	doc := testutil.NewTestDocument()
	review, err := AddColumn(doc, "Review", "", domain.ColumnInProgress)
	require.NoError(t, err)

	doc.Tasks = append(doc.Tasks,
		testutil.NewTestTask("a", testutil.WithColumn(review.ID), testutil.WithPlanned(1), testutil.WithReality(1)),
		testutil.NewTestTask("b", testutil.WithColumn(review.ID), testutil.WithPlanned(1, 2), testutil.WithReality(1)),
	)
	doc.Tasks[1].Board.Position = 1
	doc.Tasks[1].BacklogPosition = 1

	require.NoError(t, RemoveColumn(doc, review.ID))
	assert.Nil(t, doc.Column(review.ID))
	assert.Equal(t, domain.ColumnDone, doc.Task("a").Board.ColumnID)
	assert.Equal(t, domain.ColumnInProgress, doc.Task("b").Board.ColumnID)
	assert.Empty(t, domain.Validate(doc))
	assert.Len(t, doc.Workflow, 4)
}

func TestReorderAndRenameColumn(t *testing.T) {
	doc := testutil.NewTestDocument()
	require.NoError(t, ReorderColumn(doc, domain.ColumnDone, 0))
	assert.Equal(t, domain.ColumnDone, columnIDs(doc)[0])

	require.NoError(t, RenameColumn(doc, domain.ColumnTodo, "Ready", "#fff"))
	assert.Equal(t, "Ready", doc.Column(domain.ColumnTodo).Name)
	assert.ErrorIs(t, RenameColumn(doc, "nope", "x", ""), ErrColumnNotFound)
}
