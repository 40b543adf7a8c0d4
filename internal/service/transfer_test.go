package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/ganttboard/internal/dependency"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/migrate"
	"github.com/alexanderramin/ganttboard/internal/testutil"
)

func loadedWorkspace(t *testing.T, opts Options) *Workspace {
	t.Helper()
	ws, _ := newFileWorkspace(t, opts)
	_, err := ws.Load(context.Background())
	require.NoError(t, err)
	return ws
}

func TestImport_ToleratesCommentsAndMigrates(t *testing.T) {
	ws := loadedWorkspace(t, Options{})
	data := []byte(`// exported from the old tool
{
  "project": {"title": "Imported", "startDate": "2025-01-06", "totalWeeks": 6},
  "categories": {"Dev": "#b8bb26",},
  "tasks": [
    {"id": "a", "name": "A", "planned": [1], "reality": [1]}, /* finished */
    {"id": "b", "name": "B", "planned": [2], "reality": [], "dependencies": ["a", "gone"]},
  ],
}`)

	res, err := ws.Import(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FromVersion)
	assert.Equal(t, 2, res.Tasks)

	doc, err := ws.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "Imported", doc.Project.Title)
	assert.Equal(t, []string{"a"}, doc.Task("b").Dependencies)
	assert.Empty(t, domain.Validate(doc))
}

func TestImport_RequiredFieldsAreHardRejections(t *testing.T) {
	ws := loadedWorkspace(t, Options{})
	before, err := ws.Export()
	require.NoError(t, err)

	for _, data := range []string{
		`{"project": {}, "tasks": []}`,
		`{"project": {}, "categories": {}}`,
		`{"tasks": [], "categories": {}}`,
		`[1, 2, 3]`,
		`not json at all`,
	} {
		_, err := ws.Import(context.Background(), []byte(data))
		assert.ErrorIs(t, err, migrate.ErrMalformedDocument, data)
	}

	after, err := ws.Export()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImport_GapIsRejected(t *testing.T) {
	reg := migrate.NewRegistry(migrate.CurrentVersion)
	ws := loadedWorkspace(t, Options{Registry: reg})

	_, err := ws.Import(context.Background(), []byte(legacyDoc))
	assert.ErrorIs(t, err, migrate.ErrMigrationGap)
	assert.NoError(t, ws.Stale())
}

func TestImport_BreaksCyclesAndRepairsReferences(t *testing.T) {
	ws := loadedWorkspace(t, Options{})
	doc := testutil.NewTestDocument(testutil.WithTasks(
		testutil.NewTestTask("a", testutil.WithDependencies("b")),
		testutil.NewTestTask("b", testutil.WithDependencies("a")),
		testutil.NewTestTask("c", testutil.WithSprint("missing"), testutil.WithColumn("review")),
	))
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	res, err := ws.Import(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Repaired)

	got, err := ws.Snapshot()
	require.NoError(t, err)
	_, err = dependency.Order(got)
	assert.NoError(t, err)
	assert.Nil(t, got.Task("c").SprintID)
	assert.Equal(t, domain.ColumnBacklog, got.Task("c").Board.ColumnID)
	assert.Empty(t, domain.Validate(got))
}

func TestImport_MissingProtectedColumnRejected(t *testing.T) {
	ws := loadedWorkspace(t, Options{})
	doc := testutil.NewTestDocument()
	doc.Workflow = doc.Workflow[:3]
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = ws.Import(context.Background(), data)
	assert.ErrorIs(t, err, migrate.ErrMalformedDocument)
}

func TestExport_IsVerbatimIndentedJSON(t *testing.T) {
	ws := loadedWorkspace(t, Options{})
	doc, err := ws.Snapshot()
	require.NoError(t, err)

	data, err := ws.Export()
	require.NoError(t, err)
	want, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(data))

	// an export imports back to the same document
	_, err = ws.Import(context.Background(), data)
	require.NoError(t, err)
	again, err := ws.Export()
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}
