package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/ganttboard/internal/dependency"
	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/migrate"
	"github.com/alexanderramin/ganttboard/internal/planning"
	"github.com/alexanderramin/ganttboard/internal/repository"
	"github.com/alexanderramin/ganttboard/internal/testutil"
)

var fixedNow = time.Date(2025, 2, 3, 9, 30, 0, 0, time.UTC)

const legacyDoc = `{"project":{"title":"Legacy","startDate":"2025-01-06","totalWeeks":4},` +
	`"categories":{"Dev":"#b8bb26"},` +
	`"tasks":[{"id":"a","name":"Design","category":"Dev","planned":[1,2],"reality":[1,2]},` +
	`{"id":"b","title":"Build","category":"Dev","planned":[2,3],"reality":[]}]}`

func newFileWorkspace(t *testing.T, opts Options) (*Workspace, *repository.FileDocumentRepo) {
	t.Helper()
	repo, err := repository.NewFileDocumentRepo(t.TempDir())
	require.NoError(t, err)
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return NewWorkspace(repo, opts), repo
}

func storedDoc(t *testing.T, store repository.DocumentStore, key string) *domain.Document {
	t.Helper()
	raw, found, err := store.Load(context.Background(), key)
	require.NoError(t, err)
	require.True(t, found)
	var doc domain.Document
	require.NoError(t, json.Unmarshal(raw, &doc))
	return &doc
}

func seed(t *testing.T, store repository.DocumentStore, key string, doc *domain.Document) []byte {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), key, raw))
	return raw
}

func TestLoad_MissingKeyCreatesDefault(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()

	res, err := ws.Load(ctx)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.False(t, res.Persisted)

	doc, err := ws.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, migrate.CurrentVersion, doc.Version)
	assert.Empty(t, domain.Validate(doc))

	_, found, err := repo.Load(ctx, "ganttboard")
	require.NoError(t, err)
	assert.False(t, found, "a fresh document is only written on save")

	require.NoError(t, ws.Save(ctx))
	assert.Equal(t, doc.Project, storedDoc(t, repo, "ganttboard").Project)
}

func TestLoad_MalformedFallsBack(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "ganttboard", []byte(`{"project":{"title":"x"},"tasks":[]}`)))

	res, err := ws.Load(ctx)
	require.NoError(t, err)
	assert.True(t, res.FellBack)
	assert.ErrorIs(t, res.Cause, migrate.ErrMalformedDocument)

	doc, err := ws.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "New Project", doc.Project.Title)
}

func TestLoad_FallbackBacksUpRejectedPayload(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	rejected := `{"version":11,"project":{"title":"Real"},"categories":{},"tasks":null}`
	require.NoError(t, repo.Save(ctx, "ganttboard", []byte(rejected)))

	res, err := ws.Load(ctx)
	require.NoError(t, err)
	require.True(t, res.FellBack)

	ring, err := ws.Backups(ctx)
	require.NoError(t, err)
	assert.Empty(t, ring, "nothing is written until the first save")

	require.NoError(t, ws.Save(ctx))
	ring, err = ws.Backups(ctx)
	require.NoError(t, err)
	require.Len(t, ring, 2)
	assert.JSONEq(t, rejected, string(ring[0].Document))
	assert.Equal(t, "New Project", storedDoc(t, repo, "ganttboard").Project.Title)

	require.NoError(t, ws.Save(ctx))
	ring, err = ws.Backups(ctx)
	require.NoError(t, err)
	assert.Len(t, ring, 3, "the rejected payload is backed up once")
}

func TestLoad_FallbackSkipsInvalidJSONBackup(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "ganttboard", []byte(`{"project":`)))

	res, err := ws.Load(ctx)
	require.NoError(t, err)
	require.True(t, res.FellBack)

	require.NoError(t, ws.Save(ctx))
	ring, err := ws.Backups(ctx)
	require.NoError(t, err)
	require.Len(t, ring, 1)
	assert.Equal(t, migrate.CurrentVersion, migrate.SniffVersion(ring[0].Document))
}

func TestLoad_MistypedFieldKeepsDocument(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "ganttboard", []byte(`{"version":11,`+
		`"project":{"title":"Real","startDate":"2025-01-06","endDate":"","totalWeeks":4},"categories":{},`+
		`"tasks":[{"id":"a","name":"Design","planned":[1],"reality":[],`+
		`"board":{"columnId":"todo","position":0},"storyPoints":"3"}]}`)))

	res, err := ws.Load(ctx)
	require.NoError(t, err)
	assert.False(t, res.FellBack)
	assert.Equal(t, 11, res.FromVersion)
	assert.True(t, res.Persisted)

	require.NoError(t, ws.Save(ctx))
	stored := storedDoc(t, repo, "ganttboard")
	assert.Equal(t, "Real", stored.Project.Title)
	require.Len(t, stored.Tasks, 1)
	require.NotNil(t, stored.Tasks[0].StoryPoints)
	assert.Equal(t, 3, *stored.Tasks[0].StoryPoints)
}

func TestLoad_MigratesLegacyAndBacksUpOriginal(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "ganttboard", []byte(legacyDoc)))

	res, err := ws.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FromVersion)
	assert.Equal(t, migrate.CurrentVersion, res.Version)
	assert.True(t, res.Persisted)

	doc, err := ws.Snapshot()
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, domain.ColumnDone, doc.Task("a").Board.ColumnID)
	assert.Equal(t, "Build", doc.Task("b").Name)
	assert.Equal(t, domain.ColumnTodo, doc.Task("b").Board.ColumnID)

	assert.Equal(t, migrate.CurrentVersion, storedDoc(t, repo, "ganttboard").Version)

	ring, err := ws.Backups(ctx)
	require.NoError(t, err)
	require.Len(t, ring, 2)
	assert.Equal(t, 1, migrate.SniffVersion(ring[0].Document))
	assert.Equal(t, migrate.CurrentVersion, migrate.SniffVersion(ring[1].Document))
	assert.Equal(t, fixedNow, ring[1].Timestamp)
}

func TestLoad_CurrentDocumentNotRewritten(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	seed(t, repo, "ganttboard", testutil.NewTestDocument(testutil.WithTasks(testutil.NewTestTask("a"))))

	res, err := ws.Load(ctx)
	require.NoError(t, err)
	assert.False(t, res.Persisted)

	ring, err := ws.Backups(ctx)
	require.NoError(t, err)
	assert.Empty(t, ring)
}

func TestLoad_RepairsDanglingDependencies(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	doc := testutil.NewTestDocument(testutil.WithTasks(
		testutil.NewTestTask("a", testutil.WithDependencies("ghost")),
	))
	seed(t, repo, "ganttboard", doc)

	res, err := ws.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Repaired)
	assert.True(t, res.Persisted)
	assert.Empty(t, storedDoc(t, repo, "ganttboard").Tasks[0].Dependencies)
}

func TestLoad_GapPersistsReachedVersionAndIsReadOnly(t *testing.T) {
	reg := migrate.NewRegistry(migrate.CurrentVersion)
	reg.Register(2, func(r migrate.Raw) migrate.Raw {
		r["marker"] = "v2"
		return r
	})
	ws, repo := newFileWorkspace(t, Options{Registry: reg})
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "ganttboard", []byte(legacyDoc)))

	res, err := ws.Load(ctx)
	var gap *migrate.GapError
	require.ErrorAs(t, err, &gap)
	assert.Equal(t, 2, gap.Reached)
	assert.Equal(t, 3, gap.Missing)
	assert.Equal(t, 2, res.Version)
	assert.True(t, res.Persisted)

	raw, _, err := repo.Load(ctx, "ganttboard")
	require.NoError(t, err)
	assert.Equal(t, 2, migrate.SniffVersion(raw))

	err = ws.Apply(ctx, "noop", func(*domain.Document) error { return nil })
	assert.ErrorIs(t, err, ErrStaleDocument)
	assert.ErrorIs(t, err, migrate.ErrMigrationGap)
	_, err = ws.Snapshot()
	assert.ErrorIs(t, err, ErrStaleDocument)

	exported, err := ws.Export()
	require.NoError(t, err)
	assert.Equal(t, 2, migrate.SniffVersion(exported))
	assert.Contains(t, string(exported), `"marker": "v2"`)
}

func TestLoad_FutureVersionLeftUntouched(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	future := []byte(`{"version":99,"project":{},"tasks":[],"categories":{}}`)
	require.NoError(t, repo.Save(ctx, "ganttboard", future))

	res, err := ws.Load(ctx)
	assert.ErrorIs(t, err, migrate.ErrFutureVersion)
	assert.Equal(t, 99, res.Version)
	assert.False(t, res.Persisted)

	raw, _, err := repo.Load(ctx, "ganttboard")
	require.NoError(t, err)
	assert.Equal(t, future, raw)
	assert.ErrorIs(t, ws.Stale(), migrate.ErrFutureVersion)
}

func TestApply_SavesOnSuccess(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	_, err := ws.Load(ctx)
	require.NoError(t, err)

	var created domain.Task
	err = ws.Apply(ctx, "task-add", func(doc *domain.Document) error {
		var err error
		created, err = planning.CreateTask(doc, planning.TaskInput{Name: "Write docs"}, time.Now())
		return err
	})
	require.NoError(t, err)

	stored := storedDoc(t, repo, "ganttboard")
	require.Len(t, stored.Tasks, 1)
	assert.Equal(t, created.ID, stored.Tasks[0].ID)
}

func TestApply_RejectedMutationChangesNothing(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	before := seed(t, repo, "ganttboard", testutil.NewTestDocument(testutil.WithTasks(
		testutil.NewTestTask("a"),
		testutil.NewTestTask("b", testutil.WithDependencies("a")),
	)))
	_, err := ws.Load(ctx)
	require.NoError(t, err)

	err = ws.Apply(ctx, "dep-add", func(doc *domain.Document) error {
		doc.Tasks[0].Name = "mutated before failing"
		return dependency.AddDependency(doc, "b", "a")
	})
	assert.ErrorIs(t, err, dependency.ErrCycle)

	doc, err := ws.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "Task a", doc.Task("a").Name)
	assert.Empty(t, doc.Task("a").Dependencies)

	after, _, err := repo.Load(ctx, "ganttboard")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

type failingStore struct {
	repository.DocumentStore
	err error
}

func (f failingStore) SaveMany(context.Context, map[string][]byte) error { return f.err }

func TestApply_SaveFailureKeepsDocument(t *testing.T) {
	repo, err := repository.NewFileDocumentRepo(t.TempDir())
	require.NoError(t, err)
	boom := errors.New("disk full")
	ws := NewWorkspace(failingStore{DocumentStore: repo, err: boom}, Options{})
	ctx := context.Background()
	_, err = ws.Load(ctx)
	require.NoError(t, err)

	err = ws.Apply(ctx, "task-add", func(doc *domain.Document) error {
		_, err := planning.CreateTask(doc, planning.TaskInput{Name: "lost"}, time.Now())
		return err
	})
	assert.ErrorIs(t, err, boom)

	doc, err := ws.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, doc.Tasks)
}

func TestApply_NotLoaded(t *testing.T) {
	ws, _ := newFileWorkspace(t, Options{})
	err := ws.Apply(context.Background(), "noop", func(*domain.Document) error { return nil })
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestBackups_RingIsCapped(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{BackupLimit: 3})
	ctx := context.Background()
	_, err := ws.Load(ctx)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, ws.Apply(ctx, "task-add", func(doc *domain.Document) error {
			_, err := planning.CreateTask(doc, planning.TaskInput{Name: "task"}, time.Now())
			return err
		}))
	}

	ring, err := ws.Backups(ctx)
	require.NoError(t, err)
	require.Len(t, ring, 3)

	stored, _, err := repo.Load(ctx, "ganttboard")
	require.NoError(t, err)
	assert.JSONEq(t, string(stored), string(ring[2].Document))

	var oldest domain.Document
	require.NoError(t, json.Unmarshal(ring[0].Document, &oldest))
	assert.Len(t, oldest.Tasks, 3)
}

func TestBackups_UnreadableRingIsReplaced(t *testing.T) {
	ws, repo := newFileWorkspace(t, Options{})
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, repository.BackupKey("ganttboard"), []byte(`not json`)))
	_, err := ws.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, ws.Save(ctx))
	ring, err := ws.Backups(ctx)
	require.NoError(t, err)
	assert.Len(t, ring, 1)
}

func TestRestore(t *testing.T) {
	ws, _ := newFileWorkspace(t, Options{})
	ctx := context.Background()
	_, err := ws.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, ws.Save(ctx))
	require.NoError(t, ws.Apply(ctx, "task-add", func(doc *domain.Document) error {
		_, err := planning.CreateTask(doc, planning.TaskInput{Name: "later"}, time.Now())
		return err
	}))

	_, err = ws.Restore(ctx, 0)
	require.NoError(t, err)
	doc, err := ws.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, doc.Tasks)

	_, err = ws.Restore(ctx, 42)
	assert.Error(t, err)
}

func TestWorkspace_SQLiteStore(t *testing.T) {
	database := testutil.NewTestStore(t)
	repo := repository.NewSQLiteDocumentRepo(database, testutil.NewTestBatch(database))
	ws := NewWorkspace(repo, Options{Key: "roadmap"})
	ctx := context.Background()

	_, err := ws.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, ws.Apply(ctx, "task-add", func(doc *domain.Document) error {
		_, err := planning.CreateTask(doc, planning.TaskInput{Name: "Ship"}, time.Now())
		return err
	}))

	reloaded := NewWorkspace(repo, Options{Key: "roadmap"})
	res, err := reloaded.Load(ctx)
	require.NoError(t, err)
	assert.False(t, res.Created)
	doc, err := reloaded.Snapshot()
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "Ship", doc.Tasks[0].Name)

	ring, err := reloaded.Backups(ctx)
	require.NoError(t, err)
	assert.Len(t, ring, 1)
}
