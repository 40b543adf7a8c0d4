package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/ganttboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDocumentRepo_SaveAndLoad(t *testing.T) {
	database := testutil.NewTestStore(t)
	repo := NewSQLiteDocumentRepo(database, testutil.NewTestBatch(database))
	ctx := context.Background()

	_, found, err := repo.Load(ctx, "ganttboard")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Save(ctx, "ganttboard", []byte(`{"version": 11}`)))
	require.NoError(t, repo.Save(ctx, "ganttboard", []byte(`{"version": 12}`)))

	raw, found, err := repo.Load(ctx, "ganttboard")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"version": 12}`, string(raw))

	infos, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, int64(12), infos[0].SchemaVersion)
	assert.Equal(t, len(`{"version": 12}`), infos[0].SizeBytes)
	assert.False(t, infos[0].UpdatedAt.IsZero())
}

func TestSQLiteDocumentRepo_SaveRejectsEmptyKey(t *testing.T) {
	database := testutil.NewTestStore(t)
	repo := NewSQLiteDocumentRepo(database, nil)
	assert.ErrorIs(t, repo.Save(context.Background(), "", []byte(`{}`)), ErrInvalidKey)
}

func TestSQLiteDocumentRepo_SaveManyCommitsTogether(t *testing.T) {
	database := testutil.NewTestStore(t)
	repo := NewSQLiteDocumentRepo(database, testutil.NewTestBatch(database))
	ctx := context.Background()

	err := repo.SaveMany(ctx, map[string][]byte{
		"ganttboard":            []byte(`{"version": 12}`),
		BackupKey("ganttboard"): []byte(`[]`),
	})
	require.NoError(t, err)

	for _, key := range []string{"ganttboard", "ganttboard.backups"} {
		_, found, err := repo.Load(ctx, key)
		require.NoError(t, err)
		assert.True(t, found, key)
	}
}

func TestSQLiteDocumentRepo_SaveManyRollsBack(t *testing.T) {
	database := testutil.NewTestStore(t)
	ctx := context.Background()
	plain := NewSQLiteDocumentRepo(database, nil)
	require.NoError(t, plain.Save(ctx, "ganttboard", []byte(`{"version": 11}`)))

	injected := errors.New("disk full")
	repo := NewSQLiteDocumentRepo(database, &testutil.FailingBatch{Conn: database, FailWrite: 2, Err: injected})

	// Keys are written in order, so the document lands first and the backup
	// write fails.
	err := repo.SaveMany(ctx, map[string][]byte{
		"ganttboard":         []byte(`{"version": 12}`),
		"ganttboard.backups": []byte(`[]`),
	})
	require.ErrorIs(t, err, injected)

	raw, _, err := plain.Load(ctx, "ganttboard")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version": 11}`, string(raw), "first write must be rolled back")
	_, found, err := plain.Load(ctx, "ganttboard.backups")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteDocumentRepo_SaveManyNeedsBatch(t *testing.T) {
	database := testutil.NewTestStore(t)
	repo := NewSQLiteDocumentRepo(database, nil)
	assert.Error(t, repo.SaveMany(context.Background(), map[string][]byte{"k": []byte(`{}`)}))
}
