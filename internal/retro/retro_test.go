package retro

import (
	"testing"

	"github.com/alexanderramin/ganttboard/internal/domain"
	"github.com/alexanderramin/ganttboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*domain.Document, string) {
	t.Helper()
	doc := testutil.NewTestDocument(testutil.WithSprints(
		testutil.NewTestSprint("s1", "2025-01-06", "2025-01-17", domain.SprintCompleted),
	))
	r, err := AddRetrospective(doc, "", domain.StringPtr("s1"))
	require.NoError(t, err)
	return doc, r.ID
}

func texts(items []domain.RetroItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestAddRetrospective(t *testing.T) {
	doc, id := setup(t)
	r := doc.Retrospective(id)
	require.NotNil(t, r)
	assert.Equal(t, "Sprint s1 retrospective", r.Title)
	assert.NotNil(t, r.Items)

	_, err := AddRetrospective(doc, "x", domain.StringPtr("ghost"))
	assert.Error(t, err)
}

func TestAddItem_DensePerColumn(t *testing.T) {
	doc, id := setup(t)
	for _, c := range []struct{ col, text string }{
		{domain.RetroWentWell, "ci"},
		{domain.RetroToImprove, "estimates"},
		{domain.RetroWentWell, "pairing"},
	} {
		_, err := AddItem(doc, id, c.col, c.text)
		require.NoError(t, err)
	}
	r := doc.Retrospective(id)
	assert.Equal(t, []string{"ci", "pairing"}, texts(ColumnItems(r, domain.RetroWentWell)))
	assert.Equal(t, 1, ColumnItems(r, domain.RetroWentWell)[1].Position)
	assert.Equal(t, 0, ColumnItems(r, domain.RetroToImprove)[0].Position)

	_, err := AddItem(doc, id, "misc", "x")
	assert.ErrorIs(t, err, ErrInvalidColumn)
	_, err = AddItem(doc, id, domain.RetroWentWell, "  ")
	assert.ErrorIs(t, err, ErrTextRequired)
	_, err = AddItem(doc, "nope", domain.RetroWentWell, "x")
	assert.ErrorIs(t, err, ErrRetroNotFound)
}

func TestVote_FloorsAtZero(t *testing.T) {
	doc, id := setup(t)
	it, err := AddItem(doc, id, domain.RetroWentWell, "ci")
	require.NoError(t, err)

	require.NoError(t, Vote(doc, id, it.ID, 2))
	require.NoError(t, Vote(doc, id, it.ID, -5))
	assert.Equal(t, 0, doc.Retrospective(id).Items[0].Votes)
	assert.ErrorIs(t, Vote(doc, id, "ghost", 1), ErrItemNotFound)
}

func TestGroup_TwoLevelsOnly(t *testing.T) {
	doc, id := setup(t)
	a, _ := AddItem(doc, id, domain.RetroWentWell, "a")
	b, _ := AddItem(doc, id, domain.RetroWentWell, "b")
	c, _ := AddItem(doc, id, domain.RetroToImprove, "c")

	require.NoError(t, Group(doc, id, a.ID, b.ID))
	assert.ErrorIs(t, Group(doc, id, b.ID, c.ID), ErrNesting, "grouped item cannot become a parent")
	assert.ErrorIs(t, Group(doc, id, c.ID, a.ID), ErrNesting, "parent cannot become a child")
	assert.ErrorIs(t, Group(doc, id, a.ID, a.ID), ErrNesting)

	require.NoError(t, Group(doc, id, a.ID, c.ID))
	r := doc.Retrospective(id)
	assert.Equal(t, []string{"a", "b", "c"}, texts(ColumnItems(r, domain.RetroWentWell)))
	assert.Empty(t, ColumnItems(r, domain.RetroToImprove))
	assert.Empty(t, domain.Validate(doc))

	require.NoError(t, Ungroup(doc, id, b.ID))
	assert.Nil(t, r.Items[1].GroupID)
}

func TestRemoveItem_DetachesChildren(t *testing.T) {
	doc, id := setup(t)
	a, _ := AddItem(doc, id, domain.RetroWentWell, "a")
	b, _ := AddItem(doc, id, domain.RetroWentWell, "b")
	require.NoError(t, Group(doc, id, a.ID, b.ID))

	require.NoError(t, RemoveItem(doc, id, a.ID))
	r := doc.Retrospective(id)
	require.Len(t, r.Items, 1)
	assert.Nil(t, r.Items[0].GroupID)
	assert.Equal(t, 0, r.Items[0].Position)
	assert.ErrorIs(t, RemoveItem(doc, id, a.ID), ErrItemNotFound)
}
