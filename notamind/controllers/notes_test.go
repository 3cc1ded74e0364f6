package controllers

import (
	"context"
	"errors"
	"notamind/notamind/services/tags"
	"notamind/notamind/utils/logging"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNotesController(maxNotes int, generated []string) (*NotesController, *fakeRecordStore, *fakeTagService, *fakeContainerStore) {
	logging.InitLogger()
	store := newFakeRecordStore()
	gen := &fakeTagService{result: generated}
	containers := newFakeContainerStore(3)
	return NewNotesController(store, gen, containers, maxNotes), store, gen, containers
}

func TestCreateNotePersistsGeneratedTags(t *testing.T) {
	ctrl, _, _, _ := newNotesController(10, []string{"golang", "storage"})

	note, err := ctrl.CreateNote(context.Background(), "a summary", "some details")
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "storage"}, note.TagNames())
	assert.False(t, note.CreatedAt.IsZero())
	assert.Nil(t, note.ModifiedAt)

	got, err := ctrl.GetNote(context.Background(), note.ID)
	require.NoError(t, err)
	assert.Equal(t, "a summary", got.Summary)
	assert.Equal(t, "some details", got.Details)
}

func TestCreateNoteValidation(t *testing.T) {
	ctrl, _, gen, _ := newNotesController(10, []string{"x"})
	ctx := context.Background()

	cases := []struct {
		name             string
		summary, details string
	}{
		{"empty summary", "", "details"},
		{"blank summary", "   ", "details"},
		{"empty details", "summary", ""},
		{"summary too long", strings.Repeat("s", 61), "details"},
		{"details too long", "summary", strings.Repeat("d", 1025)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ctrl.CreateNote(ctx, tc.summary, tc.details)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}
	// fail fast: no generation attempt before validation passes
	assert.Zero(t, gen.calls)
}

func TestCreateNoteQuota(t *testing.T) {
	ctrl, _, _, _ := newNotesController(10, []string{"x"})
	ctx := context.Background()

	ids := map[uuid.UUID]bool{}
	for i := 0; i < 10; i++ {
		note, err := ctrl.CreateNote(ctx, "s", "d")
		require.NoError(t, err)
		ids[note.ID] = true
	}
	assert.Len(t, ids, 10, "identifiers must be distinct")

	_, err := ctrl.CreateNote(ctx, "s", "d")
	var qe *QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 10, qe.Limit)
	assert.Contains(t, qe.Error(), "10")
}

func TestCreateNoteDegradedGeneratorStillPersists(t *testing.T) {
	// the generator is total: a network failure surfaces as a sentinel
	// list, never as an error, and the note is stored regardless
	ctrl, store, _, _ := newNotesController(10, []string{tags.SentinelFetchError})

	note, err := ctrl.CreateNote(context.Background(), "s", "d")
	require.NoError(t, err)
	assert.Equal(t, []string{"ErrorFetchingTags"}, note.TagNames())

	persisted, err := store.GetNote(context.Background(), note.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
}

func TestGetNoteMissing(t *testing.T) {
	ctrl, _, _, _ := newNotesController(10, nil)
	_, err := ctrl.GetNote(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateNoteRequiresAField(t *testing.T) {
	ctrl, _, _, _ := newNotesController(10, []string{"x"})
	_, err := ctrl.UpdateNote(context.Background(), uuid.New(), nil, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestUpdateNoteMissing(t *testing.T) {
	ctrl, _, _, _ := newNotesController(10, []string{"x"})
	summary := "s"
	_, err := ctrl.UpdateNote(context.Background(), uuid.New(), &summary, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateSummaryOnlySkipsGeneration(t *testing.T) {
	ctrl, _, gen, _ := newNotesController(10, []string{"original"})
	ctx := context.Background()

	note, err := ctrl.CreateNote(ctx, "s", "d")
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)

	summary := "new summary"
	updated, err := ctrl.UpdateNote(ctx, note.ID, &summary, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls, "summary-only update must not regenerate tags")
	assert.Equal(t, []string{"original"}, updated.TagNames())
	assert.Equal(t, "new summary", updated.Summary)
	assert.NotNil(t, updated.ModifiedAt)
}

func TestUpdateDetailsRegeneratesTags(t *testing.T) {
	ctrl, _, gen, _ := newNotesController(10, []string{"before"})
	ctx := context.Background()

	note, err := ctrl.CreateNote(ctx, "s", "d")
	require.NoError(t, err)

	gen.result = []string{"after"}
	details := "rewritten details"
	updated, err := ctrl.UpdateNote(ctx, note.ID, nil, &details)
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, []string{"after"}, updated.TagNames())
	assert.Equal(t, "rewritten details", updated.Details)
}

func TestDeleteNotePurgesContainer(t *testing.T) {
	ctrl, store, _, containers := newNotesController(10, []string{"x"})
	ctx := context.Background()

	note, err := ctrl.CreateNote(ctx, "s", "d")
	require.NoError(t, err)
	require.NoError(t, containers.EnsureContainer(ctx, note.ID))

	require.NoError(t, ctrl.DeleteNote(ctx, note.ID))

	got, err := store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []uuid.UUID{note.ID}, containers.purged)
	exists, _ := containers.ContainerExists(ctx, note.ID)
	assert.False(t, exists)
}

func TestDeleteNoteSurvivesPurgeFailure(t *testing.T) {
	ctrl, store, _, containers := newNotesController(10, []string{"x"})
	ctx := context.Background()

	note, err := ctrl.CreateNote(ctx, "s", "d")
	require.NoError(t, err)
	containers.purgeErr = errors.New("object store down")

	// the note row is already gone; a failed purge is logged, not
	// surfaced
	require.NoError(t, ctrl.DeleteNote(ctx, note.ID))
	got, err := store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteNoteMissing(t *testing.T) {
	ctrl, _, _, containers := newNotesController(10, nil)
	err := ctrl.DeleteNote(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, containers.purged, "no purge for a missing note")
}

func TestListTagNamesSorted(t *testing.T) {
	ctrl, _, gen, _ := newNotesController(10, []string{"b", "a"})
	ctx := context.Background()

	_, err := ctrl.CreateNote(ctx, "s1", "d1")
	require.NoError(t, err)
	gen.result = []string{"a", "c"}
	_, err = ctrl.CreateNote(ctx, "s2", "d2")
	require.NoError(t, err)

	names, err := ctrl.ListTagNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)
}
