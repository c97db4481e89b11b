package compose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"notehub/internal/draft"
	"notehub/internal/model"
)

func newTestStore(t *testing.T) *draft.Store {
	t.Helper()
	store := draft.NewStore(&draft.MemoryBackend{})
	store.Hydrate(context.Background())
	return store
}

func acceptingSubmit(created **model.CreateNotePayload) SubmitFunc {
	return func(ctx context.Context, payload model.CreateNotePayload, onSuccess func(*model.Note), onError func(error)) error {
		if created != nil {
			p := payload
			*created = &p
		}
		onSuccess(&model.Note{ID: "1", Title: payload.Title, Content: payload.Content, Tag: payload.Tag})
		return nil
	}
}

func TestSessionEditsMirrorIntoDraft(t *testing.T) {
	store := newTestStore(t)
	session := NewSession(ModeCreate, nil, store, acceptingSubmit(nil))

	session.SetTitle("Groceries")
	session.SetContent("Milk, eggs")
	session.SetTag(model.TagShopping)

	require.Equal(t, StateEditing, session.State())
	d := store.Get()
	require.Equal(t, "Groceries", d.Title)
	require.Equal(t, "Milk, eggs", d.Content)
	require.Equal(t, model.TagShopping, d.Tag)
}

func TestSessionResolvesHydratedDraft(t *testing.T) {
	backend := &draft.MemoryBackend{}
	require.NoError(t, backend.Save([]byte(`{"draft":{"title":"Groceries","content":"Milk","tag":"Shopping"}}`)))
	store := draft.NewStore(backend)
	store.Hydrate(context.Background())

	session := NewSession(ModeCreate, nil, store, acceptingSubmit(nil))
	values := session.Values()
	require.Equal(t, "Groceries", values.Title)
	require.Equal(t, model.TagShopping, values.Tag)
}

func TestSubmitSuccessClearsDraft(t *testing.T) {
	store := newTestStore(t)
	var created *model.CreateNotePayload
	session := NewSession(ModeCreate, nil, store, acceptingSubmit(&created))

	session.SetTitle("Groceries")
	session.SetContent("Milk, eggs")
	session.SetTag(model.TagShopping)

	var done *model.Note
	require.NoError(t, session.Submit(context.Background(), func(note *model.Note) { done = note }))

	require.Equal(t, StateSucceeded, session.State())
	require.NotNil(t, done)
	require.NotNil(t, created)
	require.Equal(t, "Groceries", created.Title)
	require.Equal(t, model.DefaultDraft(), store.Get(), "successful create must reset the draft")
}

func TestSubmitValidationNeverReachesNetwork(t *testing.T) {
	store := newTestStore(t)
	session := NewSession(ModeCreate, nil, store, func(ctx context.Context, payload model.CreateNotePayload, onSuccess func(*model.Note), onError func(error)) error {
		t.Fatal("submit must not run with invalid values")
		return nil
	})

	session.SetTitle("ab")
	session.SetContent(strings.Repeat("x", 501))
	err := session.Submit(context.Background(), nil)
	require.ErrorIs(t, err, ErrValidationFailed)
	require.Equal(t, StateEditing, session.State())
	require.NotEmpty(t, session.Errors()["title"])
	require.NotEmpty(t, session.Errors()["content"], "violations are reported together")
}

func TestSubmitFailureReturnsToEditing(t *testing.T) {
	store := newTestStore(t)
	boom := errors.New("api down")
	session := NewSession(ModeCreate, nil, store, func(ctx context.Context, payload model.CreateNotePayload, onSuccess func(*model.Note), onError func(error)) error {
		onError(boom)
		return boom
	})

	session.SetTitle("Groceries")
	session.SetTag(model.TagShopping)
	err := session.Submit(context.Background(), nil)
	require.ErrorIs(t, err, boom)

	require.Equal(t, StateEditing, session.State())
	require.Equal(t, "Failed to create note", session.Errors()["submit"])
	require.Equal(t, "Groceries", store.Get().Title, "failed submit keeps the draft")
}

func TestResubmissionBlockedWhileSubmitting(t *testing.T) {
	store := newTestStore(t)
	var session *Session
	session = NewSession(ModeCreate, nil, store, func(ctx context.Context, payload model.CreateNotePayload, onSuccess func(*model.Note), onError func(error)) error {
		// Re-entrant submit while the first is still in flight.
		require.ErrorIs(t, session.Submit(ctx, nil), ErrSubmitInProgress)
		onSuccess(&model.Note{ID: "1"})
		return nil
	})
	session.SetTitle("Groceries")
	session.SetTag(model.TagShopping)
	require.NoError(t, session.Submit(context.Background(), nil))
}

func TestCancelKeepsDraft(t *testing.T) {
	store := newTestStore(t)
	session := NewSession(ModeCreate, nil, store, acceptingSubmit(nil))
	session.SetTitle("Groceries")
	session.SetContent("Milk, eggs")

	session.Cancel()

	d := store.Get()
	require.Equal(t, "Groceries", d.Title)
	require.Equal(t, "Milk, eggs", d.Content)

	reopened := NewSession(ModeCreate, nil, store, acceptingSubmit(nil))
	require.Equal(t, "Groceries", reopened.Values().Title)
}

func TestEditModeIgnoresDraftStore(t *testing.T) {
	store := newTestStore(t)
	initial := &FormValues{Title: "Server Title", Content: "server body", Tag: model.TagMeeting}
	session := NewSession(ModeEdit, initial, store, acceptingSubmit(nil))

	require.Equal(t, *initial, session.Values())

	session.SetTitle("Edited Title")
	require.Equal(t, model.DefaultDraft(), store.Get(), "edit mode must not write the draft")

	require.ErrorIs(t, session.Submit(context.Background(), nil), ErrUpdateNotSupported)
}

func TestReconcileAppliesHydratedDraftWhileIdle(t *testing.T) {
	backend := &draft.MemoryBackend{}
	require.NoError(t, backend.Save([]byte(`{"draft":{"title":"saved","content":"","tag":"Work"}}`)))
	store := draft.NewStore(backend)

	// Session opens before hydration; it shows defaults.
	session := NewSession(ModeCreate, nil, store, acceptingSubmit(nil))
	require.Equal(t, "", session.Values().Title)

	store.Hydrate(context.Background())
	session.Reconcile()
	require.Equal(t, "saved", session.Values().Title)

	// After the user edits, reconcile must not stomp their input.
	session.SetTitle("typed")
	session.Reconcile()
	require.Equal(t, "typed", session.Values().Title)
}
