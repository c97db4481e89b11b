package draft

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"notehub/internal/model"
)

func strPtr(s string) *string {
	return &s
}

func TestDraftSurvivesReload(t *testing.T) {
	backend := &MemoryBackend{}

	store := NewStore(backend)
	store.Hydrate(context.Background())
	store.Set(model.DraftPatch{Title: strPtr("X")})
	store.Flush()

	// Simulate a reload: fresh store, same durable slot.
	reloaded := NewStore(backend)
	require.False(t, reloaded.IsHydrated())
	reloaded.Hydrate(context.Background())
	require.True(t, reloaded.IsHydrated())
	require.Equal(t, "X", reloaded.Get().Title)
	require.Equal(t, model.TagTodo, reloaded.Get().Tag)
}

func TestHydrateRunsOnce(t *testing.T) {
	backend := &MemoryBackend{}
	require.NoError(t, backend.Save([]byte(`{"draft":{"title":"saved","content":"c","tag":"Work"}}`)))

	store := NewStore(backend)
	require.False(t, store.IsHydrated())
	store.Hydrate(context.Background())
	require.True(t, store.IsHydrated())
	require.Equal(t, "saved", store.Get().Title)

	store.Set(model.DraftPatch{Title: strPtr("edited")})
	store.Hydrate(context.Background())
	require.Equal(t, "edited", store.Get().Title, "repeat hydration must not reload")
}

func TestCorruptRecordFallsBackToDefaults(t *testing.T) {
	backend := &MemoryBackend{}
	require.NoError(t, backend.Save([]byte(`{not json`)))

	store := NewStore(backend)
	store.Hydrate(context.Background())
	require.Equal(t, model.DefaultDraft(), store.Get())
}

func TestMissingFieldsFallBackPerField(t *testing.T) {
	backend := &MemoryBackend{}
	require.NoError(t, backend.Save([]byte(`{"draft":{"title":"T","tag":"NotATag"}}`)))

	store := NewStore(backend)
	store.Hydrate(context.Background())
	d := store.Get()
	require.Equal(t, "T", d.Title)
	require.Equal(t, "", d.Content)
	require.Equal(t, model.TagTodo, d.Tag, "unknown tag falls back to default")
}

func TestPreHydrationWritesDoNotClobberStorage(t *testing.T) {
	backend := &MemoryBackend{}
	require.NoError(t, backend.Save([]byte(`{"draft":{"title":"saved","content":"","tag":"Todo"}}`)))

	store := NewStore(backend)
	store.Set(model.DraftPatch{Title: strPtr("typed too early")})
	store.Flush()

	data, found, err := backend.Load()
	require.NoError(t, err)
	require.True(t, found)
	require.Contains(t, string(data), "saved", "pre-hydration write must not reach storage")

	store.Hydrate(context.Background())
	require.Equal(t, "saved", store.Get().Title)
}

func TestClearResetsAndPersists(t *testing.T) {
	backend := &MemoryBackend{}
	store := NewStore(backend)
	store.Hydrate(context.Background())
	store.Set(model.DraftPatch{Title: strPtr("Groceries"), Content: strPtr("Milk, eggs"), Tag: strPtr(model.TagShopping)})
	store.Flush()

	store.Clear()
	require.Equal(t, model.DefaultDraft(), store.Get())

	reloaded := NewStore(backend)
	reloaded.Hydrate(context.Background())
	require.Equal(t, model.DefaultDraft(), reloaded.Get())
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "note-draft-storage.json")
	backend := NewFileBackend(path)

	_, found, err := backend.Load()
	require.NoError(t, err)
	require.False(t, found, "first run reads absent")

	store := NewStore(backend)
	store.Hydrate(context.Background())
	store.Set(model.DraftPatch{Title: strPtr("on disk")})
	store.Flush()

	reloaded := NewStore(NewFileBackend(path))
	reloaded.Hydrate(context.Background())
	require.Equal(t, "on disk", reloaded.Get().Title)
}

func TestNoDurableStorageIsSilentNoop(t *testing.T) {
	store := NewStore(NewFileBackend(""))
	store.Hydrate(context.Background())
	store.Set(model.DraftPatch{Title: strPtr("memory only")})
	store.Flush()
	store.Clear()
	require.Equal(t, model.DefaultDraft(), store.Get())
}
