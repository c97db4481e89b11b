package view

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"notehub/internal/api"
	"notehub/internal/devserver"
	"notehub/internal/model"
	"notehub/internal/pkg/jwt"
	"notehub/internal/querycache"
	"notehub/internal/service"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls int32
	for i := 0; i < 5; i++ {
		d.Do(func() { atomic.AddInt32(&calls, 1) })
	}
	time.Sleep(100 * time.Millisecond)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls), "a burst settles into one call")
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls int32
	d.Do(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()
	time.Sleep(100 * time.Millisecond)
	require.EqualValues(t, 0, atomic.LoadInt32(&calls))
}

type testBackend struct {
	svc      *service.NoteService
	server   *httptest.Server
	requests int32
}

func (b *testBackend) requestCount() int32 {
	return atomic.LoadInt32(&b.requests)
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()
	gin.SetMode(gin.TestMode)
	secret := []byte("dev-secret")
	store := devserver.NewStore(0)
	router := devserver.NewRouter(devserver.RouterDeps{
		Notes:     devserver.NewNotesHandler(store),
		JWTSecret: secret,
	})

	backend := &testBackend{}
	backend.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&backend.requests, 1)
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(backend.server.Close)

	token, err := jwt.GenerateToken("dev@example.com", secret, time.Hour)
	require.NoError(t, err)
	client := api.NewClient(backend.server.URL, token, backend.server.Client())
	backend.svc = service.NewNoteService(client, querycache.New(0, 0))
	return backend
}

func createNote(t *testing.T, svc *service.NoteService, title, content, tag string) {
	t.Helper()
	err := svc.Create(context.Background(), model.CreateNotePayload{
		Title: title, Content: content, Tag: tag,
	}, nil, nil)
	require.NoError(t, err)
}

func TestControllerRefresh(t *testing.T) {
	backend := newTestBackend(t)
	createNote(t, backend.svc, "First note", "body", model.TagTodo)

	c := NewListController(backend.svc, "", 0)
	defer c.Close()

	require.True(t, c.Snapshot().IsLoading, "nothing fetched yet")

	snap := c.Refresh(context.Background())
	require.NoError(t, snap.Err)
	require.False(t, snap.IsLoading)
	require.Len(t, snap.Data.Notes, 1)
	require.Equal(t, 1, snap.Page)
}

func TestControllerDebouncedSearch(t *testing.T) {
	backend := newTestBackend(t)
	createNote(t, backend.svc, "Buy milk", "two liters", model.TagShopping)
	createNote(t, backend.svc, "Standup", "notes", model.TagWork)

	c := NewListController(backend.svc, "", 30*time.Millisecond)
	defer c.Close()
	c.Refresh(context.Background())
	before := backend.requestCount()

	// A typing burst settles into a single query with the final input.
	ctx := context.Background()
	c.SetSearch(ctx, "m")
	c.SetSearch(ctx, "mi")
	c.SetSearch(ctx, " milk ")
	time.Sleep(150 * time.Millisecond)

	require.EqualValues(t, 1, backend.requestCount()-before, "one request per settled input")
	snap := c.Snapshot()
	require.Equal(t, "milk", snap.Search, "settled input is trimmed")
	require.Equal(t, 1, snap.Page)
	require.Len(t, snap.Data.Notes, 1)
	require.Equal(t, "Buy milk", snap.Data.Notes[0].Title)
}

func TestControllerKeepsDataOnFailedRefresh(t *testing.T) {
	backend := newTestBackend(t)
	createNote(t, backend.svc, "Survivor", "body", model.TagTodo)

	c := NewListController(backend.svc, "", 0)
	defer c.Close()
	snap := c.Refresh(context.Background())
	require.Len(t, snap.Data.Notes, 1)

	// Force a refetch, then take the backend away.
	backend.svc.Cache().InvalidateLists(context.Background())
	backend.server.Close()

	snap = c.Refresh(context.Background())
	require.Error(t, snap.Err)
	require.NotNil(t, snap.Data, "previous page survives a failed refresh")
	require.Equal(t, "Survivor", snap.Data.Notes[0].Title)
}

func TestControllerTagChangeResetsPage(t *testing.T) {
	backend := newTestBackend(t)
	for i := 0; i < devserver.PerPage+1; i++ {
		createNote(t, backend.svc, "Padded title", "body", model.TagTodo)
	}

	c := NewListController(backend.svc, "", 0)
	defer c.Close()
	c.Refresh(context.Background())

	snap := c.SetPage(context.Background(), 2)
	require.Equal(t, 2, snap.Page)
	require.Len(t, snap.Data.Notes, 1)

	snap = c.SetTag(context.Background(), model.TagAll)
	require.Equal(t, 1, snap.Page, "filter change jumps back to page one")
	require.Equal(t, "", snap.Tag)
	require.Len(t, snap.Data.Notes, devserver.PerPage)
}
