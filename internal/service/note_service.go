package service

import (
	"context"
	"strings"

	"notehub/internal/api"
	"notehub/internal/compose"
	"notehub/internal/model"
	"notehub/internal/querycache"
)

// NoteService routes every read and write of notes through the query
// cache so views share slots and mutations invalidate them.
type NoteService struct {
	client *api.Client
	cache  *querycache.Cache
}

func NewNoteService(client *api.Client, cache *querycache.Cache) *NoteService {
	return &NoteService{client: client, cache: cache}
}

func (s *NoteService) Cache() *querycache.Cache {
	return s.cache
}

// List reads one page of notes through the cache.
func (s *NoteService) List(ctx context.Context, page int, search, tag string) (querycache.Result, *model.NotesPage) {
	key := querycache.ListKey(page, search, tag)
	res := s.cache.Query(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.client.FetchNotes(ctx, page, search, tag)
	})
	notes, _ := res.Data.(*model.NotesPage)
	return res, notes
}

// Get reads a single note. An empty id disables the query entirely and
// reads as idle instead of firing a doomed request.
func (s *NoteService) Get(ctx context.Context, id string) (querycache.Result, *model.Note) {
	enabled := strings.TrimSpace(id) != ""
	res := s.cache.QueryIf(ctx, enabled, querycache.NoteKey(id), func(ctx context.Context) (interface{}, error) {
		return s.client.FetchNoteByID(ctx, id)
	})
	note, _ := res.Data.(*model.Note)
	return res, note
}

// PrefetchFirstPage seeds the cache with page 1 of the given tag filter
// before any view asks for it, so the first render has no loading
// state.
func (s *NoteService) PrefetchFirstPage(ctx context.Context, tag string) error {
	key := querycache.ListKey(1, "", tag)
	return s.cache.Prefetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.client.FetchNotes(ctx, 1, "", tag)
	})
}

// Create performs the create mutation. On success the list family is
// invalidated before onSuccess runs; on failure the cache is left
// untouched.
func (s *NoteService) Create(ctx context.Context, payload model.CreateNotePayload, onSuccess func(*model.Note), onError func(error)) error {
	return s.cache.Mutate(ctx,
		func(ctx context.Context) (interface{}, error) {
			return s.client.CreateNote(ctx, payload)
		},
		func(value interface{}) {
			note, _ := value.(*model.Note)
			if onSuccess != nil {
				onSuccess(note)
			}
		},
		onError,
	)
}

// Delete removes a note. Besides the list family, the note's own detail
// slot is invalidated so the next detail access refetches and observes
// not-found.
func (s *NoteService) Delete(ctx context.Context, id string, onSuccess func(*model.Note), onError func(error)) error {
	return s.cache.Mutate(ctx,
		func(ctx context.Context) (interface{}, error) {
			return s.client.DeleteNote(ctx, id)
		},
		func(value interface{}) {
			s.cache.Invalidate(querycache.NoteKey(id))
			note, _ := value.(*model.Note)
			if onSuccess != nil {
				onSuccess(note)
			}
		},
		onError,
	)
}

// SubmitFunc adapts Create to the composition session.
func (s *NoteService) SubmitFunc() compose.SubmitFunc {
	return func(ctx context.Context, payload model.CreateNotePayload, onSuccess func(*model.Note), onError func(error)) error {
		return s.Create(ctx, payload, onSuccess, onError)
	}
}
