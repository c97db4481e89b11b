package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"notehub/internal/model"
	appErr "notehub/internal/pkg/errors"
)

// PerPage matches the public API page size.
const PerPage = 12

// Store is the in-memory note collection backing the dev server.
// Notes are kept newest first, the order the real API lists them in.
type Store struct {
	mu       sync.Mutex
	notes    []model.Note
	maxNotes int
}

func NewStore(maxNotes int) *Store {
	return &Store{maxNotes: maxNotes}
}

func (s *Store) List(page int, search, tag string) *model.NotesPage {
	if page < 1 {
		page = 1
	}
	search = strings.ToLower(strings.TrimSpace(search))
	tag = model.NormalizeTagFilter(tag)

	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]model.Note, 0, len(s.notes))
	for _, note := range s.notes {
		if tag != "" && note.Tag != tag {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(note.Title), search) &&
			!strings.Contains(strings.ToLower(note.Content), search) {
			continue
		}
		matched = append(matched, note)
	}

	totalPages := (len(matched) + PerPage - 1) / PerPage
	if totalPages < 1 {
		totalPages = 1
	}
	start := (page - 1) * PerPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + PerPage
	if end > len(matched) {
		end = len(matched)
	}
	return &model.NotesPage{
		Notes:      append([]model.Note(nil), matched[start:end]...),
		TotalPages: totalPages,
	}
}

func (s *Store) Get(id string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, note := range s.notes {
		if note.ID == id {
			found := note
			return &found, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *Store) Create(payload model.CreateNotePayload) *model.Note {
	now := time.Now().UTC().Format(time.RFC3339)
	note := model.Note{
		ID:        newID(),
		Title:     payload.Title,
		Content:   payload.Content,
		Tag:       payload.Tag,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.notes = append([]model.Note{note}, s.notes...)
	s.mu.Unlock()
	return &note
}

func (s *Store) Delete(id string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, note := range s.notes {
		if note.ID == id {
			deleted := note
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return &deleted, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notes)
}

// Trim drops the oldest notes beyond the configured cap and reports how
// many were removed.
func (s *Store) Trim() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxNotes <= 0 || len(s.notes) <= s.maxNotes {
		return 0
	}
	removed := len(s.notes) - s.maxNotes
	s.notes = s.notes[:s.maxNotes]
	return removed
}

func newID() string {
	buf := make([]byte, 12)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
