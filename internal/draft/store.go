// Package draft persists the single in-progress note across process
// restarts. One logical slot, hydrated once at startup; consumers must
// not trust the in-memory value before IsHydrated reports true.
package draft

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"notehub/internal/model"
)

// StorageKey is the fixed name of the persisted slot.
const StorageKey = "note-draft-storage"

const flushDelay = 100 * time.Millisecond

// persistedRecord mirrors the on-disk shape: {"draft": {...}}. Pointer
// fields let hydration fall back to defaults per missing field instead
// of rejecting the whole record.
type persistedRecord struct {
	Draft struct {
		Title   *string `json:"title"`
		Content *string `json:"content"`
		Tag     *string `json:"tag"`
	} `json:"draft"`
}

type Store struct {
	mu       sync.Mutex
	backend  Backend
	draft    model.Draft
	hydrated bool
	once     sync.Once
	timer    *time.Timer
}

func NewStore(backend Backend) *Store {
	if backend == nil {
		backend = noopBackend{}
	}
	return &Store{backend: backend, draft: model.DefaultDraft()}
}

// Hydrate loads the persisted slot into memory. It runs at most once;
// repeat calls are no-ops. Storage failures and corrupt records degrade
// to defaults, they never propagate.
func (s *Store) Hydrate(ctx context.Context) {
	s.once.Do(func() {
		data, found, err := s.backend.Load()
		s.mu.Lock()
		defer s.mu.Unlock()
		s.hydrated = true
		if err != nil {
			logutil.GetLogger(ctx).Warn("draft storage unavailable, using defaults", zap.Error(err))
			return
		}
		if !found {
			return
		}
		var record persistedRecord
		if err := json.Unmarshal(data, &record); err != nil {
			logutil.GetLogger(ctx).Warn("draft record corrupt, using defaults", zap.Error(err))
			return
		}
		if record.Draft.Title != nil {
			s.draft.Title = *record.Draft.Title
		}
		if record.Draft.Content != nil {
			s.draft.Content = *record.Draft.Content
		}
		if record.Draft.Tag != nil && model.ValidTag(*record.Draft.Tag) {
			s.draft.Tag = *record.Draft.Tag
		}
	})
}

// IsHydrated latches true exactly once, after Hydrate has loaded the
// persisted value.
func (s *Store) IsHydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

func (s *Store) Get() model.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

// Set merges the patch into the current draft and schedules a
// write-through. During the pre-hydration window only memory is
// updated, so a freshly started consumer cannot clobber a previously
// persisted draft with defaults.
func (s *Store) Set(patch model.DraftPatch) {
	s.mu.Lock()
	if patch.Title != nil {
		s.draft.Title = *patch.Title
	}
	if patch.Content != nil {
		s.draft.Content = *patch.Content
	}
	if patch.Tag != nil {
		s.draft.Tag = *patch.Tag
	}
	scheduled := s.hydrated
	if scheduled {
		s.scheduleFlushLocked()
	}
	s.mu.Unlock()
}

// Clear resets the draft to its default value and persists the reset
// immediately. Create-success is the only caller; cancelling a form
// deliberately keeps the draft.
func (s *Store) Clear() {
	s.mu.Lock()
	s.draft = model.DefaultDraft()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	hydrated := s.hydrated
	s.mu.Unlock()
	if hydrated {
		s.flushNow()
	}
}

// Flush forces any scheduled write-through to complete now.
func (s *Store) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	hydrated := s.hydrated
	s.mu.Unlock()
	if hydrated {
		s.flushNow()
	}
}

func (s *Store) scheduleFlushLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(flushDelay, s.flushNow)
}

func (s *Store) flushNow() {
	s.mu.Lock()
	record := persistedRecord{}
	title, content, tag := s.draft.Title, s.draft.Content, s.draft.Tag
	record.Draft.Title = &title
	record.Draft.Content = &content
	record.Draft.Tag = &tag
	s.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	// Storage errors degrade to memory-only behavior.
	if err := s.backend.Save(data); err != nil {
		logutil.GetLogger(context.Background()).Debug("draft write-through dropped", zap.Error(err))
	}
}
