package compose

import (
	"context"
	"errors"
	"strings"
	"sync"

	"notehub/internal/draft"
	"notehub/internal/model"
)

type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "idle"
}

var (
	ErrSubmitInProgress   = errors.New("submit already in progress")
	ErrUpdateNotSupported = errors.New("update submission not supported")
	ErrValidationFailed   = errors.New("validation failed")
)

// SubmitFunc performs the create mutation. Exactly one of the two
// continuations fires.
type SubmitFunc func(ctx context.Context, payload model.CreateNotePayload, onSuccess func(*model.Note), onError func(error)) error

// Session is one composition attempt: Idle -> Editing -> Submitting ->
// Succeeded or back to Editing on failure. In create mode every field
// change mirrors into the draft store; edit mode leaves the store
// alone.
type Session struct {
	mu     sync.Mutex
	mode   Mode
	store  *draft.Store
	submit SubmitFunc
	values FormValues
	state  State
	errs   map[string]string
}

func NewSession(mode Mode, initial *FormValues, store *draft.Store, submit SubmitFunc) *Session {
	var d model.Draft
	if mode == ModeCreate && store != nil && store.IsHydrated() {
		d = store.Get()
	} else {
		d = model.DefaultDraft()
	}
	return &Session{
		mode:   mode,
		store:  store,
		submit: submit,
		values: ResolveFieldValues(mode, initial, d),
	}
}

// Reconcile re-resolves field values from the hydrated draft. It only
// applies while the session is still idle: once the user has edited
// anything, their in-form state wins.
func (s *Session) Reconcile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle || s.mode != ModeCreate || s.store == nil || !s.store.IsHydrated() {
		return
	}
	s.values = ResolveFieldValues(s.mode, nil, s.store.Get())
}

func (s *Session) SetTitle(value string) {
	s.setField(model.DraftPatch{Title: &value}, func(v *FormValues) { v.Title = value })
}

func (s *Session) SetContent(value string) {
	s.setField(model.DraftPatch{Content: &value}, func(v *FormValues) { v.Content = value })
}

func (s *Session) SetTag(value string) {
	s.setField(model.DraftPatch{Tag: &value}, func(v *FormValues) { v.Tag = value })
}

func (s *Session) setField(patch model.DraftPatch, apply func(*FormValues)) {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return
	}
	apply(&s.values)
	s.state = StateEditing
	mirror := s.mode == ModeCreate && s.store != nil
	s.mu.Unlock()
	if mirror {
		s.store.Set(patch)
	}
}

func (s *Session) Values() FormValues {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Errors returns the current field error map; the "submit" key carries
// form-level failures.
func (s *Session) Errors() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.errs))
	for k, v := range s.errs {
		out[k] = v
	}
	return out
}

// Cancel backs out of the composition without touching the draft: a
// user who navigates away keeps their work.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return
	}
	s.state = StateIdle
}

// Submit validates and, when clean, runs the create mutation. A
// validation failure populates the field error map and never reaches
// the network. Success clears the draft and invokes onDone; failure
// surfaces a submit-level error and returns the session to Editing so
// the user can retry.
func (s *Session) Submit(ctx context.Context, onDone func(*model.Note)) error {
	s.mu.Lock()
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return ErrSubmitInProgress
	}
	if s.mode == ModeEdit {
		s.mu.Unlock()
		return ErrUpdateNotSupported
	}
	values := s.values
	if errs := Validate(values); errs != nil {
		s.errs = errs
		s.state = StateEditing
		s.mu.Unlock()
		return ErrValidationFailed
	}
	s.errs = nil
	s.state = StateSubmitting
	s.mu.Unlock()

	payload := model.CreateNotePayload{
		Title:   strings.TrimSpace(values.Title),
		Content: strings.TrimSpace(values.Content),
		Tag:     values.Tag,
	}
	return s.submit(ctx, payload,
		func(note *model.Note) {
			s.mu.Lock()
			s.state = StateSucceeded
			s.mu.Unlock()
			if s.store != nil {
				s.store.Clear()
			}
			if onDone != nil {
				onDone(note)
			}
		},
		func(err error) {
			s.mu.Lock()
			s.errs = map[string]string{"submit": "Failed to create note"}
			s.state = StateEditing
			s.mu.Unlock()
		},
	)
}
