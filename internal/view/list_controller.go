// Package view holds the client-side controllers between the terminal
// UI and the query cache.
package view

import (
	"context"
	"strings"
	"sync"
	"time"

	"notehub/internal/model"
	"notehub/internal/querycache"
	"notehub/internal/service"
)

// Snapshot is what a list view renders from. On a failed refresh Data
// keeps the previously rendered page instead of blanking the screen;
// Err carries the inline message.
type Snapshot struct {
	Page       int
	Search     string
	Tag        string
	Data       *model.NotesPage
	Err        error
	IsLoading  bool
	IsFetching bool
}

// ListController owns the (page, search, tag) state of a note listing.
// Search input is debounced before it participates in the query key, so
// one request fires per settled input.
type ListController struct {
	mu       sync.Mutex
	svc      *service.NoteService
	debounce *Debouncer

	page        int
	searchInput string
	search      string
	tag         string

	data    *model.NotesPage
	err     error
	fetched bool
}

func NewListController(svc *service.NoteService, tag string, searchDelay time.Duration) *ListController {
	return &ListController{
		svc:      svc,
		debounce: NewDebouncer(searchDelay),
		page:     1,
		tag:      model.NormalizeTagFilter(tag),
	}
}

// Refresh runs the active query and folds the outcome into the
// snapshot. A failure keeps the previous page of notes.
func (c *ListController) Refresh(ctx context.Context) Snapshot {
	c.mu.Lock()
	page, search, tag := c.page, c.search, c.tag
	c.mu.Unlock()

	res, notes := c.svc.List(ctx, page, search, tag)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched = true
	if res.Err != nil {
		c.err = res.Err
	} else {
		c.data = notes
		c.err = nil
	}
	return c.snapshotLocked()
}

// SetSearch records raw input and schedules the query key change for
// when typing settles. The page resets to 1 alongside.
func (c *ListController) SetSearch(ctx context.Context, input string) {
	c.mu.Lock()
	c.searchInput = input
	c.mu.Unlock()
	c.debounce.Do(func() {
		c.mu.Lock()
		c.search = strings.TrimSpace(input)
		c.page = 1
		c.mu.Unlock()
		c.Refresh(ctx)
	})
}

func (c *ListController) SetPage(ctx context.Context, page int) Snapshot {
	c.mu.Lock()
	if page < 1 {
		page = 1
	}
	c.page = page
	c.mu.Unlock()
	return c.Refresh(ctx)
}

func (c *ListController) SetTag(ctx context.Context, tag string) Snapshot {
	c.mu.Lock()
	c.tag = model.NormalizeTagFilter(tag)
	c.page = 1
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Snapshot reports current state without triggering a fetch.
func (c *ListController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops the pending debounced refresh; a controller whose view
// has navigated away must not keep updating.
func (c *ListController) Close() {
	c.debounce.Stop()
}

func (c *ListController) snapshotLocked() Snapshot {
	peek := c.svc.Cache().Peek(querycache.ListKey(c.page, c.search, c.tag))
	return Snapshot{
		Page:       c.page,
		Search:     c.search,
		Tag:        c.tag,
		Data:       c.data,
		Err:        c.err,
		IsLoading:  !c.fetched && c.data == nil,
		IsFetching: peek.IsFetching || peek.Status == querycache.StatusPending,
	}
}
