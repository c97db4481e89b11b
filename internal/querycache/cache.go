// Package querycache provides read-through caching with mutation
// triggered invalidation over the remote note collection. Repeat reads
// of a resolved key are served from memory, concurrent reads of one key
// share a single network call, and a successful mutation marks every
// list-family entry stale so the next access refetches.
package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusResolved
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusResolved:
		return "resolved"
	case StatusFailed:
		return "failed"
	}
	return "idle"
}

// Fetcher loads the value for a key from the remote boundary.
type Fetcher func(ctx context.Context) (interface{}, error)

// Result is the UI-facing view of one cache slot.
type Result struct {
	Status     Status
	Data       interface{}
	Err        error
	FromCache  bool
	IsFetching bool
}

func (r Result) IsLoading() bool {
	return r.Status == StatusPending
}

type Subscriber func(key Key, result Result)

type entry struct {
	key      Key
	status   Status
	data     interface{}
	err      error
	stale    bool
	fetching bool
}

type Cache struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, *entry]
	flight  singleflight.Group
	subs    map[string]map[int]Subscriber
	nextSub int
}

func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{
		entries: expirable.NewLRU[string, *entry](size, nil, ttl),
		subs:    make(map[string]map[int]Subscriber),
	}
}

// Query returns the cached value for key when it is resolved and not
// stale; otherwise it runs fetcher, with at most one flight per key at
// a time. Every concurrent caller for the same key observes the one
// outcome. A failed fetch resolves to a failed Result, never a panic.
func (c *Cache) Query(ctx context.Context, key Key, fetcher Fetcher) Result {
	id := key.String()

	c.mu.Lock()
	if e, ok := c.entries.Get(id); ok && e.status == StatusResolved && !e.stale {
		res := resultOf(e)
		res.FromCache = true
		c.mu.Unlock()
		return res
	}
	c.markFetching(key, id, true)
	c.mu.Unlock()

	c.notify(key, Result{Status: StatusPending, IsFetching: true})

	value, err, shared := c.flight.Do(id, func() (interface{}, error) {
		// A caller that observed a miss can reach here after the flight
		// it missed on has already resolved. Serve that result instead
		// of issuing a second fetch.
		c.mu.Lock()
		if e, ok := c.entries.Get(id); ok && e.status == StatusResolved && !e.stale {
			data := e.data
			c.mu.Unlock()
			return data, nil
		}
		c.mu.Unlock()
		return fetcher(ctx)
	})

	c.mu.Lock()
	var res Result
	if err != nil {
		e := &entry{key: key, status: StatusFailed, err: err}
		c.entries.Add(id, e)
		res = resultOf(e)
		logutil.GetLogger(ctx).Debug("query failed",
			zap.String("key", id), zap.Bool("shared", shared), zap.Error(err))
	} else {
		e := &entry{key: key, status: StatusResolved, data: value}
		c.entries.Add(id, e)
		res = resultOf(e)
	}
	c.mu.Unlock()

	c.notify(key, res)
	return res
}

// QueryIf behaves like Query when enabled is true; otherwise no fetch
// is issued and the slot reads as idle. Used to skip fetching while a
// required parameter, e.g. a note id, is absent.
func (c *Cache) QueryIf(ctx context.Context, enabled bool, key Key, fetcher Fetcher) Result {
	if !enabled {
		return Result{Status: StatusIdle}
	}
	return c.Query(ctx, key, fetcher)
}

// Prefetch eagerly populates the slot for key so a later Query resolves
// from cache without a loading state. Already-fresh entries are kept.
func (c *Cache) Prefetch(ctx context.Context, key Key, fetcher Fetcher) error {
	id := key.String()
	c.mu.Lock()
	if e, ok := c.entries.Get(id); ok && e.status == StatusResolved && !e.stale {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	res := c.Query(ctx, key, fetcher)
	return res.Err
}

// Seed stores a resolved value directly, bypassing the fetcher. This is
// how externally obtained initial data enters the cache.
func (c *Cache) Seed(key Key, data interface{}) {
	c.mu.Lock()
	c.entries.Add(key.String(), &entry{key: key, status: StatusResolved, data: data})
	c.mu.Unlock()
	c.notify(key, Result{Status: StatusResolved, Data: data})
}

// Peek reports the current state of a slot without triggering a fetch.
// Absent entries read as idle. Stale entries keep their last data so
// callers can render it while a refresh is underway.
func (c *Cache) Peek(key Key) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries.Get(key.String())
	if !ok {
		return Result{Status: StatusIdle}
	}
	return resultOf(e)
}

// Action performs a write against the remote boundary.
type Action func(ctx context.Context) (interface{}, error)

// Mutate runs action and, only on success, marks the whole list family
// stale before invoking the success continuation. A failed mutation
// leaves every cached entry untouched.
func (c *Cache) Mutate(ctx context.Context, action Action, onSuccess func(interface{}), onError func(error)) error {
	value, err := action(ctx)
	if err != nil {
		if onError != nil {
			onError(err)
		}
		return err
	}
	c.InvalidateLists(ctx)
	if onSuccess != nil {
		onSuccess(value)
	}
	return nil
}

// InvalidateLists marks stale every entry whose key kind is the list
// discriminant, regardless of page, search or tag. The data stays in
// place for stale reads; the next Query refetches.
func (c *Cache) InvalidateLists(ctx context.Context) {
	c.mu.Lock()
	count := 0
	for _, id := range c.entries.Keys() {
		e, ok := c.entries.Peek(id)
		if !ok || !e.key.IsList() {
			continue
		}
		e.stale = true
		count++
	}
	c.mu.Unlock()
	if count > 0 {
		logutil.GetLogger(ctx).Debug("list cache invalidated", zap.Int("entries", count))
	}
}

// Invalidate marks one slot stale.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	if e, ok := c.entries.Peek(key.String()); ok {
		e.stale = true
	}
	c.mu.Unlock()
}

// Subscribe registers fn for state transitions of key. The returned
// func removes the subscription; after it runs fn is never called
// again, which is how a navigated-away view stops receiving updates.
func (c *Cache) Subscribe(key Key, fn Subscriber) func() {
	id := key.String()
	c.mu.Lock()
	if c.subs[id] == nil {
		c.subs[id] = make(map[int]Subscriber)
	}
	c.nextSub++
	token := c.nextSub
	c.subs[id][token] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs[id], token)
		c.mu.Unlock()
	}
}

func (c *Cache) markFetching(key Key, id string, fetching bool) {
	if e, ok := c.entries.Peek(id); ok {
		e.fetching = fetching
		return
	}
	c.entries.Add(id, &entry{key: key, status: StatusPending, fetching: fetching})
}

func (c *Cache) notify(key Key, res Result) {
	id := key.String()
	c.mu.Lock()
	fns := make([]Subscriber, 0, len(c.subs[id]))
	for _, fn := range c.subs[id] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(key, res)
	}
}

func resultOf(e *entry) Result {
	return Result{
		Status:     e.status,
		Data:       e.data,
		Err:        e.err,
		IsFetching: e.fetching || e.stale && e.status == StatusResolved,
	}
}
