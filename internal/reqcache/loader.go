// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reqcache

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned by loads on a closed Loader.
var ErrClosed = errors.New("reqcache: loader closed")

// FetchFunc performs the network call for req. force is forwarded so the
// remote side may bypass its own cache too.
type FetchFunc[Req, Resp any] func(ctx context.Context, req Req, force bool) (Resp, error)

// Snapshot is the display state of a Loader.
type Snapshot[Resp any] struct {
	Response    Resp
	HasResponse bool
	Loading     bool
	Error       string
}

// Stats holds cache statistics.
type Stats struct {
	Hits    int
	Misses  int
	Fetches int
	Entries int
}

// HitRate returns hits over lookups, or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// =============================================================================
// LOADER
// =============================================================================

// Loader caches responses by logical request key and tracks the display
// state of one current request. It is safe for concurrent use.
type Loader[Req, Resp any] struct {
	fetch    FetchFunc[Req, Resp]
	fallback string
	logger   *zap.Logger

	mu      sync.Mutex
	entries map[string]Resp
	current *Req
	key     string
	snap    Snapshot[Resp]
	closed  bool

	// generation changes with the key; results from older generations are
	// stored but never displayed.
	generation uint64
	nextID     uint64
	inflight   map[uint64]context.CancelFunc

	subscribers map[uint64]func(Snapshot[Resp])

	hits, misses, fetches int
}

// New creates a Loader around fetch.
func New[Req, Resp any](fetch FetchFunc[Req, Resp]) *Loader[Req, Resp] {
	return &Loader[Req, Resp]{
		fetch:       fetch,
		fallback:    DefaultErrorMessage,
		logger:      zap.NewNop(),
		entries:     make(map[string]Resp),
		inflight:    make(map[uint64]context.CancelFunc),
		subscribers: make(map[uint64]func(Snapshot[Resp])),
	}
}

// WithFallback sets the message shown for failures without their own.
func (l *Loader[Req, Resp]) WithFallback(msg string) *Loader[Req, Resp] {
	l.fallback = msg
	return l
}

// WithLogger sets the logger.
func (l *Loader[Req, Resp]) WithLogger(logger *zap.Logger) *Loader[Req, Resp] {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// SetRequest makes req current. When its logical key differs from the
// previous one, the displayed response and error are cleared, fetches for
// the previous key are canceled, and a non-forced load runs. A nil req
// clears the current request.
func (l *Loader[Req, Resp]) SetRequest(ctx context.Context, req *Req) (Snapshot[Resp], error) {
	var key string
	if req != nil {
		k, err := Key(req)
		if err != nil {
			l.mu.Lock()
			l.snap.Error = l.fallback
			snap := l.snap
			l.mu.Unlock()
			return snap, err
		}
		key = k
	}

	l.mu.Lock()
	if l.closed {
		snap := l.snap
		l.mu.Unlock()
		return snap, ErrClosed
	}

	sameKey := l.current != nil && req != nil && key == l.key
	if req != nil {
		r := *req
		l.current = &r
	} else {
		l.current = nil
	}
	if sameKey {
		snap := l.snap
		l.mu.Unlock()
		return snap, nil
	}

	l.key = key
	l.generation++
	l.cancelInflightLocked()
	l.snap = Snapshot[Resp]{}
	snap := l.snap
	l.mu.Unlock()

	l.notify(snap)

	if req == nil {
		return snap, nil
	}
	return l.Load(ctx, false)
}

// Load resolves the current request. Without force a cached response is
// returned with no fetch; otherwise the fetch runs and, on success,
// overwrites the entry. Failures set Snapshot.Error and leave cached data
// alone; a fetch ended by canceling ctx leaves the error untouched. With no
// current request Load does nothing.
func (l *Loader[Req, Resp]) Load(ctx context.Context, force bool) (Snapshot[Resp], error) {
	l.mu.Lock()
	if l.closed {
		snap := l.snap
		l.mu.Unlock()
		return snap, ErrClosed
	}
	if l.current == nil {
		snap := l.snap
		l.mu.Unlock()
		return snap, nil
	}

	key, req, gen := l.key, *l.current, l.generation

	if !force {
		if resp, ok := l.entries[key]; ok {
			l.hits++
			l.snap.Response = resp
			l.snap.HasResponse = true
			l.snap.Error = ""
			snap := l.snap
			l.mu.Unlock()
			l.notify(snap)
			return snap, nil
		}
		l.misses++
	}

	l.fetches++
	id := l.nextID
	l.nextID++
	fctx, cancel := context.WithCancel(ctx)
	l.inflight[id] = cancel
	l.snap.Loading = true
	l.snap.Error = ""
	snap := l.snap
	l.mu.Unlock()
	l.notify(snap)

	l.logger.Debug("fetching", zap.String("key", key), zap.Bool("force", force))
	resp, err := l.fetch(fctx, req, force)
	aborted := err != nil && fctx.Err() != nil
	cancel()

	l.mu.Lock()
	delete(l.inflight, id)
	if l.closed {
		snap := l.snap
		l.mu.Unlock()
		return snap, ErrClosed
	}
	if err == nil {
		l.entries[key] = resp
	}
	if gen != l.generation {
		// The key changed while this fetch was out.
		snap := l.snap
		l.mu.Unlock()
		if err == nil {
			err = context.Canceled
		}
		return snap, err
	}

	l.snap.Loading = len(l.inflight) > 0
	if aborted {
		// A canceled fetch is not a failure; the display keeps its
		// response and error.
		snap = l.snap
		l.mu.Unlock()
		l.logger.Debug("fetch canceled", zap.String("key", key))
		l.notify(snap)
		return snap, err
	}
	if err != nil {
		l.snap.Error = ErrorMessage(err, l.fallback)
		l.logger.Warn("fetch failed", zap.String("key", key), zap.Error(err))
	} else {
		l.snap.Response = resp
		l.snap.HasResponse = true
		l.snap.Error = ""
	}
	snap = l.snap
	l.mu.Unlock()

	l.notify(snap)
	return snap, err
}

// Refresh forces a fetch for the current request.
func (l *Loader[Req, Resp]) Refresh(ctx context.Context) (Snapshot[Resp], error) {
	return l.Load(ctx, true)
}

// Snapshot returns the current display state.
func (l *Loader[Req, Resp]) Snapshot() Snapshot[Resp] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Current returns a copy of the current request, or nil.
func (l *Loader[Req, Resp]) Current() *Req {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current == nil {
		return nil
	}
	r := *l.current
	return &r
}

// Lookup returns the cached response for req without fetching.
func (l *Loader[Req, Resp]) Lookup(req Req) (Resp, bool) {
	var zero Resp
	key, err := Key(req)
	if err != nil {
		return zero, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	resp, ok := l.entries[key]
	return resp, ok
}

// Subscribe registers fn to receive every snapshot change. The returned
// function removes it. fn must not call back into the Loader synchronously.
func (l *Loader[Req, Resp]) Subscribe(fn func(Snapshot[Resp])) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.subscribers[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subscribers, id)
		l.mu.Unlock()
	}
}

// Stats returns cache statistics.
func (l *Loader[Req, Resp]) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Hits:    l.hits,
		Misses:  l.misses,
		Fetches: l.fetches,
		Entries: len(l.entries),
	}
}

// Close cancels in-flight fetches and drops every entry.
func (l *Loader[Req, Resp]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.cancelInflightLocked()
	l.entries = make(map[string]Resp)
	l.subscribers = make(map[uint64]func(Snapshot[Resp]))
	l.current = nil
}

func (l *Loader[Req, Resp]) cancelInflightLocked() {
	for id, cancel := range l.inflight {
		cancel()
		delete(l.inflight, id)
	}
}

func (l *Loader[Req, Resp]) notify(snap Snapshot[Resp]) {
	l.mu.Lock()
	subs := make([]func(Snapshot[Resp]), 0, len(l.subscribers))
	for _, fn := range l.subscribers {
		subs = append(subs, fn)
	}
	l.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
