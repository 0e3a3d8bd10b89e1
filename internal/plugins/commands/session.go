package commands

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/usekona/kona/internal/document"
	"github.com/usekona/kona/internal/pubsub"
)

// DefaultDebounce is how long a session waits after a filter change before
// resolving.
const DefaultDebounce = 150 * time.Millisecond

// SessionOptions configures a Session.
type SessionOptions struct {
	Root   []Command
	Editor *document.Editor
	// Debounce delays resolution after a filter change. Zero uses
	// DefaultDebounce; path changes always resolve immediately.
	Debounce time.Duration
}

// Session drives one resolver for the lifetime of an open menu. Input is
// debounced and the resolver's state is published through a store.
type Session struct {
	opts     SessionOptions
	resolver *Resolver
	store    *pubsub.Store[State]
	ctx      context.Context
	cancel   context.CancelFunc

	mu      sync.Mutex
	timer   *time.Timer
	started bool
	path    string
	filter  string
}

// NewSession starts a session with a fresh resolver.
func NewSession(ctx context.Context, opts SessionOptions) *Session {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		opts:     opts,
		resolver: NewResolver(),
		store:    pubsub.NewStore(State{}),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// State returns the latest published state.
func (s *Session) State() State { return s.store.Get() }

// Subscribe receives every state the session publishes.
func (s *Session) Subscribe(ctx context.Context) <-chan pubsub.Event[State] {
	return s.store.Subscribe(ctx)
}

// Input schedules a resolution of path and filter, replacing any pending
// one. Entering a new path clears the visible commands; a new filter keeps
// them while loading.
func (s *Session) Input(path []PathEntry, filter string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	key := pathKey(path)
	switch {
	case !s.started || key != s.path:
		s.store.Set(State{IsLoading: true})
	case filter != s.filter:
		s.store.Update(func(st State) State {
			st.IsLoading, st.IsError = true, false
			return st
		})
	}
	s.started, s.path, s.filter = true, key, filter

	var delay time.Duration
	if filter != "" {
		delay = s.opts.Debounce
	}
	path = slices.Clone(path)
	s.timer = time.AfterFunc(delay, func() { s.fire(path, filter) })
}

func (s *Session) fire(path []PathEntry, filter string) {
	req := s.resolver.Resolve(s.ctx, Params{
		Root:   s.opts.Root,
		Filter: filter,
		Path:   path,
		Editor: s.opts.Editor,
	})
	select {
	case st, ok := <-req.Done:
		if !ok {
			return
		}
		// A superseded request settles with whatever the newer one left
		// behind, so it must not publish.
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.ctx.Err() == nil && s.resolver.Current(req.Generation) {
			s.store.Set(st)
		}
	case <-s.ctx.Done():
	}
}

// Close stops pending work and ends subscriptions.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.cancel()
	s.store.Close()
}
