package commands

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/usekona/kona/internal/cachemanager"
	"github.com/usekona/kona/internal/log"
	"github.com/usekona/kona/internal/tracing"
)

// maxSearchDepth bounds the search walk. Dynamic submenus may return
// themselves.
const maxSearchDepth = 8

// Resolver computes the visible commands for a path and filter.
//
// Child fetches are memoized per (query, path) for the resolver's lifetime,
// failures included, so create one resolver per menu session. Each Resolve
// supersedes the previous one: a request that settles after a newer request
// started leaves the state alone.
type Resolver struct {
	memo *cachemanager.ReadThroughCache[string, []Command]

	mu         sync.Mutex
	generation uint64
	state      State
}

// NewResolver creates a resolver with an empty memo.
func NewResolver() *Resolver {
	cache := cachemanager.NewInMemoryCacheManager[string, cachemanager.Outcome[[]Command]](
		"commands", cachemanager.NoExpiration, 0,
	)
	return &Resolver{
		memo: cachemanager.NewReadThroughCache(cache, cachemanager.ReadThroughOptions{
			TTL:         cachemanager.NoExpiration,
			CacheErrors: true,
		}),
	}
}

// Current reports whether gen belongs to the latest Resolve call.
func (r *Resolver) Current(gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return gen == r.generation
}

// State returns the last committed state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Resolve starts resolving p. The state switches to loading immediately.
// Cancelling ctx stops the wait for child fetches but not the fetches.
func (r *Resolver) Resolve(ctx context.Context, p Params) Request {
	r.mu.Lock()
	r.generation++
	gen := r.generation
	r.state = State{IsLoading: true}
	started := r.state
	r.mu.Unlock()

	done := make(chan State, 1)
	go func() {
		defer close(done)
		done <- r.run(ctx, gen, p)
	}()
	return Request{Generation: gen, State: started, Done: done}
}

func (r *Resolver) run(ctx context.Context, gen uint64, p Params) State {
	ctx, span := tracing.Start(ctx, tracing.SpanResolve,
		attribute.String(tracing.AttrQuery, p.Filter),
		attribute.String(tracing.AttrPath, pathKey(p.Path)),
		attribute.Int64(tracing.AttrGeneration, int64(gen)),
	)
	cmds, err := r.resolve(ctx, p)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.generation {
		span.AddEvent(tracing.EventSuperseded)
		span.SetAttributes(attribute.Bool(tracing.AttrStale, true))
		tracing.End(span, nil)
		log.Debug(log.CatCommands, "discarding superseded resolution", "generation", gen, "current", r.generation)
		return r.state
	}

	switch {
	case err == nil:
		r.state = State{Commands: cmds}
	case ctx.Err() != nil:
		r.state = State{}
	default:
		log.ErrorErr(log.CatCommands, "command resolution failed", err, "filter", p.Filter, "path", pathKey(p.Path))
		r.state = State{IsError: true}
	}
	span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(r.state.Commands)))
	tracing.End(span, err)
	return r.state
}

func (r *Resolver) resolve(ctx context.Context, p Params) ([]ResolvedCommand, error) {
	level, path, ok, err := r.browse(ctx, p)
	if err != nil {
		return nil, err
	}
	out := []ResolvedCommand{}
	if !ok {
		return out, nil
	}
	if p.Filter == "" {
		for _, c := range level {
			out = append(out, resolved(c, path))
		}
		return out, nil
	}
	if err := r.search(ctx, p, level, path, 0, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// browse walks p.Path from the root and returns the commands of the last
// step. The last step is fetched with the filter as its query so dynamic
// submenus can narrow their own results. ok is false when a step names no
// submenu at its level.
func (r *Resolver) browse(ctx context.Context, p Params) (level []Command, path []PathEntry, ok bool, err error) {
	level = p.Root
	for i, step := range p.Path {
		j := slices.IndexFunc(level, func(c Command) bool { return c.Name == step.Name })
		if j < 0 || !level[j].IsSubmenu() {
			return nil, nil, false, nil
		}
		cmd := level[j]
		path = appendPath(path, cmd.PathEntry())
		query := ""
		if i == len(p.Path)-1 {
			query = p.Filter
		}
		if level, err = r.children(ctx, p, cmd, path, query); err != nil {
			return nil, nil, false, err
		}
	}
	return level, path, true, nil
}

// search walks level depth first. Matching submenus are listed before their
// children; leaves are listed when they can run and match.
func (r *Resolver) search(ctx context.Context, p Params, level []Command, parent []PathEntry, depth int, out *[]ResolvedCommand) error {
	for _, cmd := range level {
		if !cmd.IsSubmenu() {
			if cmd.Action != nil && matches(cmd, p.Filter) {
				*out = append(*out, resolved(cmd, parent))
			}
			continue
		}
		if matches(cmd, p.Filter) {
			*out = append(*out, resolved(cmd, parent))
		}
		if depth >= maxSearchDepth {
			continue
		}
		path := appendPath(parent, cmd.PathEntry())
		children, err := r.children(ctx, p, cmd, path, p.Filter)
		if err != nil {
			return err
		}
		if err := r.search(ctx, p, children, path, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}

// children fetches the commands of a submenu through the memo.
func (r *Resolver) children(ctx context.Context, p Params, cmd Command, path []PathEntry, query string) ([]Command, error) {
	key := query + "::" + pathKey(path)
	ctx, span := tracing.Start(ctx, tracing.SpanFetch,
		attribute.String(tracing.AttrQuery, query),
		attribute.String(tracing.AttrPath, pathKey(path)),
	)
	cmds, err := r.memo.Get(ctx, key, func(ctx context.Context) ([]Command, error) {
		log.Debug(log.CatCommands, "fetching submenu", "key", key)
		out, err := cmd.GetCommands(ctx, GetCommandsContext{
			Query:  query,
			Editor: p.Editor,
			Path:   slices.Clone(path),
			Parent: cmd,
		})
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = []Command{}
		}
		return out, nil
	})
	span.SetAttributes(attribute.Int(tracing.AttrResultCount, len(cmds)))
	tracing.End(span, err)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", key, err)
	}
	return cmds, nil
}
