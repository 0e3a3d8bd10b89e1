package cachemanager

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/usekona/kona/internal/log"
)

// Outcome is what a read-through cache stores: the produced value or the
// error the producer failed with.
type Outcome[V any] struct {
	Value V
	Err   error
}

// ReadThroughOptions configures a ReadThroughCache.
type ReadThroughOptions struct {
	TTL time.Duration
	// CacheErrors stores failed outcomes so later reads return the same
	// error without calling the producer again.
	CacheErrors bool
	// SkipCache calls the producer on every read.
	SkipCache bool
}

// ReadThroughCache fills a CacheManager from a producer on miss. Concurrent
// misses for one key share a single producer call.
type ReadThroughCache[K ~string, V any] struct {
	cache CacheManager[K, Outcome[V]]
	group singleflight.Group
	opts  ReadThroughOptions
}

func NewReadThroughCache[K ~string, V any](cache CacheManager[K, Outcome[V]], opts ReadThroughOptions) *ReadThroughCache[K, V] {
	return &ReadThroughCache[K, V]{cache: cache, opts: opts}
}

// Get returns the cached outcome for key, producing it with fn on a miss.
// Cancelling ctx stops the wait; the producer runs to completion and its
// outcome is still stored.
func (r *ReadThroughCache[K, V]) Get(ctx context.Context, key K, fn func(ctx context.Context) (V, error)) (V, error) {
	if r.opts.SkipCache {
		return fn(ctx)
	}
	if o, ok := r.cache.Get(ctx, key); ok {
		return o.Value, o.Err
	}

	produceCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(string(key), func() (any, error) {
		if o, ok := r.cache.Get(produceCtx, key); ok {
			return o, nil
		}
		o := produce(produceCtx, fn)
		if o.Err == nil || r.opts.CacheErrors {
			r.cache.Set(produceCtx, key, o, r.opts.TTL)
		}
		if o.Err != nil {
			log.Debug(log.CatCache, "producer failed", "key", key, "error", o.Err)
		}
		return o, nil
	})

	select {
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	case res := <-ch:
		o := res.Val.(Outcome[V])
		return o.Value, o.Err
	}
}

func produce[V any](ctx context.Context, fn func(ctx context.Context) (V, error)) (o Outcome[V]) {
	defer func() {
		if p := recover(); p != nil {
			o = Outcome[V]{Err: fmt.Errorf("producer panicked: %v", p)}
		}
	}()
	v, err := fn(ctx)
	return Outcome[V]{Value: v, Err: err}
}
