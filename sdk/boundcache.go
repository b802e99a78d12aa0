package sdk

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/onesdk/go-sdk/cache"
)

// Artifact is the opaque bound-provider artifact spec.md §4.5 describes: a
// profile AST, a map AST, and a provider service list already resolved into
// something that can perform one use case. This package knows nothing about
// how an Artifact is produced — that is boundprovider's job.
type Artifact interface {
	Perform(ctx context.Context, useCase string, input any) (any, error)
}

// Initializer produces a fresh Artifact for a cache miss.
type Initializer func(ctx context.Context) (Artifact, error)

// BoundCache is the bound-provider cache (component C5's cache half): a
// single-flight layer over an ordinary cache.Cache so concurrent lookups for
// the same key share one in-flight initialization and observe the same
// artifact once it resolves, per spec.md §3 invariant 5. The backing
// cache.Cache is the same LRU+TTL store used as the ambient cache elsewhere
// in this module — this package only adds the single-flight join and the
// "don't cache a failed initialization" behavior.
type BoundCache struct {
	store cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewBoundCache wraps store; every artifact Get stores is cached with ttl.
func NewBoundCache(store cache.Cache, ttl time.Duration) *BoundCache {
	return &BoundCache{store: store, ttl: ttl}
}

// Get returns the artifact cached under key, or calls init to produce one on
// a miss. Concurrent Get calls for the same key share init's single
// in-flight call. A failed init is never cached: the key remains absent so
// the next caller retries.
func (b *BoundCache) Get(ctx context.Context, key string, init Initializer) (Artifact, error) {
	if v, found, err := b.store.Get(ctx, key); err != nil {
		return nil, err
	} else if found {
		return v.(Artifact), nil
	}

	v, err, _ := b.group.Do(key, func() (any, error) {
		if v, found, err := b.store.Get(ctx, key); err == nil && found {
			return v, nil
		}
		artifact, err := init(ctx)
		if err != nil {
			return nil, err
		}
		if err := b.store.Set(ctx, key, artifact, b.ttl); err != nil {
			return nil, err
		}
		return artifact, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Artifact), nil
}

// Invalidate removes key's entry, forcing the next Get to rebind.
func (b *BoundCache) Invalidate(ctx context.Context, key string) error {
	return b.store.Delete(ctx, key)
}

// Stats returns the backing store's cumulative hit/miss/set/delete counters.
// A falling HitRatio over the life of a long-running process is a symptom of
// a provider that keeps failing over and forcing rebinds rather than a
// genuinely cold cache.
func (b *BoundCache) Stats(ctx context.Context) cache.Stats {
	return b.store.Stats(ctx)
}
