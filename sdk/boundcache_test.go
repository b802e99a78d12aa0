package sdk

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/onesdk/go-sdk/cache"
)

// fakeCache is a minimal in-memory cache.Cache for testing BoundCache
// without pulling in a real backend.
type fakeCache struct {
	mu    sync.Mutex
	items map[string]any
}

func newFakeCache() *fakeCache { return &fakeCache{items: make(map[string]any)} }

func (c *fakeCache) Get(_ context.Context, key string) (any, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *fakeCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]any)
	return nil
}

func (c *fakeCache) Stats(_ context.Context) cache.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cache.Stats{Sets: int64(len(c.items))}
}

var _ cache.Cache = (*fakeCache)(nil)

type fakeArtifact struct{ id int }

func (fakeArtifact) Perform(context.Context, string, any) (any, error) { return "ok", nil }

func TestBoundCache_MissCallsInitializer(t *testing.T) {
	bc := NewBoundCache(newFakeCache(), time.Minute)
	var calls int32
	artifact, err := bc.Get(context.Background(), "k1", func(context.Context) (Artifact, error) {
		atomic.AddInt32(&calls, 1)
		return fakeArtifact{id: 1}, nil
	})
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if artifact.(fakeArtifact).id != 1 {
		t.Errorf("artifact = %+v, want id 1", artifact)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBoundCache_HitSkipsInitializer(t *testing.T) {
	bc := NewBoundCache(newFakeCache(), time.Minute)
	init := func(context.Context) (Artifact, error) { return fakeArtifact{id: 1}, nil }

	if _, err := bc.Get(context.Background(), "k1", init); err != nil {
		t.Fatal(err)
	}

	var calls int32
	_, err := bc.Get(context.Background(), "k1", func(context.Context) (Artifact, error) {
		atomic.AddInt32(&calls, 1)
		return fakeArtifact{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0 (cached)", calls)
	}
}

func TestBoundCache_ConcurrentMissesShareOneInitializer(t *testing.T) {
	bc := NewBoundCache(newFakeCache(), time.Minute)
	var calls int32
	start := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]Artifact, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			a, err := bc.Get(context.Background(), "shared", func(context.Context) (Artifact, error) {
				atomic.AddInt32(&calls, 1)
				time.Sleep(5 * time.Millisecond)
				return fakeArtifact{id: 99}, nil
			})
			if err != nil {
				t.Errorf("Get() error = %v", err)
				return
			}
			results[idx] = a
		}(i)
	}
	close(start)
	wg.Wait()

	if calls != 1 {
		t.Errorf("initializer called %d times, want 1", calls)
	}
	for _, a := range results {
		if a.(fakeArtifact).id != 99 {
			t.Errorf("got artifact %+v, want shared id 99", a)
		}
	}
}

func TestBoundCache_FailedInitializerIsNotCached(t *testing.T) {
	bc := NewBoundCache(newFakeCache(), time.Minute)
	boom := errors.New("bind failed")

	_, err := bc.Get(context.Background(), "k1", func(context.Context) (Artifact, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Get() error = %v, want %v", err, boom)
	}

	artifact, err := bc.Get(context.Background(), "k1", func(context.Context) (Artifact, error) {
		return fakeArtifact{id: 2}, nil
	})
	if err != nil {
		t.Fatalf("retry Get() error = %v", err)
	}
	if artifact.(fakeArtifact).id != 2 {
		t.Errorf("artifact = %+v, want id 2", artifact)
	}
}

func TestBoundCache_Invalidate(t *testing.T) {
	bc := NewBoundCache(newFakeCache(), time.Minute)
	init := func(context.Context) (Artifact, error) { return fakeArtifact{id: 1}, nil }
	if _, err := bc.Get(context.Background(), "k1", init); err != nil {
		t.Fatal(err)
	}
	if err := bc.Invalidate(context.Background(), "k1"); err != nil {
		t.Fatal(err)
	}

	var calls int32
	_, err := bc.Get(context.Background(), "k1", func(context.Context) (Artifact, error) {
		atomic.AddInt32(&calls, 1)
		return fakeArtifact{id: 3}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 after invalidate", calls)
	}
}
