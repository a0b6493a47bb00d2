package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/baraddmarketing/cart-checkout/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStorage struct {
	*mockStorage
	mu   sync.Mutex
	gets int
}

func (c *countingStorage) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	c.gets++
	c.mu.Unlock()
	return c.mockStorage.Get(ctx, key)
}

func TestRegistry_OneStorePerSession(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(newMockStorage(), Options{})

	a1 := r.Store(ctx, "a")
	a2 := r.Store(ctx, "a")
	b := r.Store(ctx, "b")

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, DefaultKey+":a", a1.Key())
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	storage := newMockStorage()
	r := NewRegistry(storage, Options{Key: "cart"})

	r.Store(ctx, "a").AddItem(ctx, product("p", "1"), 2)

	assert.Equal(t, 0, r.Store(ctx, "b").ItemCount())
	assert.Len(t, storage.stored(t, "cart:a"), 1)
}

func TestRegistry_ConcurrentFirstUseRestoresOnce(t *testing.T) {
	ctx := context.Background()
	storage := &countingStorage{mockStorage: newMockStorage()}
	r := NewRegistry(storage, Options{})

	var wg sync.WaitGroup
	stores := make([]*Store, 20)
	for i := range stores {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			stores[i] = r.Store(ctx, "same")
		}(i)
	}
	wg.Wait()

	for _, s := range stores {
		require.Same(t, stores[0], s)
	}
	assert.Equal(t, 1, storage.gets)
}

func TestRegistry_ForgetRestoresFromStorage(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(newMockStorage(), Options{})
	first := r.Store(ctx, "a")
	first.AddItem(ctx, product("p", "4"), 3)

	r.Forget("a")
	second := r.Store(ctx, "a")

	assert.NotSame(t, first, second)
	assert.Equal(t, 3, second.ItemCount())
}

func TestRegistry_EvictIdle(t *testing.T) {
	ctx := context.Background()
	storage := newMockStorage()
	r := NewRegistry(storage, Options{})
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	var evicted []string
	r.OnEvict(func(id string) { evicted = append(evicted, id) })

	r.Store(ctx, "empty")
	r.Store(ctx, "full").AddItem(ctx, product("p", "5"), 1)
	r.Store(ctx, "active")

	clock = clock.Add(20 * time.Minute)
	r.Store(ctx, "active")
	clock = clock.Add(20 * time.Minute)

	n := r.EvictIdle(ctx, 30*time.Minute)

	assert.Equal(t, 2, n)
	assert.Equal(t, 1, r.Len())
	assert.ElementsMatch(t, []string{"empty", "full"}, evicted)

	_, err := storage.Get(ctx, DefaultKey+":empty")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	assert.Len(t, storage.stored(t, DefaultKey+":full"), 1)

	assert.Equal(t, 1, r.Store(ctx, "full").ItemCount())
}

func TestRegistry_ManyAnonymousSessionsAreReclaimed(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(newMockStorage(), Options{})
	clock := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	for i := 0; i < 500; i++ {
		r.Store(ctx, fmt.Sprintf("anon-%d", i))
	}
	require.Equal(t, 500, r.Len())

	clock = clock.Add(time.Hour)
	assert.Equal(t, 500, r.EvictIdle(ctx, 30*time.Minute))
	assert.Zero(t, r.Len())
}

func TestRegistry_ForgetRunsHooks(t *testing.T) {
	r := NewRegistry(newMockStorage(), Options{})
	r.Store(context.Background(), "a")
	var got []string
	r.OnEvict(func(id string) { got = append(got, id) })

	r.Forget("a")
	r.Forget("a")

	assert.Equal(t, []string{"a"}, got)
}

func TestRegistry_RunEvictionStopsWithContext(t *testing.T) {
	r := NewRegistry(newMockStorage(), Options{})
	r.Store(context.Background(), "a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunEviction(ctx, time.Millisecond, 0)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunEviction did not return after cancel")
	}
}
