package cart

import (
	"context"
	"sync"
	"time"

	"github.com/baraddmarketing/cart-checkout/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type session struct {
	store    *Store
	lastSeen time.Time
}

// Registry hands out one Store per session. The first request for a session
// creates and restores its store; concurrent first requests share that work.
// Sessions not touched for a while are dropped by EvictIdle.
type Registry struct {
	storage cache.CartStorage
	opts    Options
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	onEvict  []func(sessionID string)
	sfg      singleflight.Group
}

func NewRegistry(storage cache.CartStorage, opts Options) *Registry {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Registry{
		storage:  storage,
		opts:     opts,
		logger:   opts.Logger,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Store returns the store for sessionID, creating it on first use. Every call
// counts as activity for the session.
func (r *Registry) Store(ctx context.Context, sessionID string) *Store {
	if s, ok := r.touch(sessionID); ok {
		return s
	}

	v, _, _ := r.sfg.Do(sessionID, func() (interface{}, error) {
		if existing, ok := r.touch(sessionID); ok {
			return existing, nil
		}

		opts := r.opts
		opts.Key = r.opts.Key + ":" + sessionID
		// The store outlives the request that created it.
		store := NewStore(context.WithoutCancel(ctx), r.storage, opts)

		r.mu.Lock()
		r.sessions[sessionID] = &session{store: store, lastSeen: r.now()}
		r.mu.Unlock()
		return store, nil
	})

	return v.(*Store)
}

func (r *Registry) touch(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, false
	}
	s.lastSeen = r.now()
	return s.store, true
}

// OnEvict registers fn to run for every session removed by Forget or
// EvictIdle.
func (r *Registry) OnEvict(fn func(sessionID string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = append(r.onEvict, fn)
}

// Forget drops the in-memory store for sessionID. The persisted copy stays.
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	_, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	hooks := append([]func(string){}, r.onEvict...)
	r.mu.Unlock()

	if ok {
		for _, fn := range hooks {
			fn(sessionID)
		}
	}
}

// EvictIdle drops sessions not seen for longer than idle and returns how many
// were dropped. An evicted cart with no lines also loses its persisted key;
// carts with lines stay in storage for the shopper's next visit.
func (r *Registry) EvictIdle(ctx context.Context, idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	evicted := make(map[string]*Store)
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			evicted[id] = s.store
			delete(r.sessions, id)
		}
	}
	hooks := append([]func(string){}, r.onEvict...)
	r.mu.Unlock()

	for id, store := range evicted {
		if r.storage != nil && store.ItemCount() == 0 {
			if err := r.storage.Delete(ctx, store.Key()); err != nil {
				r.logger.Warn("failed to delete empty cart", zap.String("key", store.Key()), zap.Error(err))
			}
		}
		for _, fn := range hooks {
			fn(id)
		}
	}

	if len(evicted) > 0 {
		r.logger.Debug("evicted idle carts", zap.Int("count", len(evicted)))
	}
	return len(evicted)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (r *Registry) RunEviction(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictIdle(ctx, idle)
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
