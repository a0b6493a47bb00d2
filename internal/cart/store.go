package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/baraddmarketing/cart-checkout/internal/cache"
	"github.com/baraddmarketing/cart-checkout/internal/domain"
	"github.com/baraddmarketing/cart-checkout/internal/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultKey = "shopping-cart"

type Options struct {
	// Key is the storage key the lines are persisted under.
	Key    string
	Logger *zap.Logger
	// OnCommand is called with the command name after each dispatch.
	OnCommand func(name string)
}

// Store owns one cart snapshot. All changes go through Dispatch, which
// serializes them, and every settled change outside the loading phase is
// written back to storage. Storage failures are logged and otherwise ignored:
// the in-memory cart stays authoritative.
type Store struct {
	mu        sync.Mutex
	state     domain.Snapshot
	storage   cache.CartStorage
	key       string
	logger    *zap.Logger
	onCommand func(string)

	listenerMu sync.Mutex
	listeners  map[int]func(domain.Snapshot)
	nextID     int
}

// NewStore creates a store and restores it from storage. A nil storage gives
// a cart that lives only in memory.
func NewStore(ctx context.Context, storage cache.CartStorage, opts Options) *Store {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Store{
		state:     Initial(),
		storage:   storage,
		key:       opts.Key,
		logger:    opts.Logger,
		onCommand: opts.OnCommand,
		listeners: make(map[int]func(domain.Snapshot)),
	}
	s.restore(ctx)
	return s
}

func (s *Store) restore(ctx context.Context) {
	if s.storage == nil {
		s.Dispatch(ctx, SetLoading{Loading: false})
		return
	}

	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("failed to load cart", zap.String("key", s.key), zap.Error(err))
		}
		s.Dispatch(ctx, SetLoading{Loading: false})
		return
	}

	lines, err := decodeLines(raw)
	if err != nil {
		s.logger.Warn("discarding unreadable cart", zap.String("key", s.key), zap.Error(err))
		s.Dispatch(ctx, SetLoading{Loading: false})
		return
	}

	s.Dispatch(ctx, Hydrate{Lines: lines})
}

// Dispatch applies cmd and returns the resulting snapshot.
func (s *Store) Dispatch(ctx context.Context, cmd Command) domain.Snapshot {
	s.mustBeLive()

	s.mu.Lock()
	s.state = Reduce(s.state, cmd)
	if !s.state.IsLoading {
		s.persist(ctx)
	}
	snap := s.state.Clone()
	s.mu.Unlock()

	if s.onCommand != nil {
		s.onCommand(cmd.Name())
	}
	s.notify(snap)
	return snap.Clone()
}

// persist must be called with s.mu held.
func (s *Store) persist(ctx context.Context) {
	if s.storage == nil {
		return
	}
	raw, err := encodeLines(s.state.Lines)
	if err != nil {
		s.logger.Warn("failed to encode cart", zap.String("key", s.key), zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		s.logger.Warn("failed to save cart", zap.String("key", s.key), zap.Error(err))
	}
}

// Subscribe registers fn to receive every settled snapshot. The returned func
// removes it.
func (s *Store) Subscribe(fn func(domain.Snapshot)) func() {
	s.mustBeLive()

	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(snap domain.Snapshot) {
	s.listenerMu.Lock()
	fns := make([]func(domain.Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range fns {
		fn(snap.Clone())
	}
}

func (s *Store) AddItem(ctx context.Context, p domain.Product, quantity int) domain.Snapshot {
	return s.Dispatch(ctx, AddItem{Product: p, Quantity: quantity})
}

func (s *Store) RemoveItem(ctx context.Context, itemKey string) domain.Snapshot {
	return s.Dispatch(ctx, RemoveItem{ItemKey: itemKey})
}

func (s *Store) UpdateQuantity(ctx context.Context, itemKey string, quantity int) domain.Snapshot {
	return s.Dispatch(ctx, UpdateQuantity{ItemKey: itemKey, Quantity: quantity})
}

func (s *Store) ClearCart(ctx context.Context) domain.Snapshot {
	return s.Dispatch(ctx, ClearCart{})
}

// RemoveOrdered takes the lines of a placed order out of the cart.
func (s *Store) RemoveOrdered(ctx context.Context, lines []domain.CartLine) domain.Snapshot {
	return s.Dispatch(ctx, RemoveOrdered{Lines: lines})
}

func (s *Store) OpenCart(ctx context.Context) domain.Snapshot {
	return s.Dispatch(ctx, OpenCart{})
}

func (s *Store) CloseCart(ctx context.Context) domain.Snapshot {
	return s.Dispatch(ctx, CloseCart{})
}

func (s *Store) ToggleCart(ctx context.Context) domain.Snapshot {
	return s.Dispatch(ctx, ToggleCart{})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.Snapshot {
	s.mustBeLive()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Lines() []domain.CartLine {
	return s.Snapshot().Lines
}

func (s *Store) ItemCount() int {
	return pricing.ItemCount(s.Lines())
}

func (s *Store) Subtotal() decimal.Decimal {
	return pricing.Subtotal(s.Lines())
}

// Item returns the line with the given key, if present.
func (s *Store) Item(itemKey string) (domain.CartLine, bool) {
	return s.Snapshot().Line(itemKey)
}

func (s *Store) Key() string {
	s.mustBeLive()
	return s.key
}

func (s *Store) mustBeLive() {
	if s == nil || s.listeners == nil {
		panic("cart: Store used without NewStore")
	}
}

func encodeLines(lines []domain.CartLine) (string, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeLines parses a persisted line list. Lines that break the cart
// invariants (no key, quantity below 1, repeated key) are dropped.
func decodeLines(raw string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	out := make([]domain.CartLine, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if l.ItemKey == "" || l.Quantity < 1 {
			continue
		}
		if _, dup := seen[l.ItemKey]; dup {
			continue
		}
		seen[l.ItemKey] = struct{}{}
		out = append(out, l)
	}
	return out, nil
}
