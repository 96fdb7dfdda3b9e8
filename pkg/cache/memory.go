package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// item is one cached value together with its LRU bookkeeping.
type item[V any] struct {
	expiresAt time.Time // zero = never expires
	value     V
	key       string
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// Memory is an in-memory cache with TTL expiration and optional LRU
// eviction when a maximum entry count is configured.
//
// Lookups go through a hash map; recency order lives in a doubly-linked
// list with the most recently used entries at the front. Both operations
// are O(1).
type Memory[V any] struct {
	index   map[string]*list.Element
	lru     *list.List
	opts    *memoryOptions
	onEvict func(key string, value V)
	done    chan struct{}
	mu      sync.Mutex
	closed  bool
}

// NewMemory creates a new in-memory cache.
//
// Example:
//
//	c := cache.NewMemory[string](
//	    cache.WithDefaultTTL(5 * time.Minute),
//	    cache.WithCleanupInterval(30 * time.Second),
//	    cache.WithMaxEntries(10000),
//	)
//	defer c.Close()
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory[V]{
		index: make(map[string]*list.Element),
		lru:   list.New(),
		opts:  o,
		done:  make(chan struct{}),
	}

	if o.cleanupInterval > 0 {
		go m.sweepLoop()
	}

	return m
}

// SetEvictCallback registers a function invoked whenever an entry leaves
// the cache: LRU eviction, expiry sweep, manual deletion, or Clear.
func (m *Memory[V]) SetEvictCallback(fn func(key string, value V)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = fn
}

// Get retrieves a value by key and marks it as recently used.
// Returns ErrNotFound if the key does not exist or has expired.
func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	elem, ok := m.index[key]
	if !ok {
		return zero, ErrNotFound
	}

	it := elem.Value.(*item[V])
	if it.expired(time.Now()) {
		m.drop(elem)
		return zero, ErrNotFound
	}

	m.lru.MoveToFront(elem)
	return it.value, nil
}

// Set stores a value with the given TTL. A zero TTL applies the default;
// a negative TTL pins the entry until it is deleted or evicted.
func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	if elem, ok := m.index[key]; ok {
		it := elem.Value.(*item[V])
		it.value = value
		it.expiresAt = expiresAt
		m.lru.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.index) >= m.opts.maxEntries {
		if coldest := m.lru.Back(); coldest != nil {
			m.drop(coldest)
		}
	}

	m.index[key] = m.lru.PushFront(&item[V]{key: key, value: value, expiresAt: expiresAt})
	return nil
}

// Delete removes a key from the cache.
func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if elem, ok := m.index[key]; ok {
		m.drop(elem)
	}
	return nil
}

// Has checks whether a key exists and has not expired. Unlike Get it does
// not refresh the key's recency.
func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	elem, ok := m.index[key]
	if !ok {
		return false, nil
	}
	if elem.Value.(*item[V]).expired(time.Now()) {
		m.drop(elem)
		return false, nil
	}
	return true, nil
}

// Clear removes all entries from the cache.
func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if m.onEvict != nil {
		for _, elem := range m.index {
			it := elem.Value.(*item[V])
			m.onEvict(it.key, it.value)
		}
	}

	m.index = make(map[string]*list.Element)
	m.lru.Init()
	return nil
}

// Close stops the background sweeper and marks the cache as closed.
// Close is idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	return nil
}

// sweepLoop periodically removes expired entries.
func (m *Memory[V]) sweepLoop() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweepExpired()
		}
	}
}

// sweepExpired walks the list from the cold end, dropping expired entries.
func (m *Memory[V]) sweepExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for elem := m.lru.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*item[V]).expired(now) {
			m.drop(elem)
		}
		elem = prev
	}
}

// drop removes one element and fires the eviction callback.
// Caller must hold the mutex.
func (m *Memory[V]) drop(elem *list.Element) {
	m.lru.Remove(elem)
	it := elem.Value.(*item[V])
	delete(m.index, it.key)

	if m.onEvict != nil {
		m.onEvict(it.key, it.value)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
