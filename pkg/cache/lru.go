package cache

import (
	"container/list"
	"sync"
	"time"
)

type lruEntry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// LRUCache is a thread-safe LRU cache with optional expiry.
// When the cache is full, the least recently used entry is evicted.
type LRUCache[K comparable, V any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[K]*list.Element
	eviction *list.List
	mu       sync.Mutex
	onEvict  func(key K, value V)
}

// Option configures an LRUCache.
type Option[K comparable, V any] func(*LRUCache[K, V])

// WithTTL expires entries ttl after they were last written.
func WithTTL[K comparable, V any](ttl time.Duration) Option[K, V] {
	return func(c *LRUCache[K, V]) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides the time source used for expiry.
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *LRUCache[K, V]) {
		if now != nil {
			c.now = now
		}
	}
}

// WithEvictCallback registers fn for entries leaving the cache through
// eviction, expiry, Remove or Clear. Callbacks run outside the cache lock, so
// fn may call back into the cache.
func WithEvictCallback[K comparable, V any](fn func(key K, value V)) Option[K, V] {
	return func(c *LRUCache[K, V]) {
		c.onEvict = fn
	}
}

// NewLRUCache creates a cache holding at most capacity entries.
// Panics if capacity is not positive.
func NewLRUCache[K comparable, V any](capacity int, opts ...Option[K, V]) *LRUCache[K, V] {
	if capacity <= 0 {
		panic("LRU cache capacity must be positive")
	}
	c := &LRUCache[K, V]{
		capacity: capacity,
		now:      time.Now,
		items:    make(map[K]*list.Element),
		eviction: list.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value of key and marks it as recently used.
// Expired entries are removed and reported as missing.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	var zero V

	c.mu.Lock()
	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}
	entry := elem.Value.(*lruEntry[K, V])
	if c.expired(entry) {
		c.unlink(elem)
		c.mu.Unlock()
		c.notify(entry)
		return zero, false
	}
	c.eviction.MoveToFront(elem)
	c.mu.Unlock()
	return entry.value, true
}

// Put adds or replaces the value of key and returns the previous value.
func (c *LRUCache[K, V]) Put(key K, value V) (V, bool) {
	var (
		zero    V
		evicted *lruEntry[K, V]
	)

	c.mu.Lock()
	if elem, ok := c.items[key]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*lruEntry[K, V])
		old := entry.value
		entry.value = value
		entry.expiresAt = c.expiry()
		c.mu.Unlock()
		return old, true
	}

	elem := c.eviction.PushFront(&lruEntry[K, V]{key: key, value: value, expiresAt: c.expiry()})
	c.items[key] = elem
	if c.eviction.Len() > c.capacity {
		if back := c.eviction.Back(); back != nil {
			evicted = back.Value.(*lruEntry[K, V])
			c.unlink(back)
		}
	}
	c.mu.Unlock()

	if evicted != nil {
		c.notify(evicted)
	}
	return zero, false
}

// Remove deletes key and returns its value.
func (c *LRUCache[K, V]) Remove(key K) (V, bool) {
	var zero V

	c.mu.Lock()
	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return zero, false
	}
	entry := elem.Value.(*lruEntry[K, V])
	c.unlink(elem)
	c.mu.Unlock()

	c.notify(entry)
	return entry.value, true
}

func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Clear removes every entry.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	entries := make([]*lruEntry[K, V], 0, len(c.items))
	for _, elem := range c.items {
		entries = append(entries, elem.Value.(*lruEntry[K, V]))
	}
	c.items = make(map[K]*list.Element)
	c.eviction.Init()
	c.mu.Unlock()

	for _, entry := range entries {
		c.notify(entry)
	}
}

func (c *LRUCache[K, V]) expiry() time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return c.now().Add(c.ttl)
}

func (c *LRUCache[K, V]) expired(e *lruEntry[K, V]) bool {
	return !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt)
}

// Must be called with lock held.
func (c *LRUCache[K, V]) unlink(elem *list.Element) {
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*lruEntry[K, V]).key)
}

func (c *LRUCache[K, V]) notify(e *lruEntry[K, V]) {
	if c.onEvict != nil {
		c.onEvict(e.key, e.value)
	}
}
