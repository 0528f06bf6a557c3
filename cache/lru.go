package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRUCache is an in-memory cache bounded by entry count. When a new key
// would exceed capacity, the least-recently-used entry is evicted. Entries
// also carry a TTL and are treated as absent once expired; expiry is
// checked lazily on Get and in bulk by CleanupExpired.
type LRUCache struct {
	mu       sync.Mutex
	capacity int
	policy   Policy
	order    *list.List               // front = most recently used
	entries  map[string]*list.Element // key -> element in order
	stats    Stats
	onEvent  EventHook

	// now is the clock; overridden in tests.
	now func() time.Time
}

// Cache event names passed to an EventHook.
const (
	EventEviction = "eviction"
	EventExpired  = "expired"
)

// EventHook receives cache event names as they happen. The hook runs
// with the cache lock held and must not call back into the cache.
type EventHook func(event string)

// LRUOption configures an LRUCache.
type LRUOption func(*LRUCache)

// WithEventHook registers a hook invoked on every eviction and
// expiration, so the counters in Stats can also feed a metrics sink.
func WithEventHook(h EventHook) LRUOption {
	return func(c *LRUCache) {
		c.onEvent = h
	}
}

type lruEntry struct {
	key            string
	value          []byte
	createdAt      time.Time
	expiresAt      time.Time
	lastAccessedAt time.Time
}

// Stats is a snapshot of cache activity counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	Expirations int64
}

// NewLRUCache creates a bounded cache with the given capacity and policy.
// Returns ErrInvalidCapacity if capacity is not positive.
func NewLRUCache(capacity int, policy Policy, opts ...LRUOption) (*LRUCache, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	c := &LRUCache{
		capacity: capacity,
		policy:   policy,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get retrieves a value from the cache. Returns (nil, false) on miss or
// expiry. A hit refreshes the entry's recency and last-access time.
func (c *LRUCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}

	ent := el.Value.(*lruEntry)
	now := c.now()
	if !ent.expiresAt.After(now) {
		// Expired - remove lazily
		c.removeLocked(el)
		c.stats.Expirations++
		c.stats.Misses++
		c.emitLocked(EventExpired)
		return nil, false
	}

	ent.lastAccessedAt = now
	c.order.MoveToFront(el)
	c.stats.Hits++
	return ent.value, true
}

// Set stores a value with the given TTL, marking it most-recently-used.
// A non-positive TTL stores nothing and drops any existing entry for the
// key. An existing key has its value, expiry, and recency replaced.
// Inserting a new key at capacity evicts the least-recently-used entry
// first, so the capacity bound always holds.
func (c *LRUCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.mu.Lock()
		defer c.mu.Unlock()
		if el, ok := c.entries[key]; ok {
			c.removeLocked(el)
		}
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*lruEntry)
		ent.value = value
		ent.expiresAt = now.Add(ttl)
		ent.lastAccessedAt = now
		c.order.MoveToFront(el)
		return nil
	}

	if c.order.Len() >= c.capacity {
		c.evictOldestLocked()
	}

	el := c.order.PushFront(&lruEntry{
		key:            key,
		value:          value,
		createdAt:      now,
		expiresAt:      now.Add(ttl),
		lastAccessedAt: now,
	})
	c.entries[key] = el
	return nil
}

// Delete removes a value from the cache. Idempotent - no error on miss.
func (c *LRUCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		c.removeLocked(el)
	}
	return nil
}

// Len returns the current entry count, including entries that have expired
// but not yet been swept.
func (c *LRUCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// CleanupExpired removes every expired entry and returns the count removed.
// Calling it again with no new expirations returns 0.
func (c *LRUCache) CleanupExpired(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		ent := el.Value.(*lruEntry)
		if !ent.expiresAt.After(now) {
			c.removeLocked(el)
			c.emitLocked(EventExpired)
			removed++
		}
		el = prev
	}
	c.stats.Expirations += int64(removed)
	return removed
}

// Stats returns a snapshot of the activity counters.
func (c *LRUCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Capacity returns the configured maximum entry count.
func (c *LRUCache) Capacity() int {
	return c.capacity
}

// evictOldestLocked removes the least-recently-used entry. Ties between
// equal access times are broken by list position, which reflects
// insertion/access sequence.
func (c *LRUCache) evictOldestLocked() {
	el := c.order.Back()
	if el == nil {
		return
	}
	c.removeLocked(el)
	c.stats.Evictions++
	c.emitLocked(EventEviction)
}

func (c *LRUCache) emitLocked(event string) {
	if c.onEvent != nil {
		c.onEvent(event)
	}
}

func (c *LRUCache) removeLocked(el *list.Element) {
	ent := el.Value.(*lruEntry)
	delete(c.entries, ent.key)
	c.order.Remove(el)
}

// Ensure LRUCache implements Cache
var _ Cache = (*LRUCache)(nil)
