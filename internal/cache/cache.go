// Package cache provides the engine-owned query cache: a TTL-scoped,
// size-bounded LRU keyed by canonical query signatures.
//
// The cache is never the only copy of truth; the store stays
// authoritative. Concurrent misses on one key coalesce into a single
// compute via singleflight, and entries are replaced atomically so a
// cancelled compute stores nothing.
package cache

import (
	"container/list"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Clock supplies the current time. Injected so tests can control
// expiry without sleeping.
type Clock func() time.Time

// Stats reports cache usage counters.
type Stats struct {
	Entries   int    `json:"entries"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

type entry struct {
	key      string
	value    interface{}
	storedAt time.Time
}

// Cache is a TTL + LRU cache safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	clock      Clock

	ll      *list.List // front = most recently used
	entries map[string]*list.Element

	// gen advances on every invalidation; a compute started before it
	// advanced must not store its result.
	gen uint64

	group singleflight.Group

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding at most maxEntries values for up to ttl.
// A nil clock defaults to time.Now.
func New(maxEntries int, ttl time.Duration, clock Clock) *Cache {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		ttl:        ttl,
		maxEntries: maxEntries,
		clock:      clock,
		ll:         list.New(),
		entries:    make(map[string]*list.Element),
	}
}

// Get returns the fresh value for key, if any.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookupLocked(key)
}

func (c *Cache) lookupLocked(key string) (interface{}, bool) {
	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	ent := el.Value.(*entry)
	if c.clock().Sub(ent.storedAt) >= c.ttl {
		// Expired entries are removed eagerly, like a DELETE on read
		c.removeLocked(el)
		c.misses++
		return nil, false
	}

	c.ll.MoveToFront(el)
	c.hits++
	return ent.value, true
}

// GetOrCompute returns the cached value for key, computing and storing
// it via fn on miss or expiry. The returned bool reports a cache hit.
// Concurrent callers for the same uncached key share one fn invocation.
// fn errors are returned unchanged and nothing is stored.
func (c *Cache) GetOrCompute(key string, fn func() (interface{}, error)) (interface{}, bool, error) {
	c.mu.Lock()
	if v, ok := c.lookupLocked(key); ok {
		c.mu.Unlock()
		return v, true, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A concurrent flight may have stored the value between our
		// miss and acquiring the flight
		c.mu.Lock()
		if v, ok := c.peekLocked(key); ok {
			c.mu.Unlock()
			return v, nil
		}
		gen := c.gen
		c.mu.Unlock()

		v, err := fn()
		if err != nil {
			return nil, err
		}

		// An invalidation that raced the compute wins: the caller still
		// gets the value, but it is not stored
		c.storeIfCurrent(key, v, gen)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v, false, nil
}

// peekLocked is lookupLocked without counter or recency side effects.
func (c *Cache) peekLocked(key string) (interface{}, bool) {
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	ent := el.Value.(*entry)
	if c.clock().Sub(ent.storedAt) >= c.ttl {
		return nil, false
	}
	return ent.value, true
}

// Set stores value under key with a fresh timestamp, evicting the
// least-recently-used entry when full. The replace is atomic: readers
// see either the old complete entry or the new one.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(key, value)
}

// storeIfCurrent stores value only if no invalidation happened since
// gen was observed.
func (c *Cache) storeIfCurrent(key string, value interface{}, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.setLocked(key, value)
}

func (c *Cache) setLocked(key string, value interface{}) {
	if el, ok := c.entries[key]; ok {
		ent := el.Value.(*entry)
		ent.value = value
		ent.storedAt = c.clock()
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&entry{key: key, value: value, storedAt: c.clock()})
	c.entries[key] = el

	for c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
		c.evictions++
	}
}

func (c *Cache) removeLocked(el *list.Element) {
	ent := el.Value.(*entry)
	delete(c.entries, ent.key)
	c.ll.Remove(el)
}

// InvalidatePrefix drops every entry whose key starts with prefix and
// returns the number removed. Used for write-through invalidation when
// access counters change.
func (c *Cache) InvalidatePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	removed := 0
	for el := c.ll.Front(); el != nil; {
		next := el.Next()
		ent := el.Value.(*entry)
		if len(ent.key) >= len(prefix) && ent.key[:len(prefix)] == prefix {
			c.removeLocked(el)
			removed++
		}
		el = next
	}
	return removed
}

// Clear drops all entries. Counters survive for diagnostics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.ll.Init()
	c.entries = make(map[string]*list.Element)
}

// Len returns the number of live entries (including not-yet-expired).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// GetStats returns a snapshot of usage counters.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries:   c.ll.Len(),
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}
