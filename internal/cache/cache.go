// Package cache provides the time-bounded key/value store shared by all
// provider clients. Entries expire a fixed duration after insertion and are
// pruned lazily on access; the cache is a latency optimization, never a
// source of truth.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a mutex-guarded TTL cache, safe for concurrent use by multiple
// in-flight recommendation requests.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

// New creates an empty Cache. maxEntries bounds the number of stored
// entries; zero or negative means unbounded.
func New(maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the value stored under key. The second return value is false
// when the key is absent or its TTL has elapsed, even if the entry is still
// physically stored.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the given TTL, replacing any previous
// entry. A non-positive TTL stores nothing.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxEntries > 0 && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}

	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of live entries, pruning expired ones.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	return len(c.entries)
}

// evictLocked frees space for one insertion. Expired entries go first; if
// none have expired, an arbitrary entry is dropped. Callers must hold mu.
func (c *Cache) evictLocked() {
	now := c.now()
	dropped := false
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			dropped = true
		}
	}
	if dropped {
		return
	}
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}

// Key builds a canonical cache key from a provider namespace and a parameter
// set. Parameters are serialized in sorted-key order joined with "&" so that
// insertion order never changes the key, and the namespace prefix keeps
// providers from colliding (e.g. "itunes:", "lastfm:", "mb:recording:").
func Key(namespace string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(namespace)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}
