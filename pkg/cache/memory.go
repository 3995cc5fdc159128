package cache

import (
	"sync"
	"time"

	"github.com/pythonsolar/harumiki-farm-v2/pkg/config"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
	storedAt  time.Time
}

// MemoryCache is a bounded in-process cache. Expiry is lazy (checked on
// Get) and the oldest entry is evicted once the entry cap is reached.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	hits       int64
	misses     int64

	ttl map[TTLClass]time.Duration
	now func() time.Time
}

// NewMemoryCache returns a cache capped at config.CacheMaxEntries with
// the standard two-class TTLs.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]memoryEntry),
		maxEntries: config.CacheMaxEntries,
		ttl: map[TTLClass]time.Duration{
			Current:    config.CacheTTLCurrent,
			Historical: config.CacheTTLHistorical,
		},
		now: time.Now,
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.payload, true
}

func (c *MemoryCache) Set(key string, payload []byte, class TTLClass) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = memoryEntry{
		payload:   payload,
		expiresAt: now.Add(c.ttl[class]),
		storedAt:  now,
	}
}

// evictOldestLocked drops the entry stored longest ago. Expired entries
// are preferred since they are dead weight either way.
func (c *MemoryCache) evictOldestLocked() {
	now := c.now()
	var oldestKey string
	var oldestAt time.Time

	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
			return
		}
		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

func (c *MemoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
	return nil
}
