package cache

import (
	"sync"
	"time"

	"github.com/davin/movierec-go/internal/domain"
)

const (
	DefaultTTL      = 600 * time.Second
	DefaultCapacity = 100
)

type metadataEntry struct {
	payload    domain.MovieMetadata
	insertedAt time.Time
	lastAccess time.Time
}

// MetadataCache is a time-bounded, size-bounded in-memory cache of fetched
// movie metadata. Entries are never mutated, only replaced or evicted. It
// performs no I/O.
//
// Get and Put are individually atomic, but a miss does not hold the lock
// across the subsequent fetch: two requests racing on a cold id may both
// fetch and both insert. Last write wins; the redundant call is harmless.
type MetadataCache struct {
	mu       sync.Mutex
	entries  map[int]*metadataEntry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

func NewMetadataCache(ttl time.Duration, capacity int) *MetadataCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MetadataCache{
		entries:  make(map[int]*metadataEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the cached payload for id, or false if it was never inserted
// or its age reached the TTL. Expired entries are dropped on access.
func (c *MetadataCache) Get(id int) (domain.MovieMetadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[id]
	if !ok {
		return domain.MovieMetadata{}, false
	}

	if c.now().Sub(entry.insertedAt) >= c.ttl {
		delete(c.entries, id)
		return domain.MovieMetadata{}, false
	}

	entry.lastAccess = c.now()
	return entry.payload, true
}

// Put inserts or replaces the payload for id. At capacity, the
// least-recently-used entry (oldest insert as tie-break) is evicted first.
func (c *MetadataCache) Put(id int, payload domain.MovieMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[id]; !exists && len(c.entries) >= c.capacity {
		c.evictLocked()
	}

	ts := c.now()
	c.entries[id] = &metadataEntry{
		payload:    payload,
		insertedAt: ts,
		lastAccess: ts,
	}
}

func (c *MetadataCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MetadataCache) evictLocked() {
	victim := -1
	var victimAccess, victimInsert time.Time

	for id, entry := range c.entries {
		if victim == -1 ||
			entry.lastAccess.Before(victimAccess) ||
			(entry.lastAccess.Equal(victimAccess) && entry.insertedAt.Before(victimInsert)) {
			victim = id
			victimAccess = entry.lastAccess
			victimInsert = entry.insertedAt
		}
	}

	if victim != -1 {
		delete(c.entries, victim)
	}
}
