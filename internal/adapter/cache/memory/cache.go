// Package memory provides the in-process proposal cache: a bounded TTL
// map keyed by (run, age, branch). Time is injected so tests can use a
// logical clock instead of sleeping.
package memory

import (
	"sync"
	"time"

	"lifeline/internal/app/ports"
)

type entry struct {
	payload   ports.TurnPayload
	expiresAt time.Time
}

type Cache struct {
	mu       sync.Mutex
	entries  map[ports.ProposalKey]entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

// New builds a cache holding at most capacity entries for ttl each. A nil
// now falls back to the wall clock.
func New(ttl time.Duration, capacity int, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	if capacity <= 0 {
		capacity = 64
	}
	return &Cache{
		entries:  make(map[ports.ProposalKey]entry),
		ttl:      ttl,
		capacity: capacity,
		now:      now,
	}
}

func (c *Cache) Get(key ports.ProposalKey) (ports.TurnPayload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return ports.TurnPayload{}, false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return ports.TurnPayload{}, false
	}
	return e.payload, true
}

func (c *Cache) Set(key ports.ProposalKey, payload ports.TurnPayload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.capacity {
		c.evictLocked()
	}
	c.entries[key] = entry{payload: payload, expiresAt: c.now().Add(c.ttl)}
}

func (c *Cache) Invalidate(runID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if key.RunID == runID {
			delete(c.entries, key)
		}
	}
}

// evictLocked drops expired entries first, then the soonest-to-expire
// entry if the cache is still full.
func (c *Cache) evictLocked() {
	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) < c.capacity {
		return
	}
	var oldest ports.ProposalKey
	var oldestAt time.Time
	first := true
	for key, e := range c.entries {
		if first || e.expiresAt.Before(oldestAt) {
			oldest, oldestAt, first = key, e.expiresAt, false
		}
	}
	delete(c.entries, oldest)
}

var _ ports.ProposalCache = (*Cache)(nil)
