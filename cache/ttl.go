// Package cache provides the in-memory caches backing engine evaluation:
// a TTL cache for named-group member lists and a bounded LRU for
// "operation held anywhere" answers.
package cache

import (
	"sync"
	"time"
)

// TTL is a time-bounded cache of group member lists. Entries expire after a
// fixed duration; expired entries are dropped lazily on read.
type TTL struct {
	mu      sync.RWMutex
	entries map[string]*ttlEntry
	ttl     time.Duration
	now     func() time.Time
}

type ttlEntry struct {
	members   []int64
	expiresAt time.Time
}

// NewTTL creates a TTL cache. now is the time source, usually time.Now;
// tests inject a stepped clock.
func NewTTL(ttl time.Duration, now func() time.Time) *TTL {
	if now == nil {
		now = time.Now
	}
	return &TTL{
		entries: make(map[string]*ttlEntry),
		ttl:     ttl,
		now:     now,
	}
}

// Get returns the cached member list for a group, if fresh.
func (c *TTL) Get(group string) ([]int64, bool) {
	c.mu.RLock()
	e, ok := c.entries[group]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, group)
		c.mu.Unlock()
		return nil, false
	}
	return e.members, true
}

// Set stores a member list for a group.
func (c *TTL) Set(group string, members []int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[group] = &ttlEntry{
		members:   members,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Purge drops all entries.
func (c *TTL) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*ttlEntry)
}
