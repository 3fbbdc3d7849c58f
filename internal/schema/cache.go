// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Daco Labs

package schema

import (
	"sync"
	"time"
)

// DefaultTTL is how long a snapshot stays live after it is stored.
const DefaultTTL = 5 * time.Minute

// Cache holds one snapshot per collection. Expiry is checked lazily: an
// expired entry is evicted by the access that observes it. Reads never
// extend an entry's lifetime.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

type entry struct {
	snapshot  *Snapshot
	expiresAt time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock sets the clock used for expiry and analysis timestamps.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache creates a cache whose entries live for ttl (DefaultTTL when zero).
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the live snapshot for a collection.
func (c *Cache) Get(collectionID string) (*Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[collectionID]
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, collectionID)
		return nil, false
	}
	return e.snapshot, true
}

// Put stores s, replacing any previous snapshot for the same collection.
func (c *Cache) Put(s *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[s.CollectionID] = entry{snapshot: s, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate drops the snapshot for a collection.
func (c *Cache) Invalidate(collectionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, collectionID)
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// TTL returns the configured lifetime of an entry.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Now reads the cache clock.
func (c *Cache) Now() time.Time {
	return c.now()
}
