// Package querycache holds read results for date-scoped queries so repeated
// reads of the same day skip the store until a write or rollover drops them.
package querycache

import (
	"context"
	"sync"
)

// Logical query keys for date-scoped data.
const (
	KeyNotes          = "notes"
	KeyGratitude      = "gratitude"
	KeyTasks          = "tasks"
	KeyTimeLog        = "time-log"
	KeyTimeLogSummary = "time-log-summary"
	KeyMoodAnalysis   = "mood-analysis"
	KeyDailySummary   = "daily-summary"
)

// DateScopedKeys lists every key whose data belongs to a single day.
var DateScopedKeys = []string{
	KeyNotes,
	KeyGratitude,
	KeyTasks,
	KeyTimeLog,
	KeyTimeLogSummary,
	KeyMoodAnalysis,
	KeyDailySummary,
}

// Slot identifies one cached read. Variant separates different views of the
// same key, such as the raw row and its generated artifact.
type Slot struct {
	Key     string
	UserID  int64
	Date    string
	Variant string
}

// Message describes an invalidation. With a zero UserID every user is
// affected; with an empty Date every date is.
type Message struct {
	Keys   []string `json:"keys"`
	UserID int64    `json:"userId,omitempty"`
	Date   string   `json:"date,omitempty"`
	Origin string   `json:"origin,omitempty"`
}

// Cache is a concurrency-safe map of read results.
//
// gen counts invalidations. A load that started before an invalidation
// returns its value but does not cache it.
type Cache struct {
	mu      sync.RWMutex
	entries map[Slot]any
	gen     uint64
	hits    uint64
	misses  uint64
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[Slot]any)}
}

// Load returns the cached value for slot or calls load and caches its result.
// Errors are returned without caching, and so is a result whose load overlapped
// an invalidation.
func Load[T any](ctx context.Context, c *Cache, slot Slot, load func(context.Context) (T, error)) (T, error) {
	c.mu.RLock()
	v, ok := c.entries[slot]
	gen := c.gen
	c.mu.RUnlock()
	if ok {
		if typed, ok := v.(T); ok {
			c.mu.Lock()
			c.hits++
			c.mu.Unlock()
			return typed, nil
		}
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	c.mu.Lock()
	c.misses++
	if c.gen == gen {
		c.entries[slot] = value
	}
	c.mu.Unlock()
	return value, nil
}

// Forget drops every variant of key cached for userID on date. An empty date
// drops the key for all of the user's dates.
func (c *Cache) Forget(key string, userID int64, date string) {
	c.Apply(Message{Keys: []string{key}, UserID: userID, Date: date})
}

// Invalidate drops every entry of the given keys. It implements the rollover
// invalidation capability.
func (c *Cache) Invalidate(_ context.Context, keys []string) error {
	c.Apply(Message{Keys: keys})
	return nil
}

// Apply drops the entries an invalidation message covers.
func (c *Cache) Apply(msg Message) {
	if len(msg.Keys) == 0 {
		return
	}
	drop := make(map[string]bool, len(msg.Keys))
	for _, k := range msg.Keys {
		drop[k] = true
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for slot := range c.entries {
		if !drop[slot.Key] {
			continue
		}
		if msg.UserID != 0 && slot.UserID != msg.UserID {
			continue
		}
		if msg.Date != "" && slot.Date != msg.Date {
			continue
		}
		delete(c.entries, slot)
	}
}

// Stats reports cache size and hit counters.
func (c *Cache) Stats() (entries int, hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), c.hits, c.misses
}
