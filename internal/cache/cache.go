// Package cache keeps recent name service answers so repeated searches for
// the same name or address do not hit the chain again.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultTTL is how long a cached answer is served before it is looked up again.
const DefaultTTL = 10 * time.Minute

// Method identifies the lookup an entry answers.
type Method string

// Cached lookup methods.
const (
	MethodForward Method = "forward"
	MethodReverse Method = "reverse"
	MethodAvatar  Method = "avatar"
)

// Cache defines the interface for lookup caching operations.
type Cache interface {
	// Get retrieves a cached entry with its age.
	Get(method Method, key string) (*Entry, bool, time.Duration)

	// Set stores an entry, stamping it with the current time.
	Set(entry Entry)

	// Clear removes all entries.
	Clear()

	// Size returns the number of entries.
	Size() int

	// List returns all entries ordered by key.
	List() []Entry

	// Prune removes entries older than maxAge.
	Prune(maxAge time.Duration) int
}

// Compile-time interface check
var _ Cache = (*LookupCache)(nil)

// LookupCache stores name service answers. Empty values are cached too, so a
// name without a record is not looked up again until the entry goes stale.
type LookupCache struct {
	mu      sync.RWMutex     `json:"-"`
	Entries map[string]Entry `json:"entries"`
}

// Entry is a single cached answer.
type Entry struct {
	Method    Method    `json:"method"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLookupCache creates a new empty cache.
func NewLookupCache() *LookupCache {
	return &LookupCache{
		Entries: make(map[string]Entry),
	}
}

// Key generates a cache key. Names and hex addresses are case-insensitive.
func Key(method Method, key string) string {
	return string(method) + ":" + strings.ToLower(key)
}

// Get retrieves a cached entry.
// Returns the entry, whether it exists, and its age.
func (c *LookupCache) Get(method Method, key string) (*Entry, bool, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.Entries[Key(method, key)]
	if !exists {
		return nil, false, 0
	}
	return &entry, true, time.Since(entry.UpdatedAt)
}

// Set stores an entry in the cache.
func (c *LookupCache) Set(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry.UpdatedAt = time.Now()
	c.Entries[Key(entry.Method, entry.Key)] = entry
}

// Clear removes all cache entries.
func (c *LookupCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Entries = make(map[string]Entry)
}

// Size returns the number of cache entries.
func (c *LookupCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.Entries)
}

// List returns a copy of all entries ordered by method and key.
func (c *LookupCache) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.Entries))
	for _, entry := range c.Entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return Key(entries[i].Method, entries[i].Key) < Key(entries[j].Method, entries[j].Key)
	})
	return entries
}

// Prune removes entries older than the specified duration.
func (c *LookupCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxAge)

	for key, entry := range c.Entries {
		if entry.UpdatedAt.Before(cutoff) {
			delete(c.Entries, key)
			removed++
		}
	}

	return removed
}

// snapshot copies the entries for serialization.
func (c *LookupCache) snapshot() *LookupCache {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make(map[string]Entry, len(c.Entries))
	for k, v := range c.Entries {
		entries[k] = v
	}
	return &LookupCache{Entries: entries}
}
