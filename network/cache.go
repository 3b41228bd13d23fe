package network

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CacheEntry is one cached fetch result plus enough of its response
// headers to decide when it goes stale or can be revalidated.
type CacheEntry struct {
	Response    *Response
	ETag        string
	LastMod     string
	MaxAge      time.Duration
	HasMaxAge   bool // whether max-age was explicit, including max-age=0
	Expires     time.Time
	CachedAt    time.Time
	MustRevalid bool
}

// IsExpired reports whether the entry is stale: an explicit max-age wins
// over Expires, and a response with neither defaults to a 5-minute TTL.
func (e *CacheEntry) IsExpired() bool {
	if e.HasMaxAge {
		return time.Since(e.CachedAt) > e.MaxAge
	}
	if !e.Expires.IsZero() {
		return time.Now().After(e.Expires)
	}
	return time.Since(e.CachedAt) > 5*time.Minute
}

// CanRevalidate reports whether the entry carries a validator a
// conditional re-fetch could use.
func (e *CacheEntry) CanRevalidate() bool {
	return e.ETag != "" || e.LastMod != ""
}

// Cache is a bounded, in-memory map of resolved import URL to
// CacheEntry, keyed so a resolution pass with diamond imports (two
// sheets importing the same URL) issues that GET once.
type Cache struct {
	entries map[string]*CacheEntry
	maxSize int
	mu      sync.RWMutex
}

// NewCache returns a Cache holding at most maxSize entries; a
// non-positive value falls back to 1000.
func NewCache(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{entries: make(map[string]*CacheEntry), maxSize: maxSize}
}

// Get returns the cached entry for url, if any. Callers still need to
// check IsExpired before trusting it.
func (c *Cache) Get(url string) (*CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[url]
	return entry, ok
}

// Set stores resp under url, deriving expiry and revalidators from
// headers. A Cache-Control: no-store response is never stored.
func (c *Cache) Set(url string, resp *Response, headers http.Header) {
	cacheControl := headers.Get("Cache-Control")
	if containsDirective(cacheControl, "no-store") {
		return
	}

	entry := &CacheEntry{Response: resp, CachedAt: time.Now()}
	if cacheControl != "" {
		entry.MaxAge, entry.HasMaxAge, entry.MustRevalid = parseCacheControl(cacheControl)
	}
	entry.ETag = headers.Get("ETag")
	entry.LastMod = headers.Get("Last-Modified")
	if !entry.HasMaxAge {
		if expires := headers.Get("Expires"); expires != "" {
			if t, err := http.ParseTime(expires); err == nil {
				entry.Expires = t
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[url] = entry
}

// Delete removes an entry from the cache.
func (c *Cache) Delete(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, url)
}

// Clear removes every entry from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*CacheEntry)
}

// Size returns the number of entries currently cached.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictOldest removes the least-recently-cached entry. Must be called
// with c.mu held.
func (c *Cache) evictOldest() {
	var oldestURL string
	var oldestTime time.Time
	for url, entry := range c.entries {
		if oldestURL == "" || entry.CachedAt.Before(oldestTime) {
			oldestURL = url
			oldestTime = entry.CachedAt
		}
	}
	if oldestURL != "" {
		delete(c.entries, oldestURL)
	}
}

// Cleanup removes every expired entry from the cache.
func (c *Cache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for url, entry := range c.entries {
		if entry.IsExpired() {
			delete(c.entries, url)
		}
	}
}

// parseCacheControl extracts max-age and must-revalidate from a
// Cache-Control header value.
func parseCacheControl(value string) (maxAge time.Duration, hasMaxAge bool, mustRevalidate bool) {
	for _, d := range splitDirectives(value) {
		if rest, ok := strings.CutPrefix(d, "max-age="); ok {
			if seconds, err := strconv.Atoi(rest); err == nil {
				maxAge = time.Duration(seconds) * time.Second
				hasMaxAge = true
			}
		}
		if d == "must-revalidate" {
			mustRevalidate = true
		}
	}
	return
}

// containsDirective reports whether a Cache-Control header carries the
// given bare directive (e.g. "no-store").
func containsDirective(cacheControl, directive string) bool {
	for _, d := range splitDirectives(cacheControl) {
		if d == directive {
			return true
		}
	}
	return false
}

// splitDirectives splits a comma-separated Cache-Control value into its
// trimmed directives.
func splitDirectives(value string) []string {
	var result []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
