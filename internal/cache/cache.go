// Package cache provides an in-memory TTL cache for generated summaries so
// repeated pipeline runs skip duplicate AI requests.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// SummaryCache maps content hashes to generated summaries.
type SummaryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
}

func New(ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		entries: make(map[string]entry),
		ttl:     ttl,
	}
}

// Key derives a stable cache key from article title and content.
func Key(title, content string) string {
	h := sha256.Sum256([]byte(title + "|" + content))
	return hex.EncodeToString(h[:])
}

func (c *SummaryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.value, true
}

func (c *SummaryCache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.evictExpired()
}

// evictExpired drops stale entries. Called with the lock held.
func (c *SummaryCache) evictExpired() {
	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *SummaryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
