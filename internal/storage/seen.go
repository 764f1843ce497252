// Package storage persists pipeline state: a JSON cache of already-processed
// articles and an optional PostgreSQL archive of enriched records.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// SeenArticle records one article that a previous run already processed.
type SeenArticle struct {
	Hash     string    `json:"hash"`
	Title    string    `json:"title"`
	Link     string    `json:"link"`
	Category string    `json:"category"`
	Source   string    `json:"source"`
	SeenAt   time.Time `json:"seen_at"`
}

// SeenCache keeps processed-article hashes in a JSON file so repeated runs
// skip articles they already exported.
type SeenCache struct {
	filePath string
	ttl      time.Duration
	mu       sync.RWMutex
	items    map[string]SeenArticle
}

func NewSeenCache(filePath string, ttlHours int) *SeenCache {
	return &SeenCache{
		filePath: filePath,
		ttl:      time.Duration(ttlHours) * time.Hour,
		items:    make(map[string]SeenArticle),
	}
}

// Load reads the cache file, dropping entries past their TTL. A missing file
// is an empty cache, not an error.
func (sc *SeenCache) Load() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	data, err := os.ReadFile(sc.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read seen cache: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var items []SeenArticle
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("parse seen cache: %w", err)
	}

	cutoff := time.Now().Add(-sc.ttl)
	for _, item := range items {
		if item.SeenAt.After(cutoff) {
			sc.items[item.Hash] = item
		}
	}
	return nil
}

// Save writes the cache back to disk.
func (sc *SeenCache) Save() error {
	sc.mu.RLock()
	items := make([]SeenArticle, 0, len(sc.items))
	for _, item := range sc.items {
		items = append(items, item)
	}
	sc.mu.RUnlock()

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen cache: %w", err)
	}
	if err := os.WriteFile(sc.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write seen cache: %w", err)
	}
	return nil
}

// Hash derives a stable identity for an article from its normalized title
// and publisher domain, so the same story republished under a tracking URL
// still matches.
func Hash(title, link string) string {
	normalized := strings.ToLower(strings.TrimSpace(title))
	normalized = strings.Join(strings.Fields(normalized), " ")

	h := sha256.Sum256([]byte(normalized + "|" + linkDomain(link)))
	return hex.EncodeToString(h[:])[:16]
}

// Seen reports whether the article hash is cached and still within TTL.
func (sc *SeenCache) Seen(hash string) bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	item, exists := sc.items[hash]
	if !exists {
		return false
	}
	return item.SeenAt.After(time.Now().Add(-sc.ttl))
}

// Mark records an article as processed.
func (sc *SeenCache) Mark(hash, title, link, category, source string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	sc.items[hash] = SeenArticle{
		Hash:     hash,
		Title:    title,
		Link:     link,
		Category: category,
		Source:   source,
		SeenAt:   time.Now(),
	}
}

// Cleanup drops expired entries from memory.
func (sc *SeenCache) Cleanup() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	cutoff := time.Now().Add(-sc.ttl)
	for hash, item := range sc.items {
		if item.SeenAt.Before(cutoff) {
			delete(sc.items, hash)
		}
	}
}

func (sc *SeenCache) Len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.items)
}

func linkDomain(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
