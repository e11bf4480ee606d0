package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// DefaultCacheDir is the default cache directory
	DefaultCacheDir = ".cache"
	// DefaultTTL is the default document expiration time
	DefaultTTL = time.Hour
	// cacheFileName is the cache file name
	cacheFileName = "documents.json"
)

// DocumentCacheItem represents a cached run document
type DocumentCacheItem struct {
	Data     []byte    `json:"data"`
	ETag     string    `json:"etag,omitempty"`
	CachedAt time.Time `json:"cached_at"`
}

// DocumentCache keeps fetched run documents keyed by source
type DocumentCache struct {
	mu        sync.RWMutex
	dir       string
	ttl       time.Duration
	documents map[string]*DocumentCacheItem
	dirty     bool // Marks if there are unsaved changes
	now       func() time.Time
}

// NewDocumentCache creates a new document cache
func NewDocumentCache(dir string, ttl time.Duration) (*DocumentCache, error) {
	if dir == "" {
		dir = DefaultCacheDir
	}
	if ttl == 0 {
		ttl = DefaultTTL
	}

	// Ensure cache directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	cache := &DocumentCache{
		dir:       dir,
		ttl:       ttl,
		documents: make(map[string]*DocumentCacheItem),
		now:       time.Now,
	}

	// A corrupt cache file only costs a refetch
	if err := cache.Load(); err != nil {
		cache.documents = make(map[string]*DocumentCacheItem)
	}

	return cache, nil
}

// Load loads cache from file
func (c *DocumentCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	var fileCache struct {
		Documents map[string]*DocumentCacheItem `json:"documents"`
	}
	if err := json.Unmarshal(data, &fileCache); err != nil {
		return fmt.Errorf("failed to parse cache file: %w", err)
	}

	if fileCache.Documents != nil {
		c.documents = fileCache.Documents
	}
	return nil
}

// Save saves cache to file
func (c *DocumentCache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.dirty {
		return nil
	}

	path := c.filePath()
	fileCache := struct {
		Documents map[string]*DocumentCacheItem `json:"documents"`
	}{
		Documents: c.documents,
	}

	data, err := json.MarshalIndent(fileCache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize cache: %w", err)
	}

	// Write to temp file first, then rename (atomic operation)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save cache file: %w", err)
	}

	c.dirty = false
	return nil
}

// Get returns a fresh cached document
// Returns (nil, false) if the document isn't cached or has expired
func (c *DocumentCache) Get(source string) (*DocumentCacheItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.documents[source]
	if !exists || c.now().Sub(item.CachedAt) > c.ttl {
		return nil, false
	}
	return item, true
}

// Stale returns a cached document even if it has expired, for revalidation
// or as a fallback when the source is unreachable
func (c *DocumentCache) Stale(source string) (*DocumentCacheItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.documents[source]
	return item, exists
}

// Set stores a document
func (c *DocumentCache) Set(source string, data []byte, etag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.documents[source] = &DocumentCacheItem{
		Data:     data,
		ETag:     etag,
		CachedAt: c.now(),
	}
	c.dirty = true
}

// Touch marks a cached document as fresh again, e.g. after a 304 response
func (c *DocumentCache) Touch(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item, ok := c.documents[source]; ok {
		item.CachedAt = c.now()
		c.dirty = true
	}
}

// Delete removes one cached document
func (c *DocumentCache) Delete(source string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.documents[source]; ok {
		delete(c.documents, source)
		c.dirty = true
	}
}

// CleanExpired removes expired cache entries
func (c *DocumentCache) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for source, item := range c.documents {
		if now.Sub(item.CachedAt) > c.ttl {
			delete(c.documents, source)
			removed++
		}
	}
	if removed > 0 {
		c.dirty = true
	}
	return removed
}

// Clear clears all cache
func (c *DocumentCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.documents = make(map[string]*DocumentCacheItem)
	c.dirty = false

	if err := os.Remove(c.filePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// filePath returns the cache file path
func (c *DocumentCache) filePath() string {
	return filepath.Join(c.dir, cacheFileName)
}

// Stats returns cache statistics
func (c *DocumentCache) Stats() (total, expired int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	for _, item := range c.documents {
		total++
		if now.Sub(item.CachedAt) > c.ttl {
			expired++
		}
	}
	return
}
