package external

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/medreport-assistant-server/internal/domain"
)

// FileCache is the durable cache tier: a flat JSON document mapping
// normalized queries to lookup results. It is unbounded and has no TTL or
// eviction; growth is accepted as a simplicity trade-off. Every Set rewrites
// the whole file.
type FileCache struct {
	path    string
	mu      sync.Mutex
	entries map[string]*domain.MedicalInfo
}

// NewFileCache opens (or initializes) a JSON-file cache. A missing or
// malformed backing file yields an empty cache rather than an error.
func NewFileCache(path string) (*FileCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &FileCache{
		path:    path,
		entries: map[string]*domain.MedicalInfo{},
	}

	b, err := os.ReadFile(path)
	if err == nil {
		var entries map[string]*domain.MedicalInfo
		if json.Unmarshal(b, &entries) == nil && entries != nil {
			c.entries = entries
		}
	}
	return c, nil
}

// Get returns the cached result for key.
func (c *FileCache) Get(ctx context.Context, key string) (*domain.MedicalInfo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	cp := *info
	return &cp, true
}

// Set stores a result and persists the whole cache document.
func (c *FileCache) Set(ctx context.Context, key string, info *domain.MedicalInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *info
	c.entries[key] = &cp

	b, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}
	if err := os.WriteFile(c.path, b, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// Len returns the number of cached entries.
func (c *FileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close is a no-op for the file backend.
func (c *FileCache) Close() error {
	return nil
}
