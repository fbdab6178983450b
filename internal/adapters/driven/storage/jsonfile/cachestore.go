package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/logger"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore persists cache entries as a single JSON object.
type CacheStore struct {
	path string

	mu      sync.Mutex
	entries map[string]domain.CacheEntry
}

// OpenCacheStore loads the cache file at path. A missing or corrupt file
// starts an empty cache; entries are recomputed on demand.
func OpenCacheStore(path string) (*CacheStore, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}

	entries := make(map[string]domain.CacheEntry)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			logger.Warn("cache %s is corrupt, starting empty: %v", path, err)
			entries = make(map[string]domain.CacheEntry)
		}
	}
	return &CacheStore{path: path, entries: entries}, nil
}

// LoadAll returns a copy of every entry.
func (s *CacheStore) LoadAll(_ context.Context) (map[string]domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.CacheEntry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

// Put stores one entry and rewrites the file before returning.
// On a failed write the entry is not kept in memory either.
func (s *CacheStore) Put(_ context.Context, key string, entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.entries[key]
	s.entries[key] = entry
	if err := writeJSON(s.path, s.entries); err != nil {
		if existed {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return fmt.Errorf("write cache %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; every Put is already on disk.
func (s *CacheStore) Close() error {
	return nil
}
