package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is an in-memory implementation of driven.CacheStore.
// Entries live for the lifetime of the process.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
	puts    int
}

// NewCacheStore creates a new in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{entries: make(map[string]domain.CacheEntry)}
}

// LoadAll returns a copy of every entry.
func (s *CacheStore) LoadAll(_ context.Context) (map[string]domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]domain.CacheEntry, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

// Put stores one entry.
func (s *CacheStore) Put(_ context.Context, key string, entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	s.puts++
	return nil
}

// Puts returns how many writes the store has received.
func (s *CacheStore) Puts() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// Close is a no-op for the memory store.
func (s *CacheStore) Close() error {
	return nil
}
