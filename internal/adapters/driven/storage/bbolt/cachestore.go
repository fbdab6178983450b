// Package bbolt implements driven.CacheStore using bbolt (embedded B+ tree).
// Entries are JSON values in a single "cache" bucket keyed by cache key.
// Each Put is its own transaction and is fsynced before it returns.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/logger"
)

var bucketCache = []byte("cache")

// lockTimeout bounds the wait for the file lock held by another process.
const lockTimeout = 1 * time.Second

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is a driven.CacheStore backed by bbolt.
type CacheStore struct {
	db *bolt.DB
}

// OpenCacheStore opens (or creates) a bbolt database at path.
func OpenCacheStore(path string) (*CacheStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketCache)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init: %w", err)
	}
	return &CacheStore{db: db}, nil
}

// LoadAll returns every entry. Values that fail to decode are skipped.
func (s *CacheStore) LoadAll(_ context.Context) (map[string]domain.CacheEntry, error) {
	entries := make(map[string]domain.CacheEntry)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCache).ForEach(func(k, v []byte) error {
			var e domain.CacheEntry
			if err := json.Unmarshal(v, &e); err != nil {
				logger.Warn("bbolt cache: skipping undecodable entry %q: %v", k, err)
				return nil
			}
			entries[string(k)] = e
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("bbolt read: %w", err)
	}
	return entries, nil
}

// Put stores one entry.
func (s *CacheStore) Put(_ context.Context, key string, entry domain.CacheEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketCache).Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("bbolt write: %w", err)
	}
	return nil
}

// Close closes the underlying bbolt database.
func (s *CacheStore) Close() error {
	return s.db.Close()
}
