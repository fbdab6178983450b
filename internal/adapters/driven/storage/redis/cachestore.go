// Package redis implements driven.CacheStore on a Redis server, so several
// coursecheck processes can share derived text.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/logger"
)

// DefaultPrefix namespaces cache keys.
const DefaultPrefix = "coursecheck:cache:"

const (
	dialTimeout = 5 * time.Second
	scanBatch   = 500
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore stores each entry as a JSON string under prefix+key.
type CacheStore struct {
	rdb    goredis.UniversalClient
	prefix string
}

// Config holds connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// OpenCacheStore connects and pings the server.
func OpenCacheStore(ctx context.Context, cfg Config) (*CacheStore, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("redis: missing address")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewCacheStore(rdb, cfg.Prefix), nil
}

// NewCacheStore wraps an existing client.
func NewCacheStore(rdb goredis.UniversalClient, prefix string) *CacheStore {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &CacheStore{rdb: rdb, prefix: prefix}
}

// LoadAll scans every key under the prefix.
func (s *CacheStore) LoadAll(ctx context.Context) (map[string]domain.CacheEntry, error) {
	var keys []string
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}

	entries := make(map[string]domain.CacheEntry, len(keys))
	for start := 0; start < len(keys); start += scanBatch {
		batch := keys[start:min(start+scanBatch, len(keys))]
		values, err := s.rdb.MGet(ctx, batch...).Result()
		if err != nil {
			return nil, fmt.Errorf("redis mget: %w", err)
		}
		for i, v := range values {
			raw, ok := v.(string)
			if !ok {
				continue // expired between SCAN and MGET
			}
			var e domain.CacheEntry
			if err := json.Unmarshal([]byte(raw), &e); err != nil {
				logger.Warn("redis cache: skipping undecodable entry %q: %v", batch[i], err)
				continue
			}
			entries[strings.TrimPrefix(batch[i], s.prefix)] = e
		}
	}
	return entries, nil
}

// Put stores one entry without expiry.
func (s *CacheStore) Put(ctx context.Context, key string, entry domain.CacheEntry) error {
	value, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *CacheStore) Close() error {
	return s.rdb.Close()
}
