package relational

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/logger"
)

// cacheStore implements driven.CacheStore.
type cacheStore struct {
	store *Store
}

var _ driven.CacheStore = (*cacheStore)(nil)

// LoadAll returns every persisted entry keyed by cache key.
func (s *cacheStore) LoadAll(ctx context.Context) (map[string]domain.CacheEntry, error) {
	rows, err := s.store.query(ctx, `
		SELECT cache_key, course_code, fingerprint, normalized_text, keywords, created_at
		FROM cache_entries
	`)
	if err != nil {
		return nil, fmt.Errorf("querying cache entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]domain.CacheEntry)
	for rows.Next() {
		var (
			key, keywords, createdAt string
			e                        domain.CacheEntry
		)
		if err := rows.Scan(&key, &e.CourseCode, &e.Fingerprint, &e.NormalizedText,
			&keywords, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning cache entry: %w", err)
		}
		e.Keywords = decodeKeywords(keywords)
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			logger.Debug("cache entry %s: unparseable timestamp %q", key, createdAt)
		}
		entries[key] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating cache entries: %w", err)
	}
	return entries, nil
}

// Put persists one entry, replacing any entry under the same key.
func (s *cacheStore) Put(ctx context.Context, key string, entry domain.CacheEntry) error {
	keywords, err := encodeKeywords(entry.Keywords)
	if err != nil {
		return fmt.Errorf("marshalling keywords: %w", err)
	}

	_, err = s.store.exec(ctx, `
		INSERT INTO cache_entries (cache_key, course_code, fingerprint, normalized_text, keywords, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			course_code = excluded.course_code,
			fingerprint = excluded.fingerprint,
			normalized_text = excluded.normalized_text,
			keywords = excluded.keywords,
			created_at = excluded.created_at
	`, key, entry.CourseCode, entry.Fingerprint, entry.NormalizedText, keywords,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving cache entry: %w", err)
	}
	return nil
}

// Close releases this handle on the shared connection.
func (s *cacheStore) Close() error {
	return s.store.release()
}
