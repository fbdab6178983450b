package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/logger"
	"github.com/custodia-labs/coursecheck/internal/textproc"
)

// OverlapCache memoises normalised text and keywords per course version.
//
// Entries are keyed by the course fingerprint plus the stopword signature,
// so editing a course or changing the stopword list misses the cache rather
// than returning stale text. Ephemeral candidates are never cached.
type OverlapCache struct {
	mu      sync.Mutex
	store   driven.CacheStore
	entries map[string]domain.CacheEntry
	loaded  bool

	normaliser *textproc.Normaliser
	extractor  *textproc.KeywordExtractor
	now        func() time.Time
}

// NewOverlapCache creates a cache backed by store. A nil store keeps
// entries in memory only.
func NewOverlapCache(store driven.CacheStore, normaliser *textproc.Normaliser, extractor *textproc.KeywordExtractor) *OverlapCache {
	return &OverlapCache{
		store:      store,
		entries:    make(map[string]domain.CacheEntry),
		normaliser: normaliser,
		extractor:  extractor,
		now:        time.Now,
	}
}

// Normaliser returns the normaliser used on cache misses.
func (c *OverlapCache) Normaliser() *textproc.Normaliser {
	return c.normaliser
}

// Extractor returns the keyword extractor used on cache misses.
func (c *OverlapCache) Extractor() *textproc.KeywordExtractor {
	return c.extractor
}

// Key returns the cache key for the current content of course.
func (c *OverlapCache) Key(course *domain.Course) string {
	return course.Fingerprint() + ":" + c.normaliser.Signature()
}

// Derive normalises the course text and ranks its keywords without
// touching the cache.
func (c *OverlapCache) Derive(course *domain.Course) (string, []string) {
	text := c.normaliser.Normalise(course.RawText())
	return text, c.extractor.Ranked(text)
}

// GetOrCompute returns the normalised text and ranked keywords for course.
// Misses are computed, stored and persisted before returning. A failed
// persist is logged; the computed values are still returned.
func (c *OverlapCache) GetOrCompute(ctx context.Context, course *domain.Course) (string, []string, error) {
	if course.IsEphemeral() {
		text, keywords := c.Derive(course)
		return text, keywords, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadLocked(ctx); err != nil {
		return "", nil, err
	}

	key := c.Key(course)
	if entry, ok := c.entries[key]; ok {
		return entry.NormalizedText, entry.Keywords, nil
	}

	text, keywords := c.Derive(course)
	entry := domain.CacheEntry{
		CourseCode:     course.Code,
		Fingerprint:    course.Fingerprint(),
		NormalizedText: text,
		Keywords:       keywords,
		CreatedAt:      c.now(),
	}
	c.entries[key] = entry
	logger.Debug("cache miss for %s", course.Code)

	if c.store != nil {
		if err := c.store.Put(ctx, key, entry); err != nil {
			logger.Warn("cache: persist %s: %v", course.Code, err)
		}
	}
	return text, keywords, nil
}

// Len returns the number of resident entries.
func (c *OverlapCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Load reads persisted entries. It is called lazily on first use.
func (c *OverlapCache) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

func (c *OverlapCache) loadLocked(ctx context.Context) error {
	if c.loaded || c.store == nil {
		c.loaded = true
		return nil
	}
	persisted, err := c.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load overlap cache: %w", err)
	}
	for k, v := range persisted {
		c.entries[k] = v
	}
	c.loaded = true
	logger.Debug("cache: loaded %d entries", len(persisted))
	return nil
}
