package driven

import (
	"context"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

// CorpusStore owns the course records for the lifetime of the process.
// Variants (memory, JSON document, relational, spreadsheet) are selected
// at configuration time.
//
// Stores must decode malformed embeddings as nil rather than failing,
// so the course drops out of scoring instead of breaking the batch.
type CorpusStore interface {
	// List returns every course in stable order.
	List(ctx context.Context) ([]domain.Course, error)

	// Get retrieves a course by code.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, code string) (*domain.Course, error)

	// Upsert inserts a course or replaces the record with the same code.
	Upsert(ctx context.Context, course domain.Course) error

	// SaveDerived persists derived fields (normalised text, keywords,
	// embedding) for courses that already exist.
	SaveDerived(ctx context.Context, courses []domain.Course) error

	// Close releases resources.
	Close() error
}

// CacheStore is the durable backing of the overlap cache.
type CacheStore interface {
	// LoadAll returns every persisted entry keyed by cache key.
	LoadAll(ctx context.Context) (map[string]domain.CacheEntry, error)

	// Put persists one entry. It must not return before the write is durable.
	Put(ctx context.Context, key string, entry domain.CacheEntry) error

	// Close releases resources.
	Close() error
}
