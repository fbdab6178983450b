package driving

import (
	"context"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
)

// CorpusService manages the resident course corpus.
type CorpusService interface {
	// List returns every course.
	List(ctx context.Context) ([]domain.Course, error)

	// Get returns one course by code.
	Get(ctx context.Context, code string) (*domain.Course, error)

	// Upsert stores a single course and recomputes its derived fields.
	// Ephemeral candidates are rejected with domain.ErrEphemeralCourse.
	Upsert(ctx context.Context, course domain.Course) error

	// Import copies every course from src into the corpus and indexes it.
	// Returns the number of courses imported.
	Import(ctx context.Context, src driven.CorpusStore) (int, error)

	// Index computes missing or stale derived fields with a single batch
	// embedding call and persists them. Returns the number of courses updated.
	Index(ctx context.Context) (int, error)
}
