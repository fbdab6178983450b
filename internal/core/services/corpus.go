package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driving"
	"github.com/custodia-labs/coursecheck/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// CorpusService manages course records and keeps their derived fields
// (normalised text, keywords, embedding) in step with the raw text.
type CorpusService struct {
	store    driven.CorpusStore
	cache    *OverlapCache
	embedder driven.EmbeddingService
	tracer   trace.Tracer
}

// NewCorpusService creates a corpus service. The embedder may be nil, in
// which case Upsert stores courses without embeddings and Index fails.
func NewCorpusService(store driven.CorpusStore, cache *OverlapCache, embedder driven.EmbeddingService) *CorpusService {
	return &CorpusService{
		store:    store,
		cache:    cache,
		embedder: embedder,
		tracer:   otel.Tracer(tracerName),
	}
}

// List returns every course.
func (s *CorpusService) List(ctx context.Context) ([]domain.Course, error) {
	return s.store.List(ctx)
}

// Get returns one course by code.
func (s *CorpusService) Get(ctx context.Context, code string) (*domain.Course, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: course code is required", domain.ErrInvalidInput)
	}
	return s.store.Get(ctx, code)
}

// Upsert stores one course with freshly computed derived fields.
func (s *CorpusService) Upsert(ctx context.Context, course domain.Course) error {
	ctx, span := s.tracer.Start(ctx, "corpus.upsert")
	defer span.End()

	course.Code = strings.TrimSpace(course.Code)
	if course.IsEphemeral() {
		return domain.ErrEphemeralCourse
	}
	if strings.TrimSpace(course.Name) == "" {
		return fmt.Errorf("%w: course name is required", domain.ErrInvalidInput)
	}
	span.SetAttributes(attribute.String("course.code", course.Code))

	course.ClearDerived()
	text, keywords, err := s.cache.GetOrCompute(ctx, &course)
	if err != nil {
		return err
	}
	course.NormalizedText = text
	course.Keywords = keywords

	switch {
	case s.embedder == nil:
		logger.Warn("no embedding service configured; %s stored without embedding", course.Code)
	case text == "":
		logger.Warn("%s has no content words; stored without embedding", course.Code)
	default:
		vec, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return fmt.Errorf("embed %s: %w", course.Code, err)
		}
		if !UsableEmbedding(vec, 0) {
			return fmt.Errorf("embed %s: %w", course.Code, domain.ErrEmptyEmbedding)
		}
		course.Embedding = vec
	}

	if err := s.store.Upsert(ctx, course); err != nil {
		return fmt.Errorf("store %s: %w", course.Code, err)
	}
	logger.Info("stored course %s", course.Code)
	return nil
}

// Import copies every persistable course from src and then indexes the corpus.
func (s *CorpusService) Import(ctx context.Context, src driven.CorpusStore) (int, error) {
	ctx, span := s.tracer.Start(ctx, "corpus.import")
	defer span.End()

	courses, err := src.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("read import source: %w", err)
	}

	imported := 0
	for _, c := range courses {
		c.Code = strings.TrimSpace(c.Code)
		if c.IsEphemeral() {
			logger.Warn("import: skipping course %q without a code", c.Name)
			continue
		}
		if err := s.store.Upsert(ctx, c); err != nil {
			return imported, fmt.Errorf("import %s: %w", c.Code, err)
		}
		imported++
	}
	span.SetAttributes(attribute.Int("corpus.imported", imported))
	logger.Info("imported %d course(s)", imported)

	if _, err := s.Index(ctx); err != nil {
		return imported, err
	}
	return imported, nil
}

// Index recomputes derived fields for courses whose normalised text or
// embedding is missing or stale, with one batch embedding call.
func (s *CorpusService) Index(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "corpus.index")
	defer span.End()

	courses, err := s.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list corpus: %w", err)
	}

	var (
		stale []domain.Course
		texts []string
	)
	// Vectors that disagree with the rest of the corpus are re-embedded.
	stored := make([][]float32, len(courses))
	for i := range courses {
		stored[i] = courses[i].Embedding
	}
	dim := majorityDimension(stored)

	for i := range courses {
		c := courses[i]
		text, keywords, err := s.cache.GetOrCompute(ctx, &c)
		if err != nil {
			return 0, err
		}
		if text == "" {
			continue
		}
		if c.NormalizedText == text && UsableEmbedding(c.Embedding, dim) {
			continue
		}
		c.NormalizedText = text
		c.Keywords = keywords
		stale = append(stale, c)
		texts = append(texts, text)
	}
	span.SetAttributes(attribute.Int("corpus.stale", len(stale)))
	if len(stale) == 0 {
		logger.Info("corpus index is up to date")
		return 0, nil
	}
	if s.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}

	done := logger.Stage(fmt.Sprintf("embed %d stale course(s)", len(stale)))
	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	done()
	if err != nil {
		return 0, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vecs) != len(stale) {
		return 0, fmt.Errorf("embed corpus: got %d vectors for %d texts", len(vecs), len(stale))
	}
	for i := range stale {
		if !UsableEmbedding(vecs[i], 0) {
			return 0, fmt.Errorf("embed %s: %w", stale[i].Code, domain.ErrEmptyEmbedding)
		}
		stale[i].Embedding = vecs[i]
	}

	if err := s.store.SaveDerived(ctx, stale); err != nil {
		return 0, fmt.Errorf("save derived fields: %w", err)
	}
	logger.Info("indexed %d course(s)", len(stale))
	return len(stale), nil
}
