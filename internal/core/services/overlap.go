package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driving"
	"github.com/custodia-labs/coursecheck/internal/logger"
	"github.com/custodia-labs/coursecheck/internal/textproc"
)

// Ensure OverlapService implements the interface.
var _ driving.OverlapService = (*OverlapService)(nil)

const tracerName = "github.com/custodia-labs/coursecheck/internal/core/services"

// OverlapService scores a candidate against the corpus and the corpus
// against itself.
type OverlapService struct {
	corpus    driven.CorpusStore
	cache     *OverlapCache
	embedder  driven.EmbeddingService
	explainer driven.Explainer

	mu       sync.RWMutex
	settings domain.AnalysisSettings

	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

// NewOverlapService creates an overlap service.
// The embedder is required for scoring; a nil embedder fails every request
// with domain.ErrEmbeddingUnavailable.
func NewOverlapService(
	corpus driven.CorpusStore,
	cache *OverlapCache,
	embedder driven.EmbeddingService,
	settings domain.AnalysisSettings,
) *OverlapService {
	return &OverlapService{
		corpus:   corpus,
		cache:    cache,
		embedder: embedder,
		settings: settings,
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// SetExplainer enables explanations for high-scoring overlaps.
func (s *OverlapService) SetExplainer(explainer driven.Explainer) {
	s.explainer = explainer
}

// ApplySettings swaps the analysis thresholds used by later requests.
func (s *OverlapService) ApplySettings(settings domain.AnalysisSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	logger.Debug("analysis settings applied: threshold=%.2f explain>=%.2f",
		settings.OverlapThreshold, settings.ExplainThreshold)
}

func (s *OverlapService) analysisSettings() domain.AnalysisSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SubmitCandidate compares a proposed course against every existing course.
func (s *OverlapService) SubmitCandidate(ctx context.Context, candidate domain.Candidate) (*domain.SubmissionReport, error) {
	ctx, span := s.tracer.Start(ctx, "overlap.submit_candidate")
	defer span.End()

	if strings.TrimSpace(candidate.Name) == "" {
		return nil, fmt.Errorf("%w: candidate name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(candidate.Text) == "" {
		return nil, fmt.Errorf("%w: candidate learning outcomes and content are required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	settings := s.analysisSettings()
	scorer := NewScorer(settings.OverlapThreshold)
	logger.Section("Submit Candidate")

	courses, err := s.corpus.List(ctx)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("list corpus: %w", err))
	}
	span.SetAttributes(attribute.Int("corpus.size", len(courses)))

	cand := candidate.Course()
	candText, _, err := s.cache.GetOrCompute(ctx, &cand)
	if err != nil {
		return nil, s.fail(span, err)
	}
	if candText == "" {
		return nil, fmt.Errorf("%w: candidate text has no content words", domain.ErrInvalidInput)
	}
	logger.Debug("candidate normalised to %d bytes", len(candText))

	done := logger.Stage("embed candidate")
	candVec, err := s.embedder.Embed(ctx, candText)
	done()
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("embed candidate: %w", err))
	}
	if !UsableEmbedding(candVec, 0) {
		return nil, s.fail(span, fmt.Errorf("embed candidate: %w", domain.ErrEmptyEmbedding))
	}

	report := &domain.SubmissionReport{
		ID:                 s.newID(),
		CreatedAt:          s.now(),
		OverlappingCourses: []domain.OverlapResult{},
		LiteratureMatches:  []domain.LiteratureMatch{},
		AdditionalInfo:     make([]domain.CourseSummary, 0, len(courses)),
	}

	for i := range courses {
		c := &courses[i]
		report.AdditionalInfo = append(report.AdditionalInfo, c.Summary())

		text, _, err := s.cache.GetOrCompute(ctx, c)
		if err != nil {
			return nil, s.fail(span, err)
		}
		if text == "" {
			logger.Debug("skipping %s: no content words", c.DisplayCode())
			continue
		}

		vec := c.Embedding
		if text != candText && !s.trustedEmbedding(c, text, len(candVec)) {
			continue
		}

		score, exact, err := scorer.Score(candText, candVec, text, vec)
		if err != nil {
			logger.Warn("skipping %s: %v", c.DisplayCode(), err)
			continue
		}
		if !scorer.Reportable(score, exact) {
			continue
		}

		result := domain.OverlapResult{
			CourseCode: c.DisplayCode(),
			CourseName: c.DisplayName(),
			Score:      score,
			Keywords:   domain.ExactMatchKeywords,
		}
		if !exact {
			result.Keywords = textproc.JoinPhrases(s.cache.Extractor().Significant(text))
		}
		if s.explainer != nil && score >= settings.ExplainThreshold {
			result.Explanation = s.explain(ctx, candidate.Text, c)
		}
		report.OverlappingCourses = append(report.OverlappingCourses, result)
	}

	if lit := CleanLiteratureInput(candidate.Literature); lit != "" {
		if matches := MatchLiterature(lit, courses); matches != nil {
			report.LiteratureMatches = matches
		}
	}

	span.SetAttributes(
		attribute.Int("overlap.results", len(report.OverlappingCourses)),
		attribute.Int("literature.matches", len(report.LiteratureMatches)),
	)
	logger.Info("candidate %q overlaps %d course(s)", candidate.Name, len(report.OverlappingCourses))
	return report, nil
}

// trustedEmbedding reports whether a stored embedding can be scored.
// Vectors computed from older text are treated as absent.
func (s *OverlapService) trustedEmbedding(c *domain.Course, text string, dim int) bool {
	if !UsableEmbedding(c.Embedding, dim) {
		logger.Warn("skipping %s: missing or malformed embedding (run `coursecheck corpus index`)", c.DisplayCode())
		return false
	}
	if c.NormalizedText != "" && c.NormalizedText != text {
		logger.Warn("skipping %s: embedding is stale (run `coursecheck corpus index`)", c.DisplayCode())
		return false
	}
	return true
}

func (s *OverlapService) explain(ctx context.Context, candidateText string, c *domain.Course) string {
	explanation, err := s.explainer.Explain(ctx, candidateText, c.RawText())
	if err != nil {
		logger.Error("explain overlap with %s: %v", c.DisplayCode(), err)
		return ""
	}
	return explanation
}

// AnalyzeAll compares every unordered pair of resident courses once,
// embedding the whole corpus with a single batch call.
func (s *OverlapService) AnalyzeAll(ctx context.Context) ([]domain.PairReport, error) {
	ctx, span := s.tracer.Start(ctx, "overlap.analyze_all")
	defer span.End()

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	scorer := NewScorer(s.analysisSettings().OverlapThreshold)
	logger.Section("Analyze All")

	courses, err := s.corpus.List(ctx)
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("list corpus: %w", err))
	}
	span.SetAttributes(attribute.Int("corpus.size", len(courses)))

	// Only courses with content words take part.
	var (
		scored []*domain.Course
		texts  []string
	)
	for i := range courses {
		text, _, err := s.cache.GetOrCompute(ctx, &courses[i])
		if err != nil {
			return nil, s.fail(span, err)
		}
		if text == "" {
			logger.Debug("skipping %s: no content words", courses[i].DisplayCode())
			continue
		}
		scored = append(scored, &courses[i])
		texts = append(texts, text)
	}

	pairs := []domain.PairReport{}
	if len(scored) < 2 {
		return pairs, nil
	}

	done := logger.Stage(fmt.Sprintf("embed %d courses", len(texts)))
	vecs, err := s.embedder.EmbedBatch(ctx, texts)
	done()
	if err != nil {
		return nil, s.fail(span, fmt.Errorf("embed corpus: %w", err))
	}
	if len(vecs) != len(texts) {
		return nil, s.fail(span, fmt.Errorf("embed corpus: got %d vectors for %d texts", len(vecs), len(texts)))
	}

	dim := majorityDimension(vecs)
	for i, v := range vecs {
		if !UsableEmbedding(v, dim) {
			logger.Warn("excluding %s: malformed embedding", scored[i].DisplayCode())
			vecs[i] = nil
		}
	}

	for i := 0; i < len(scored); i++ {
		if err := ctx.Err(); err != nil {
			return nil, s.fail(span, err)
		}
		for j := i + 1; j < len(scored); j++ {
			if texts[i] != texts[j] && (vecs[i] == nil || vecs[j] == nil) {
				continue
			}
			score, exact, err := scorer.Score(texts[i], vecs[i], texts[j], vecs[j])
			if err != nil || !scorer.Reportable(score, exact) {
				continue
			}
			a, b := scored[i], scored[j]
			pairs = append(pairs, domain.PairReport{
				CourseCode1:      a.DisplayCode(),
				CourseName1:      a.DisplayName(),
				CourseCode2:      b.DisplayCode(),
				CourseName2:      b.DisplayName(),
				OverlapScore:     score,
				CommonLiterature: PairLiterature(a, b),
			})
		}
	}

	span.SetAttributes(attribute.Int("overlap.pairs", len(pairs)))
	logger.Info("analyzed %d courses, %d overlapping pair(s)", len(scored), len(pairs))
	return pairs, nil
}

func (s *OverlapService) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// majorityDimension returns the most common non-zero vector length.
// Ties go to the length seen first.
func majorityDimension(vecs [][]float32) int {
	counts := make(map[int]int)
	best, bestCount := 0, 0
	for _, v := range vecs {
		if len(v) == 0 {
			continue
		}
		counts[len(v)]++
		if counts[len(v)] > bestCount {
			best, bestCount = len(v), counts[len(v)]
		}
	}
	return best
}
