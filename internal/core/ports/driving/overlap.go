package driving

import (
	"context"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

// OverlapService detects overlap between courses.
type OverlapService interface {
	// SubmitCandidate compares a proposed course against the whole corpus.
	// Name and Text are mandatory; Literature is optional.
	SubmitCandidate(ctx context.Context, candidate domain.Candidate) (*domain.SubmissionReport, error)

	// AnalyzeAll compares every unordered pair of resident courses once.
	AnalyzeAll(ctx context.Context) ([]domain.PairReport, error)

	// ApplySettings swaps the analysis thresholds used by later requests.
	ApplySettings(settings domain.AnalysisSettings)
}
