package mcp

import (
	"context"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
)

// mockOverlapService is a mock implementation of driving.OverlapService.
type mockOverlapService struct {
	report    *domain.SubmissionReport
	pairs     []domain.PairReport
	err       error
	submitted []domain.Candidate
}

func (m *mockOverlapService) SubmitCandidate(_ context.Context, c domain.Candidate) (*domain.SubmissionReport, error) {
	m.submitted = append(m.submitted, c)
	return m.report, m.err
}

func (m *mockOverlapService) AnalyzeAll(_ context.Context) ([]domain.PairReport, error) {
	return m.pairs, m.err
}

func (m *mockOverlapService) ApplySettings(_ domain.AnalysisSettings) {}

// mockCorpusService is a mock implementation of driving.CorpusService.
type mockCorpusService struct {
	courses []domain.Course
	err     error
}

func (m *mockCorpusService) List(_ context.Context) ([]domain.Course, error) {
	return m.courses, m.err
}

func (m *mockCorpusService) Get(_ context.Context, code string) (*domain.Course, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.courses {
		if m.courses[i].Code == code {
			c := m.courses[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockCorpusService) Upsert(_ context.Context, _ domain.Course) error {
	return m.err
}

func (m *mockCorpusService) Import(_ context.Context, _ driven.CorpusStore) (int, error) {
	return 0, m.err
}

func (m *mockCorpusService) Index(_ context.Context) (int, error) {
	return 0, m.err
}

func sampleCourses() []domain.Course {
	lit := "Book: 'Database Systems'"
	return []domain.Course{
		{
			Code:       "DB100",
			Name:       "Databases",
			Content:    "Relational algebra.",
			Literature: &lit,
			Details:    domain.CourseDetails{School: "Business"},
			Embedding:  []float32{1, 0},
		},
		{Code: "AI200", Content: "Search and planning."},
	}
}
