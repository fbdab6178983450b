package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore is an in-memory implementation of driven.CorpusStore.
// Courses are listed in insertion order.
type CorpusStore struct {
	mu      sync.RWMutex
	courses []domain.Course
	index   map[string]int
}

// NewCorpusStore creates a new in-memory corpus store seeded with courses.
func NewCorpusStore(courses ...domain.Course) *CorpusStore {
	s := &CorpusStore{index: make(map[string]int)}
	for _, c := range courses {
		s.put(c)
	}
	return s
}

// List returns a copy of every course.
func (s *CorpusStore) List(_ context.Context) ([]domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Course, len(s.courses))
	for i := range s.courses {
		out[i] = cloneCourse(s.courses[i])
	}
	return out, nil
}

// Get retrieves a course by code.
func (s *CorpusStore) Get(_ context.Context, code string) (*domain.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := cloneCourse(s.courses[i])
	return &c, nil
}

// Upsert inserts or replaces a course.
func (s *CorpusStore) Upsert(_ context.Context, course domain.Course) error {
	if course.IsEphemeral() {
		return domain.ErrEphemeralCourse
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(course)
	return nil
}

// SaveDerived updates derived fields of existing courses.
// Unknown codes are ignored.
func (s *CorpusStore) SaveDerived(_ context.Context, courses []domain.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range courses {
		i, ok := s.index[c.Code]
		if !ok {
			continue
		}
		s.courses[i].NormalizedText = c.NormalizedText
		s.courses[i].Keywords = append([]string(nil), c.Keywords...)
		s.courses[i].Embedding = append([]float32(nil), c.Embedding...)
	}
	return nil
}

// Close is a no-op for the memory store.
func (s *CorpusStore) Close() error {
	return nil
}

func (s *CorpusStore) put(c domain.Course) {
	c = cloneCourse(c)
	if i, ok := s.index[c.Code]; ok {
		s.courses[i] = c
		return
	}
	s.index[c.Code] = len(s.courses)
	s.courses = append(s.courses, c)
}

// cloneCourse copies the slice and pointer fields so callers cannot
// mutate stored state.
func cloneCourse(c domain.Course) domain.Course {
	if c.Literature != nil {
		lit := *c.Literature
		c.Literature = &lit
	}
	if c.Keywords != nil {
		c.Keywords = append([]string(nil), c.Keywords...)
	}
	if c.Embedding != nil {
		c.Embedding = append([]float32(nil), c.Embedding...)
	}
	return c
}
