package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/tabular"
	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/logger"
)

// Keys of the derived fields in a corpus document.
const (
	keyNormalized = "combined_info"
	keyKeywords   = "Keywords"
	keyEmbedding  = "embedding"
)

// Ensure CorpusStore implements the interface.
var _ driven.CorpusStore = (*CorpusStore)(nil)

// CorpusStore keeps the corpus in memory and rewrites the JSON document
// after every change.
type CorpusStore struct {
	path string

	mu      sync.Mutex // serialises mutate-then-write
	courses *memory.CorpusStore
}

// OpenCorpusStore loads the document at path. A missing file is an empty corpus.
func OpenCorpusStore(path string) (*CorpusStore, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	courses, err := DecodeCorpus(data)
	if err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", path, err)
	}
	return &CorpusStore{path: path, courses: memory.NewCorpusStore(courses...)}, nil
}

// Path returns the document path.
func (s *CorpusStore) Path() string {
	return s.path
}

// List returns every course in document order.
func (s *CorpusStore) List(ctx context.Context) ([]domain.Course, error) {
	return s.courses.List(ctx)
}

// Get retrieves a course by code.
func (s *CorpusStore) Get(ctx context.Context, code string) (*domain.Course, error) {
	return s.courses.Get(ctx, code)
}

// Upsert inserts or replaces a course and rewrites the document.
func (s *CorpusStore) Upsert(ctx context.Context, course domain.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.courses.Upsert(ctx, course); err != nil {
		return err
	}
	return s.flush(ctx)
}

// SaveDerived updates derived fields and rewrites the document.
func (s *CorpusStore) SaveDerived(ctx context.Context, courses []domain.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.courses.SaveDerived(ctx, courses); err != nil {
		return err
	}
	return s.flush(ctx)
}

// Close is a no-op; every change is already on disk.
func (s *CorpusStore) Close() error {
	return nil
}

func (s *CorpusStore) flush(ctx context.Context) error {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return err
	}
	if err := writeJSON(s.path, EncodeCorpus(courses)); err != nil {
		return fmt.Errorf("write corpus %s: %w", s.path, err)
	}
	return nil
}

// EncodeCorpus renders courses in document form.
func EncodeCorpus(courses []domain.Course) []map[string]any {
	docs := make([]map[string]any, 0, len(courses))
	for _, c := range courses {
		doc := make(map[string]any, len(tabular.Headers())+3)
		for k, v := range tabular.ToRecord(c) {
			doc[k] = v
		}
		if c.NormalizedText != "" {
			doc[keyNormalized] = c.NormalizedText
		}
		if len(c.Keywords) > 0 {
			doc[keyKeywords] = c.Keywords
		}
		if len(c.Embedding) > 0 {
			doc[keyEmbedding] = c.Embedding
		}
		docs = append(docs, doc)
	}
	return docs
}

// DecodeCorpus parses a corpus document. Cells may be strings, numbers or
// null. A malformed embedding or keyword list is dropped with a warning;
// the course itself is kept.
func DecodeCorpus(data []byte) ([]domain.Course, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var docs []map[string]json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}

	courses := make([]domain.Course, 0, len(docs))
	for i, doc := range docs {
		rec := make(map[string]string, len(doc))
		for k, raw := range doc {
			rec[k] = cellText(raw)
		}
		c := tabular.FromRecord(rec)
		if c.IsEphemeral() {
			logger.Warn("corpus record %d has no %s, skipping", i, tabular.ColCode)
			continue
		}

		c.NormalizedText = rec[keyNormalized]
		if raw, ok := doc[keyKeywords]; ok {
			if err := json.Unmarshal(raw, &c.Keywords); err != nil {
				logger.Warn("course %s: ignoring malformed keywords: %v", c.Code, err)
				c.Keywords = nil
			}
		}
		if raw, ok := doc[keyEmbedding]; ok {
			c.Embedding = decodeEmbedding(c.Code, raw)
		}
		courses = append(courses, c)
	}
	return courses, nil
}

func decodeEmbedding(code string, raw json.RawMessage) []float32 {
	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		logger.Warn("course %s: ignoring malformed embedding: %v", code, err)
		return nil
	}
	if len(vec) == 0 {
		return nil
	}
	return vec
}

// cellText renders a JSON scalar as cell text. Numbers keep their literal
// form, so credits of 7.5 stay "7.5".
func cellText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(trimmed))
}
