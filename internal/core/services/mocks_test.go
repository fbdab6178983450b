package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/textproc"
)

// --- Mock implementations ---

// mockEmbeddingService implements driven.EmbeddingService for testing.
// Vectors are looked up by exact normalised text.
type mockEmbeddingService struct {
	mu         sync.Mutex
	vectors    map[string][]float32
	embedErr   error
	batchErr   error
	embedCalls int
	batchCalls int
	batchSizes []int
}

func newMockEmbedder(vectors map[string][]float32) *mockEmbeddingService {
	return &mockEmbeddingService{vectors: vectors}
}

func (m *mockEmbeddingService) lookup(text string) ([]float32, error) {
	v, ok := m.vectors[text]
	if !ok {
		return nil, errors.New("no vector for " + text)
	}
	return v, nil
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.lookup(text)
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchCalls++
	m.batchSizes = append(m.batchSizes, len(texts))
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.lookup(t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return 3 }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error { return nil }

// mockExplainer implements driven.Explainer for testing.
type mockExplainer struct {
	calls  int
	result string
	err    error
}

func (m *mockExplainer) Explain(_ context.Context, _, _ string) (string, error) {
	m.calls++
	return m.result, m.err
}

// mockLLMService implements driven.LLMService for testing.
// Errors queued in failFirst are returned, one per call, before response.
type mockLLMService struct {
	response  string
	err       error
	failFirst []error
	calls     int
	messages  []driven.ChatMessage
	opts      driven.ChatOptions
}

func (m *mockLLMService) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.calls++
	m.messages = messages
	m.opts = opts
	if len(m.failFirst) > 0 {
		err := m.failFirst[0]
		m.failFirst = m.failFirst[1:]
		return "", err
	}
	return m.response, m.err
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Ping(_ context.Context) error { return nil }
func (m *mockLLMService) Close() error { return nil }

// failingCacheStore implements driven.CacheStore with configurable errors.
type failingCacheStore struct {
	loadErr error
	putErr  error
}

func (f *failingCacheStore) LoadAll(_ context.Context) (map[string]domain.CacheEntry, error) {
	return nil, f.loadErr
}

func (f *failingCacheStore) Put(_ context.Context, _ string, _ domain.CacheEntry) error {
	return f.putErr
}

func (f *failingCacheStore) Close() error { return nil }

// failingCorpusStore implements driven.CorpusStore returning listErr from List.
type failingCorpusStore struct {
	*memory.CorpusStore
	listErr error
}

func (f *failingCorpusStore) List(ctx context.Context) ([]domain.Course, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.CorpusStore.List(ctx)
}

// --- Helpers ---

func newTestCache(t *testing.T, store driven.CacheStore) *OverlapCache {
	t.Helper()
	stopwords, err := textproc.NewStopwordSet()
	require.NoError(t, err)
	return NewOverlapCache(store, textproc.NewNormaliser(stopwords), textproc.NewKeywordExtractor(stopwords))
}

func defaultAnalysis() domain.AnalysisSettings {
	return domain.DefaultAppSettings().Analysis
}
