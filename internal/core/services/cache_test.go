package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/textproc"
)

func TestOverlapCache_MissPersistsThenHits(t *testing.T) {
	store := memory.NewCacheStore()
	cache := newTestCache(t, store)
	ctx := context.Background()
	course := domain.Course{Code: "INF101", Name: "Intro", Content: "The course covers neural networks and graph theory in 2024."}

	text, keywords, err := cache.GetOrCompute(ctx, &course)
	require.NoError(t, err)
	assert.Equal(t, "neural networks graph theory .", text)
	assert.Equal(t, []string{"neural networks graph theory"}, keywords)
	assert.Equal(t, 1, store.Puts())

	again, _, err := cache.GetOrCompute(ctx, &course)
	require.NoError(t, err)
	assert.Equal(t, text, again)
	assert.Equal(t, 1, store.Puts())

	persisted, err := store.LoadAll(ctx)
	require.NoError(t, err)
	entry, ok := persisted[cache.Key(&course)]
	require.True(t, ok)
	assert.Equal(t, "INF101", entry.CourseCode)
	assert.Equal(t, course.Fingerprint(), entry.Fingerprint)
	assert.Equal(t, text, entry.NormalizedText)
}

func TestOverlapCache_EditedCourseMisses(t *testing.T) {
	store := memory.NewCacheStore()
	cache := newTestCache(t, store)
	ctx := context.Background()
	course := domain.Course{Code: "INF101", Content: "graph theory"}

	first, _, err := cache.GetOrCompute(ctx, &course)
	require.NoError(t, err)

	course.Content = "category theory"
	second, _, err := cache.GetOrCompute(ctx, &course)
	require.NoError(t, err)

	assert.Equal(t, "graph theory", first)
	assert.Equal(t, "category theory", second)
	assert.Equal(t, 2, store.Puts())
}

func TestOverlapCache_EphemeralBypass(t *testing.T) {
	store := memory.NewCacheStore()
	cache := newTestCache(t, store)
	candidate := domain.Candidate{Name: "Draft", Text: "graph theory"}.Course()

	text, _, err := cache.GetOrCompute(context.Background(), &candidate)
	require.NoError(t, err)
	assert.Equal(t, "graph theory", text)
	assert.Zero(t, store.Puts())
	assert.Zero(t, cache.Len())
}

func TestOverlapCache_LoadsPersistedEntries(t *testing.T) {
	store := memory.NewCacheStore()
	ctx := context.Background()
	course := domain.Course{Code: "INF101", Content: "graph theory"}

	// Seed through a first cache so the key matches.
	seeder := newTestCache(t, store)
	require.NoError(t, store.Put(ctx, seeder.Key(&course), domain.CacheEntry{
		CourseCode:     "INF101",
		NormalizedText: "from disk",
		Keywords:       []string{"from disk"},
	}))

	cache := newTestCache(t, store)
	text, keywords, err := cache.GetOrCompute(ctx, &course)
	require.NoError(t, err)
	assert.Equal(t, "from disk", text)
	assert.Equal(t, []string{"from disk"}, keywords)
	assert.Equal(t, 1, store.Puts())
}

func TestOverlapCache_LoadError(t *testing.T) {
	cache := newTestCache(t, &failingCacheStore{loadErr: errors.New("corrupt cache")})
	course := domain.Course{Code: "INF101", Content: "graph theory"}

	_, _, err := cache.GetOrCompute(context.Background(), &course)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt cache")
}

func TestOverlapCache_PersistErrorStillReturnsValues(t *testing.T) {
	cache := newTestCache(t, &failingCacheStore{putErr: errors.New("read-only filesystem")})
	course := domain.Course{Code: "INF101", Content: "graph theory"}

	text, _, err := cache.GetOrCompute(context.Background(), &course)
	require.NoError(t, err)
	assert.Equal(t, "graph theory", text)
	assert.Equal(t, 1, cache.Len())
}

func TestOverlapCache_KeyDependsOnStopwords(t *testing.T) {
	course := domain.Course{Code: "INF101", Content: "graph theory"}
	a := newTestCache(t, nil)
	assert.Equal(t, a.Key(&course), newTestCache(t, nil).Key(&course))
	assert.Contains(t, a.Key(&course), course.Fingerprint())

	extra, err := textproc.NewStopwordSet("graph")
	require.NoError(t, err)
	b := NewOverlapCache(nil, textproc.NewNormaliser(extra), textproc.NewKeywordExtractor(extra))
	assert.NotEqual(t, a.Key(&course), b.Key(&course))
}
