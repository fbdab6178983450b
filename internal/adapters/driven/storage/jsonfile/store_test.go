package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

const legacyCorpus = `[
  {
    "Kurskode": "INF101",
    "Kursnavn": "Intro to Programming",
    "Learning outcome - Knowledge": "Variables and loops.",
    "Course content": "Python basics.",
    "Pensum": "Book: 'Think Python'",
    "Credits": 7.5,
    "School": null,
    "combined_info": "Variables loops . Python basics .",
    "Keywords": ["python basics", "variables"],
    "embedding": [0.5, 0.25]
  },
  {
    "Kurskode": "INF102",
    "Kursnavn": "Algorithms",
    "Course content": "Sorting.",
    "embedding": "not-a-vector"
  },
  {
    "Kursnavn": "No code"
  }
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// ==================== Corpus Store Tests ====================

func TestOpenCorpusStore_LegacyDocument(t *testing.T) {
	store, err := OpenCorpusStore(writeFile(t, "courses.json", legacyCorpus))
	require.NoError(t, err)

	courses, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)

	inf101 := courses[0]
	assert.Equal(t, "INF101", inf101.Code)
	assert.Equal(t, "7.5", inf101.Details.Credits)
	assert.Empty(t, inf101.Details.School)
	require.NotNil(t, inf101.Literature)
	assert.Equal(t, "Book: 'Think Python'", *inf101.Literature)
	assert.Equal(t, "Variables loops . Python basics .", inf101.NormalizedText)
	assert.Equal(t, []string{"python basics", "variables"}, inf101.Keywords)
	assert.Equal(t, []float32{0.5, 0.25}, inf101.Embedding)

	inf102 := courses[1]
	assert.Equal(t, "INF102", inf102.Code)
	assert.Nil(t, inf102.Embedding, "malformed embedding should decode as nil")
	assert.Nil(t, inf102.Literature)
}

func TestOpenCorpusStore_MissingFile(t *testing.T) {
	store, err := OpenCorpusStore(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	courses, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestOpenCorpusStore_InvalidJSON(t *testing.T) {
	_, err := OpenCorpusStore(writeFile(t, "courses.json", "{not json"))
	assert.Error(t, err)
}

func TestCorpusStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "courses.json")
	ctx := context.Background()

	store, err := OpenCorpusStore(path)
	require.NoError(t, err)

	lit := "Book: 'SQL'"
	require.NoError(t, store.Upsert(ctx, domain.Course{
		Code:       "DB100",
		Name:       "Databases",
		Content:    "SQL and normal forms.",
		Literature: &lit,
		Details:    domain.CourseDetails{School: "Business"},
	}))
	require.NoError(t, store.Upsert(ctx, domain.Course{Code: "AI200", Name: "AI"}))
	require.NoError(t, store.SaveDerived(ctx, []domain.Course{
		{Code: "DB100", NormalizedText: "SQL normal forms .", Keywords: []string{"normal forms"}, Embedding: []float32{1, 2, 3}},
	}))
	require.NoError(t, store.Close())

	reopened, err := OpenCorpusStore(path)
	require.NoError(t, err)

	courses, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "DB100", courses[0].Code)
	assert.Equal(t, "AI200", courses[1].Code)

	db := courses[0]
	assert.Equal(t, "Business", db.Details.School)
	assert.Equal(t, "SQL normal forms .", db.NormalizedText)
	assert.Equal(t, []string{"normal forms"}, db.Keywords)
	assert.Equal(t, []float32{1, 2, 3}, db.Embedding)
	require.NotNil(t, db.Literature)
	assert.Equal(t, lit, *db.Literature)
}

func TestCorpusStore_RejectsEphemeral(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	store, err := OpenCorpusStore(path)
	require.NoError(t, err)

	err = store.Upsert(context.Background(), domain.Course{Code: domain.EphemeralCode, Name: "Draft"})
	assert.ErrorIs(t, err, domain.ErrEphemeralCourse)
	assert.NoFileExists(t, path)
}

// ==================== Cache Store Tests ====================

func TestCacheStore_PutAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()

	store, err := OpenCacheStore(path)
	require.NoError(t, err)

	entry := domain.CacheEntry{
		CourseCode:     "DB100",
		Fingerprint:    "f1",
		NormalizedText: "SQL normal forms .",
		Keywords:       []string{"normal forms"},
		CreatedAt:      time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, store.Put(ctx, "f1:sig", entry))

	reopened, err := OpenCacheStore(path)
	require.NoError(t, err)
	entries, err := reopened.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.CacheEntry{"f1:sig": entry}, entries)
}

func TestCacheStore_CorruptFileStartsEmpty(t *testing.T) {
	store, err := OpenCacheStore(writeFile(t, "cache.json", "[1, 2"))
	require.NoError(t, err)

	entries, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCacheStore_FailedWriteIsNotKept(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	// The parent "directory" is a regular file, so the write must fail.
	store := &CacheStore{
		path:    filepath.Join(blocker, "cache.json"),
		entries: make(map[string]domain.CacheEntry),
	}

	err := store.Put(context.Background(), "k", domain.CacheEntry{CourseCode: "X"})
	require.Error(t, err)

	entries, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// ==================== Encoding Tests ====================

func TestCellText(t *testing.T) {
	assert.Equal(t, "abc", cellText([]byte(`"abc"`)))
	assert.Equal(t, "7.5", cellText([]byte(`7.5`)))
	assert.Equal(t, "", cellText([]byte(`null`)))
	assert.Equal(t, "true", cellText([]byte(`true`)))
}
