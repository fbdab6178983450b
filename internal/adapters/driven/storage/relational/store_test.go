package relational

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testCourse(code, name string) domain.Course {
	return domain.Course{
		Code:      code,
		Name:      name,
		Knowledge: "Relational algebra and SQL.",
		Content:   "Normal forms, transactions.",
		Details:   domain.CourseDetails{School: "Business School", Credits: "7.5"},
	}
}

// ==================== Store Tests ====================

func TestOpenSQLite_CreatesFile(t *testing.T) {
	store := setupTestStore(t)
	assert.FileExists(t, store.Path())
	assert.Equal(t, DialectSQLite, store.Dialect())
}

func TestOpenSQLite_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	var count int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRebind(t *testing.T) {
	sqlite := &Store{dialect: DialectSQLite}
	postgres := &Store{dialect: DialectPostgres}

	q := "UPDATE courses SET name = ? WHERE code = ?"
	assert.Equal(t, q, sqlite.rebind(q))
	assert.Equal(t, "UPDATE courses SET name = $1 WHERE code = $2", postgres.rebind(q))
}

func TestOpenPostgres_EmptyDSN(t *testing.T) {
	_, err := OpenPostgres(context.Background(), "  ")
	assert.Error(t, err)
}

// ==================== Corpus Store Tests ====================

func TestCorpusStore_UpsertAndGet(t *testing.T) {
	corpus := setupTestStore(t).CorpusStore()
	ctx := context.Background()

	lit := "Book: 'Database Systems'"
	course := testCourse("DB100", "Databases")
	course.Literature = &lit
	course.Keywords = []string{"relational algebra", "sql"}
	course.Embedding = []float32{0.25, -1.5, 3}
	require.NoError(t, corpus.Upsert(ctx, course))

	got, err := corpus.Get(ctx, "DB100")
	require.NoError(t, err)
	assert.Equal(t, course, *got)
}

func TestCorpusStore_NilLiteratureRoundTrips(t *testing.T) {
	corpus := setupTestStore(t).CorpusStore()
	ctx := context.Background()

	require.NoError(t, corpus.Upsert(ctx, testCourse("DB100", "Databases")))

	got, err := corpus.Get(ctx, "DB100")
	require.NoError(t, err)
	assert.Nil(t, got.Literature)
	assert.Nil(t, got.Embedding)
	assert.Nil(t, got.Keywords)
}

func TestCorpusStore_GetMissing(t *testing.T) {
	corpus := setupTestStore(t).CorpusStore()

	_, err := corpus.Get(context.Background(), "NOPE")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCorpusStore_RejectsEphemeral(t *testing.T) {
	corpus := setupTestStore(t).CorpusStore()

	err := corpus.Upsert(context.Background(), testCourse(domain.EphemeralCode, "Draft"))
	assert.ErrorIs(t, err, domain.ErrEphemeralCourse)
}

func TestCorpusStore_ListKeepsInsertionOrder(t *testing.T) {
	corpus := setupTestStore(t).CorpusStore()
	ctx := context.Background()

	for _, code := range []string{"C3", "A1", "B2"} {
		require.NoError(t, corpus.Upsert(ctx, testCourse(code, code)))
	}
	// Replacing keeps the original position.
	require.NoError(t, corpus.Upsert(ctx, testCourse("C3", "renamed")))

	courses, err := corpus.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 3)
	assert.Equal(t, "C3", courses[0].Code)
	assert.Equal(t, "renamed", courses[0].Name)
	assert.Equal(t, "A1", courses[1].Code)
	assert.Equal(t, "B2", courses[2].Code)
}

func TestCorpusStore_SaveDerived(t *testing.T) {
	corpus := setupTestStore(t).CorpusStore()
	ctx := context.Background()

	require.NoError(t, corpus.Upsert(ctx, testCourse("DB100", "Databases")))

	err := corpus.SaveDerived(ctx, []domain.Course{
		{Code: "DB100", NormalizedText: "relational algebra SQL", Keywords: []string{"sql"}, Embedding: []float32{1, 0}},
		{Code: "UNKNOWN", NormalizedText: "ignored"},
	})
	require.NoError(t, err)

	got, err := corpus.Get(ctx, "DB100")
	require.NoError(t, err)
	assert.Equal(t, "relational algebra SQL", got.NormalizedText)
	assert.Equal(t, []string{"sql"}, got.Keywords)
	assert.Equal(t, []float32{1, 0}, got.Embedding)
	assert.Equal(t, "Databases", got.Name)

	courses, err := corpus.List(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestCorpusStore_MalformedEmbeddingDecodesAsNil(t *testing.T) {
	store := setupTestStore(t)
	corpus := store.CorpusStore()
	ctx := context.Background()

	require.NoError(t, corpus.Upsert(ctx, testCourse("DB100", "Databases")))
	_, err := store.db.Exec("UPDATE courses SET embedding = ? WHERE code = ?", []byte{1, 2, 3}, "DB100")
	require.NoError(t, err)

	got, err := corpus.Get(ctx, "DB100")
	require.NoError(t, err)
	assert.Nil(t, got.Embedding)
}

// ==================== Cache Store Tests ====================

func TestCacheStore_PutAndLoadAll(t *testing.T) {
	cache := setupTestStore(t).CacheStore()
	ctx := context.Background()

	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := domain.CacheEntry{
		CourseCode:     "DB100",
		Fingerprint:    "abc",
		NormalizedText: "relational algebra SQL",
		Keywords:       []string{"relational algebra", "sql"},
		CreatedAt:      created,
	}
	require.NoError(t, cache.Put(ctx, "abc:sig", entry))

	entry.NormalizedText = "updated"
	require.NoError(t, cache.Put(ctx, "abc:sig", entry))

	entries, err := cache.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries["abc:sig"])
}

func TestCacheStore_Empty(t *testing.T) {
	cache := setupTestStore(t).CacheStore()

	entries, err := cache.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// ==================== Shared Connection Tests ====================

func TestSharedConnection_ClosesWithLastHandle(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	corpus := store.CorpusStore()
	cache := store.CacheStore()

	require.NoError(t, corpus.Close())
	_, err = cache.LoadAll(context.Background())
	require.NoError(t, err, "cache handle should still work after corpus closes")

	require.NoError(t, cache.Close())
	assert.Error(t, store.db.Ping())
}

// ==================== Encoding Tests ====================

func TestFloat32Blob(t *testing.T) {
	vec := []float32{0, 1.5, -2.25}
	got, ok := bytesToFloat32Slice(float32SliceToBytes(vec))
	require.True(t, ok)
	assert.Equal(t, vec, got)

	got, ok = bytesToFloat32Slice(nil)
	assert.True(t, ok)
	assert.Nil(t, got)

	_, ok = bytesToFloat32Slice([]byte{0, 0, 0, 0, 1})
	assert.False(t, ok)
}
