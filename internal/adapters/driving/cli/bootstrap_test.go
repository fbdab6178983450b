package cli

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/bbolt"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursecheck/internal/core/domain"
)

func settingsWith(corpus domain.CorpusBackend, cache domain.CacheBackend) *domain.AppSettings {
	s := domain.DefaultAppSettings()
	s.Corpus.Backend = corpus
	s.Cache.Backend = cache
	return &s
}

func TestStoreOpener_Memory(t *testing.T) {
	o := newStoreOpener(t.TempDir())

	corpus, cache, err := o.open(context.Background(),
		settingsWith(domain.CorpusBackendMemory, domain.CacheBackendMemory))
	require.NoError(t, err)
	defer corpus.Close()
	defer cache.Close()

	assert.IsType(t, &memory.CorpusStore{}, corpus)
	assert.IsType(t, &memory.CacheStore{}, cache)
}

func TestStoreOpener_DefaultsToFilesUnderDataDir(t *testing.T) {
	dir := t.TempDir()
	o := newStoreOpener(dir)

	corpus, cache, err := o.open(context.Background(), settingsWith("", ""))
	require.NoError(t, err)
	defer corpus.Close()
	defer cache.Close()

	doc, ok := corpus.(*jsonfile.CorpusStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, defaultCorpusFile), doc.Path())
	assert.IsType(t, &jsonfile.CacheStore{}, cache)
}

func TestStoreOpener_ConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "elsewhere.json")
	o := newStoreOpener(t.TempDir())

	settings := settingsWith(domain.CorpusBackendDocument, domain.CacheBackendMemory)
	settings.Corpus.Path = path
	corpus, cache, err := o.open(context.Background(), settings)
	require.NoError(t, err)
	defer corpus.Close()
	defer cache.Close()

	assert.Equal(t, path, corpus.(*jsonfile.CorpusStore).Path())
}

func TestStoreOpener_Bolt(t *testing.T) {
	o := newStoreOpener(t.TempDir())

	corpus, cache, err := o.open(context.Background(),
		settingsWith(domain.CorpusBackendMemory, domain.CacheBackendBolt))
	require.NoError(t, err)
	defer corpus.Close()

	assert.IsType(t, &bbolt.CacheStore{}, cache)
	require.NoError(t, cache.Close())
}

func TestStoreOpener_SQLiteSharesConnection(t *testing.T) {
	dir := t.TempDir()
	o := newStoreOpener(dir)

	corpus, cache, err := o.open(context.Background(),
		settingsWith(domain.CorpusBackendSQLite, domain.CacheBackendSQLite))
	require.NoError(t, err)
	require.Len(t, o.relational, 1)

	ctx := context.Background()
	require.NoError(t, corpus.Upsert(ctx, domain.Course{Code: "INF101", Name: "Programming"}))
	require.NoError(t, cache.Put(ctx, "INF101", domain.CacheEntry{CourseCode: "INF101", Fingerprint: "f"}))

	// The connection stays open until both views are closed.
	require.NoError(t, corpus.Close())
	entries, err := cache.LoadAll(ctx)
	require.NoError(t, err)
	assert.Contains(t, entries, "INF101")
	require.NoError(t, cache.Close())

	assert.FileExists(t, filepath.Join(dir, defaultSQLiteFile))
}

func TestStoreOpener_UnknownBackend(t *testing.T) {
	o := newStoreOpener(t.TempDir())

	_, _, err := o.open(context.Background(), settingsWith("mongodb", domain.CacheBackendMemory))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, _, err = o.open(context.Background(), settingsWith(domain.CorpusBackendMemory, "memcached"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestStoreOpener_SpreadsheetNeedsID(t *testing.T) {
	o := newStoreOpener(t.TempDir())

	_, _, err := o.open(context.Background(),
		settingsWith(domain.CorpusBackendSpreadsheet, domain.CacheBackendMemory))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStoreOpener_PostgresNeedsDSN(t *testing.T) {
	o := newStoreOpener(t.TempDir())

	_, _, err := o.open(context.Background(),
		settingsWith(domain.CorpusBackendPostgres, domain.CacheBackendMemory))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty DSN")
}

func TestStoreOpener_RedisUnreachable(t *testing.T) {
	o := newStoreOpener(t.TempDir())

	settings := settingsWith(domain.CorpusBackendMemory, domain.CacheBackendRedis)
	settings.Cache.RedisAddr = "127.0.0.1:1"
	_, _, err := o.open(context.Background(), settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening cache (redis)")
}

func TestNewServices_ExtraStopwords(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Analysis.ExtraStopwords = []string{"python"}
	corpus := memory.NewCorpusStore()

	_, corpusSvc, err := newServices(&settings, corpus, memory.NewCacheStore(), wordEmbedder{}, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, corpusSvc.Upsert(ctx, domain.Course{Code: "A", Name: "A", Content: "python recursion"}))
	c, err := corpus.Get(ctx, "A")
	require.NoError(t, err)
	assert.NotContains(t, c.NormalizedText, "python")
	assert.Contains(t, c.NormalizedText, "recursion")
}

func TestCloseServices_RunsInReverseAndJoinsErrors(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	closers = []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return boom },
	}

	err := closeServices()

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{2, 1}, order)
	assert.Nil(t, closers)
}
