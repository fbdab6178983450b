package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/coursecheck/internal/adapters/driven/ai"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/bbolt"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/redis"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/relational"
	"github.com/custodia-labs/coursecheck/internal/adapters/driven/storage/sheets"
	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/core/services"
	"github.com/custodia-labs/coursecheck/internal/logger"
	"github.com/custodia-labs/coursecheck/internal/textproc"
)

// Default file names under <config-dir>/data.
const (
	defaultCorpusFile = "courses.json"
	defaultCacheFile  = "cache.json"
	defaultBoltFile   = "cache.db"
	defaultSQLiteFile = "coursecheck.db"
)

var (
	// configStore is kept so mcp serve can watch it for edits.
	configStore *file.ConfigStore

	// closers release stores and providers opened by ensureServices.
	closers []func() error
)

// resolveConfigDir returns --config-dir or ~/.coursecheck.
func resolveConfigDir() (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".coursecheck"), nil
}

// ensureSettings wires the settings service from the config file.
func ensureSettings() error {
	if settingsService != nil {
		return nil
	}
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}
	store, err := file.NewConfigStore(dir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	configStore = store
	settingsService = services.NewSettingsService(store)
	return nil
}

// ensureServices wires the overlap and corpus services from settings.
func ensureServices(ctx context.Context) error {
	if overlapService != nil && corpusService != nil {
		return nil
	}
	if err := ensureSettings(); err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	dir, err := resolveConfigDir()
	if err != nil {
		return err
	}

	opener := newStoreOpener(filepath.Join(dir, "data"))
	corpus, cache, err := opener.open(ctx, settings)
	if err != nil {
		return err
	}
	closers = append(closers, corpus.Close, cache.Close)

	aiServices, err := ai.Init(settings)
	if err != nil {
		return err
	}
	closers = append(closers, func() error { aiServices.Close(); return nil })
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	overlap, corpusSvc, err := newServices(settings, corpus, cache, aiServices.EmbeddingService, aiServices.LLMService)
	if err != nil {
		return err
	}
	overlapService, corpusService = overlap, corpusSvc

	// Stores without persistent derived fields are indexed on every start.
	switch settings.Corpus.Backend {
	case domain.CorpusBackendSpreadsheet, domain.CorpusBackendMemory:
		if _, err := corpusService.Index(ctx); err != nil {
			return fmt.Errorf("indexing corpus: %w", err)
		}
	}
	return nil
}

// newServices builds the core services over already opened stores.
func newServices(
	settings *domain.AppSettings,
	corpus driven.CorpusStore,
	cache driven.CacheStore,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
) (*services.OverlapService, *services.CorpusService, error) {
	stopwords, err := textproc.NewStopwordSet(settings.Analysis.ExtraStopwords...)
	if err != nil {
		return nil, nil, fmt.Errorf("loading stopwords: %w", err)
	}
	overlapCache := services.NewOverlapCache(cache,
		textproc.NewNormaliser(stopwords), textproc.NewKeywordExtractor(stopwords))

	overlap := services.NewOverlapService(corpus, overlapCache, embedder, settings.Analysis)
	if llm != nil {
		overlap.SetExplainer(services.NewLLMExplainer(llm, settings.Analysis.ExplainRequestsPerMinute))
	}
	return overlap, services.NewCorpusService(corpus, overlapCache, embedder), nil
}

// closeServices releases everything ensureServices opened.
func closeServices() error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	closers = nil
	return errors.Join(errs...)
}

// storeOpener opens the configured corpus and cache stores. A corpus and a
// cache on the same database share one connection.
type storeOpener struct {
	dataDir    string
	relational map[string]*relational.Store
}

func newStoreOpener(dataDir string) *storeOpener {
	return &storeOpener{dataDir: dataDir, relational: make(map[string]*relational.Store)}
}

func (o *storeOpener) open(ctx context.Context, settings *domain.AppSettings) (driven.CorpusStore, driven.CacheStore, error) {
	corpus, err := o.openCorpus(ctx, settings.Corpus)
	if err != nil {
		return nil, nil, fmt.Errorf("opening corpus (%s): %w", settings.Corpus.Backend, err)
	}
	cacheSettings := settings.Cache
	if cacheSettings.Backend == domain.CacheBackendPostgres && cacheSettings.DSN == "" {
		cacheSettings.DSN = settings.Corpus.DSN
	}
	cache, err := o.openCache(ctx, cacheSettings)
	if err != nil {
		_ = corpus.Close()
		return nil, nil, fmt.Errorf("opening cache (%s): %w", settings.Cache.Backend, err)
	}
	return corpus, cache, nil
}

func (o *storeOpener) openCorpus(ctx context.Context, cfg domain.CorpusSettings) (driven.CorpusStore, error) {
	switch cfg.Backend {
	case domain.CorpusBackendMemory:
		return memory.NewCorpusStore(), nil
	case domain.CorpusBackendDocument, "":
		return jsonfile.OpenCorpusStore(o.path(cfg.Path, defaultCorpusFile))
	case domain.CorpusBackendSQLite:
		store, err := o.sqlite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store.CorpusStore(), nil
	case domain.CorpusBackendPostgres:
		store, err := o.postgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store.CorpusStore(), nil
	case domain.CorpusBackendSpreadsheet:
		return sheets.OpenCorpusStore(ctx, sheets.Config{
			SpreadsheetID: cfg.SpreadsheetID,
			Range:         cfg.SheetRange,
			APIKey:        cfg.SheetAPIKey,
			AccessToken:   cfg.SheetAccessToken,
		})
	default:
		return nil, fmt.Errorf("%w: corpus backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}
}

func (o *storeOpener) openCache(ctx context.Context, cfg domain.CacheSettings) (driven.CacheStore, error) {
	switch cfg.Backend {
	case domain.CacheBackendMemory:
		return memory.NewCacheStore(), nil
	case domain.CacheBackendFile, "":
		return jsonfile.OpenCacheStore(o.path(cfg.Path, defaultCacheFile))
	case domain.CacheBackendBolt:
		return bbolt.OpenCacheStore(o.path(cfg.Path, defaultBoltFile))
	case domain.CacheBackendRedis:
		return redis.OpenCacheStore(ctx, redis.Config{Addr: cfg.RedisAddr, Prefix: cfg.RedisPrefix})
	case domain.CacheBackendSQLite:
		store, err := o.sqlite(cfg.Path)
		if err != nil {
			return nil, err
		}
		return store.CacheStore(), nil
	case domain.CacheBackendPostgres:
		store, err := o.postgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return store.CacheStore(), nil
	default:
		return nil, fmt.Errorf("%w: cache backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}
}

func (o *storeOpener) path(configured, name string) string {
	if configured != "" {
		return configured
	}
	return filepath.Join(o.dataDir, name)
}

func (o *storeOpener) sqlite(path string) (*relational.Store, error) {
	path = o.path(path, defaultSQLiteFile)
	key := "sqlite:" + path
	if store, ok := o.relational[key]; ok {
		return store, nil
	}
	store, err := relational.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	o.relational[key] = store
	return store, nil
}

func (o *storeOpener) postgres(ctx context.Context, dsn string) (*relational.Store, error) {
	key := "postgres:" + dsn
	if store, ok := o.relational[key]; ok {
		return store, nil
	}
	store, err := relational.OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	o.relational[key] = store
	return store, nil
}
