package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/coursecheck/internal/core/domain"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driven"
	"github.com/custodia-labs/coursecheck/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyThreshold        = "analysis.threshold"
	keyExplainThreshold = "analysis.explain_threshold"
	keyExplainRPM       = "analysis.explain_requests_per_minute"
	keyExtraStopwords   = "analysis.extra_stopwords"

	keyCorpusBackend    = "corpus.backend"
	keyCorpusPath       = "corpus.path"
	keyCorpusDSN        = "corpus.dsn"
	keySpreadsheetID    = "corpus.spreadsheet_id"
	keySheetRange       = "corpus.sheet_range"
	keySheetAPIKey      = "corpus.sheet_api_key"
	keySheetAccessToken = "corpus.sheet_access_token"
	keyCacheBackend     = "cache.backend"
	keyCachePath        = "cache.path"
	keyCacheDSN         = "cache.dsn"
	keyCacheRedisAddr   = "cache.redis_addr"
	keyCacheRedisPrefix = "cache.redis_prefix"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedDimensions  = "embedding.dimensions"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
)

type valueKind int

const (
	kindString valueKind = iota
	kindFloat
	kindInt
	kindList
)

// settingKinds lists every key accepted by Set and how its value is parsed.
var settingKinds = map[string]valueKind{
	keyThreshold:        kindFloat,
	keyExplainThreshold: kindFloat,
	keyExplainRPM:       kindInt,
	keyExtraStopwords:   kindList,
	keyCorpusBackend:    kindString,
	keyCorpusPath:       kindString,
	keyCorpusDSN:        kindString,
	keySpreadsheetID:    kindString,
	keySheetRange:       kindString,
	keySheetAPIKey:      kindString,
	keySheetAccessToken: kindString,
	keyCacheBackend:     kindString,
	keyCachePath:        kindString,
	keyCacheDSN:         kindString,
	keyCacheRedisAddr:   kindString,
	keyCacheRedisPrefix: kindString,
	keyEmbedProvider:    kindString,
	keyEmbedModel:       kindString,
	keyEmbedBaseURL:     kindString,
	keyEmbedAPIKey:      kindString,
	keyEmbedDimensions:  kindInt,
	keyLLMProvider:      kindString,
	keyLLMModel:         kindString,
	keyLLMBaseURL:       kindString,
	keyLLMAPIKey:        kindString,
}

// SettingKeys returns every configurable key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Analysis: domain.AnalysisSettings{
			OverlapThreshold:         s.getFloat(keyThreshold, defaults.Analysis.OverlapThreshold),
			ExplainThreshold:         s.getFloat(keyExplainThreshold, defaults.Analysis.ExplainThreshold),
			ExplainRequestsPerMinute: s.getInt(keyExplainRPM, defaults.Analysis.ExplainRequestsPerMinute),
			ExtraStopwords:           s.configStore.GetStringSlice(keyExtraStopwords),
		},
		Corpus: domain.CorpusSettings{
			Backend:          s.getCorpusBackend(defaults.Corpus.Backend),
			Path:             s.configStore.GetString(keyCorpusPath),
			DSN:              s.configStore.GetString(keyCorpusDSN),
			SpreadsheetID:    s.configStore.GetString(keySpreadsheetID),
			SheetRange:       s.getString(keySheetRange, defaults.Corpus.SheetRange),
			SheetAPIKey:      s.configStore.GetString(keySheetAPIKey),
			SheetAccessToken: s.configStore.GetString(keySheetAccessToken),
		},
		Cache: domain.CacheSettings{
			Backend:     s.getCacheBackend(defaults.Cache.Backend),
			Path:        s.configStore.GetString(keyCachePath),
			DSN:         s.configStore.GetString(keyCacheDSN),
			RedisAddr:   s.configStore.GetString(keyCacheRedisAddr),
			RedisPrefix: s.getString(keyCacheRedisPrefix, defaults.Cache.RedisPrefix),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDimensions),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
	}
	if settings.LLM.Provider.IsValid() && settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keyThreshold, settings.Analysis.OverlapThreshold},
		{keyExplainThreshold, settings.Analysis.ExplainThreshold},
		{keyExplainRPM, settings.Analysis.ExplainRequestsPerMinute},
		{keyCorpusBackend, string(settings.Corpus.Backend)},
		{keyCorpusPath, settings.Corpus.Path},
		{keySpreadsheetID, settings.Corpus.SpreadsheetID},
		{keySheetRange, settings.Corpus.SheetRange},
		{keyCacheBackend, string(settings.Cache.Backend)},
		{keyCachePath, settings.Cache.Path},
		{keyCacheRedisAddr, settings.Cache.RedisAddr},
		{keyCacheRedisPrefix, settings.Cache.RedisPrefix},
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDimensions, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when present so an empty struct never wipes them.
	secrets := []struct {
		key string
		val string
	}{
		{keyCorpusDSN, settings.Corpus.DSN},
		{keySheetAPIKey, settings.Corpus.SheetAPIKey},
		{keySheetAccessToken, settings.Corpus.SheetAccessToken},
		{keyCacheDSN, settings.Cache.DSN},
		{keyEmbedAPIKey, settings.Embedding.APIKey},
		{keyLLMAPIKey, settings.LLM.APIKey},
	}
	for _, v := range secrets {
		if v.val == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	if len(settings.Analysis.ExtraStopwords) > 0 {
		if err := s.configStore.Set(keyExtraStopwords, settings.Analysis.ExtraStopwords); err != nil {
			return fmt.Errorf("save %s: %w", keyExtraStopwords, err)
		}
	}

	return nil
}

// Set parses value for the given key and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var parsed any
	switch kind {
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		parsed = f
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		parsed = n
	case kindList:
		var items []string
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		parsed = items
	default:
		parsed = value
	}

	if err := validateValue(key, parsed); err != nil {
		return err
	}
	return s.configStore.Set(key, parsed)
}

func validateValue(key string, v any) error {
	switch key {
	case keyThreshold:
		if f := v.(float64); f < 0 || f >= 1 {
			return fmt.Errorf("%w: %s must be in [0, 1)", domain.ErrInvalidInput, key)
		}
	case keyExplainThreshold:
		if f := v.(float64); f < 0 || f > 100 {
			return fmt.Errorf("%w: %s must be in [0, 100]", domain.ErrInvalidInput, key)
		}
	case keyCorpusBackend:
		if b := domain.CorpusBackend(v.(string)); !b.IsValid() {
			return fmt.Errorf("%w: unknown corpus backend %q", domain.ErrUnsupportedType, b)
		}
	case keyCacheBackend:
		if b := domain.CacheBackend(v.(string)); !b.IsValid() {
			return fmt.Errorf("%w: unknown cache backend %q", domain.ErrUnsupportedType, b)
		}
	case keyEmbedProvider:
		if p := domain.AIProvider(v.(string)); !p.SupportsEmbeddings() {
			return fmt.Errorf("%w: provider %q has no embedding API", domain.ErrUnsupportedType, p)
		}
	case keyLLMProvider:
		if p := domain.AIProvider(v.(string)); !p.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrUnsupportedType, p)
		}
	}
	return nil
}

// Validate checks that the configured backends and providers are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	a := settings.Analysis
	if a.OverlapThreshold < 0 || a.OverlapThreshold >= 1 {
		return fmt.Errorf("overlap threshold %.2f out of range [0, 1)", a.OverlapThreshold)
	}
	if a.ExplainThreshold < 0 || a.ExplainThreshold > 100 {
		return fmt.Errorf("explain threshold %.2f out of range [0, 100]", a.ExplainThreshold)
	}

	switch settings.Corpus.Backend {
	case domain.CorpusBackendPostgres:
		if settings.Corpus.DSN == "" {
			return fmt.Errorf("corpus backend %q requires %s", settings.Corpus.Backend, keyCorpusDSN)
		}
	case domain.CorpusBackendSpreadsheet:
		if settings.Corpus.SpreadsheetID == "" {
			return fmt.Errorf("corpus backend %q requires %s", settings.Corpus.Backend, keySpreadsheetID)
		}
	}

	switch settings.Cache.Backend {
	case domain.CacheBackendPostgres:
		if settings.Cache.DSN == "" && settings.Corpus.DSN == "" {
			return fmt.Errorf("cache backend %q requires %s", settings.Cache.Backend, keyCacheDSN)
		}
	case domain.CacheBackendRedis:
		if settings.Cache.RedisAddr == "" {
			return fmt.Errorf("cache backend %q requires %s", settings.Cache.Backend, keyCacheRedisAddr)
		}
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %q is not configured", settings.Embedding.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getCorpusBackend(defaultVal domain.CorpusBackend) domain.CorpusBackend {
	b := domain.CorpusBackend(s.configStore.GetString(keyCorpusBackend))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	b := domain.CacheBackend(s.configStore.GetString(keyCacheBackend))
	if !b.IsValid() {
		return defaultVal
	}
	return b
}
