package domain

const unknownDescription = "Unknown"

// Analysis defaults.
const (
	// DefaultOverlapThreshold is the cosine similarity a pair must exceed
	// to be reported.
	DefaultOverlapThreshold = 0.25

	// DefaultExplainThreshold is the score (percent) at or above which an
	// explanation is requested when an explainer is configured.
	DefaultExplainThreshold = 60.0

	// DefaultExplainRequestsPerMinute caps explainer calls.
	DefaultExplainRequestsPerMinute = 30
)

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API (LLM only).
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// CorpusBackend selects the CorpusStore variant.
type CorpusBackend string

// Available corpus backends.
const (
	// CorpusBackendMemory keeps the corpus in process only.
	CorpusBackendMemory CorpusBackend = "memory"

	// CorpusBackendDocument stores the corpus as a JSON document file.
	CorpusBackendDocument CorpusBackend = "document"

	// CorpusBackendSQLite stores the corpus in an embedded SQLite database.
	CorpusBackendSQLite CorpusBackend = "sqlite"

	// CorpusBackendPostgres stores the corpus in PostgreSQL.
	CorpusBackendPostgres CorpusBackend = "postgres"

	// CorpusBackendSpreadsheet reads the corpus from a Google Sheets spreadsheet.
	CorpusBackendSpreadsheet CorpusBackend = "spreadsheet"
)

// IsValid returns true if the backend is recognised.
func (b CorpusBackend) IsValid() bool {
	switch b {
	case CorpusBackendMemory, CorpusBackendDocument, CorpusBackendSQLite,
		CorpusBackendPostgres, CorpusBackendSpreadsheet:
		return true
	default:
		return false
	}
}

// Description returns a human-readable description of the backend.
func (b CorpusBackend) Description() string {
	switch b {
	case CorpusBackendMemory:
		return "In-memory (not persisted)"
	case CorpusBackendDocument:
		return "JSON document file"
	case CorpusBackendSQLite:
		return "SQLite database"
	case CorpusBackendPostgres:
		return "PostgreSQL database"
	case CorpusBackendSpreadsheet:
		return "Google Sheets spreadsheet"
	default:
		return unknownDescription
	}
}

// CacheBackend selects the CacheStore variant.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendMemory   CacheBackend = "memory"
	CacheBackendFile     CacheBackend = "file"
	CacheBackendBolt     CacheBackend = "bbolt"
	CacheBackendRedis    CacheBackend = "redis"
	CacheBackendSQLite   CacheBackend = "sqlite"
	CacheBackendPostgres CacheBackend = "postgres"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendMemory, CacheBackendFile, CacheBackendBolt, CacheBackendRedis,
		CacheBackendSQLite, CacheBackendPostgres:
		return true
	default:
		return false
	}
}

// AnalysisSettings controls scoring and reporting.
type AnalysisSettings struct {
	// OverlapThreshold is the similarity fraction a pair must exceed.
	OverlapThreshold float64

	// ExplainThreshold is the score percent that triggers an explanation.
	ExplainThreshold float64

	// ExplainRequestsPerMinute caps explainer calls.
	ExplainRequestsPerMinute int

	// ExtraStopwords extends the built-in stopword set.
	ExtraStopwords []string
}

// CorpusSettings selects and configures the corpus store.
type CorpusSettings struct {
	Backend CorpusBackend

	// Path is the file path for document and sqlite backends.
	Path string

	// DSN is the connection string for the postgres backend.
	DSN string

	// SpreadsheetID identifies the Google Sheets document.
	SpreadsheetID string

	// SheetRange is the A1 range holding the course table.
	SheetRange string

	// SheetAPIKey authenticates read-only access to public sheets.
	SheetAPIKey string

	// SheetAccessToken is an OAuth2 bearer token for private sheets.
	SheetAccessToken string
}

// CacheSettings selects and configures the derived-text cache store.
type CacheSettings struct {
	Backend CacheBackend

	// Path is the file path for file, bbolt and sqlite backends.
	Path string

	// DSN is the connection string for the postgres backend.
	DSN string

	// RedisAddr is the host:port of the redis server.
	RedisAddr string

	// RedisPrefix namespaces cache keys in redis.
	RedisPrefix string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// AppSettings holds all application settings.
type AppSettings struct {
	Analysis  AnalysisSettings
	Corpus    CorpusSettings
	Cache     CacheSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured, so explanations are off until set up.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Analysis: AnalysisSettings{
			OverlapThreshold:         DefaultOverlapThreshold,
			ExplainThreshold:         DefaultExplainThreshold,
			ExplainRequestsPerMinute: DefaultExplainRequestsPerMinute,
		},
		Corpus: CorpusSettings{
			Backend:    CorpusBackendDocument,
			SheetRange: "Sheet1",
		},
		Cache: CacheSettings{
			Backend:     CacheBackendFile,
			RedisPrefix: "coursecheck:cache:",
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModels()[AIProviderOllama],
		},
		LLM: LLMSettings{},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
