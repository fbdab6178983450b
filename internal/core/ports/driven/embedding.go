package driven

import "context"

// EmbeddingService maps normalised course text to fixed-dimension vectors.
// Scoring is impossible without it, so it is required for every analysis.
//
// The core treats the model as a black box: it only controls which text is
// fed in (always normalised, never raw) and checks the shape of what comes back.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, multilingual sentence models)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, in input order.
	// A corpus scan issues exactly one batch call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 512, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
