package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown backend or provider type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrReadOnly indicates the configured store cannot persist changes.
	ErrReadOnly = errors.New("store is read-only")

	// ErrEphemeralCourse indicates an attempt to persist a candidate
	// that carries the ephemeral code.
	ErrEphemeralCourse = errors.New("ephemeral course cannot be persisted")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	// Overlap explanations are disabled.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the provider rejected a request for exceeding
	// its quota or capacity. The request may succeed later.
	ErrRateLimited = errors.New("rate limited by provider")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Similarity scoring is impossible without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates vectors of different sizes.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyEmbedding indicates the embedding service returned no vector.
	ErrEmptyEmbedding = errors.New("empty embedding")
)
