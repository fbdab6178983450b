package driven

import "context"

// LLMService provides language model completions.
// This is an optional service - when nil, overlap explanations are omitted.
//
// Implementations may include:
//   - OpenAI (GPT-4o)
//   - Ollama (local models)
type LLMService interface {
	// Chat conducts a multi-turn conversation.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}

// Explainer produces a free-text account of why two courses overlap.
// Optional: the overlap service skips explanations when it is nil.
type Explainer interface {
	Explain(ctx context.Context, candidateText, existingText string) (string, error)
}
