package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// The engine never inspects vector semantics, only their dimension and
// distance behaviour.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. The result
	// preserves input order and has exactly one vector per input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 768).
	// This is determined by the model and must match the vector
	// index's configured dimension.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping makes a lightweight warm-up request. Used at startup as a
	// performance hint; a failure is logged, not fatal.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
