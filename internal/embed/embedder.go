package embed

import (
	"context"
)

// Embedder turns text into a fixed-dimension vector. Implementations
// wrap hosted embedding APIs; the engine only sees this interface so
// tests can substitute deterministic fakes.
type Embedder interface {
	// Name identifies the embedding model. Used for cache keying, so two
	// embedders with the same Name must produce compatible vectors.
	Name() string

	// Dimension is the length of vectors produced by Embed
	Dimension() int

	// Embed returns the embedding for text. The same text must always
	// map to the same vector for idempotent ingestion to hold.
	Embed(ctx context.Context, text string) ([]float32, error)
}
