package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/akorchak/veracity/internal/model"
)

// MemoryStore is an in-process vector store. Used for tests and for
// one-shot scoring runs that ingest and query in the same process.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[string]model.CorpusChunk
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks: make(map[string]model.CorpusChunk),
	}
}

// Upsert inserts or overwrites the chunk keyed by its id
func (s *MemoryStore) Upsert(ctx context.Context, chunk model.CorpusChunk) error {
	if chunk.ID == "" {
		return fmt.Errorf("chunk id is required")
	}
	if len(chunk.Embedding) == 0 {
		return fmt.Errorf("chunk %s has no embedding", chunk.ID)
	}

	// Copy the embedding so later caller mutations cannot corrupt the store
	stored := chunk
	stored.Embedding = make([]float32, len(chunk.Embedding))
	copy(stored.Embedding, chunk.Embedding)

	s.mu.Lock()
	s.chunks[chunk.ID] = stored
	s.mu.Unlock()

	return nil
}

// Query returns the k nearest chunks by cosine distance
func (s *MemoryStore) Query(ctx context.Context, embedding []float32, k int) ([]Result, error) {
	if k <= 0 {
		return []Result{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		distance, err := cosineDistance(embedding, chunk.Embedding)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", chunk.ID, err)
		}
		results = append(results, Result{Chunk: chunk, Distance: distance})
	}

	return rankResults(results, k), nil
}

// Count returns the number of stored chunks
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Close is a no-op for the memory backend
func (s *MemoryStore) Close() error {
	return nil
}
