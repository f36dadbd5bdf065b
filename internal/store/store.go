package store

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/akorchak/veracity/internal/model"
)

// Store is a vector store over corpus chunks. Upsert is idempotent on
// chunk id; Query returns the k nearest chunks by cosine distance, ties
// broken by ascending id so results are deterministic.
type Store interface {
	Upsert(ctx context.Context, chunk model.CorpusChunk) error
	Query(ctx context.Context, embedding []float32, k int) ([]Result, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Result pairs a chunk with its cosine distance from the query vector.
// Distance 0 is identical direction, 2 is opposite.
type Result struct {
	Chunk    model.CorpusChunk
	Distance float64
}

// cosineDistance computes 1 - cosine similarity between two vectors
func cosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("zero vector has no direction")
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), nil
}

// rankResults sorts by (distance, id) and truncates to k
func rankResults(results []Result, k int) []Result {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	if k < len(results) {
		results = results[:k]
	}

	return results
}
