package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/akorchak/veracity/internal/model"
)

// FileStore persists chunks as one JSON file per chunk under a
// directory, with an in-memory index for queries. Good enough for
// personal corpus sizes; the postgres backend covers anything larger.
type FileStore struct {
	dir    string
	mu     sync.RWMutex
	chunks map[string]model.CorpusChunk
}

// OpenFileStore loads (or creates) a file-backed store at dir
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	s := &FileStore{
		dir:    dir,
		chunks: make(map[string]model.CorpusChunk),
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read chunk file %s: %w", entry.Name(), err)
		}

		var chunk model.CorpusChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			return nil, fmt.Errorf("parse chunk file %s: %w", entry.Name(), err)
		}
		if chunk.ID == "" {
			return nil, fmt.Errorf("chunk file %s has no id", entry.Name())
		}

		s.chunks[chunk.ID] = chunk
	}

	return s, nil
}

// Upsert writes the chunk to disk and updates the index. The write goes
// through a temp file and rename so a crash cannot leave a torn chunk.
func (s *FileStore) Upsert(ctx context.Context, chunk model.CorpusChunk) error {
	if chunk.ID == "" {
		return fmt.Errorf("chunk id is required")
	}
	if len(chunk.Embedding) == 0 {
		return fmt.Errorf("chunk %s has no embedding", chunk.ID)
	}

	data, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("marshal chunk %s: %w", chunk.ID, err)
	}

	path := s.path(chunk.ID)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write chunk %s: %w", chunk.ID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit chunk %s: %w", chunk.ID, err)
	}

	stored := chunk
	stored.Embedding = make([]float32, len(chunk.Embedding))
	copy(stored.Embedding, chunk.Embedding)

	s.mu.Lock()
	s.chunks[chunk.ID] = stored
	s.mu.Unlock()

	return nil
}

// Query returns the k nearest chunks by cosine distance
func (s *FileStore) Query(ctx context.Context, embedding []float32, k int) ([]Result, error) {
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
func (s *FileStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), nil
}

// Close is a no-op: every Upsert is already durable
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}
