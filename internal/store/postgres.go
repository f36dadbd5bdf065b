package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/akorchak/veracity/internal/model"
)

// PostgresStore is a pgvector-backed store for corpora too large to
// scan in memory. Distance ordering happens in the database; the
// secondary id ordering keeps equal-distance results deterministic.
type PostgresStore struct {
	db        *sql.DB
	dimension int
}

// OpenPostgresStore connects to dsn and ensures the schema exists
func OpenPostgresStore(dsn string, dimension int) (*PostgresStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	s := &PostgresStore{db: db, dimension: dimension}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *PostgresStore) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS corpus_chunks (
		id        TEXT PRIMARY KEY,
		source    TEXT NOT NULL,
		quarter   TEXT NOT NULL DEFAULT '',
		byte_offset INTEGER NOT NULL,
		content   TEXT NOT NULL,
		embedding vector(%d) NOT NULL
	)`, s.dimension)

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create corpus_chunks table: %w", err)
	}

	return nil
}

// Upsert inserts or overwrites the chunk keyed by its id
func (s *PostgresStore) Upsert(ctx context.Context, chunk model.CorpusChunk) error {
	if chunk.ID == "" {
		return fmt.Errorf("chunk id is required")
	}
	if len(chunk.Embedding) != s.dimension {
		return fmt.Errorf("chunk %s: embedding dimension %d, store expects %d", chunk.ID, len(chunk.Embedding), s.dimension)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO corpus_chunks (id, source, quarter, byte_offset, content, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
			source = EXCLUDED.source,
			quarter = EXCLUDED.quarter,
			byte_offset = EXCLUDED.byte_offset,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`,
		chunk.ID,
		chunk.Source,
		chunk.Quarter,
		chunk.Offset,
		chunk.Text,
		pgvector.NewVector(chunk.Embedding),
	)
	if err != nil {
		return fmt.Errorf("upsert chunk %s: %w", chunk.ID, err)
	}

	return nil
}

// Query returns the k nearest chunks by cosine distance
func (s *PostgresStore) Query(ctx context.Context, embedding []float32, k int) ([]Result, error) {
	if k <= 0 {
		return []Result{}, nil
	}
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("query embedding dimension %d, store expects %d", len(embedding), s.dimension)
	}

	queryVector := pgvector.NewVector(embedding)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, quarter, byte_offset, content, embedding, embedding <=> $1 AS distance
		 FROM corpus_chunks
		 ORDER BY embedding <=> $1, id
		 LIMIT $2`,
		queryVector,
		k,
	)
	if err != nil {
		return nil, fmt.Errorf("similarity query: %w", err)
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var chunk model.CorpusChunk
		var stored pgvector.Vector
		var distance float64

		if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.Quarter, &chunk.Offset, &chunk.Text, &stored, &distance); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunk.Embedding = stored.Slice()

		results = append(results, Result{Chunk: chunk, Distance: distance})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	return results, nil
}

// Count returns the number of stored chunks
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corpus_chunks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

// Close releases the database connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
