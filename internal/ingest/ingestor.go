package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/akorchak/veracity/internal/embed"
	"github.com/akorchak/veracity/internal/model"
	"github.com/akorchak/veracity/internal/store"
	"github.com/akorchak/veracity/internal/worker"
)

// Ingestor loads a corpus, chunks it, embeds the chunks concurrently
// and upserts them into the vector store. Embedding runs on a worker
// pool; store writes stay sequential so backends need no write
// concurrency guarantees.
type Ingestor struct {
	embedder embed.Embedder
	store    store.Store
	chunker  *Chunker
	workers  int
	verbose  bool
}

// Summary reports what one ingestion run did
type Summary struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Upserted  int `json:"upserted"`
	Failed    int `json:"failed"`
}

// NewIngestor creates an ingestor
func NewIngestor(embedder embed.Embedder, st store.Store, cfg model.IngestConfig, verbose bool) *Ingestor {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Ingestor{
		embedder: embedder,
		store:    st,
		chunker:  NewChunker(cfg.MinChunkChars),
		workers:  workers,
		verbose:  verbose,
	}
}

// embedJob embeds one chunk on the worker pool
type embedJob struct {
	embedder embed.Embedder
	chunk    model.CorpusChunk
}

// embedResult carries the embedded chunk, or the embedding error
type embedResult struct {
	chunk model.CorpusChunk
	err   error
}

func (r *embedResult) GetError() error {
	return r.err
}

func (j *embedJob) Execute(ctx context.Context) worker.Result {
	embedding, err := j.embedder.Embed(ctx, j.chunk.Text)
	if err != nil {
		return &embedResult{chunk: j.chunk, err: fmt.Errorf("embed chunk %s: %w", j.chunk.ID, err)}
	}

	chunk := j.chunk
	chunk.Embedding = embedding
	return &embedResult{chunk: chunk}
}

// Ingest processes the corpus at path. Successfully embedded chunks are
// upserted even when others fail; a non-nil error reports how many
// chunks were left out.
func (ing *Ingestor) Ingest(ctx context.Context, path string) (*Summary, error) {
	docs, err := LoadDocuments(path)
	if err != nil {
		return nil, err
	}

	var chunks []model.CorpusChunk
	for _, doc := range docs {
		docChunks := ing.chunker.Chunk(doc)
		if ing.verbose {
			fmt.Fprintf(os.Stderr, "Chunked %s into %d chunks\n", doc.Source, len(docChunks))
		}
		chunks = append(chunks, docChunks...)
	}

	summary := &Summary{
		Documents: len(docs),
		Chunks:    len(chunks),
	}

	if len(chunks) == 0 {
		return summary, nil
	}

	pool := worker.NewPool(ing.workers)
	pool.Start()

	for _, chunk := range chunks {
		pool.Submit(&embedJob{embedder: ing.embedder, chunk: chunk})
	}

	results := pool.Wait()

	var firstErr error
	for _, res := range results {
		embedded := res.(*embedResult)
		if embedded.err != nil {
			summary.Failed++
			if firstErr == nil {
				firstErr = embedded.err
			}
			if ing.verbose {
				fmt.Fprintf(os.Stderr, "Embedding failed: %v\n", embedded.err)
			}
			continue
		}

		if err := ing.store.Upsert(ctx, embedded.chunk); err != nil {
			summary.Failed++
			if firstErr == nil {
				firstErr = err
			}
			if ing.verbose {
				fmt.Fprintf(os.Stderr, "Upsert failed: %v\n", err)
			}
			continue
		}

		summary.Upserted++
	}

	if summary.Failed > 0 {
		return summary, fmt.Errorf("%d of %d chunks failed (first error: %w)", summary.Failed, summary.Chunks, firstErr)
	}

	if ing.verbose {
		fmt.Fprintf(os.Stderr, "Ingested %d documents, %d chunks\n", summary.Documents, summary.Upserted)
	}

	return summary, nil
}
