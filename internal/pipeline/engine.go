package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/akorchak/veracity/internal/cache"
	"github.com/akorchak/veracity/internal/embed"
	"github.com/akorchak/veracity/internal/ingest"
	"github.com/akorchak/veracity/internal/llm"
	"github.com/akorchak/veracity/internal/model"
	"github.com/akorchak/veracity/internal/score"
	"github.com/akorchak/veracity/internal/store"
	"github.com/akorchak/veracity/internal/validate"
	"github.com/akorchak/veracity/internal/worker"
)

// Engine wires the collaborators behind the four operations: validate,
// score, ingest, status. Construction resolves configuration once; the
// operations themselves are stateless.
type Engine struct {
	cfg       *model.Config
	provider  llm.Provider
	embedder  embed.Embedder
	store     store.Store
	validator *validate.Validator
	scorer    *score.Scorer
	ingestor  *ingest.Ingestor
}

// NewEngine builds an engine from configuration. A missing LLM provider
// or embedding key is not an error: the affected operations degrade or
// refuse at call time.
func NewEngine(cfg *model.Config) (*Engine, error) {
	verbose := cfg.Output.Verbose

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("configure LLM provider: %w", err)
	}

	embedder, err := buildEmbedder(cfg, verbose)
	if err != nil {
		return nil, err
	}

	st, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:       cfg,
		provider:  provider,
		embedder:  embedder,
		store:     st,
		validator: validate.New(cfg.Validation, provider, verbose),
		scorer:    score.NewScorer(embedder, st, provider, cfg.Scoring, verbose),
		ingestor:  ingest.NewIngestor(embedder, st, cfg.Ingest, verbose),
	}, nil
}

// buildEmbedder returns nil without error when no API key is available;
// scoring then degrades its historical sub-score and ingestion refuses
func buildEmbedder(cfg *model.Config, verbose bool) (embed.Embedder, error) {
	embeddingCfg := cfg.Embedding
	if embeddingCfg.APIKey == "" {
		embeddingCfg.APIKey = cfg.LLM.APIKey
	}
	if embeddingCfg.APIKey == "" {
		if verbose {
			fmt.Fprintf(os.Stderr, "No embedding API key configured; historical comparison disabled\n")
		}
		return nil, nil
	}

	limiter := worker.NewLimiter(embeddingCfg.RequestsPerSecond, 0)

	base, err := embed.NewOpenAIEmbedder(embeddingCfg, limiter)
	if err != nil {
		return nil, fmt.Errorf("configure embedder: %w", err)
	}

	if !embeddingCfg.CacheEnabled {
		return base, nil
	}

	layered := cache.NewLayeredCache(embeddingCfg.CacheTTL, embeddingCfg.CacheDir, embeddingCfg.CacheTTL)
	return embed.NewCachedEmbedder(base, layered, embeddingCfg.CacheTTL), nil
}

func buildStore(cfg *model.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return store.NewMemoryStore(), nil

	case "file", "":
		s, err := store.OpenFileStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return s, nil

	case "postgres":
		s, err := store.OpenPostgresStore(cfg.Store.DSN, cfg.Embedding.Dimension)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: file, postgres, memory)", cfg.Store.Backend)
	}
}

// Validate checks a report against its metrics record
func (e *Engine) Validate(ctx context.Context, report string, metrics model.MetricsRecord) (*model.ValidationVerdict, error) {
	return e.validator.Validate(ctx, report, metrics)
}

// Score grades a report's style
func (e *Engine) Score(ctx context.Context, report string) (*model.StyleScoreBreakdown, error) {
	return e.scorer.Score(ctx, report)
}

// Ingest loads a corpus into the vector store
func (e *Engine) Ingest(ctx context.Context, path string) (*ingest.Summary, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("ingestion requires an embedding API key (set embedding.api_key or llm.api_key)")
	}
	return e.ingestor.Ingest(ctx, path)
}

// Status reports vector store readiness
func (e *Engine) Status(ctx context.Context) *model.StoreStatus {
	status := &model.StoreStatus{
		Backend: e.cfg.Store.Backend,
	}
	if status.Backend == "" {
		status.Backend = "file"
	}

	count, err := e.store.Count(ctx)
	if err != nil {
		status.Status = "unavailable"
		status.Error = err.Error()
		return status
	}

	status.ChunkCount = count
	status.Status = "ready"
	return status
}

// Close releases the vector store
func (e *Engine) Close() error {
	return e.store.Close()
}
