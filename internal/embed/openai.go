package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/akorchak/veracity/internal/model"
	"github.com/akorchak/veracity/internal/worker"
)

// OpenAIEmbedder implements Embedder on OpenAI's embeddings API
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
	timeout   time.Duration
	limiter   *worker.Limiter
}

// NewOpenAIEmbedder creates an embedder for the configured model. The
// limiter is shared with other API consumers and may be nil in tests.
func NewOpenAIEmbedder(config model.EmbeddingConfig, limiter *worker.Limiter) (*OpenAIEmbedder, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	embeddingModel := config.Model
	if embeddingModel == "" {
		embeddingModel = string(openai.SmallEmbedding3)
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     embeddingModel,
		dimension: config.Dimension,
		timeout:   timeout,
		limiter:   limiter,
	}, nil
}

// Name returns the embedding model name
func (e *OpenAIEmbedder) Name() string {
	return e.model
}

// Dimension returns the configured vector dimension
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// Embed returns the embedding for text via the OpenAI API
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx, "embeddings"); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	}
	if e.dimension > 0 {
		req.Dimensions = e.dimension
	}

	resp, err := e.client.CreateEmbeddings(ctxWithTimeout, req)
	if err != nil {
		return nil, fmt.Errorf("embedding API error: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}

	embedding := resp.Data[0].Embedding
	if e.dimension > 0 && len(embedding) != e.dimension {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, expected %d", len(embedding), e.dimension)
	}

	return embedding, nil
}
