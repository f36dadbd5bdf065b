package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/akorchak/veracity/internal/model"
)

func embeddingServer(t *testing.T, vector []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("Expected path /embeddings, got %s", r.URL.Path)
		}

		resp := openai.EmbeddingResponse{
			Object: "list",
			Model:  openai.SmallEmbedding3,
			Data: []openai.Embedding{
				{
					Object:    "embedding",
					Index:     0,
					Embedding: vector,
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	server := embeddingServer(t, []float32{0.1, 0.2, 0.3})
	defer server.Close()

	embedder, err := NewOpenAIEmbedder(model.EmbeddingConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Model:     "text-embedding-3-small",
		Dimension: 3,
		Timeout:   5,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create embedder: %v", err)
	}

	embedding, err := embedder.Embed(context.Background(), "quarterly commentary")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(embedding) != 3 {
		t.Fatalf("expected 3-dimensional embedding, got %d", len(embedding))
	}
	if embedding[0] != 0.1 {
		t.Errorf("unexpected embedding values: %v", embedding)
	}
}

func TestOpenAIEmbedder_EmptyText(t *testing.T) {
	server := embeddingServer(t, []float32{0.1})
	defer server.Close()

	embedder, err := NewOpenAIEmbedder(model.EmbeddingConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create embedder: %v", err)
	}

	if _, err := embedder.Embed(context.Background(), ""); err == nil {
		t.Fatal("Expected error for empty text")
	}
}

func TestOpenAIEmbedder_DimensionMismatch(t *testing.T) {
	server := embeddingServer(t, []float32{0.1, 0.2})
	defer server.Close()

	embedder, err := NewOpenAIEmbedder(model.EmbeddingConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		Dimension: 1536,
		Timeout:   5,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create embedder: %v", err)
	}

	if _, err := embedder.Embed(context.Background(), "text"); err == nil {
		t.Fatal("Expected dimension mismatch error")
	}
}

func TestOpenAIEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "Rate limit exceeded", "type": "rate_limit_error"}}`))
	}))
	defer server.Close()

	embedder, err := NewOpenAIEmbedder(model.EmbeddingConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5,
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create embedder: %v", err)
	}

	if _, err := embedder.Embed(context.Background(), "text"); err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOpenAIEmbedder_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIEmbedder(model.EmbeddingConfig{}, nil)
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestOpenAIEmbedder_DefaultModel(t *testing.T) {
	embedder, err := NewOpenAIEmbedder(model.EmbeddingConfig{APIKey: "test-key"}, nil)
	if err != nil {
		t.Fatalf("Failed to create embedder: %v", err)
	}
	if embedder.Name() != string(openai.SmallEmbedding3) {
		t.Errorf("unexpected default model: %s", embedder.Name())
	}
}
