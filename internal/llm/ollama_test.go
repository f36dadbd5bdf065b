package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akorchak/veracity/internal/model"
)

func TestOllamaProvider_CheckFacts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Expected path /api/generate, got %s", r.URL.Path)
		}

		resp := ollamaResponse{
			Model:           "llama3.1",
			Response:        `{"semantic_valid": true, "errors": []}`,
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	result, err := provider.CheckFacts(context.Background(), FactCheckRequest{
		Report:  "The index gained 8.2% this quarter.",
		Metrics: model.MetricsRecord{"acwi_quarter_return": 8.2},
	})
	if err != nil {
		t.Fatalf("CheckFacts failed: %v", err)
	}

	if !result.Valid {
		t.Error("expected valid verdict")
	}
	if result.TokensUsed != 30 {
		t.Errorf("expected 30 tokens used, got %d", result.TokensUsed)
	}
}

func TestOllamaProvider_JudgeStyle_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := ollamaResponse{
			Model:    "llama3.1",
			Response: "TONE: 7/10 - Fine\nCLARITY: 7/10 - Fine\nCOHERENCE: 7/10 - Fine\nENGAGEMENT: 7/10 - Fine",
			Done:     true,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	judgment, err := provider.JudgeStyle(context.Background(), StyleJudgeRequest{Report: "Markets rallied."})
	if err != nil {
		t.Fatalf("JudgeStyle failed: %v", err)
	}

	if len(judgment.Dimensions) != 4 {
		t.Fatalf("expected 4 dimensions, got %d", len(judgment.Dimensions))
	}
	// Token counts absent from the response fall back to a length estimate
	if judgment.TokensUsed == 0 {
		t.Error("expected estimated token count, got 0")
	}
}

func TestOllamaProvider_RequiresModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server without a model")
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.CheckFacts(context.Background(), FactCheckRequest{Report: "text"})
	if err == nil {
		t.Fatal("Expected error for missing model")
	}
}

func TestOllamaProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": "model 'missing' not found"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "missing", Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.CheckFacts(context.Background(), FactCheckRequest{Report: "text"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"models": [{"name": "llama3.1"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IsAvailable(context.Background()) {
		t.Error("Expected available to be true")
	}
}

func TestNewProvider_Factory(t *testing.T) {
	cases := []struct {
		name     string
		config   Config
		wantNil  bool
		wantErr  bool
		wantType string
	}{
		{name: "disabled", config: Config{Provider: ""}, wantNil: true},
		{name: "openai", config: Config{Provider: "openai", APIKey: "k"}, wantType: "openai"},
		{name: "anthropic", config: Config{Provider: "anthropic", APIKey: "k"}, wantType: "anthropic"},
		{name: "claude alias", config: Config{Provider: "claude", APIKey: "k"}, wantType: "anthropic"},
		{name: "ollama", config: Config{Provider: "ollama"}, wantType: "ollama"},
		{name: "unknown", config: Config{Provider: "gemini"}, wantErr: true},
		{name: "openai without key", config: Config{Provider: "openai"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			provider, err := NewProvider(tc.config)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantNil {
				if provider != nil {
					t.Fatalf("expected nil provider, got %v", provider.Name())
				}
				return
			}
			if provider == nil {
				t.Fatal("expected provider, got nil")
			}
			if provider.Name() != tc.wantType {
				t.Errorf("expected provider %s, got %s", tc.wantType, provider.Name())
			}
		})
	}
}
