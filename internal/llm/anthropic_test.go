package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akorchak/veracity/internal/model"
)

func anthropicTextResponse(text string) anthropicResponse {
	return anthropicResponse{
		ID:   "msg_123",
		Type: "message",
		Role: "assistant",
		Content: []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{
			{
				Type: "text",
				Text: text,
			},
		},
		Model: "claude-3-5-sonnet-20241022",
		Usage: struct {
			InputTokens  int `json:"input_tokens"`
			OutputTokens int `json:"output_tokens"`
		}{
			InputTokens:  50,
			OutputTokens: 50,
		},
	}
}

func TestAnthropicProvider_CheckFacts_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("Expected path /v1/messages, got %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("Expected x-api-key header test-key, got %s", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("Expected anthropic-version header 2023-06-01, got %s", r.Header.Get("anthropic-version"))
		}

		_ = json.NewEncoder(w).Encode(anthropicTextResponse(`{"semantic_valid": true, "errors": []}`))
	}))
	defer server.Close()

	config := Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "claude-3-5-sonnet-20241022",
		Timeout: 5,
	}
	provider, err := NewAnthropicProvider(config)
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
	if result.TokensUsed != 100 {
		t.Errorf("expected 100 tokens used, got %d", result.TokensUsed)
	}
	if result.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("unexpected model: %s", result.Model)
	}
}

func TestAnthropicProvider_CheckFacts_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type": "error", "error": {"type": "authentication_error", "message": "invalid x-api-key"}}`))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "bad-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.CheckFacts(context.Background(), FactCheckRequest{Report: "text"})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
}

func TestAnthropicProvider_JudgeStyle_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		text := "TONE: 9/10 - Authoritative\nCLARITY: 8/10 - Precise\nCOHERENCE: 8/10 - Logical progression\nENGAGEMENT: 7/10 - Solid narrative"
		_ = json.NewEncoder(w).Encode(anthropicTextResponse(text))
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
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
	if judgment.Dimensions[3].Name != "ENGAGEMENT" || judgment.Dimensions[3].Score != 7 {
		t.Errorf("unexpected last dimension: %+v", judgment.Dimensions[3])
	}
}

func TestAnthropicProvider_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := anthropicTextResponse("")
		resp.Content = nil
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewAnthropicProvider(Config{APIKey: "test-key", BaseURL: server.URL, Timeout: 5})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.CheckFacts(context.Background(), FactCheckRequest{Report: "text"})
	if err == nil {
		t.Fatal("Expected error for empty content")
	}
}

func TestAnthropicProvider_RequiresAPIKey(t *testing.T) {
	_, err := NewAnthropicProvider(Config{})
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}
}
