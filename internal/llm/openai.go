package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI models
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	// Simple check: try to list models (lightweight API call)
	_, err := p.client.ListModels(ctx)
	if err != nil {
		// Log the actual error for debugging (this helps users diagnose API key issues)
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// CheckFacts validates the report against metrics using the Chat Completions API
func (p *OpenAIProvider) CheckFacts(ctx context.Context, req FactCheckRequest) (*FactCheckResult, error) {
	prompt := BuildFactCheckPrompt(req.Report, req.Metrics)

	// Near-zero temperature: the verdict must be reproducible
	text, tokens, err := p.complete(ctx, factCheckSystem, prompt, req.Model, req.MaxTokens, 0.1)
	if err != nil {
		return nil, err
	}

	result, err := parseFactCheck(text)
	if err != nil {
		return nil, fmt.Errorf("parse fact check response: %w", err)
	}

	result.Model = p.resolveModel(req.Model)
	result.TokensUsed = tokens

	return result, nil
}

// JudgeStyle grades the report's language quality using the Chat Completions API
func (p *OpenAIProvider) JudgeStyle(ctx context.Context, req StyleJudgeRequest) (*StyleJudgment, error) {
	prompt := BuildStyleJudgePrompt(req.Report)

	text, tokens, err := p.complete(ctx, styleJudgeSystem, prompt, req.Model, req.MaxTokens, 0.3)
	if err != nil {
		return nil, err
	}

	judgment, err := parseStyleJudgment(text)
	if err != nil {
		return nil, fmt.Errorf("parse style judgment: %w", err)
	}

	judgment.Model = p.resolveModel(req.Model)
	judgment.TokensUsed = tokens

	return judgment, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, system, prompt, reqModel string, maxTokens int, temperature float32) (string, int, error) {
	model := p.resolveModel(reqModel)

	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", 0, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", 0, fmt.Errorf("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), resp.Usage.TotalTokens, nil
}

func (p *OpenAIProvider) resolveModel(reqModel string) string {
	if reqModel != "" {
		return reqModel
	}
	if p.config.Model != "" {
		return p.config.Model
	}
	return openai.GPT4oMini
}
