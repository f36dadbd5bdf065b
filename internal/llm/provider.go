package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/akorchak/veracity/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// CheckFacts asks the model whether the report's prose is consistent
	// with the supplied metrics
	CheckFacts(ctx context.Context, req FactCheckRequest) (*FactCheckResult, error)

	// JudgeStyle asks the model to grade the report's language quality
	// on fixed dimensions
	JudgeStyle(ctx context.Context, req StyleJudgeRequest) (*StyleJudgment, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// FactCheckRequest contains the input for semantic validation
type FactCheckRequest struct {
	// Report is the report text under validation
	Report string

	// Metrics are the ground-truth values the report must agree with
	Metrics model.MetricsRecord

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// FactCheckResult is the parsed semantic verdict
type FactCheckResult struct {
	// Valid is false when the model found fabricated or inconsistent claims
	Valid bool

	// Errors describe each inconsistency the model flagged
	Errors []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// StyleJudgeRequest contains the input for language-quality judging
type StyleJudgeRequest struct {
	// Report is the report text to grade
	Report string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// StyleJudgment holds the per-dimension scores parsed from the response
type StyleJudgment struct {
	// Dimensions are the four graded dimensions, in canonical order
	Dimensions []model.DimensionScore

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   30,
		MaxTokens: 1000,
	}
}

// StyleDimensions lists the graded dimensions in the order the judge
// must report them
var StyleDimensions = []string{"TONE", "CLARITY", "COHERENCE", "ENGAGEMENT"}

const factCheckSystem = "You are a meticulous financial report validator. You flag only claims that contradict or fabricate data, and you respond in exactly the format requested."

const styleJudgeSystem = "You are an experienced financial editor grading the writing quality of market commentary. You respond in exactly the format requested."

// BuildFactCheckPrompt constructs the semantic validation prompt. The
// metrics are serialized in sorted order so the prompt is deterministic
// for a given input.
func BuildFactCheckPrompt(report string, metrics model.MetricsRecord) string {
	var sb strings.Builder

	sb.WriteString("Validate this market report against the provided metrics.\n\n")
	sb.WriteString("METRICS (ground truth):\n")
	for _, name := range metrics.Names() {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", name, formatMetric(metrics[name])))
	}

	sb.WriteString("\nREPORT:\n")
	sb.WriteString(report)

	sb.WriteString(`

Flag ONLY these problems:
1. Numbers that contradict the metrics above.
2. Specific factual claims (dates, named events, named figures) that the metrics cannot support.
3. Statements that directly contradict the metrics.

Do NOT flag interpretive or qualitative commentary, rounding, or general market language.

Respond with a single JSON object and nothing else:
{"semantic_valid": true or false, "errors": ["description of each problem, empty if none"]}`)

	return sb.String()
}

// BuildStyleJudgePrompt constructs the language-quality prompt. The
// response format is rigid so parseStyleJudgment can extract scores.
func BuildStyleJudgePrompt(report string) string {
	return fmt.Sprintf(`Grade the writing quality of this market report on four dimensions, each 0-10.

REPORT:
%s

Respond with exactly four lines in this format, nothing else:
TONE: [score]/10 - [brief comment]
CLARITY: [score]/10 - [brief comment]
COHERENCE: [score]/10 - [brief comment]
ENGAGEMENT: [score]/10 - [brief comment]`, report)
}

// parseFactCheck extracts the verdict from a model response. It prefers
// the strict JSON object the prompt asks for, then falls back to a
// plain-text "semantic_valid: true/false" scan before giving up. Models
// wrap JSON in prose and code fences often enough that lenient parsing
// pays for itself.
func parseFactCheck(text string) (*FactCheckResult, error) {
	if payload, ok := extractJSONObject(text); ok {
		var parsed struct {
			SemanticValid *bool    `json:"semantic_valid"`
			Errors        []string `json:"errors"`
		}
		if err := json.Unmarshal([]byte(payload), &parsed); err == nil && parsed.SemanticValid != nil {
			result := &FactCheckResult{
				Valid:  *parsed.SemanticValid,
				Errors: parsed.Errors,
			}
			if !result.Valid && len(result.Errors) == 0 {
				result.Errors = []string{"model reported inconsistencies without details"}
			}
			return result, nil
		}
	}

	// Fallback: scan for the verdict in prose
	lower := strings.ToLower(text)
	if strings.Contains(lower, "semantic_valid: true") || strings.Contains(lower, `"semantic_valid": true`) {
		return &FactCheckResult{Valid: true}, nil
	}
	if strings.Contains(lower, "semantic_valid: false") || strings.Contains(lower, `"semantic_valid": false`) {
		return &FactCheckResult{
			Valid:  false,
			Errors: []string{"model reported inconsistencies without details"},
		}, nil
	}

	return nil, fmt.Errorf("no verdict found in response: %q", truncate(text, 200))
}

var dimensionPattern = regexp.MustCompile(`(?im)^\s*(TONE|CLARITY|COHERENCE|ENGAGEMENT)\s*:\s*(\d+(?:\.\d+)?)\s*/\s*10\s*-\s*(.+)$`)

// parseStyleJudgment extracts the four dimension scores. All four must
// be present; a partial response is treated as a provider failure so
// the scorer can degrade the language sub-score explicitly.
func parseStyleJudgment(text string) (*StyleJudgment, error) {
	found := make(map[string]model.DimensionScore)

	for _, m := range dimensionPattern.FindAllStringSubmatch(text, -1) {
		name := strings.ToUpper(m[1])
		score, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		if score < 0 {
			score = 0
		}
		if score > 10 {
			score = 10
		}
		if _, dup := found[name]; dup {
			continue // keep the first occurrence
		}
		found[name] = model.DimensionScore{
			Name:    name,
			Score:   score,
			Comment: strings.TrimSpace(m[3]),
		}
	}

	judgment := &StyleJudgment{}
	for _, name := range StyleDimensions {
		dim, ok := found[name]
		if !ok {
			return nil, fmt.Errorf("dimension %s missing from response: %q", name, truncate(text, 200))
		}
		judgment.Dimensions = append(judgment.Dimensions, dim)
	}

	return judgment, nil
}

// extractJSONObject returns the outermost {...} span in text, if any
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// formatMetric renders a metric value without the %g exponent surprises
func formatMetric(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
