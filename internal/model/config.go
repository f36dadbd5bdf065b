package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete engine configuration
type Config struct {
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Embedding  EmbeddingConfig  `yaml:"embedding" mapstructure:"embedding"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Ingest     IngestConfig     `yaml:"ingest" mapstructure:"ingest"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the hosted-model collaborator used for semantic
// validation and language-quality judging
type LLMConfig struct {
	// Provider name: "openai", "anthropic", "ollama", "" (disabled)
	Provider string `yaml:"provider" mapstructure:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model" mapstructure:"model"`

	// APIKey for OpenAI/Anthropic (prefer env vars)
	APIKey string `yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL for custom endpoints (e.g. Ollama, proxies)
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Timeout for a single API request, in seconds
	Timeout int `yaml:"timeout" mapstructure:"timeout"`

	// MaxTokens for response generation
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// EmbeddingConfig configures the embedding collaborator
type EmbeddingConfig struct {
	// Model is the embedding model name
	Model string `yaml:"model" mapstructure:"model"`

	// Dimension of the embedding vectors produced by Model
	Dimension int `yaml:"dimension" mapstructure:"dimension"`

	// APIKey for the embedding API (falls back to llm.api_key / env)
	APIKey string `yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL for custom endpoints
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`

	// Timeout for a single embedding request, in seconds
	Timeout int `yaml:"timeout" mapstructure:"timeout"`

	// CacheEnabled turns on the layered embedding cache
	CacheEnabled bool `yaml:"cache_enabled" mapstructure:"cache_enabled"`

	// CacheDir is the disk layer of the embedding cache
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`

	// CacheTTL is how long cached embeddings stay valid
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`

	// RequestsPerSecond limits calls to the embedding API
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// StoreConfig configures the vector store
type StoreConfig struct {
	// Backend: "file" (persistent local), "postgres" (pgvector), "memory"
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Path is the storage directory for the file backend
	Path string `yaml:"path" mapstructure:"path"`

	// DSN is the Postgres connection string for the pgvector backend
	DSN string `yaml:"dsn,omitempty" mapstructure:"dsn"`
}

// ValidationConfig configures deterministic numeric validation
type ValidationConfig struct {
	// Tolerance is the absolute difference allowed between a claimed
	// value and a metric value (percentage points for percent claims)
	Tolerance float64 `yaml:"tolerance" mapstructure:"tolerance"`

	// MismatchWindow bounds the "mismatched number" diagnosis: a claim
	// whose nearest metric is within the window but beyond tolerance is
	// reported as mismatched, naming the expected value. Beyond the
	// window the claim is unsupported.
	MismatchWindow float64 `yaml:"mismatch_window" mapstructure:"mismatch_window"`

	// AllowDerived accepts numbers derivable from metric pairs
	// (sum, difference, rounding). Off by default: it hides genuinely
	// unsupported numbers that happen to equal a metric combination.
	AllowDerived bool `yaml:"allow_derived" mapstructure:"allow_derived"`
}

// ScoringConfig configures style scoring
type ScoringConfig struct {
	// TopK historical chunks retrieved for similarity comparison
	TopK int `yaml:"top_k" mapstructure:"top_k"`

	// Word count target band for the structural sub-score
	MinWords int `yaml:"min_words" mapstructure:"min_words"`
	MaxWords int `yaml:"max_words" mapstructure:"max_words"`

	// Paragraph count target band
	MinParagraphs int `yaml:"min_paragraphs" mapstructure:"min_paragraphs"`
	MaxParagraphs int `yaml:"max_paragraphs" mapstructure:"max_paragraphs"`
}

// IngestConfig configures corpus ingestion
type IngestConfig struct {
	// MinChunkChars merges any paragraph chunk below this length with
	// its neighbor instead of storing it standalone
	MinChunkChars int `yaml:"min_chunk_chars" mapstructure:"min_chunk_chars"`

	// Workers is the embedding concurrency during ingestion
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig configures CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "",
			Model:     "",
			Timeout:   30,
			MaxTokens: 500,
		},
		Embedding: EmbeddingConfig{
			Model:             "text-embedding-3-small",
			Dimension:         1536,
			Timeout:           30,
			CacheEnabled:      true,
			CacheDir:          defaultCacheDir(),
			CacheTTL:          time.Hour,
			RequestsPerSecond: 5,
		},
		Store: StoreConfig{
			Backend: "file",
			Path:    defaultStoreDir(),
		},
		Validation: ValidationConfig{
			Tolerance:      0.5,
			MismatchWindow: 2.0,
			AllowDerived:   false,
		},
		Scoring: ScoringConfig{
			TopK:          3,
			MinWords:      150,
			MaxWords:      400,
			MinParagraphs: 2,
			MaxParagraphs: 3,
		},
		Ingest: IngestConfig{
			MinChunkChars: 200,
			Workers:       4,
		},
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".veracity", "cache")
	}
	return filepath.Join(home, ".veracity", "cache")
}

func defaultStoreDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".veracity", "corpus")
	}
	return filepath.Join(home, ".veracity", "corpus")
}
