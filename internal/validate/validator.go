package validate

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/akorchak/veracity/internal/extract"
	"github.com/akorchak/veracity/internal/llm"
	"github.com/akorchak/veracity/internal/model"
)

// Validator runs the full validation sequence: numeric extraction,
// deterministic checking, then the optional semantic pass through the
// LLM collaborator. With no provider configured it runs local-only and
// the semantic pass trivially succeeds.
type Validator struct {
	extractor     *extract.NumericExtractor
	deterministic *Deterministic
	provider      llm.Provider
	verbose       bool
}

// New creates a validator. provider may be nil for local-only mode.
func New(cfg model.ValidationConfig, provider llm.Provider, verbose bool) *Validator {
	return &Validator{
		extractor:     extract.NewNumericExtractor(),
		deterministic: NewDeterministic(cfg),
		provider:      provider,
		verbose:       verbose,
	}
}

// Validate checks report against metrics and returns the combined
// verdict. The error return covers unusable input and nothing else; a
// failing report comes back as a verdict with Valid=false.
func (v *Validator) Validate(ctx context.Context, report string, metrics model.MetricsRecord) (*model.ValidationVerdict, error) {
	if strings.TrimSpace(report) == "" {
		return nil, model.ErrEmptyReport
	}
	if len(metrics) == 0 {
		return nil, model.ErrNoMetrics
	}

	claims := v.extractor.Extract(report)
	if v.verbose {
		fmt.Fprintf(os.Stderr, "Extracted %d numeric claims\n", len(claims))
	}

	detErrors := v.deterministic.Validate(claims, metrics)

	verdict := &model.ValidationVerdict{
		DeterministicValid: len(detErrors) == 0,
		// Errors stays non-nil so the serialized verdict carries [] rather
		// than null when the report is clean
		Errors: append([]string{}, detErrors...),
	}

	semValid, semErrors := v.semanticPass(ctx, report, metrics)
	verdict.SemanticValid = semValid
	verdict.Errors = append(verdict.Errors, semErrors...)

	verdict.Valid = verdict.DeterministicValid && verdict.SemanticValid

	return verdict, nil
}

// semanticPass consults the LLM collaborator. A missing provider means
// the pass succeeds vacuously; a failing provider or unparseable
// response fails the pass with a single error, it never fails Validate.
func (v *Validator) semanticPass(ctx context.Context, report string, metrics model.MetricsRecord) (bool, []string) {
	if v.provider == nil {
		if v.verbose {
			fmt.Fprintf(os.Stderr, "No LLM provider configured; skipping semantic validation\n")
		}
		return true, nil
	}

	result, err := v.provider.CheckFacts(ctx, llm.FactCheckRequest{
		Report:  report,
		Metrics: metrics,
	})
	if err != nil {
		if v.verbose {
			fmt.Fprintf(os.Stderr, "Semantic validation failed: %v\n", err)
		}
		return false, []string{fmt.Sprintf("semantic validation unavailable: %v", err)}
	}

	if v.verbose {
		fmt.Fprintf(os.Stderr, "Semantic verdict from %s: valid=%t (%d tokens)\n", result.Model, result.Valid, result.TokensUsed)
	}

	return result.Valid, result.Errors
}
