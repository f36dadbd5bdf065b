package validate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/akorchak/veracity/internal/llm"
	"github.com/akorchak/veracity/internal/model"
)

// fakeProvider scripts the semantic collaborator for orchestrator tests
type fakeProvider struct {
	factResult *llm.FactCheckResult
	factErr    error
	calls      int
}

func (p *fakeProvider) Name() string                         { return "fake" }
func (p *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func (p *fakeProvider) CheckFacts(ctx context.Context, req llm.FactCheckRequest) (*llm.FactCheckResult, error) {
	p.calls++
	return p.factResult, p.factErr
}

func (p *fakeProvider) JudgeStyle(ctx context.Context, req llm.StyleJudgeRequest) (*llm.StyleJudgment, error) {
	return nil, errors.New("not used in validation")
}

var scenarioMetrics = model.MetricsRecord{
	"acwi_quarter_return": 8.2,
	"sp500_new_highs":     21,
}

const validReport = "Global equities gained 8.2% in the third quarter. The S&P 500 set 21 record closes along the way, a sign of broadening participation."

func TestValidator_ValidReport(t *testing.T) {
	provider := &fakeProvider{factResult: &llm.FactCheckResult{Valid: true}}
	v := New(model.ValidationConfig{Tolerance: 0.5, MismatchWindow: 2.0}, provider, false)

	verdict, err := v.Validate(context.Background(), validReport, scenarioMetrics)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if !verdict.Valid || !verdict.DeterministicValid || !verdict.SemanticValid {
		t.Errorf("expected fully valid verdict, got %+v", verdict)
	}
	if len(verdict.Errors) != 0 {
		t.Errorf("expected no errors, got %v", verdict.Errors)
	}
	if provider.calls != 1 {
		t.Errorf("expected 1 semantic call, got %d", provider.calls)
	}
}

func TestValidator_MismatchedNumber(t *testing.T) {
	provider := &fakeProvider{factResult: &llm.FactCheckResult{Valid: true}}
	v := New(model.ValidationConfig{Tolerance: 0.5, MismatchWindow: 2.0}, provider, false)

	report := "Global equities gained 9.0% in the third quarter. The S&P 500 set 21 record closes along the way."
	verdict, err := v.Validate(context.Background(), report, scenarioMetrics)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if verdict.Valid {
		t.Error("expected invalid verdict")
	}
	if verdict.DeterministicValid {
		t.Error("expected deterministic failure")
	}
	if !verdict.SemanticValid {
		t.Error("semantic pass should still succeed")
	}
	if len(verdict.Errors) != 1 || !strings.Contains(verdict.Errors[0], "8.2") {
		t.Errorf("expected mismatch error naming 8.2, got %v", verdict.Errors)
	}
}

func TestValidator_LocalOnlyMode(t *testing.T) {
	v := New(model.ValidationConfig{Tolerance: 0.5, MismatchWindow: 2.0}, nil, false)

	verdict, err := v.Validate(context.Background(), validReport, scenarioMetrics)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if !verdict.SemanticValid {
		t.Error("semantic pass must succeed vacuously without a provider")
	}
	if !verdict.Valid {
		t.Errorf("expected valid verdict, got %+v", verdict)
	}
}

func TestValidator_SemanticFailure(t *testing.T) {
	provider := &fakeProvider{factResult: &llm.FactCheckResult{
		Valid:  false,
		Errors: []string{"report references a Fed meeting the metrics cannot support"},
	}}
	v := New(model.ValidationConfig{Tolerance: 0.5, MismatchWindow: 2.0}, provider, false)

	verdict, err := v.Validate(context.Background(), validReport, scenarioMetrics)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if verdict.Valid {
		t.Error("expected invalid verdict")
	}
	if !verdict.DeterministicValid {
		t.Error("deterministic pass should succeed")
	}
	if verdict.SemanticValid {
		t.Error("expected semantic failure")
	}
	if len(verdict.Errors) != 1 || !strings.Contains(verdict.Errors[0], "Fed meeting") {
		t.Errorf("expected semantic error, got %v", verdict.Errors)
	}
}

func TestValidator_ProviderErrorDegrades(t *testing.T) {
	provider := &fakeProvider{factErr: errors.New("connection refused")}
	v := New(model.ValidationConfig{Tolerance: 0.5, MismatchWindow: 2.0}, provider, false)

	verdict, err := v.Validate(context.Background(), validReport, scenarioMetrics)
	if err != nil {
		t.Fatalf("provider failure must not fail Validate: %v", err)
	}

	if verdict.SemanticValid {
		t.Error("expected semantic failure on provider error")
	}
	if verdict.Valid {
		t.Error("expected invalid verdict")
	}
	if len(verdict.Errors) != 1 || !strings.Contains(verdict.Errors[0], "semantic validation unavailable") {
		t.Errorf("expected a single degradation error, got %v", verdict.Errors)
	}
}

func TestValidator_DeterministicErrorsFirst(t *testing.T) {
	provider := &fakeProvider{factResult: &llm.FactCheckResult{
		Valid:  false,
		Errors: []string{"semantic problem"},
	}}
	v := New(model.ValidationConfig{Tolerance: 0.5, MismatchWindow: 2.0}, provider, false)

	report := "Global equities gained 42% in the third quarter."
	verdict, err := v.Validate(context.Background(), report, scenarioMetrics)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if len(verdict.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %v", verdict.Errors)
	}
	if !strings.Contains(verdict.Errors[0], "42") {
		t.Errorf("deterministic error must come first, got %v", verdict.Errors)
	}
	if verdict.Errors[1] != "semantic problem" {
		t.Errorf("semantic error must come second, got %v", verdict.Errors)
	}
}

func TestValidator_EmptyReport(t *testing.T) {
	v := New(model.ValidationConfig{Tolerance: 0.5, MismatchWindow: 2.0}, nil, false)

	_, err := v.Validate(context.Background(), "   \n\t ", scenarioMetrics)
	if !errors.Is(err, model.ErrEmptyReport) {
		t.Errorf("expected ErrEmptyReport, got %v", err)
	}
}

func TestValidator_EmptyMetrics(t *testing.T) {
	v := New(model.ValidationConfig{Tolerance: 0.5, MismatchWindow: 2.0}, nil, false)

	_, err := v.Validate(context.Background(), validReport, model.MetricsRecord{})
	if !errors.Is(err, model.ErrNoMetrics) {
		t.Errorf("expected ErrNoMetrics, got %v", err)
	}
}
