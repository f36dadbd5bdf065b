package validate

import (
	"strings"
	"testing"

	"github.com/akorchak/veracity/internal/extract"
	"github.com/akorchak/veracity/internal/model"
)

func defaultDeterministic() *Deterministic {
	return &Deterministic{Tolerance: 0.5, MismatchWindow: 2.0}
}

func extractClaims(t *testing.T, text string) []model.NumericClaim {
	t.Helper()
	return extract.NewNumericExtractor().Extract(text)
}

func TestDeterministic_SupportedClaims(t *testing.T) {
	metrics := model.MetricsRecord{
		"acwi_quarter_return": 8.2,
		"sp500_new_highs":     21,
	}
	claims := extractClaims(t, "Global equities gained 8.2% in the third quarter. The S&P 500 set 21 record closes along the way.")

	errs := defaultDeterministic().Validate(claims, metrics)
	if len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestDeterministic_WithinTolerance(t *testing.T) {
	metrics := model.MetricsRecord{"acwi_quarter_return": 8.2}
	claims := extractClaims(t, "The index gained roughly 8.4% over the period.")

	errs := defaultDeterministic().Validate(claims, metrics)
	if len(errs) != 0 {
		t.Errorf("expected 8.4 within tolerance of 8.2, got %v", errs)
	}
}

func TestDeterministic_MismatchedNumber(t *testing.T) {
	metrics := model.MetricsRecord{"acwi_quarter_return": 8.2}
	claims := extractClaims(t, "The index gained 9.0% over the quarter.")

	errs := defaultDeterministic().Validate(claims, metrics)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !strings.Contains(errs[0], "mismatched") {
		t.Errorf("expected mismatch diagnosis, got %q", errs[0])
	}
	if !strings.Contains(errs[0], "8.2") || !strings.Contains(errs[0], "acwi_quarter_return") {
		t.Errorf("mismatch error should name the expected metric: %q", errs[0])
	}
}

func TestDeterministic_UnsupportedNumber(t *testing.T) {
	metrics := model.MetricsRecord{"acwi_quarter_return": 8.2}
	claims := extractClaims(t, "Volatility collapsed nearly 50% from the August spike.")

	errs := defaultDeterministic().Validate(claims, metrics)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !strings.Contains(errs[0], "unsupported") {
		t.Errorf("expected unsupported diagnosis, got %q", errs[0])
	}
}

func TestDeterministic_NegativeMetricMagnitude(t *testing.T) {
	metrics := model.MetricsRecord{"em_quarter_return": -3.2}
	claims := extractClaims(t, "Emerging markets declined 3.2% over the quarter.")

	errs := defaultDeterministic().Validate(claims, metrics)
	if len(errs) != 0 {
		t.Errorf("magnitude comparison should accept declines against negative metrics, got %v", errs)
	}
}

func TestDeterministic_CountExactMatch(t *testing.T) {
	metrics := model.MetricsRecord{"sp500_new_highs": 21}

	valid := extractClaims(t, "The benchmark notched 21 record closes.")
	if errs := defaultDeterministic().Validate(valid, metrics); len(errs) != 0 {
		t.Errorf("expected exact count to pass, got %v", errs)
	}

	offByOne := extractClaims(t, "The benchmark notched 20 record closes.")
	errs := defaultDeterministic().Validate(offByOne, metrics)
	if len(errs) != 1 {
		t.Fatalf("counts must match exactly, got %v", errs)
	}
	if !strings.Contains(errs[0], "mismatched count") {
		t.Errorf("near-miss count should be a mismatch, got %q", errs[0])
	}
}

func TestDeterministic_CountFarOff(t *testing.T) {
	metrics := model.MetricsRecord{"sp500_new_highs": 21}
	claims := extractClaims(t, "The benchmark notched 63 record closes.")

	errs := defaultDeterministic().Validate(claims, metrics)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !strings.Contains(errs[0], "unsupported count") {
		t.Errorf("far-off count should be unsupported, got %q", errs[0])
	}
}

func TestDeterministic_AmbiguousUnit(t *testing.T) {
	metrics := model.MetricsRecord{"acwi_quarter_return": 8.2}
	claims := extractClaims(t, "Spreads tightened 37 bps during the quarter.")

	errs := defaultDeterministic().Validate(claims, metrics)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if !strings.Contains(errs[0], "ambiguous") {
		t.Errorf("unknown units should be flagged as ambiguous, got %q", errs[0])
	}
}

func TestDeterministic_DerivedNumbers(t *testing.T) {
	metrics := model.MetricsRecord{
		"us_return":   5.0,
		"intl_return": 3.1,
	}
	claims := extractClaims(t, "Combined exposure added 8.1% across both sleeves.")

	strict := defaultDeterministic()
	if errs := strict.Validate(claims, metrics); len(errs) != 1 {
		t.Errorf("derived sums must fail when AllowDerived is off, got %v", errs)
	}

	lenient := defaultDeterministic()
	lenient.AllowDerived = true
	if errs := lenient.Validate(claims, metrics); len(errs) != 0 {
		t.Errorf("derived sums should pass when AllowDerived is on, got %v", errs)
	}
}

func TestDeterministic_DerivedRounding(t *testing.T) {
	// 9.4 is 0.76 from the metric (beyond tolerance) but 0.4 from its
	// integer rounding, so only the derived path accepts it
	metrics := model.MetricsRecord{"acwi_quarter_return": 8.64}
	claims := extractClaims(t, "The quarter came in at 9.4% for global equities.")

	strict := defaultDeterministic()
	if errs := strict.Validate(claims, metrics); len(errs) != 1 {
		t.Errorf("expected strict failure, got %v", errs)
	}

	lenient := defaultDeterministic()
	lenient.AllowDerived = true
	if errs := lenient.Validate(claims, metrics); len(errs) != 0 {
		t.Errorf("rounded metric should pass with AllowDerived, got %v", errs)
	}
}

func TestDeterministic_NoClaims(t *testing.T) {
	metrics := model.MetricsRecord{"acwi_quarter_return": 8.2}
	errs := defaultDeterministic().Validate(nil, metrics)
	if len(errs) != 0 {
		t.Errorf("no claims means no errors, got %v", errs)
	}
}

func TestDeterministic_ErrorsInClaimOrder(t *testing.T) {
	metrics := model.MetricsRecord{"acwi_quarter_return": 8.2}
	claims := extractClaims(t, "First a bogus 42% claim, then a bogus 57% claim.")

	errs := defaultDeterministic().Validate(claims, metrics)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if !strings.Contains(errs[0], "42") || !strings.Contains(errs[1], "57") {
		t.Errorf("errors out of claim order: %v", errs)
	}
}
