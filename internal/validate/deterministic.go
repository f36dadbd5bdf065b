package validate

import (
	"fmt"
	"math"

	"github.com/akorchak/veracity/internal/model"
)

// Deterministic checks extracted numeric claims against the metrics
// record. It is a pure function of its inputs: same claims and metrics
// always produce the same errors, in claim order.
type Deterministic struct {
	// Tolerance is the absolute difference allowed between a claimed
	// value and a metric value
	Tolerance float64

	// MismatchWindow separates "mismatched" from "unsupported": a claim
	// whose nearest metric is beyond tolerance but within the window is
	// reported as a mismatch naming the expected value
	MismatchWindow float64

	// AllowDerived also accepts sums, differences and roundings of
	// metric values
	AllowDerived bool
}

// NewDeterministic builds a validator from configuration
func NewDeterministic(cfg model.ValidationConfig) *Deterministic {
	return &Deterministic{
		Tolerance:      cfg.Tolerance,
		MismatchWindow: cfg.MismatchWindow,
		AllowDerived:   cfg.AllowDerived,
	}
}

// Validate returns one error string per failing claim, in claim order
func (d *Deterministic) Validate(claims []model.NumericClaim, metrics model.MetricsRecord) []string {
	var errs []string

	for _, claim := range claims {
		if msg, ok := d.checkClaim(claim, metrics); !ok {
			errs = append(errs, msg)
		}
	}

	return errs
}

func (d *Deterministic) checkClaim(claim model.NumericClaim, metrics model.MetricsRecord) (string, bool) {
	switch claim.Unit {
	case model.UnitUnknown:
		// A unit the engine cannot compare (basis points, multiples)
		// cannot be verified either way; report it rather than guess
		return fmt.Sprintf("ambiguous number %s: unit not comparable to metrics (context: %q)", claim.Raw, claim.Context), false

	case model.UnitCount:
		return d.checkCount(claim, metrics)

	default:
		return d.checkValue(claim, metrics)
	}
}

// checkCount requires an exact match against a whole-number metric.
// "21 record closes" against sp500_new_highs=21 passes; 20 does not,
// regardless of tolerance.
func (d *Deterministic) checkCount(claim model.NumericClaim, metrics model.MetricsRecord) (string, bool) {
	claimed := int64(claim.Value)

	for _, name := range metrics.Names() {
		if !metrics.IsIntegral(name) {
			continue
		}
		if int64(metrics[name]) == claimed {
			return "", true
		}
	}

	if name, nearest, found := d.nearestIntegral(claim.Value, metrics); found && math.Abs(claim.Value-nearest) <= d.MismatchWindow {
		return fmt.Sprintf("mismatched count: report claims %s, %s is %d", claim.Raw, name, int64(nearest)), false
	}

	return fmt.Sprintf("unsupported count %s (context: %q)", claim.Raw, claim.Context), false
}

// checkValue matches percent and plain claims within tolerance. Values
// are compared by magnitude: a report saying "declined 3.2%" should
// match a metric of -3.2.
func (d *Deterministic) checkValue(claim model.NumericClaim, metrics model.MetricsRecord) (string, bool) {
	claimed := math.Abs(claim.Value)

	for _, name := range metrics.Names() {
		if math.Abs(claimed-math.Abs(metrics[name])) <= d.Tolerance {
			return "", true
		}
	}

	if d.AllowDerived && d.matchesDerived(claimed, metrics) {
		return "", true
	}

	if name, distance, found := d.nearestValue(claimed, metrics); found && distance <= d.MismatchWindow {
		return fmt.Sprintf("mismatched number: report claims %s, %s is %s", claim.Raw, name, formatValue(metrics[name])), false
	}

	return fmt.Sprintf("unsupported number %s (context: %q)", claim.Raw, claim.Context), false
}

// matchesDerived accepts values derivable from metric pairs: sums,
// differences, and single-metric roundings
func (d *Deterministic) matchesDerived(claimed float64, metrics model.MetricsRecord) bool {
	names := metrics.Names()

	for _, name := range names {
		v := math.Abs(metrics[name])
		if math.Abs(claimed-math.Round(v)) <= d.Tolerance {
			return true
		}
		if math.Abs(claimed-math.Round(v*10)/10) <= d.Tolerance {
			return true
		}
	}

	for i, a := range names {
		for _, b := range names[i+1:] {
			sum := math.Abs(metrics[a] + metrics[b])
			diff := math.Abs(math.Abs(metrics[a]) - math.Abs(metrics[b]))
			if math.Abs(claimed-sum) <= d.Tolerance || math.Abs(claimed-diff) <= d.Tolerance {
				return true
			}
		}
	}

	return false
}

// nearestValue finds the metric whose magnitude is closest to claimed.
// Names() order makes the tie-break deterministic.
func (d *Deterministic) nearestValue(claimed float64, metrics model.MetricsRecord) (string, float64, bool) {
	bestName := ""
	bestDistance := math.Inf(1)

	for _, name := range metrics.Names() {
		distance := math.Abs(claimed - math.Abs(metrics[name]))
		if distance < bestDistance {
			bestName = name
			bestDistance = distance
		}
	}

	return bestName, bestDistance, bestName != ""
}

func (d *Deterministic) nearestIntegral(claimed float64, metrics model.MetricsRecord) (string, float64, bool) {
	bestName := ""
	bestValue := 0.0
	bestDistance := math.Inf(1)

	for _, name := range metrics.Names() {
		if !metrics.IsIntegral(name) {
			continue
		}
		distance := math.Abs(claimed - metrics[name])
		if distance < bestDistance {
			bestName = name
			bestValue = metrics[name]
			bestDistance = distance
		}
	}

	return bestName, bestValue, bestName != ""
}

func formatValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
