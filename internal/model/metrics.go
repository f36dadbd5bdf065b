package model

import (
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

// MetricsRecord maps metric names (e.g. "acwi_quarter_return",
// "sp500_new_highs") to their ground-truth values. It is read-only for the
// duration of a validation call.
type MetricsRecord map[string]float64

// ParseMetrics decodes a metrics mapping from JSON or YAML bytes.
// Non-numeric entries are rejected rather than silently dropped.
func ParseMetrics(data []byte) (MetricsRecord, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse metrics: %w", err)
	}

	metrics := make(MetricsRecord, len(raw))
	for name, value := range raw {
		switch v := value.(type) {
		case int:
			metrics[name] = float64(v)
		case int64:
			metrics[name] = float64(v)
		case float64:
			metrics[name] = v
		default:
			return nil, fmt.Errorf("metric %q is not numeric (got %T)", name, value)
		}
	}

	return metrics, nil
}

// Names returns the metric names in ascending order, so that prompts and
// error messages are deterministic for identical input.
func (m MetricsRecord) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsIntegral reports whether the named metric holds a whole number,
// making it eligible for exact count matching.
func (m MetricsRecord) IsIntegral(name string) bool {
	v, ok := m[name]
	return ok && v == math.Trunc(v)
}
