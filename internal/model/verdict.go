package model

// ValidationVerdict is the combined result of deterministic and semantic
// validation for a single report. Returning Valid=false with populated
// Errors is a successful call, not a failure.
type ValidationVerdict struct {
	Valid              bool `json:"valid"`
	DeterministicValid bool `json:"deterministic_valid"`
	SemanticValid      bool `json:"semantic_valid"`

	// Errors preserves generation order: deterministic errors first,
	// then semantic errors, so the locally verifiable problems always
	// lead.
	Errors []string `json:"errors"`
}
