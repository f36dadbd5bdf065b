package model

import "errors"

// Call-level input errors. Everything else degrades into the structured
// verdict or score rather than failing the call.
var (
	// ErrEmptyReport is returned when the report text is missing or blank
	ErrEmptyReport = errors.New("report text is empty")

	// ErrNoMetrics is returned when the metrics mapping is missing or empty
	ErrNoMetrics = errors.New("metrics record is empty")
)
