package model

// Unit classifies the inferred unit of a numeric claim
type Unit string

const (
	// UnitPercent is a percentage value ("8.2%", "8.2 percent")
	UnitPercent Unit = "percent"

	// UnitCount is a whole-number tally adjacent to a domain keyword
	// ("21 new highs", "63 trading days")
	UnitCount Unit = "count"

	// UnitPlain is a bare decimal with no unit marker
	UnitPlain Unit = "plain"

	// UnitYear marks a four-digit token in quarter context ("Q3 2024").
	// Years are excluded from validation entirely.
	UnitYear Unit = "year"

	// UnitUnknown marks a number whose unit could not be determined
	// (e.g. "37 bps"). Treated conservatively as unsupported so it
	// surfaces as an error instead of vanishing.
	UnitUnknown Unit = "unknown"
)

// NumericClaim is a numeric value extracted from report text, with the
// span it came from and its inferred unit. Claims are ephemeral: built per
// validation call and discarded afterwards.
type NumericClaim struct {
	Raw     string  `json:"raw"`     // Matched token, e.g. "8.2%"
	Value   float64 `json:"value"`   // Parsed value, e.g. 8.2
	Unit    Unit    `json:"unit"`    // Inferred unit
	Start   int     `json:"start"`   // Byte offset in the report text
	End     int     `json:"end"`     // Byte offset past the token
	Context string  `json:"context"` // Surrounding text span for error messages
}
