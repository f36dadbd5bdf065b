package model

// Sub-score point budgets. The aggregate weights below apply to
// max-normalized sub-scores, so the budgets only shape the detail output.
const (
	StructuralMax = 30.0
	LanguageMax   = 40.0
	HistoricalMax = 30.0
)

// Aggregate weights over max-normalized sub-scores. Must sum to 1.
const (
	StructuralWeight = 0.20
	LanguageWeight   = 0.50
	HistoricalWeight = 0.30
)

// Grade boundaries. GradeFor is a monotone step function of the aggregate.
const (
	GradeABoundary = 90.0
	GradeBBoundary = 75.0
	GradeCBoundary = 60.0
	GradeDBoundary = 45.0
)

// GradeFor converts an aggregate style score (0-100) to a letter grade
func GradeFor(score float64) string {
	switch {
	case score >= GradeABoundary:
		return "A"
	case score >= GradeBBoundary:
		return "B"
	case score >= GradeCBoundary:
		return "C"
	case score >= GradeDBoundary:
		return "D"
	default:
		return "F"
	}
}

// StyleScoreBreakdown is the full result of one style-scoring call
type StyleScoreBreakdown struct {
	StyleScore float64   `json:"style_score"` // Weighted aggregate, 0-100
	Grade      string    `json:"grade"`
	Feedback   string    `json:"feedback"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Breakdown holds the three sub-scores
type Breakdown struct {
	Structural           StructuralScore `json:"structural"`
	LanguageQuality      LanguageScore   `json:"language_quality"`
	HistoricalSimilarity HistoricalScore `json:"historical_similarity"`
}

// StructuralScore covers word count, paragraph structure and data
// integration against fixed target bands
type StructuralScore struct {
	Score   float64          `json:"score"`
	Max     float64          `json:"max"`
	Details StructuralDetail `json:"details"`
}

// StructuralDetail explains how the structural score was reached
type StructuralDetail struct {
	WordCount         int    `json:"word_count"`
	WordCountStatus   string `json:"word_count_status"`
	ParagraphCount    int    `json:"paragraph_count"`
	StructureStatus   string `json:"structure_status"`
	PercentMentions   int    `json:"percent_mentions"`
	NumericReferences int    `json:"numeric_references"`
	DataIntegration   string `json:"data_integration"`
}

// LanguageScore is the hosted-model language-quality judgment
type LanguageScore struct {
	Score   float64        `json:"score"`
	Max     float64        `json:"max"`
	Details LanguageDetail `json:"details"`
}

// LanguageDetail carries the per-dimension judgments verbatim. Note is set
// when the judgment was unavailable and the score degraded to zero.
type LanguageDetail struct {
	Dimensions []DimensionScore `json:"dimensions,omitempty"`
	Note       string           `json:"note,omitempty"`
}

// DimensionScore is one judged dimension (tone, clarity, ...) rated 0-10
type DimensionScore struct {
	Name    string  `json:"name"`
	Score   float64 `json:"score"`
	Comment string  `json:"comment"`
}

// HistoricalScore compares the report to its nearest historical chunks
type HistoricalScore struct {
	Score   float64          `json:"score"`
	Max     float64          `json:"max"`
	Details HistoricalDetail `json:"details"`
}

// HistoricalDetail explains the similarity sub-score
type HistoricalDetail struct {
	AvgSimilarity      float64   `json:"avg_similarity"`
	TopMatchSimilarity float64   `json:"top_match_similarity,omitempty"`
	Similarities       []float64 `json:"similarities,omitempty"`
	Comparisons        int       `json:"comparisons"`
	ConsistencyNote    string    `json:"consistency_note"`
}
