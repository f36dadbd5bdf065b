package score

import (
	"context"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"

	"github.com/akorchak/veracity/internal/embed"
	"github.com/akorchak/veracity/internal/llm"
	"github.com/akorchak/veracity/internal/model"
	"github.com/akorchak/veracity/internal/store"
)

// Scorer produces the weighted style score from three sub-scores:
// structural checks (local), language quality (LLM judge) and
// historical similarity (vector store). Unavailable collaborators
// degrade their sub-score to zero with an explanatory note instead of
// failing the call.
type Scorer struct {
	embedder embed.Embedder
	store    store.Store
	judge    llm.Provider
	cfg      model.ScoringConfig
	verbose  bool
}

// NewScorer creates a scorer. judge, embedder and store may each be nil;
// the corresponding sub-scores then degrade.
func NewScorer(embedder embed.Embedder, st store.Store, judge llm.Provider, cfg model.ScoringConfig, verbose bool) *Scorer {
	return &Scorer{
		embedder: embedder,
		store:    st,
		judge:    judge,
		cfg:      cfg,
		verbose:  verbose,
	}
}

var paragraphSplitPattern = regexp.MustCompile(`\n[ \t]*\n+`)

var numericTokenPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?%?`)

// Word count falloff bounds: score decays linearly from the target band
// down to zero at these extremes
const (
	wordFloor   = 50
	wordCeiling = 600
)

// Score grades the report's style. Identical input with identical
// collaborator responses produces an identical breakdown.
func (s *Scorer) Score(ctx context.Context, report string) (*model.StyleScoreBreakdown, error) {
	if strings.TrimSpace(report) == "" {
		return nil, model.ErrEmptyReport
	}

	structural := s.scoreStructural(report)
	language := s.scoreLanguage(ctx, report)
	historical := s.scoreHistorical(ctx, report)

	aggregate := 100 * (model.StructuralWeight*structural.Score/model.StructuralMax +
		model.LanguageWeight*language.Score/model.LanguageMax +
		model.HistoricalWeight*historical.Score/model.HistoricalMax)
	// The headline score is rounded to a whole number; the sub-score
	// details keep their precision
	aggregate = math.Round(aggregate)

	breakdown := &model.StyleScoreBreakdown{
		StyleScore: aggregate,
		Grade:      model.GradeFor(aggregate),
		Breakdown: model.Breakdown{
			Structural:           structural,
			LanguageQuality:      language,
			HistoricalSimilarity: historical,
		},
	}
	breakdown.Feedback = synthesizeFeedback(breakdown)

	if s.verbose {
		fmt.Fprintf(os.Stderr, "Style score %.1f (%s): structural %.1f, language %.1f, historical %.1f\n",
			aggregate, breakdown.Grade, structural.Score, language.Score, historical.Score)
	}

	return breakdown, nil
}

// scoreStructural checks the report against fixed target bands. Three
// components worth 10 points each: word count, paragraph structure and
// data integration.
func (s *Scorer) scoreStructural(report string) model.StructuralScore {
	detail := model.StructuralDetail{}

	wordCount := len(strings.Fields(report))
	detail.WordCount = wordCount
	wordScore := s.scoreWordCount(wordCount, &detail)

	paragraphs := countParagraphs(report)
	detail.ParagraphCount = paragraphs
	paragraphScore := s.scoreParagraphs(paragraphs, &detail)

	dataScore := s.scoreDataIntegration(report, &detail)

	return model.StructuralScore{
		Score:   wordScore + paragraphScore + dataScore,
		Max:     model.StructuralMax,
		Details: detail,
	}
}

func (s *Scorer) scoreWordCount(wordCount int, detail *model.StructuralDetail) float64 {
	min, max := s.cfg.MinWords, s.cfg.MaxWords

	switch {
	case wordCount >= min && wordCount <= max:
		detail.WordCountStatus = "within target"
		return 10

	case wordCount < min:
		detail.WordCountStatus = "too short"
		if wordCount <= wordFloor {
			return 0
		}
		return 10 * float64(wordCount-wordFloor) / float64(min-wordFloor)

	default:
		detail.WordCountStatus = "too long"
		if wordCount >= wordCeiling {
			return 0
		}
		return 10 * float64(wordCeiling-wordCount) / float64(wordCeiling-max)
	}
}

func (s *Scorer) scoreParagraphs(paragraphs int, detail *model.StructuralDetail) float64 {
	min, max := s.cfg.MinParagraphs, s.cfg.MaxParagraphs

	switch {
	case paragraphs >= min && paragraphs <= max:
		detail.StructureStatus = "good structure"
		return 10
	case paragraphs == min-1 || paragraphs == max+1:
		detail.StructureStatus = "suboptimal paragraph count"
		return 6
	default:
		detail.StructureStatus = "poor structure"
		return 2
	}
}

// scoreDataIntegration rewards reports that weave numbers into the
// prose. Tiers follow house-style expectations for a quarterly note.
func (s *Scorer) scoreDataIntegration(report string, detail *model.StructuralDetail) float64 {
	numbers := numericTokenPattern.FindAllString(report, -1)
	percents := 0
	for _, n := range numbers {
		if strings.HasSuffix(n, "%") {
			percents++
		}
	}

	detail.PercentMentions = percents
	detail.NumericReferences = len(numbers)

	switch {
	case percents >= 4 && len(numbers) >= 6:
		detail.DataIntegration = "excellent"
		return 10
	case percents >= 2 && len(numbers) >= 4:
		detail.DataIntegration = "good"
		return 7
	default:
		detail.DataIntegration = "light on data"
		return 4
	}
}

// scoreLanguage delegates to the LLM judge. No judge, a failing judge
// or an unparseable response all degrade to zero with a note.
func (s *Scorer) scoreLanguage(ctx context.Context, report string) model.LanguageScore {
	degraded := func(note string) model.LanguageScore {
		if s.verbose {
			fmt.Fprintf(os.Stderr, "Language sub-score degraded: %s\n", note)
		}
		return model.LanguageScore{
			Score: 0,
			Max:   model.LanguageMax,
			Details: model.LanguageDetail{
				Note: note,
			},
		}
	}

	if s.judge == nil {
		return degraded("no language judge configured")
	}

	judgment, err := s.judge.JudgeStyle(ctx, llm.StyleJudgeRequest{Report: report})
	if err != nil {
		return degraded(fmt.Sprintf("language judgment unavailable: %v", err))
	}

	var sum float64
	for _, dim := range judgment.Dimensions {
		sum += dim.Score
	}

	// Four dimensions at 0-10 each map directly onto the 40-point budget
	score := sum / (10 * float64(len(judgment.Dimensions))) * model.LanguageMax

	return model.LanguageScore{
		Score: score,
		Max:   model.LanguageMax,
		Details: model.LanguageDetail{
			Dimensions: judgment.Dimensions,
		},
	}
}

// scoreHistorical embeds the report and compares it against its nearest
// stored chunks. Similarity is (1 - cosine distance) scaled to 0-100.
func (s *Scorer) scoreHistorical(ctx context.Context, report string) model.HistoricalScore {
	degraded := func(note string) model.HistoricalScore {
		if s.verbose {
			fmt.Fprintf(os.Stderr, "Historical sub-score degraded: %s\n", note)
		}
		return model.HistoricalScore{
			Score: 0,
			Max:   model.HistoricalMax,
			Details: model.HistoricalDetail{
				ConsistencyNote: note,
			},
		}
	}

	if s.embedder == nil || s.store == nil {
		return degraded("no historical corpus configured")
	}

	embedding, err := s.embedder.Embed(ctx, report)
	if err != nil {
		return degraded(fmt.Sprintf("embedding unavailable: %v", err))
	}

	topK := s.cfg.TopK
	if topK <= 0 {
		topK = 3
	}

	results, err := s.store.Query(ctx, embedding, topK)
	if err != nil {
		return degraded(fmt.Sprintf("historical query failed: %v", err))
	}
	if len(results) == 0 {
		return degraded("no historical data to compare against")
	}

	similarities := make([]float64, 0, len(results))
	var sum, minSim, maxSim float64
	minSim = math.Inf(1)
	maxSim = math.Inf(-1)

	for _, r := range results {
		sim := (1 - r.Distance) * 100
		if sim < 0 {
			sim = 0
		}
		if sim > 100 {
			sim = 100
		}
		similarities = append(similarities, sim)
		sum += sim
		minSim = math.Min(minSim, sim)
		maxSim = math.Max(maxSim, sim)
	}

	avg := sum / float64(len(similarities))

	note := "consistent with historical reports"
	if maxSim-minSim > 20 {
		note = "mixed consistency across historical reports"
	}

	return model.HistoricalScore{
		Score: avg / 100 * model.HistoricalMax,
		Max:   model.HistoricalMax,
		Details: model.HistoricalDetail{
			AvgSimilarity:      math.Round(avg*10) / 10,
			TopMatchSimilarity: math.Round(similarities[0]*10) / 10,
			Similarities:       similarities,
			Comparisons:        len(similarities),
			ConsistencyNote:    note,
		},
	}
}

// synthesizeFeedback produces a short human-readable summary from the
// breakdown's weakest points
func synthesizeFeedback(b *model.StyleScoreBreakdown) string {
	var parts []string

	st := b.Breakdown.Structural.Details
	if st.WordCountStatus != "within target" {
		parts = append(parts, fmt.Sprintf("word count is %s (%d words)", st.WordCountStatus, st.WordCount))
	}
	if st.StructureStatus != "good structure" {
		parts = append(parts, fmt.Sprintf("paragraph structure needs work (%d paragraphs)", st.ParagraphCount))
	}
	if st.DataIntegration == "light on data" {
		parts = append(parts, "integrate more metric references into the prose")
	}

	lang := b.Breakdown.LanguageQuality.Details
	if lang.Note != "" {
		parts = append(parts, lang.Note)
	}
	for _, dim := range lang.Dimensions {
		if dim.Score <= 6 && dim.Comment != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", strings.ToLower(dim.Name), dim.Comment))
		}
	}

	hist := b.Breakdown.HistoricalSimilarity.Details
	if hist.Comparisons == 0 || hist.ConsistencyNote != "consistent with historical reports" {
		parts = append(parts, hist.ConsistencyNote)
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Grade %s: matches the house style across structure, language and historical tone.", b.Grade)
	}

	return fmt.Sprintf("Grade %s: %s.", b.Grade, strings.Join(parts, "; "))
}

func countParagraphs(report string) int {
	count := 0
	for _, p := range paragraphSplitPattern.Split(strings.TrimSpace(report), -1) {
		if strings.TrimSpace(p) != "" {
			count++
		}
	}
	return count
}
