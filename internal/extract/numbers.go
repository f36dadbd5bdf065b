package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/akorchak/veracity/internal/model"
)

// numberPattern matches numeric tokens: optional sign, decimals, optional
// percent suffix
var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?%?`)

// quarterPattern matches quarter labels like "Q1".."Q4"
var quarterPattern = regexp.MustCompile(`^[Qq][1-4]$`)

// contextWindow is how many bytes of surrounding text are captured per claim
const contextWindow = 40

// NumericExtractor pulls numeric claims out of free report text.
// It is a pure tokenizer + classifier pair: tokenize finds candidate
// numeric spans, classify infers each span's unit from its neighbors.
type NumericExtractor struct {
	countKeywords   []string
	unknownKeywords []string
	indexNames      []string
}

// NewNumericExtractor creates an extractor with the domain keyword sets
func NewNumericExtractor() *NumericExtractor {
	return &NumericExtractor{
		// Whole-number tallies: "21 new highs", "63 trading days"
		countKeywords: []string{
			"high", "highs", "record", "records", "day", "days",
			"session", "sessions", "stock", "stocks", "company",
			"companies", "close", "closes",
		},
		// Unit markers the engine cannot compare against metrics
		unknownKeywords: []string{
			"bps", "basis", "x", "times",
		},
		// Benchmark names whose trailing number is part of the name,
		// not a claim: "S&P 500", "Russell 2000"
		indexNames: []string{
			"s&p", "russell", "nasdaq", "ftse", "stoxx", "nikkei", "cac",
		},
	}
}

// Extract returns the numeric claims in text, in order of appearance.
// Year tokens in quarter context are classified and dropped here so they
// never reach validation. Pure function of its input.
func (e *NumericExtractor) Extract(text string) []model.NumericClaim {
	var claims []model.NumericClaim

	for _, loc := range numberPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		raw := text[start:end]

		// Skip digits embedded in larger tokens ("Q3", "S&P500", "2024Q3")
		if start > 0 && isWordByte(text[start-1]) {
			continue
		}
		if end < len(text) && isWordByte(text[end]) {
			continue
		}

		claim, ok := e.classify(text, raw, start, end)
		if !ok {
			continue
		}
		claims = append(claims, claim)
	}

	return claims
}

// classify infers the unit for one matched token. Returns ok=false for
// tokens that are not claims at all (years).
func (e *NumericExtractor) classify(text, raw string, start, end int) (model.NumericClaim, bool) {
	isPercent := strings.HasSuffix(raw, "%")
	numeric := strings.TrimSuffix(raw, "%")

	value, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return model.NumericClaim{}, false
	}

	prev := wordBefore(text, start)
	following := wordsAfter(text, end, 2)

	if !isPercent && e.isIndexName(numeric, prev) {
		return model.NumericClaim{}, false
	}

	unit := e.inferUnit(value, numeric, isPercent, prev, following)
	if unit == model.UnitYear {
		return model.NumericClaim{}, false
	}

	return model.NumericClaim{
		Raw:     raw,
		Value:   value,
		Unit:    unit,
		Start:   start,
		End:     end,
		Context: contextSpan(text, start, end),
	}, true
}

func (e *NumericExtractor) inferUnit(value float64, numeric string, isPercent bool, prev string, following []string) model.Unit {
	if isPercent {
		return model.UnitPercent
	}
	if len(following) > 0 {
		next := strings.ToLower(strings.Trim(following[0], ".,;:!?"))
		if next == "percent" || next == "percentage" {
			return model.UnitPercent
		}
	}

	// Four-digit tokens next to a quarter label are years, not claims:
	// "Q3 2024" or "2024 Q3". False positives here cause spurious
	// validation failures.
	if isYearToken(numeric, value, prev, following) {
		return model.UnitYear
	}

	isInteger := !strings.Contains(numeric, ".")

	for _, word := range following {
		w := strings.ToLower(strings.Trim(word, ".,;:!?"))
		for _, kw := range e.unknownKeywords {
			if w == kw {
				return model.UnitUnknown
			}
		}
		if isInteger {
			for _, kw := range e.countKeywords {
				if w == kw {
					return model.UnitCount
				}
			}
		}
	}

	return model.UnitPlain
}

// isIndexName reports whether the integer token completes a benchmark
// name like "S&P 500"
func (e *NumericExtractor) isIndexName(numeric, prev string) bool {
	if strings.Contains(numeric, ".") {
		return false
	}
	p := strings.ToLower(prev)
	for _, name := range e.indexNames {
		if p == name {
			return true
		}
	}
	return false
}

func isYearToken(numeric string, value float64, prev string, following []string) bool {
	if len(numeric) != 4 || value < 1900 || value > 2100 {
		return false
	}
	if quarterPattern.MatchString(prev) {
		return true
	}
	if len(following) > 0 && quarterPattern.MatchString(strings.Trim(following[0], ".,;:!?")) {
		return true
	}
	return false
}

// wordBefore returns the whitespace-delimited token immediately before pos
func wordBefore(text string, pos int) string {
	left := strings.TrimRight(text[:pos], " \t\n")
	if left == "" {
		return ""
	}
	idx := strings.LastIndexAny(left, " \t\n")
	return left[idx+1:]
}

// wordsAfter returns up to n whitespace-delimited tokens after pos
func wordsAfter(text string, pos, n int) []string {
	fields := strings.Fields(text[pos:])
	if len(fields) > n {
		fields = fields[:n]
	}
	return fields
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func contextSpan(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}
