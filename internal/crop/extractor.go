package crop

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultThreshold is the minimum fuzzy score (0-100) accepted as a match.
const DefaultThreshold = 70

// Pass identifies which stage of extraction produced a match.
type Pass string

const (
	PassExact Pass = "exact"
	PassFuzzy Pass = "fuzzy"
	PassNone  Pass = "none"
)

// Match is the detailed outcome of an extraction.
type Match struct {
	Name  Name
	Pass  Pass
	Score int // 100 for exact matches, best fuzzy score otherwise
}

// Found reports whether a crop was recognised.
func (m Match) Found() bool { return m.Pass != PassNone }

// Extractor finds the crop a question is about. It holds no mutable state
// and is safe for concurrent use.
type Extractor struct {
	threshold int
}

// NewExtractor returns an extractor using the given fuzzy threshold.
// Values outside 1..100 fall back to DefaultThreshold.
func NewExtractor(threshold int) *Extractor {
	if threshold <= 0 || threshold > 100 {
		threshold = DefaultThreshold
	}
	return &Extractor{threshold: threshold}
}

// Threshold returns the fuzzy acceptance threshold.
func (e *Extractor) Threshold() int { return e.threshold }

// Extract returns the crop mentioned in text, if any.
func (e *Extractor) Extract(text string) (Name, bool) {
	m := e.Match(text)
	return m.Name, m.Found()
}

// Match runs both extraction passes and reports how the result was found.
//
// The exact pass returns the first vocabulary entry contained in the text,
// so ties between several mentioned crops resolve by vocabulary order.
// The fuzzy pass only runs when no entry is contained verbatim.
func (e *Extractor) Match(text string) Match {
	normalized := Normalize(text)
	if normalized == "" {
		return Match{Pass: PassNone}
	}

	for _, n := range vocabulary {
		if strings.Contains(normalized, string(n)) {
			return Match{Name: n, Pass: PassExact, Score: 100}
		}
	}

	var (
		best      Name
		bestScore = -1
	)
	for _, n := range vocabulary {
		if s := PartialRatio(normalized, string(n)); s > bestScore {
			best, bestScore = n, s
		}
	}
	if bestScore >= e.threshold {
		return Match{Name: best, Pass: PassFuzzy, Score: bestScore}
	}
	return Match{Pass: PassNone, Score: bestScore}
}

// Normalize folds text to the form the vocabulary is matched against:
// NFKC-normalised, lower-cased, with surrounding whitespace removed.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(text)))
}
