package finetune

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/garyellow/agri-advisor-go/internal/intent"
)

// Model is a loaded linear classifier. It is immutable and safe for
// concurrent use.
type Model struct {
	labels    []intent.Label
	vocab     map[string]int
	weights   [][]float64
	bias      []float64
	ngramMax  int
	lowercase bool
}

func newModel(labels []intent.Label, w ModelWeights) *Model {
	return &Model{
		labels:    labels,
		vocab:     w.Vocabulary,
		weights:   w.Weights,
		bias:      w.Bias,
		ngramMax:  w.NgramMax,
		lowercase: w.Lowercase,
	}
}

// Labels returns the trained label set in index order.
func (m *Model) Labels() []intent.Label {
	out := make([]intent.Label, len(m.labels))
	copy(out, m.labels)
	return out
}

// Predict returns a softmax distribution over the trained labels.
func (m *Model) Predict(text string) []intent.Score {
	return intent.Softmax(m.labels, m.logits(m.features(text)))
}

// features maps text to an L2-normalised sparse vector of n-gram counts,
// keyed by vocabulary column.
func (m *Model) features(text string) map[int]float64 {
	words := tokenize(text, m.lowercase)
	counts := make(map[int]float64)
	for n := 1; n <= m.ngramMax; n++ {
		for i := 0; i+n <= len(words); i++ {
			if col, ok := m.vocab[strings.Join(words[i:i+n], " ")]; ok {
				counts[col]++
			}
		}
	}

	var norm2 float64
	for _, v := range counts {
		norm2 += v * v
	}
	if norm2 == 0 {
		return counts
	}
	scale := 1 / math.Sqrt(norm2)
	for col := range counts {
		counts[col] *= scale
	}
	return counts
}

func (m *Model) logits(x map[int]float64) []float64 {
	out := make([]float64, len(m.labels))
	for i, row := range m.weights {
		z := m.bias[i]
		for col, v := range x {
			z += row[col] * v
		}
		out[i] = z
	}
	return out
}

// tokenize splits text into words of two or more letters or digits, the
// default token pattern the training pipeline vectorises with.
func tokenize(text string, lowercase bool) []string {
	text = norm.NFKC.String(text)
	if lowercase {
		text = strings.ToLower(text)
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	words := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			words = append(words, f)
		}
	}
	return words
}
