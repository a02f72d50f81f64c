package intent

import (
	"fmt"
	"math"
	"slices"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
)

// Score is one label's share of the probability mass.
type Score struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// Prediction is the classifier's verdict. The zero value is not meaningful;
// build one with NewPrediction or Degraded.
type Prediction struct {
	Label      Label
	Confidence float64
	ranking    []Score
}

// NewPrediction turns raw strategy scores into a Prediction. Negative scores
// are clipped to zero, the rest normalised to sum 1 and sorted descending.
// Equal scores keep taxonomy order.
func NewPrediction(scores []Score) (Prediction, error) {
	if len(scores) == 0 {
		return Prediction{}, fmt.Errorf("%w: no scores", domerrors.ErrMalformedOutput)
	}

	seen := make(map[Label]struct{}, len(scores))
	ranking := make([]Score, 0, len(scores))
	var total float64
	for _, s := range scores {
		if !s.Label.Valid() {
			return Prediction{}, fmt.Errorf("%w: %q", domerrors.ErrUnknownIntent, s.Label)
		}
		if _, dup := seen[s.Label]; dup {
			return Prediction{}, fmt.Errorf("%w: duplicate label %s", domerrors.ErrMalformedOutput, s.Label)
		}
		seen[s.Label] = struct{}{}
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) {
			return Prediction{}, fmt.Errorf("%w: non-finite score for %s", domerrors.ErrMalformedOutput, s.Label)
		}
		v := max(s.Score, 0)
		total += v
		ranking = append(ranking, Score{Label: s.Label, Score: v})
	}
	if total <= 0 {
		return Prediction{}, fmt.Errorf("%w: all scores are zero", domerrors.ErrMalformedOutput)
	}

	for i := range ranking {
		ranking[i].Score /= total
	}
	slices.SortStableFunc(ranking, func(a, b Score) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return a.Label.order() - b.Label.order()
	})

	return Prediction{
		Label:      ranking[0].Label,
		Confidence: ranking[0].Score,
		ranking:    ranking,
	}, nil
}

// Degraded is the prediction returned whenever classification fails.
func Degraded() Prediction {
	return Prediction{Label: Unknown}
}

// IsDegraded reports whether p carries no ranking.
func (p Prediction) IsDegraded() bool {
	return len(p.ranking) == 0
}

// Ranking returns a copy of the scores, highest first.
func (p Prediction) Ranking() []Score {
	return slices.Clone(p.ranking)
}

// Restrict keeps only scores whose label is listed. NewPrediction
// renormalises what remains.
func Restrict(scores []Score, labels []Label) []Score {
	out := make([]Score, 0, len(scores))
	for _, s := range scores {
		if slices.Contains(labels, s.Label) {
			out = append(out, s)
		}
	}
	return out
}

// Softmax converts raw logits into scores for labels, in order.
func Softmax(labels []Label, logits []float64) []Score {
	if len(labels) != len(logits) || len(labels) == 0 {
		return nil
	}
	hi := slices.Max(logits)
	out := make([]Score, len(labels))
	var sum float64
	for i, z := range logits {
		e := math.Exp(z - hi)
		out[i] = Score{Label: labels[i], Score: e}
		sum += e
	}
	for i := range out {
		out[i].Score /= sum
	}
	return out
}
