package lexical

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
)

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"How to control pests in maize?", []string{"control", "pest", "maize"}},
		{"Tomatoes and potatoes", []string{"tomato", "potato"}},
		{"Planting, harvesting & watering", []string{"plant", "harvest", "water"}},
		{"Disease-resistant varieties", []string{"disease", "resistant", "variety"}},
		{"Thanks a lot!", []string{"thank", "lot"}},
		{"ＮＰＫ ratio", []string{"npk", "ratio"}},
		{"grass sowing", []string{"grass", "sowing"}},
		{"  ", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tokenize(tt.in), tt.in)
	}
}

func TestDefaultPhrasesCoverCandidates(t *testing.T) {
	t.Parallel()

	phrases := DefaultPhrases()
	for _, l := range intent.Candidates() {
		assert.NotEmpty(t, phrases[l], "intent %s has no phrases", l)
	}
	assert.Empty(t, phrases[intent.Unknown])

	// callers get their own copy
	phrases[intent.Greeting][0] = "changed"
	assert.Equal(t, "Hello", DefaultPhrases()[intent.Greeting][0])
}

func newDefaultIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(DefaultPhrases())
	require.NoError(t, err)
	return idx
}

func TestIndexScore(t *testing.T) {
	t.Parallel()

	idx := newDefaultIndex(t)
	assert.Positive(t, idx.Count())
	assert.Len(t, idx.Labels(), len(intent.Candidates()))

	tests := []struct {
		text string
		want intent.Label
	}{
		{"Which fertilizer should I apply to my maize?", intent.AskFertilizer},
		{"How do I control aphids on wheat", intent.AskPest},
		{"powdery mildew on my grapes", intent.AskDisease},
		{"drip irrigation schedule", intent.AskIrrigation},
		{"when should I harvest potatoes", intent.AskHarvesting},
		{"What is the mandi price today", intent.AskMarket},
		{"Is there a government subsidy", intent.AskSubsidy},
		{"will it rain tomorrow", intent.AskWeather},
		{"which tractor to buy", intent.AskEquipment},
		{"hello", intent.Greeting},
		{"thank you so much", intent.Thanks},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			scores, err := idx.Score(tt.text, intent.Candidates())
			require.NoError(t, err)
			p, err := intent.NewPrediction(scores)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Label)
			assert.Greater(t, p.Confidence, 0.0)
			assert.LessOrEqual(t, p.Confidence, 1.0)

			var total float64
			for _, s := range p.Ranking() {
				total += s.Score
			}
			assert.InDelta(t, 1, total, 1e-6)
		})
	}
}

func TestIndexScoreNoMatch(t *testing.T) {
	t.Parallel()

	idx := newDefaultIndex(t)
	for _, text := range []string{"xyz123 qwerty", "", "   ", "a i"} {
		_, err := idx.Score(text, intent.Candidates())
		assert.ErrorIs(t, err, domerrors.ErrMalformedOutput, text)
	}
}

func TestIndexScoreRestrictsLabels(t *testing.T) {
	t.Parallel()

	idx := newDefaultIndex(t)
	scores, err := idx.Score("fertilizer for maize", []intent.Label{intent.AskPest, intent.AskFertilizer})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	for _, s := range scores {
		assert.Contains(t, []intent.Label{intent.AskPest, intent.AskFertilizer}, s.Label)
	}

	// a match only among excluded labels is not a match
	_, err = idx.Score("hello", []intent.Label{intent.AskPest})
	assert.ErrorIs(t, err, domerrors.ErrMalformedOutput)
}

func TestNewIndexErrors(t *testing.T) {
	t.Parallel()

	_, err := NewIndex(Phrases{})
	require.Error(t, err)

	_, err = NewIndex(Phrases{intent.Greeting: {"a", "!"}})
	require.Error(t, err)

	_, err = NewIndex(Phrases{intent.Label("ask_horoscope"): {"stars"}})
	assert.ErrorIs(t, err, domerrors.ErrUnknownIntent)
}

type stubSource struct {
	phrases map[intent.Label][]string
	err     error
}

func (s stubSource) IntentExamples(context.Context) (map[intent.Label][]string, error) {
	return s.phrases, s.err
}

func TestStrategyLoadMergesSource(t *testing.T) {
	t.Parallel()

	s := New(Options{Source: stubSource{phrases: map[intent.Label][]string{
		intent.AskMarket:      {"cold storage rental rates"},
		intent.Label("bogus"):    {"ignored"},
	}}})
	require.NoError(t, s.Load(t.Context()))
	assert.Equal(t, StrategyName, s.Name())

	scores, err := s.Classify(t.Context(), "cold storage rental", intent.Candidates())
	require.NoError(t, err)
	p, err := intent.NewPrediction(scores)
	require.NoError(t, err)
	assert.Equal(t, intent.AskMarket, p.Label)

	// built-in corpus is untouched
	assert.NotContains(t, DefaultPhrases()[intent.AskMarket], "cold storage rental rates")
}

func TestStrategyLoadSurvivesSourceError(t *testing.T) {
	t.Parallel()

	s := New(Options{Source: stubSource{err: errors.New("db locked")}})
	require.NoError(t, s.Load(t.Context()))
	_, err := s.Classify(t.Context(), "fertilizer", intent.Candidates())
	require.NoError(t, err)
}

func TestStrategyNotLoaded(t *testing.T) {
	t.Parallel()

	_, err := New(Options{}).Classify(t.Context(), "fertilizer", intent.Candidates())
	assert.ErrorIs(t, err, domerrors.ErrModelNotLoaded)
}

func TestStrategyWithClassifier(t *testing.T) {
	t.Parallel()

	c, err := intent.NewClassifier(intent.Options{
		Strategy: New(Options{}),
		Metrics:  metrics.New(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	require.NoError(t, c.Init(t.Context()))

	p := c.Predict(t.Context(), "Should I apply urea to my maize?")
	assert.Equal(t, intent.AskFertilizer, p.Label)

	p = c.Predict(t.Context(), "xyz123")
	assert.True(t, p.IsDegraded())
}
