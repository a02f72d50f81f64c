package advisor

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/agri-advisor-go/internal/crop"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/knowledge"
	"github.com/garyellow/agri-advisor-go/internal/lexical"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
)

// fixedClassifier always predicts the same label with full confidence.
type fixedClassifier struct {
	label intent.Label
	calls atomic.Int32
	delay time.Duration
}

func (f *fixedClassifier) Predict(ctx context.Context, _ string) intent.Prediction {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return intent.Degraded()
		}
	}
	p, err := intent.NewPrediction([]intent.Score{{Label: f.label, Score: 1}})
	if err != nil {
		return intent.Degraded()
	}
	return p
}

func newService(t *testing.T, c Classifier, m *metrics.Metrics) *Service {
	t.Helper()
	s, err := New(Options{Classifier: c, Metrics: m})
	require.NoError(t, err)
	return s
}

func TestNewRequiresClassifier(t *testing.T) {
	t.Parallel()

	_, err := New(Options{})
	assert.Error(t, err)
}

func TestProcessQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		label      intent.Label
		text       string
		wantCrop   string
		wantPrefix string
		wantOut    knowledge.Outcome
	}{
		{"crop entry", intent.AskFertilizer, "Should I apply urea to my maize?", "maize", "Maize – Apply N-P-K", knowledge.OutcomeEntry},
		{"fuzzy crop", intent.AskPest, "tomaot blight", "tomato", "Tomato – ", knowledge.OutcomeEntry},
		{"no crop clarifies", intent.AskFertilizer, "how much fertilizer", "", "Which crop are you asking about?", knowledge.OutcomeClarify},
		{"greeting", intent.Greeting, "hello there", "", knowledge.GreetingText, knowledge.OutcomeControl},
		{"unknown", intent.Unknown, "xyz123", "", knowledge.FallbackText, knowledge.OutcomeFallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newService(t, &fixedClassifier{label: tt.label}, nil)

			res, err := s.ProcessQuery(t.Context(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.text, res.Query)
			assert.Equal(t, tt.label, res.Intent)
			assert.True(t, strings.HasPrefix(res.Advice, tt.wantPrefix), "advice %q", res.Advice)
			assert.Equal(t, tt.wantOut, res.Outcome)
			if tt.wantCrop == "" {
				assert.Nil(t, res.Crop)
			} else {
				require.NotNil(t, res.Crop)
				assert.Equal(t, tt.wantCrop, *res.Crop)
			}
		})
	}
}

func TestProcessQueryEmptyText(t *testing.T) {
	t.Parallel()

	c := &fixedClassifier{label: intent.AskPest}
	s := newService(t, c, nil)

	for _, text := range []string{"", "   ", "\n\t"} {
		res, err := s.ProcessQuery(t.Context(), text)
		require.NoError(t, err)
		assert.Equal(t, intent.Unknown, res.Intent)
		assert.Zero(t, res.Confidence)
		assert.Nil(t, res.Crop)
		assert.Equal(t, knowledge.FallbackText, res.Advice)
	}
	assert.Zero(t, c.calls.Load(), "empty text must not reach the classifier")
}

func TestProcessQueryCancelled(t *testing.T) {
	t.Parallel()

	s := newService(t, &fixedClassifier{label: intent.AskPest, delay: time.Second}, nil)
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := s.ProcessQuery(ctx, "pests on maize")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProcessQueryMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.New(prometheus.NewRegistry())
	s := newService(t, &fixedClassifier{label: intent.AskIrrigation}, m)

	_, err := s.ProcessQuery(t.Context(), "watering rice")
	require.NoError(t, err)
	_, err = s.ProcessQuery(t.Context(), "watering")
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(m.ExtractionTotal.WithLabelValues("exact")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ExtractionTotal.WithLabelValues("none")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SynthesisTotal.WithLabelValues("entry")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SynthesisTotal.WithLabelValues("clarify")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("ask_irrigation", "found")), 0)
}

func TestProcessQueryLegacyPolicy(t *testing.T) {
	t.Parallel()

	s, err := New(Options{
		Classifier:  &fixedClassifier{label: intent.AskFertilizer},
		Synthesizer: knowledge.NewSynthesizer(knowledge.Builtin(), knowledge.PolicyLegacy),
	})
	require.NoError(t, err)

	res, err := s.ProcessQuery(t.Context(), "fertilizer for my cashew trees")
	require.NoError(t, err)
	require.NotNil(t, res.Crop)
	assert.Equal(t, "cashew", *res.Crop)
	assert.True(t, strings.HasPrefix(res.Advice, "For cashew: "), res.Advice)
}

func TestProcessQueryWithLexicalClassifier(t *testing.T) {
	t.Parallel()

	c, err := intent.NewClassifier(intent.Options{Strategy: lexical.New(lexical.Options{}), Workers: 2})
	require.NoError(t, err)
	require.NoError(t, c.Init(t.Context()))

	s, err := New(Options{Classifier: c, Extractor: crop.NewExtractor(crop.DefaultThreshold)})
	require.NoError(t, err)

	res, err := s.ProcessQuery(t.Context(), "Which fertilizer should I apply to my maize?")
	require.NoError(t, err)
	assert.Equal(t, intent.AskFertilizer, res.Intent)
	assert.Greater(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 1.0)
	require.NotNil(t, res.Crop)
	assert.Equal(t, "maize", *res.Crop)
	assert.True(t, strings.HasPrefix(res.Advice, "Maize – "))

	var total float64
	for _, sc := range res.Ranking {
		total += sc.Score
	}
	assert.InDelta(t, 1, total, 1e-6)
}

func TestProcessQueryConcurrent(t *testing.T) {
	t.Parallel()

	s := newService(t, &fixedClassifier{label: intent.AskHarvesting}, nil)
	var wg sync.WaitGroup
	for range 32 {
		wg.Go(func() {
			res, err := s.ProcessQuery(t.Context(), "when to harvest potatoes")
			assert.NoError(t, err)
			assert.True(t, strings.HasPrefix(res.Advice, "Potato – "))
		})
	}
	wg.Wait()
}
