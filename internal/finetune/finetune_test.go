package finetune

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
	"github.com/garyellow/agri-advisor-go/internal/r2client"
)

func testMappings() LabelMappings {
	return LabelMappings{
		LabelToIntent: map[string]string{"0": "ask_pest", "1": "ask_fertilizer", "2": "greeting"},
		IntentToLabel: map[string]int{"ask_pest": 0, "ask_fertilizer": 1, "greeting": 2},
	}
}

func testWeights() ModelWeights {
	return ModelWeights{
		Vocabulary: map[string]int{"pest": 0, "aphids": 1, "fertilizer": 2, "urea": 3, "hello": 4, "pest control": 5},
		Weights: [][]float64{
			{3, 3, 0, 0, 0, 2},
			{0, 0, 3, 3, 0, 0},
			{0, 0, 0, 0, 4, 0},
		},
		Bias:      []float64{0.1, 0, -0.1},
		NgramMax:  2,
		Lowercase: true,
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = enc.Write(data)
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	return buf.Bytes()
}

func writeArtifacts(t *testing.T, dir string, compressed bool) {
	t.Helper()
	files := map[string][]byte{
		LabelMappingsFile: mustJSON(t, testMappings()),
		ModelFile:         mustJSON(t, testWeights()),
	}
	for name, data := range files {
		if compressed {
			name += compressedSuffix
			data = zstdBytes(t, data)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
}

func TestLabelMappings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(m *LabelMappings)
		wantErr string
	}{
		{"valid", func(*LabelMappings) {}, ""},
		{"empty", func(m *LabelMappings) { m.LabelToIntent = map[string]string{} }, "empty"},
		{"size mismatch", func(m *LabelMappings) { delete(m.IntentToLabel, "greeting") }, "intent_to_label has 2"},
		{"not dense", func(m *LabelMappings) {
			delete(m.LabelToIntent, "2")
			m.LabelToIntent["3"] = "greeting"
		}, "not dense"},
		{"not mirrored", func(m *LabelMappings) { m.IntentToLabel["greeting"] = 1 }, "does not mirror"},
		{"unknown intent", func(m *LabelMappings) {
			m.LabelToIntent["2"] = "ask_horoscope"
			delete(m.IntentToLabel, "greeting")
			m.IntentToLabel["ask_horoscope"] = 2
		}, "unknown intent"},
		{"wrong case", func(m *LabelMappings) {
			m.LabelToIntent["2"] = "GREETING"
			delete(m.IntentToLabel, "greeting")
			m.IntentToLabel["GREETING"] = 2
		}, "unknown intent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := testMappings()
			tt.mutate(&m)
			labels, err := m.Labels()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, []intent.Label{intent.AskPest, intent.AskFertilizer, intent.Greeting}, labels)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestModelWeightsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(w *ModelWeights)
		wantErr string
	}{
		{"valid", func(*ModelWeights) {}, ""},
		{"empty vocabulary", func(w *ModelWeights) { w.Vocabulary = nil }, "vocabulary is empty"},
		{"zero ngram", func(w *ModelWeights) { w.NgramMax = 0 }, "ngram_max"},
		{"missing row", func(w *ModelWeights) { w.Weights = w.Weights[:2] }, "weights has 2 rows"},
		{"short bias", func(w *ModelWeights) { w.Bias = w.Bias[:1] }, "bias has 1"},
		{"short row", func(w *ModelWeights) { w.Weights[1] = []float64{1} }, "row 1"},
		{"column out of range", func(w *ModelWeights) { w.Vocabulary["pest"] = 9 }, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := testWeights()
			tt.mutate(&w)
			err := w.Validate(3)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadModel(t *testing.T) {
	t.Parallel()

	for _, compressed := range []bool{false, true} {
		dir := t.TempDir()
		writeArtifacts(t, dir, compressed)

		m, err := LoadModel(dir)
		require.NoError(t, err, "compressed=%v", compressed)
		assert.Equal(t, []intent.Label{intent.AskPest, intent.AskFertilizer, intent.Greeting}, m.Labels())
	}
}

func TestLoadModelErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing dir", func(t *testing.T) {
		t.Parallel()
		_, err := LoadModel(filepath.Join(t.TempDir(), "absent"))
		assert.ErrorIs(t, err, domerrors.ErrNotFound)
	})

	t.Run("corrupt json", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeArtifacts(t, dir, false)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ModelFile), []byte("{not json"), 0o644))
		_, err := LoadModel(dir)
		var artErr *domerrors.ArtifactError
		require.ErrorAs(t, err, &artErr)
		assert.Equal(t, filepath.Join(dir, ModelFile), artErr.Path)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeArtifacts(t, dir, false)
		w := testWeights()
		w.Bias = append(w.Bias, 0)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ModelFile), mustJSON(t, w), 0o644))
		_, err := LoadModel(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bias")
	})
}

func TestModelPredict(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeArtifacts(t, dir, false)
	m, err := LoadModel(dir)
	require.NoError(t, err)

	tests := []struct {
		text string
		want intent.Label
	}{
		{"Aphids everywhere, what pest control works?", intent.AskPest},
		{"How much UREA fertilizer?", intent.AskFertilizer},
		{"hello there", intent.Greeting},
	}
	for _, tt := range tests {
		scores := m.Predict(tt.text)
		require.Len(t, scores, 3)
		var total float64
		best := scores[0]
		for _, s := range scores {
			total += s.Score
			if s.Score > best.Score {
				best = s
			}
		}
		assert.InDelta(t, 1, total, 1e-9, tt.text)
		assert.Equal(t, tt.want, best.Label, tt.text)
	}
}

func TestFeatures(t *testing.T) {
	t.Parallel()

	m := newModel([]intent.Label{intent.AskPest, intent.AskFertilizer, intent.Greeting}, testWeights())

	x := m.features("pest control for pest")
	// unigram "pest" twice, bigram "pest control" once
	require.Len(t, x, 2)
	assert.InDelta(t, 2/math.Sqrt(5), x[0], 1e-9)
	assert.InDelta(t, 1/math.Sqrt(5), x[5], 1e-9)

	assert.Empty(t, m.features("nothing known here"))
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"my", "maize", "has", "aphids"}, tokenize("My maize has aphids!", true))
	assert.Equal(t, []string{"My", "maize"}, tokenize("My maize a", false))
	assert.Equal(t, []string{"n2", "fertilizer"}, tokenize("ｎ2 fertilizer", true))
	assert.Empty(t, tokenize("  ", true))
}

func loadedStrategy(t *testing.T) *Strategy {
	t.Helper()
	dir := t.TempDir()
	writeArtifacts(t, dir, false)
	s := New(Options{Dir: dir})
	require.NoError(t, s.Load(t.Context()))
	return s
}

func TestStrategyClassify(t *testing.T) {
	t.Parallel()

	s := loadedStrategy(t)
	assert.Equal(t, StrategyName, s.Name())

	scores, err := s.Classify(t.Context(), "aphids", intent.Candidates())
	require.NoError(t, err)
	assert.Len(t, scores, 3)

	scores, err = s.Classify(t.Context(), "aphids", []intent.Label{intent.AskFertilizer, intent.Greeting})
	require.NoError(t, err)
	require.Len(t, scores, 2)
	for _, sc := range scores {
		assert.NotEqual(t, intent.AskPest, sc.Label)
	}

	_, err = s.Classify(t.Context(), "aphids", []intent.Label{intent.AskWeather})
	assert.ErrorIs(t, err, domerrors.ErrMalformedOutput)
}

func TestStrategyNotLoaded(t *testing.T) {
	t.Parallel()

	_, err := New(Options{}).Classify(t.Context(), "aphids", intent.Candidates())
	assert.ErrorIs(t, err, domerrors.ErrModelNotLoaded)
}

func TestStrategyWithClassifier(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeArtifacts(t, dir, true)
	c, err := intent.NewClassifier(intent.Options{
		Strategy: New(Options{Dir: dir}),
		Workers:  2,
		Metrics:  metrics.New(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	require.NoError(t, c.Init(t.Context()))

	p := c.Predict(t.Context(), "How much urea fertilizer for maize?")
	assert.Equal(t, intent.AskFertilizer, p.Label)
	assert.Greater(t, p.Confidence, 0.5)
	assert.LessOrEqual(t, p.Confidence, 1.0)
}

func TestStrategyLoadFailureDegrades(t *testing.T) {
	t.Parallel()

	c, err := intent.NewClassifier(intent.Options{
		Strategy: New(Options{Dir: t.TempDir()}),
		Metrics:  metrics.New(prometheus.NewRegistry()),
	})
	require.NoError(t, err)
	require.ErrorIs(t, c.Init(t.Context()), domerrors.ErrModelNotLoaded)

	p := c.Predict(t.Context(), "urea")
	assert.True(t, p.IsDegraded())
}

type fakeObject struct {
	data []byte
	etag string
}

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string]fakeObject
	downloads map[string]int
	headErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]fakeObject{}, downloads: map[string]int{}}
}

func (f *fakeStore) put(key string, data []byte, etag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = fakeObject{data: data, etag: etag}
}

func (f *fakeStore) HeadObject(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return "", f.headErr
	}
	obj, ok := f.objects[key]
	if !ok {
		return "", r2client.ErrNotFound
	}
	return obj.etag, nil
}

func (f *fakeStore) Download(_ context.Context, key string) (io.ReadCloser, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[key]
	if !ok {
		return nil, "", r2client.ErrNotFound
	}
	f.downloads[key]++
	return io.NopCloser(bytes.NewReader(obj.data)), obj.etag, nil
}

func (f *fakeStore) downloadCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.downloads[key]
}

func TestSync(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.put("models/v2/label_mappings.json", mustJSON(t, testMappings()), "m1")
	store.put("models/v2/model.json.zst", zstdBytes(t, mustJSON(t, testWeights())), "w1")
	dir := t.TempDir()

	results, err := Sync(t.Context(), store, "models/v2", dir)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Downloaded)
	assert.True(t, results[1].Downloaded)
	assert.Equal(t, "models/v2/model.json.zst", results[1].Key)

	// compressed remote lands as plain json
	raw, err := os.ReadFile(filepath.Join(dir, ModelFile))
	require.NoError(t, err)
	assert.JSONEq(t, string(mustJSON(t, testWeights())), string(raw))
	etag, err := os.ReadFile(filepath.Join(dir, ModelFile+etagSuffix))
	require.NoError(t, err)
	assert.Equal(t, "w1\n", string(etag))

	_, err = LoadModel(dir)
	require.NoError(t, err)

	t.Run("unchanged etag skips download", func(t *testing.T) {
		results, err := Sync(t.Context(), store, "models/v2", dir)
		require.NoError(t, err)
		assert.False(t, results[0].Downloaded)
		assert.False(t, results[1].Downloaded)
		assert.Equal(t, 1, store.downloadCount("models/v2/model.json.zst"))
	})

	t.Run("changed etag downloads again", func(t *testing.T) {
		store.put("models/v2/label_mappings.json", mustJSON(t, testMappings()), "m2")
		results, err := Sync(t.Context(), store, "models/v2", dir)
		require.NoError(t, err)
		assert.True(t, results[0].Downloaded)
		assert.False(t, results[1].Downloaded)
		assert.Equal(t, 2, store.downloadCount("models/v2/label_mappings.json"))
	})

	t.Run("deleted local file downloads again", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(dir, ModelFile)))
		results, err := Sync(t.Context(), store, "models/v2", dir)
		require.NoError(t, err)
		assert.True(t, results[1].Downloaded)
	})
}

func TestSyncMissingArtifact(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.put("p/label_mappings.json", mustJSON(t, testMappings()), "m1")

	_, err := Sync(t.Context(), store, "p", t.TempDir())
	assert.ErrorIs(t, err, r2client.ErrNotFound)
}

func TestLoadFallsBackToLocalWhenSyncFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeArtifacts(t, dir, false)
	store := newFakeStore()
	store.headErr = errors.New("network unreachable")

	s := New(Options{Dir: dir, Store: store, Prefix: "models"})
	require.NoError(t, s.Load(t.Context()))

	scores, err := s.Classify(t.Context(), "hello", intent.Candidates())
	require.NoError(t, err)
	assert.NotEmpty(t, scores)
}

func TestLoadFromStore(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.put("m/label_mappings.json.zst", zstdBytes(t, mustJSON(t, testMappings())), "a")
	store.put("m/model.json", mustJSON(t, testWeights()), "b")

	s := New(Options{Dir: filepath.Join(t.TempDir(), "model"), Store: store, Prefix: "m"})
	require.NoError(t, s.Load(t.Context()))
	_, err := s.Classify(t.Context(), "urea", intent.Candidates())
	require.NoError(t, err)
}
