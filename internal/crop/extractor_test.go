package crop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	t.Parallel()
	e := NewExtractor(DefaultThreshold)

	tests := []struct {
		name   string
		text   string
		want   Name
		wantOK bool
	}{
		{"empty", "", "", false},
		{"whitespace only", "   \t\n", "", false},
		{"exact mention", "Should I apply urea to my maize?", Maize, true},
		{"case insensitive", "WHEAT yellowing", Wheat, true},
		{"vocabulary order wins over text order", "wheat and maize rotation", Maize, true},
		{"vocabulary order with rice before wheat in text", "rice after wheat", Wheat, true},
		{"multi word crop", "bitter gourd vines wilting", BitterGourd, true},
		{"misspelling resolved by fuzzy pass", "tomaot blight", Tomato, true},
		{"noise", "xyz123", "", false},
		{"crop at end of sentence", "Irrigation tips for sugarcane", Sugarcane, true},
		{"full width characters are folded", "ｍａｉｚｅ", Maize, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := e.Extract(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_ReportsPass(t *testing.T) {
	t.Parallel()
	e := NewExtractor(0)

	exact := e.Match("Fertilizer for potato")
	assert.Equal(t, PassExact, exact.Pass)
	assert.Equal(t, 100, exact.Score)

	fuzzy := e.Match("tomaot blight")
	assert.Equal(t, PassFuzzy, fuzzy.Pass)
	assert.Equal(t, 83, fuzzy.Score)

	none := e.Match("xyz123")
	assert.Equal(t, PassNone, none.Pass)
	assert.False(t, none.Found())
}

func TestExtract_ThresholdIsConfigurable(t *testing.T) {
	t.Parallel()

	strict := NewExtractor(90)
	_, ok := strict.Extract("tomaot blight")
	assert.False(t, ok)

	assert.Equal(t, DefaultThreshold, NewExtractor(150).Threshold())
	assert.Equal(t, 90, strict.Threshold())
}

func TestExtract_Deterministic(t *testing.T) {
	t.Parallel()
	e := NewExtractor(DefaultThreshold)
	for _, text := range []string{"tomaot blight", "maize and wheat", "nothing here"} {
		a, okA := e.Extract(text)
		b, okB := e.Extract(text)
		assert.Equal(t, a, b)
		assert.Equal(t, okA, okB)
	}
}

func TestPartialRatio(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want int
	}{
		{"maize", "maize", 100},
		{"maize", "my maize field", 100},
		{"tomaot blight", "tomato", 83},
		{"", "tomato", 0},
		{"xyz123", "tea", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PartialRatio(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.want, PartialRatio(tt.b, tt.a), "symmetric %q vs %q", tt.b, tt.a)
	}
}

func TestVocabulary(t *testing.T) {
	t.Parallel()
	v := Vocabulary()
	assert.Len(t, v, 54)
	assert.Equal(t, Maize, v[0])
	assert.Equal(t, Sisal, v[len(v)-1])

	v[0] = "mutated"
	assert.Equal(t, Maize, Vocabulary()[0], "Vocabulary must return a copy")

	n, ok := Parse("  Bitter Gourd ")
	assert.True(t, ok)
	assert.Equal(t, BitterGourd, n)
	assert.Equal(t, "Bitter gourd", n.Display())

	_, ok = Parse("kale")
	assert.False(t, ok)
	assert.Equal(t, -1, Name("kale").Rank())
	assert.Less(t, Maize.Rank(), Wheat.Rank())
}
