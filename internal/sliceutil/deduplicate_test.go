package sliceutil

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type model struct {
	Provider string
	Name     string
}

func TestDeduplicate(t *testing.T) {
	t.Parallel()

	byProvider := func(m model) string { return m.Provider }
	tests := []struct {
		name  string
		items []model
		want  []model
	}{
		{
			name:  "no duplicates",
			items: []model{{"gemini", "flash"}, {"groq", "llama"}},
			want:  []model{{"gemini", "flash"}, {"groq", "llama"}},
		},
		{
			name:  "first occurrence wins",
			items: []model{{"groq", "llama"}, {"gemini", "flash"}, {"groq", "qwen"}, {"openai", "mini"}},
			want:  []model{{"groq", "llama"}, {"gemini", "flash"}, {"openai", "mini"}},
		},
		{
			name:  "all duplicates",
			items: []model{{"groq", "a"}, {"groq", "b"}, {"groq", "c"}},
			want:  []model{{"groq", "a"}},
		},
		{
			name:  "empty",
			items: []model{},
			want:  []model{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Deduplicate(tt.items, byProvider))
		})
	}
}

func TestDeduplicateNil(t *testing.T) {
	t.Parallel()
	assert.Nil(t, Deduplicate[model](nil, func(m model) string { return m.Name }))
}

func TestUnique(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"openai", "groq"}, Unique([]string{"openai", "groq", "openai", "groq"}))
	assert.Equal(t, []string{"Maize", "maize"}, Unique([]string{"Maize", "maize"}))

	folded := Deduplicate([]string{"Maize", "maize", "Rice"}, strings.ToLower)
	assert.Equal(t, []string{"Maize", "Rice"}, folded)
}

func BenchmarkDeduplicate(b *testing.B) {
	items := make([]model, 1000)
	for i := range items {
		items[i] = model{Provider: strconv.Itoa(i % 4), Name: strconv.Itoa(i)}
	}
	key := func(m model) string { return m.Provider }

	for b.Loop() {
		_ = Deduplicate(items, key)
	}
}
