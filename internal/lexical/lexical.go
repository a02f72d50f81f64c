// Package lexical implements an offline intent strategy: BM25 retrieval
// over example phrases, with per-intent best scores turned into a
// distribution by softmax.
package lexical

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/iwilltry42/bm25-go/bm25"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/logger"
)

// StrategyName identifies the lexical strategy in config, logs and metrics.
const StrategyName = "lexical"

// Standard Okapi parameters.
const (
	DefaultK1 = 1.5
	DefaultB  = 0.75
)

// PhraseSource supplies extra example phrases, such as curated rows from
// the knowledge database.
type PhraseSource interface {
	IntentExamples(ctx context.Context) (map[intent.Label][]string, error)
}

// Index scores text against every intent's example phrases.
type Index struct {
	okapi  *bm25.BM25Okapi
	docs   []intent.Label // document index -> label
	labels []intent.Label // labels with at least one document, taxonomy order
}

// NewIndex builds an index from phrases. Phrases that tokenize to nothing
// are skipped; labels outside the taxonomy are rejected.
func NewIndex(phrases Phrases) (*Index, error) {
	var corpus []string
	var docs []intent.Label
	seen := make(map[intent.Label]bool)

	for _, label := range intent.All() {
		for _, p := range phrases[label] {
			if len(tokenize(p)) == 0 {
				continue
			}
			corpus = append(corpus, p)
			docs = append(docs, label)
			seen[label] = true
		}
	}
	for label := range phrases {
		if !label.Valid() {
			return nil, fmt.Errorf("%w: %q", domerrors.ErrUnknownIntent, label)
		}
	}
	if len(corpus) == 0 {
		return nil, errors.New("lexical: no usable example phrases")
	}

	okapi, err := bm25.NewBM25Okapi(corpus, tokenize, DefaultK1, DefaultB, nil)
	if err != nil {
		return nil, fmt.Errorf("lexical: build BM25 index: %w", err)
	}

	labels := make([]intent.Label, 0, len(seen))
	for _, l := range intent.All() {
		if seen[l] {
			labels = append(labels, l)
		}
	}
	return &Index{okapi: okapi, docs: docs, labels: labels}, nil
}

// Count returns the number of indexed phrases.
func (idx *Index) Count() int { return len(idx.docs) }

// Labels returns the labels that have at least one phrase.
func (idx *Index) Labels() []intent.Label { return slices.Clone(idx.labels) }

// Best returns the highest BM25 score of any phrase per label. Labels with
// no matching term are absent.
func (idx *Index) Best(text string) (map[intent.Label]float64, error) {
	query := tokenize(text)
	if len(query) == 0 {
		return nil, nil
	}
	scores, err := idx.okapi.GetScores(query)
	if err != nil {
		return nil, fmt.Errorf("lexical: BM25 scoring failed: %w", err)
	}
	best := make(map[intent.Label]float64)
	for doc, s := range scores {
		if s <= 0 || doc >= len(idx.docs) {
			continue
		}
		label := idx.docs[doc]
		if s > best[label] {
			best[label] = s
		}
	}
	return best, nil
}

// Score returns a softmax distribution over the labels that are both
// requested and indexed. Text that shares no term with any phrase is
// malformed output.
func (idx *Index) Score(text string, labels []intent.Label) ([]intent.Score, error) {
	best, err := idx.Best(text)
	if err != nil {
		return nil, err
	}

	var names []intent.Label
	var logits []float64
	matched := false
	for _, l := range labels {
		if !slices.Contains(idx.labels, l) {
			continue
		}
		names = append(names, l)
		logits = append(logits, best[l])
		if best[l] > 0 {
			matched = true
		}
	}
	if !matched {
		return nil, fmt.Errorf("%w: no term of %q matches any example phrase", domerrors.ErrMalformedOutput, strings.TrimSpace(text))
	}
	return intent.Softmax(names, logits), nil
}

// Options configures a Strategy.
type Options struct {
	// Phrases defaults to DefaultPhrases.
	Phrases Phrases
	Source  PhraseSource
	Logger  *logger.Logger
}

// Strategy adapts Index to intent.Strategy. The index is built by Load.
type Strategy struct {
	opts  Options
	log   *logger.Logger
	index *Index
}

// New creates an unloaded Strategy.
func New(opts Options) *Strategy {
	if opts.Phrases == nil {
		opts.Phrases = DefaultPhrases()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Strategy{opts: opts, log: log.WithModule("lexical")}
}

func (s *Strategy) Name() string { return StrategyName }

// Load merges phrases from the source, if any, and builds the index.
// A failing source is logged and the built-in phrases are used alone.
func (s *Strategy) Load(ctx context.Context) error {
	phrases := make(Phrases, len(s.opts.Phrases))
	maps.Copy(phrases, s.opts.Phrases)

	if s.opts.Source != nil {
		extra, err := s.opts.Source.IntentExamples(ctx)
		if err != nil {
			s.log.WithError(err).WarnContext(ctx, "Loading extra example phrases failed")
		}
		added := 0
		for label, list := range extra {
			if !label.Valid() {
				s.log.WarnContext(ctx, "Skipping phrases for unknown intent", "intent", string(label))
				continue
			}
			phrases[label] = append(slices.Clone(phrases[label]), list...)
			added += len(list)
		}
		if added > 0 {
			s.log.InfoContext(ctx, "Merged extra example phrases", "count", added)
		}
	}

	idx, err := NewIndex(phrases)
	if err != nil {
		return err
	}
	s.index = idx
	s.log.InfoContext(ctx, "BM25 index initialized", "docs", idx.Count(), "labels", len(idx.labels))
	return nil
}

func (s *Strategy) Classify(_ context.Context, text string, labels []intent.Label) ([]intent.Score, error) {
	if s.index == nil {
		return nil, domerrors.ErrModelNotLoaded
	}
	return s.index.Score(text, labels)
}
