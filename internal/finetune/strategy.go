package finetune

import (
	"context"
	"fmt"
	"time"

	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/logger"
)

// StrategyName identifies the fine-tuned strategy in config, logs and metrics.
const StrategyName = "finetuned"

// Options configures a Strategy.
type Options struct {
	// Dir holds label_mappings.json and model.json (or their .zst twins).
	Dir string
	// Store and Prefix, when both set, refresh Dir from object storage
	// before loading.
	Store  ObjectStore
	Prefix string
	Logger *logger.Logger
}

// Strategy classifies with a model loaded once by Load.
type Strategy struct {
	opts  Options
	log   *logger.Logger
	model *Model
}

// New creates an unloaded Strategy.
func New(opts Options) *Strategy {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Strategy{opts: opts, log: log.WithModule("finetune")}
}

// NewFromModel wraps an already loaded model.
func NewFromModel(m *Model) *Strategy {
	return &Strategy{model: m, log: logger.Discard()}
}

func (s *Strategy) Name() string { return StrategyName }

// Load syncs artifacts from object storage when configured, then reads
// them from disk. A failed sync falls back to whatever is already on disk.
func (s *Strategy) Load(ctx context.Context) error {
	if s.opts.Store != nil && s.opts.Prefix != "" {
		start := time.Now()
		results, err := Sync(ctx, s.opts.Store, s.opts.Prefix, s.opts.Dir)
		if err != nil {
			s.log.WithError(err).WarnContext(ctx, "Model sync failed, using local artifacts")
		} else {
			for _, r := range results {
				s.log.InfoContext(ctx, "Model artifact synced",
					"key", r.Key,
					"etag", r.ETag,
					"downloaded", r.Downloaded,
					"duration_ms", time.Since(start).Milliseconds())
			}
		}
	}

	m, err := LoadModel(s.opts.Dir)
	if err != nil {
		return err
	}
	s.model = m
	s.log.InfoContext(ctx, "Fine-tuned model loaded",
		"labels", len(m.labels),
		"vocabulary", len(m.vocab),
		"ngram_max", m.ngramMax)
	return nil
}

// Classify scores text over the trained labels and keeps only those among
// labels. NewPrediction renormalises the remainder.
func (s *Strategy) Classify(_ context.Context, text string, labels []intent.Label) ([]intent.Score, error) {
	if s.model == nil {
		return nil, domerrors.ErrModelNotLoaded
	}
	scores := intent.Restrict(s.model.Predict(text), labels)
	var total float64
	for _, sc := range scores {
		total += sc.Score
	}
	if len(scores) == 0 || total <= 0 {
		return nil, fmt.Errorf("%w: no trained label among candidates", domerrors.ErrMalformedOutput)
	}
	return scores, nil
}
