// Package advisor answers a farming question in three stages: intent
// classification and crop extraction run concurrently, then synthesis
// combines both into advice.
package advisor

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/garyellow/agri-advisor-go/internal/crop"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/knowledge"
	"github.com/garyellow/agri-advisor-go/internal/logger"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
)

// ErrorAdvice is shown when a query cannot be answered at all.
const ErrorAdvice = "Sorry, there was an error processing your query. Please try again."

// Classifier is the degrading intent classifier, usually *intent.Classifier.
type Classifier interface {
	Predict(ctx context.Context, text string) intent.Prediction
}

// Result is the answer to one query.
type Result struct {
	Query      string       `json:"query"`
	Intent     intent.Label `json:"intent"`
	Confidence float64      `json:"confidence"`
	Crop       *string      `json:"crop"`
	Advice     string       `json:"advice"`

	// Diagnostics, not part of the response body.
	Ranking        []intent.Score    `json:"-"`
	ExtractionPass crop.Pass         `json:"-"`
	Outcome        knowledge.Outcome `json:"-"`
}

// Options wires a Service.
type Options struct {
	Classifier  Classifier
	Extractor   *crop.Extractor
	Synthesizer *knowledge.Synthesizer
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

// Service runs the pipeline. It holds only read-only collaborators and is
// safe for concurrent use.
type Service struct {
	classifier  Classifier
	extractor   *crop.Extractor
	synthesizer *knowledge.Synthesizer
	metrics     *metrics.Metrics
	log         *logger.Logger
}

// New validates opts. A nil Extractor uses the default threshold and a nil
// Synthesizer uses the built-in table with the clarify policy.
func New(opts Options) (*Service, error) {
	if opts.Classifier == nil {
		return nil, errors.New("advisor: classifier is required")
	}
	s := &Service{
		classifier:  opts.Classifier,
		extractor:   opts.Extractor,
		synthesizer: opts.Synthesizer,
		metrics:     opts.Metrics,
		log:         opts.Logger,
	}
	if s.extractor == nil {
		s.extractor = crop.NewExtractor(crop.DefaultThreshold)
	}
	if s.synthesizer == nil {
		s.synthesizer = knowledge.NewSynthesizer(knowledge.Builtin(), knowledge.PolicyClarify)
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	s.log = s.log.WithModule("advisor")
	return s, nil
}

// ProcessQuery answers text. Classification failures degrade to the unknown
// intent, so the only error is ctx ending before the answer is ready.
func (s *Service) ProcessQuery(ctx context.Context, text string) (Result, error) {
	start := time.Now()

	var (
		pred  intent.Prediction
		match crop.Match
	)
	if strings.TrimSpace(text) == "" {
		pred = intent.Degraded()
		match = crop.Match{Pass: crop.PassNone}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			pred = s.classifier.Predict(gctx, text)
			return nil
		})
		g.Go(func() error {
			match = s.extractor.Match(text)
			return nil
		})
		_ = g.Wait()
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	reply := s.synthesizer.Respond(pred.Label, match.Name, match.Found(), text)
	res := Result{
		Query:          text,
		Intent:         pred.Label,
		Confidence:     pred.Confidence,
		Advice:         reply.Advice,
		Ranking:        pred.Ranking(),
		ExtractionPass: match.Pass,
		Outcome:        reply.Outcome,
	}
	if match.Found() {
		name := string(match.Name)
		res.Crop = &name
	}

	elapsed := time.Since(start)
	s.metrics.RecordExtraction(string(match.Pass))
	s.metrics.RecordSynthesis(string(reply.Outcome))
	s.metrics.RecordQuery(string(pred.Label), match.Found(), elapsed.Seconds())
	s.log.DebugContext(ctx, "Query answered",
		"intent", pred.Label,
		"confidence", pred.Confidence,
		"crop", match.Name,
		"extraction", match.Pass,
		"outcome", reply.Outcome,
		"duration_ms", elapsed.Milliseconds())
	return res, nil
}
