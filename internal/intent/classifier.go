package intent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/garyellow/agri-advisor-go/internal/ctxutil"
	domerrors "github.com/garyellow/agri-advisor-go/internal/errors"
	"github.com/garyellow/agri-advisor-go/internal/logger"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
)

const (
	defaultTimeout     = 8 * time.Second
	defaultInitTimeout = 2 * time.Minute
)

// Options configures a Classifier.
type Options struct {
	Strategy    Strategy
	Labels      []Label // nil means Candidates()
	Timeout     time.Duration
	InitTimeout time.Duration
	Workers     int // 0 means runtime.NumCPU()
	Metrics     *metrics.Metrics
	Logger      *logger.Logger

	// OnFailure observes every degraded classification except rejected input.
	OnFailure func(ctx context.Context, f *Failure)
}

// Classifier guards a Strategy with a one-time init gate, a bounded worker
// pool, per-text deduplication and a deadline. Safe for concurrent use.
type Classifier struct {
	strategy    Strategy
	labels      []Label
	allowed     map[Label]struct{}
	timeout     time.Duration
	initTimeout time.Duration
	sem         *semaphore.Weighted
	group       singleflight.Group
	metrics     *metrics.Metrics
	log         *logger.Logger
	onFailure   func(ctx context.Context, f *Failure)

	startOnce sync.Once
	initDone  chan struct{}
	initErr   error // written once before initDone closes
}

// NewClassifier validates opts and returns an unstarted Classifier.
func NewClassifier(opts Options) (*Classifier, error) {
	if opts.Strategy == nil {
		return nil, errors.New("intent: strategy is required")
	}
	labels := opts.Labels
	if labels == nil {
		labels = Candidates()
	}
	if len(labels) == 0 {
		return nil, errors.New("intent: no candidate labels")
	}
	allowed := make(map[Label]struct{}, len(labels))
	for _, l := range labels {
		if !l.Valid() || l == Unknown {
			return nil, fmt.Errorf("intent: %q is not a candidate label", l)
		}
		allowed[l] = struct{}{}
	}

	c := &Classifier{
		strategy:    opts.Strategy,
		labels:      append([]Label(nil), labels...),
		allowed:     allowed,
		timeout:     opts.Timeout,
		initTimeout: opts.InitTimeout,
		metrics:     opts.Metrics,
		log:         opts.Logger,
		onFailure:   opts.OnFailure,
		initDone:    make(chan struct{}),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.initTimeout <= 0 {
		c.initTimeout = defaultInitTimeout
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	c.sem = semaphore.NewWeighted(int64(workers))
	if c.log == nil {
		c.log = logger.Discard()
	}
	c.log = c.log.WithModule("intent").WithField("strategy", c.strategy.Name())
	return c, nil
}

// StrategyName returns the configured strategy's name.
func (c *Classifier) StrategyName() string {
	return c.strategy.Name()
}

// Labels returns a copy of the candidate labels.
func (c *Classifier) Labels() []Label {
	return append([]Label(nil), c.labels...)
}

// Start begins loading the strategy in the background. Only the first call
// has any effect; cancelling ctx afterwards does not abort the load.
func (c *Classifier) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		go c.load(context.WithoutCancel(ctx))
	})
}

// Init starts loading if needed and blocks until it finishes or ctx ends.
func (c *Classifier) Init(ctx context.Context) error {
	c.Start(ctx)
	select {
	case <-c.initDone:
		return c.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once initialisation has finished, successfully or not.
func (c *Classifier) Done() <-chan struct{} {
	return c.initDone
}

// Err returns the initialisation error, or nil while loading or after success.
func (c *Classifier) Err() error {
	select {
	case <-c.initDone:
		return c.initErr
	default:
		return nil
	}
}

func (c *Classifier) load(ctx context.Context) {
	defer close(c.initDone)

	loader, ok := c.strategy.(Loader)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.initTimeout)
	defer cancel()

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("load panic: %v", r)
			}
		}()
		return loader.Load(ctx)
	}()
	elapsed := time.Since(start)

	if err != nil {
		c.initErr = fmt.Errorf("%w: %w", domerrors.ErrModelNotLoaded, err)
		c.metrics.RecordModelLoad(c.strategy.Name(), "error", elapsed.Seconds())
		c.log.WithError(err).ErrorContext(ctx, "Classifier initialization failed; predictions will degrade to unknown")
		if c.onFailure != nil {
			c.onFailure(ctx, &Failure{Reason: ReasonLoad, Strategy: c.strategy.Name(), Err: c.initErr})
		}
		return
	}
	c.metrics.RecordModelLoad(c.strategy.Name(), "success", elapsed.Seconds())
	c.log.InfoContext(ctx, "Classifier ready", "duration_ms", elapsed.Milliseconds())
}

// Predict classifies text and degrades every failure to the unknown intent.
func (c *Classifier) Predict(ctx context.Context, text string) Prediction {
	p, _ := c.Classify(ctx, text)
	return p
}

// Classify returns the prediction for text, or Degraded() together with a
// *Failure describing why.
func (c *Classifier) Classify(ctx context.Context, text string) (Prediction, error) {
	ctx = ctxutil.WithStrategy(ctx, c.strategy.Name())
	start := time.Now()

	p, err := c.classify(ctx, text)
	elapsed := time.Since(start)
	if err != nil {
		f := newFailure(c.strategy.Name(), err)
		c.report(ctx, f, elapsed)
		return Degraded(), f
	}

	c.metrics.RecordClassification(c.strategy.Name(), "success", elapsed.Seconds())
	c.log.DebugContext(ctx, "Classified", "intent", p.Label, "confidence", p.Confidence)
	return p, nil
}

func (c *Classifier) classify(ctx context.Context, text string) (Prediction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Prediction{}, domerrors.NewValidationError("text", "must not be empty")
	}

	c.Start(ctx)
	select {
	case <-c.initDone:
	case <-ctx.Done():
		return Prediction{}, &Failure{
			Reason:   ReasonTimeout,
			Strategy: c.strategy.Name(),
			Err:      fmt.Errorf("waiting for classifier init: %w", ctx.Err()),
		}
	}
	if c.initErr != nil {
		return Prediction{}, &Failure{Reason: ReasonLoad, Strategy: c.strategy.Name(), Err: c.initErr}
	}

	ch := c.group.DoChan(text, func() (any, error) {
		return c.infer(context.WithoutCancel(ctx), text)
	})
	select {
	case res := <-ch:
		if res.Shared {
			c.metrics.RecordSharedClassification()
		}
		if res.Err != nil {
			return Prediction{}, res.Err
		}
		return res.Val.(Prediction), nil
	case <-ctx.Done():
		return Prediction{}, fmt.Errorf("waiting for inference: %w", ctx.Err())
	}
}

type inference struct {
	scores []Score
	err    error
}

func (c *Classifier) infer(ctx context.Context, text string) (Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return Prediction{}, fmt.Errorf("waiting for worker: %w", err)
	}

	// The worker slot is held until the strategy returns, even past the
	// deadline, so abandoned calls still count against the pool.
	done := make(chan inference, 1)
	c.metrics.TrackInflight(1)
	go func() {
		defer c.sem.Release(1)
		defer c.metrics.TrackInflight(-1)
		defer func() {
			if r := recover(); r != nil {
				done <- inference{err: fmt.Errorf("strategy panic: %v", r)}
			}
		}()
		scores, err := c.strategy.Classify(ctx, text, c.Labels())
		done <- inference{scores: scores, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return Prediction{}, out.err
		}
		return c.toPrediction(out.scores)
	case <-ctx.Done():
		return Prediction{}, fmt.Errorf("%w: %w", domerrors.ErrTimeout, ctx.Err())
	}
}

func (c *Classifier) toPrediction(scores []Score) (Prediction, error) {
	for _, s := range scores {
		if _, ok := c.allowed[s.Label]; !ok {
			return Prediction{}, fmt.Errorf("%w: strategy returned %q", domerrors.ErrUnknownIntent, s.Label)
		}
	}
	return NewPrediction(scores)
}

func (c *Classifier) report(ctx context.Context, f *Failure, elapsed time.Duration) {
	c.metrics.RecordClassification(f.Strategy, "failure", elapsed.Seconds())
	c.metrics.RecordClassifierFailure(f.Strategy, string(f.Reason))

	if f.Reason == ReasonInvalidInput {
		c.log.DebugContext(ctx, "Rejected empty classification input")
		return
	}
	c.log.WithError(f.Err).WarnContext(ctx, "Classification degraded to unknown", "reason", string(f.Reason))
	if c.onFailure != nil {
		c.onFailure(ctx, f)
	}
}

// Close releases strategy resources when the strategy holds any.
func (c *Classifier) Close() error {
	if closer, ok := c.strategy.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
