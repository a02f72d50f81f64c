package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
)

// StrategyName identifies the zero-shot strategy in logs and metrics.
const StrategyName = "zeroshot"

// Strategy is the zero-shot intent.Strategy. It walks an ordered chain of
// scorers (models within a provider, then providers), retrying each with
// backoff before falling back to the next.
type Strategy struct {
	chain   []Scorer
	retry   RetryConfig
	metrics *metrics.Metrics
}

// NewStrategy builds a strategy over chain. The first scorer is primary.
func NewStrategy(retry RetryConfig, m *metrics.Metrics, chain ...Scorer) *Strategy {
	return &Strategy{chain: chain, retry: retry, metrics: m}
}

func (s *Strategy) Name() string { return StrategyName }

// Classify implements intent.Strategy.
func (s *Strategy) Classify(ctx context.Context, text string, labels []intent.Label) ([]intent.Score, error) {
	if s == nil || len(s.chain) == 0 {
		return nil, errors.New("no LLM scorer configured")
	}

	start := time.Now()
	primary := s.chain[0].Provider()
	var lastErr error
	var skip Provider // provider whose remaining models are pointless

	for _, sc := range s.chain {
		provider := sc.Provider()
		if provider == skip {
			continue
		}

		callStart := time.Now()
		var scores []intent.Score
		err := WithRetry(ctx, s.retry,
			func(attempt int, err error, delay time.Duration) {
				slog.DebugContext(ctx, "Retrying intent scoring",
					"provider", provider,
					"model", sc.Model(),
					"attempt", attempt,
					"backoff", delay,
					"error", err)
			},
			func(ctx context.Context) error {
				var err error
				scores, err = sc.Score(ctx, text, labels)
				return err
			})
		if err == nil {
			s.metrics.RecordLLM(provider.String(), "success", time.Since(callStart).Seconds())
			if lastErr != nil {
				s.metrics.RecordLLMFallback(primary.String(), provider.String(), time.Since(start).Seconds())
				slog.InfoContext(ctx, "Intent scoring answered by fallback",
					"from", primary,
					"to", provider,
					"model", sc.Model())
			}
			return scores, nil
		}

		lastErr = err
		s.metrics.RecordLLM(provider.String(), errorLabel(err), time.Since(callStart).Seconds())
		if ctx.Err() != nil {
			break
		}
		action := ClassifyError(err)
		slog.WarnContext(ctx, "Intent scorer failed",
			"provider", provider,
			"model", sc.Model(),
			"action", action,
			"error", err)
		if action == ActionFail {
			// Auth and request errors repeat for every model of this provider.
			skip = provider
		}
	}

	return nil, fmt.Errorf("all LLM scorers failed: %w", lastErr)
}

// Providers lists the chain's providers in order, without duplicates.
func (s *Strategy) Providers() []Provider {
	var out []Provider
	for _, sc := range s.chain {
		if len(out) == 0 || out[len(out)-1] != sc.Provider() {
			out = append(out, sc.Provider())
		}
	}
	return out
}

// Close closes every scorer in the chain.
func (s *Strategy) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, sc := range s.chain {
		if err := sc.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
