package genai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/garyellow/agri-advisor-go/internal/metrics"
)

// NewStrategyFromConfig creates the zero-shot strategy with one scorer per
// configured (provider, model) pair, in cfg.Providers order.
//
// Chain order:
//  1. Models of the first configured provider, in listed order.
//  2. Then every model of the next provider, and so on.
//  3. Each model is retried per cfg.Retry before moving on.
func NewStrategyFromConfig(ctx context.Context, cfg Config, m *metrics.Metrics) (*Strategy, error) {
	var chain []Scorer

	for _, provider := range cfg.ConfiguredProviders() {
		pc := cfg.ProviderConfig(provider)
		for _, model := range modelsFor(provider, pc.Models) {
			var (
				sc  Scorer
				err error
			)
			if provider == ProviderGemini {
				sc, err = newGeminiScorer(ctx, pc.APIKey, model)
			} else {
				sc, err = newOpenAIScorer(provider, pc.APIKey, model, pc.BaseURL)
			}
			if err != nil {
				slog.WarnContext(ctx, "Failed to create intent scorer", "provider", provider, "model", model, "error", err)
				continue
			}
			chain = append(chain, sc)
		}
	}

	if len(chain) == 0 {
		return nil, errors.New("no LLM provider configured for zero-shot scoring")
	}

	s := NewStrategy(cfg.Retry, m, chain...)
	slog.InfoContext(ctx, "Zero-shot scorer configured",
		"primary", chain[0].Provider(),
		"model", chain[0].Model(),
		"chain_size", len(chain))
	return s, nil
}

func modelsFor(p Provider, configured []string) []string {
	if len(configured) > 0 {
		return configured
	}
	switch p {
	case ProviderGemini:
		return DefaultGeminiModels
	case ProviderGroq:
		return DefaultGroqModels
	case ProviderCerebras:
		return DefaultCerebrasModels
	case ProviderOpenAI:
		return DefaultOpenAIModels
	}
	return nil
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxRetryAttempts,
		InitialDelay: DefaultInitialRetryDelay,
		MaxDelay:     DefaultMaxRetryDelay,
	}
}
