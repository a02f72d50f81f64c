package app

import (
	"context"
	"fmt"

	"github.com/garyellow/agri-advisor-go/internal/config"
	"github.com/garyellow/agri-advisor-go/internal/finetune"
	"github.com/garyellow/agri-advisor-go/internal/genai"
	"github.com/garyellow/agri-advisor-go/internal/intent"
	"github.com/garyellow/agri-advisor-go/internal/lexical"
	"github.com/garyellow/agri-advisor-go/internal/logger"
	"github.com/garyellow/agri-advisor-go/internal/metrics"
	"github.com/garyellow/agri-advisor-go/internal/r2client"
	"github.com/garyellow/agri-advisor-go/internal/sliceutil"
	"github.com/garyellow/agri-advisor-go/internal/storage"
)

// newStrategy builds the strategy named by cfg.Classifier.Strategy.
// Loading happens later, behind the classifier's init gate.
func newStrategy(ctx context.Context, cfg *config.Config, db *storage.DB, m *metrics.Metrics, log *logger.Logger) (intent.Strategy, error) {
	switch cfg.Classifier.Strategy {
	case config.StrategyZeroShot:
		s, err := genai.NewStrategyFromConfig(ctx, buildLLMConfig(cfg, log), m)
		if err != nil {
			return nil, fmt.Errorf("zero-shot strategy: %w", err)
		}
		log.InfoContext(ctx, "Zero-shot classifier selected", "providers", s.Providers())
		return s, nil

	case config.StrategyFineTuned:
		opts := finetune.Options{Dir: cfg.Model.Dir, Logger: log}
		if cfg.Model.R2Prefix != "" && cfg.R2.Enabled() {
			client, err := r2client.New(ctx, r2client.Config{
				Endpoint:    cfg.R2.Endpoint,
				AccessKeyID: cfg.R2.AccessKeyID,
				SecretKey:   cfg.R2.SecretAccessKey,
				BucketName:  cfg.R2.Bucket,
			})
			if err != nil {
				return nil, fmt.Errorf("model store: %w", err)
			}
			opts.Store = client
			opts.Prefix = cfg.Model.R2Prefix
		}
		log.InfoContext(ctx, "Fine-tuned classifier selected",
			"model_dir", cfg.Model.Dir, "r2_prefix", opts.Prefix)
		return finetune.New(opts), nil

	case config.StrategyLexical:
		opts := lexical.Options{Logger: log}
		if db != nil {
			opts.Source = db
		}
		log.InfoContext(ctx, "Lexical classifier selected")
		return lexical.New(opts), nil
	}
	return nil, fmt.Errorf("unknown classifier strategy %q", cfg.Classifier.Strategy)
}

// buildLLMConfig maps the flat environment settings onto the provider chain.
func buildLLMConfig(cfg *config.Config, log *logger.Logger) genai.Config {
	llm := cfg.LLM
	out := genai.Config{
		Gemini:   genai.ProviderConfig{APIKey: llm.GeminiAPIKey, Models: llm.GeminiModels},
		Groq:     genai.ProviderConfig{APIKey: llm.GroqAPIKey, Models: llm.GroqModels},
		Cerebras: genai.ProviderConfig{APIKey: llm.CerebrasAPIKey, Models: llm.CerebrasModels},
		OpenAI:   genai.ProviderConfig{APIKey: llm.OpenAIAPIKey, Models: llm.OpenAIModels, BaseURL: llm.OpenAIBaseURL},
		Retry:    genai.DefaultRetryConfig(),
	}
	if llm.MaxAttempts > 0 {
		out.Retry.MaxAttempts = llm.MaxAttempts
	}

	for _, name := range llm.Providers {
		p, ok := genai.ParseProvider(name)
		if !ok {
			log.Warn("Ignoring unknown LLM provider", "name", name)
			continue
		}
		out.Providers = append(out.Providers, p)
	}
	out.Providers = sliceutil.Unique(out.Providers)
	if len(out.Providers) == 0 {
		out.Providers = genai.DefaultProviders
	}
	return out
}
