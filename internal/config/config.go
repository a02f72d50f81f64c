// Package config provides application configuration management.
// It loads settings from environment variables (optionally seeded from a
// .env file) and validates them before the service starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Classification strategies selectable at startup.
const (
	StrategyZeroShot  = "zeroshot"
	StrategyFineTuned = "finetuned"
	StrategyLexical   = "lexical"
)

// Policies for a recognised crop with no knowledge entry.
const (
	MissingCropClarify = "clarify"
	MissingCropLegacy  = "legacy"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	DataDir         string
	MaxQueryLength  int // runes; longer queries are rejected with 400

	Classifier ClassifierConfig
	LLM        LLMConfig
	Model      ModelConfig
	R2         R2Config

	// Knowledge overrides (empty = built-in table only)
	KnowledgeDB    string
	KnowledgeR2Key string // object refreshed into KnowledgeDB at startup

	// Observability
	SentryToken         string
	SentryHost          string
	SentryEnvironment   string
	SentrySampleRate    float64
	BetterStackToken    string
	BetterStackEndpoint string
	MetricsUsername     string
	MetricsPassword     string // empty = /metrics without auth

	// Per-client rate limit (token bucket)
	RateLimitBurst  float64
	RateLimitRefill float64 // tokens per second

	// LINE front-end (disabled unless both are set)
	LineChannelSecret string
	LineChannelToken  string
}

// ClassifierConfig selects and bounds the intent classifier.
type ClassifierConfig struct {
	Strategy          string
	Timeout           time.Duration
	InitTimeout       time.Duration
	Workers           int
	FuzzyThreshold    int
	MissingCropPolicy string
}

// LLMConfig configures the zero-shot strategy's provider chain.
type LLMConfig struct {
	Providers      []string // fallback order
	MaxAttempts    int
	GeminiAPIKey   string
	GroqAPIKey     string
	CerebrasAPIKey string
	OpenAIAPIKey   string
	OpenAIBaseURL  string
	GeminiModels   []string
	GroqModels     []string
	CerebrasModels []string
	OpenAIModels   []string
}

// ModelConfig locates fine-tuned artifacts.
type ModelConfig struct {
	Dir      string
	R2Prefix string // when set and R2 is configured, artifacts are fetched into Dir
}

// R2Config holds Cloudflare R2 (S3-compatible) credentials.
type R2Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

// Enabled reports whether all R2 settings are present.
func (r R2Config) Enabled() bool {
	return r.Endpoint != "" && r.AccessKeyID != "" && r.SecretAccessKey != "" && r.Bucket != ""
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	dataDir := getEnv(EnvDataDir, getDefaultDataDir())
	cfg := &Config{
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),
		DataDir:         dataDir,
		MaxQueryLength:  getIntEnv(EnvMaxQueryLength, 1000),

		Classifier: ClassifierConfig{
			Strategy:          strings.ToLower(getEnv(EnvClassifierStrategy, StrategyLexical)),
			Timeout:           getDurationEnv(EnvClassifierTimeout, ClassifierDefault),
			InitTimeout:       getDurationEnv(EnvClassifierInitTimeout, ClassifierInit),
			Workers:           getIntEnv(EnvClassifierWorkers, runtime.NumCPU()),
			FuzzyThreshold:    getIntEnv(EnvFuzzyThreshold, 70),
			MissingCropPolicy: strings.ToLower(getEnv(EnvMissingCropPolicy, MissingCropClarify)),
		},

		LLM: LLMConfig{
			Providers:      getListEnv(EnvLLMProviders, []string{"gemini", "groq", "cerebras", "openai"}),
			MaxAttempts:    getIntEnv(EnvLLMMaxAttempts, 2),
			GeminiAPIKey:   getEnv(EnvGeminiAPIKey, ""),
			GroqAPIKey:     getEnv(EnvGroqAPIKey, ""),
			CerebrasAPIKey: getEnv(EnvCerebrasAPIKey, ""),
			OpenAIAPIKey:   getEnv(EnvOpenAIAPIKey, ""),
			OpenAIBaseURL:  getEnv(EnvOpenAIBaseURL, ""),
			GeminiModels:   getListEnv(EnvGeminiModels, nil),
			GroqModels:     getListEnv(EnvGroqModels, nil),
			CerebrasModels: getListEnv(EnvCerebrasModels, nil),
			OpenAIModels:   getListEnv(EnvOpenAIModels, nil),
		},

		Model: ModelConfig{
			Dir:      getEnv(EnvModelDir, filepath.Join(dataDir, "model")),
			R2Prefix: getEnv(EnvModelR2Prefix, ""),
		},

		R2: R2Config{
			Endpoint:        getEnv(EnvR2Endpoint, ""),
			AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
			SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
			Bucket:          getEnv(EnvR2Bucket, ""),
		},

		KnowledgeDB:    getEnv(EnvKnowledgeDB, ""),
		KnowledgeR2Key: getEnv(EnvKnowledgeR2Key, ""),

		SentryToken:         getEnv(EnvSentryToken, ""),
		SentryHost:          getEnv(EnvSentryHost, ""),
		SentryEnvironment:   getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:    getFloatEnv(EnvSentrySampleRate, 1.0),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),
		MetricsUsername:     getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:     getEnv(EnvMetricsPassword, ""),

		RateLimitBurst:  getFloatEnv(EnvRateLimitBurst, 20),
		RateLimitRefill: getFloatEnv(EnvRateLimitRefill, 1),

		LineChannelSecret: getEnv(EnvLineChannelSecret, ""),
		LineChannelToken:  getEnv(EnvLineChannelToken, ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvPort))
	}
	if c.DataDir == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvDataDir))
	}
	if c.MaxQueryLength <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvMaxQueryLength, c.MaxQueryLength))
	}

	switch c.Classifier.Strategy {
	case StrategyLexical:
	case StrategyZeroShot:
		if !c.HasLLMProvider() {
			errs = append(errs, fmt.Errorf("%s=%s needs at least one LLM API key", EnvClassifierStrategy, StrategyZeroShot))
		}
	case StrategyFineTuned:
		if c.Model.Dir == "" {
			errs = append(errs, fmt.Errorf("%s is required for the fine-tuned strategy", EnvModelDir))
		}
	default:
		errs = append(errs, fmt.Errorf("%s must be one of %s, %s, %s; got %q",
			EnvClassifierStrategy, StrategyZeroShot, StrategyFineTuned, StrategyLexical, c.Classifier.Strategy))
	}
	if c.Classifier.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvClassifierTimeout, c.Classifier.Timeout))
	}
	if c.Classifier.InitTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvClassifierInitTimeout, c.Classifier.InitTimeout))
	}
	if c.Classifier.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvClassifierWorkers, c.Classifier.Workers))
	}
	if c.Classifier.FuzzyThreshold < 1 || c.Classifier.FuzzyThreshold > 100 {
		errs = append(errs, fmt.Errorf("%s must be within 1..100, got %d", EnvFuzzyThreshold, c.Classifier.FuzzyThreshold))
	}
	if p := c.Classifier.MissingCropPolicy; p != MissingCropClarify && p != MissingCropLegacy {
		errs = append(errs, fmt.Errorf("%s must be %s or %s, got %q", EnvMissingCropPolicy, MissingCropClarify, MissingCropLegacy, p))
	}
	if c.LLM.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1, got %d", EnvLLMMaxAttempts, c.LLM.MaxAttempts))
	}
	if c.Model.R2Prefix != "" && !c.R2.Enabled() {
		errs = append(errs, fmt.Errorf("%s requires all R2 settings", EnvModelR2Prefix))
	}
	if c.KnowledgeR2Key != "" {
		if !c.R2.Enabled() {
			errs = append(errs, fmt.Errorf("%s requires all R2 settings", EnvKnowledgeR2Key))
		}
		if c.KnowledgeDB == "" {
			errs = append(errs, fmt.Errorf("%s requires %s", EnvKnowledgeR2Key, EnvKnowledgeDB))
		}
	}
	if c.SentryToken != "" && c.SentryHost == "" {
		errs = append(errs, fmt.Errorf("%s is required when %s is set", EnvSentryHost, EnvSentryToken))
	}
	if c.SentrySampleRate < 0 || c.SentrySampleRate > 1 {
		errs = append(errs, fmt.Errorf("%s must be within 0..1, got %v", EnvSentrySampleRate, c.SentrySampleRate))
	}
	if c.RateLimitBurst <= 0 || c.RateLimitRefill <= 0 {
		errs = append(errs, fmt.Errorf("%s and %s must be positive", EnvRateLimitBurst, EnvRateLimitRefill))
	}
	if (c.LineChannelSecret == "") != (c.LineChannelToken == "") {
		errs = append(errs, fmt.Errorf("%s and %s must be set together", EnvLineChannelSecret, EnvLineChannelToken))
	}

	return errors.Join(errs...)
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping empty items.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.LLM.GeminiAPIKey != "" || c.LLM.GroqAPIKey != "" ||
		c.LLM.CerebrasAPIKey != "" || c.LLM.OpenAIAPIKey != ""
}

// LineEnabled reports whether the LINE front-end should be mounted.
func (c *Config) LineEnabled() bool {
	return c.LineChannelSecret != "" && c.LineChannelToken != ""
}
