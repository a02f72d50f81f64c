package config

import "time"

// HTTP server timeouts
const (
	HTTPRead  = 10 * time.Second
	HTTPWrite = 30 * time.Second // must exceed ClassifierDefault plus synthesis
	HTTPIdle  = 120 * time.Second
)

// Classifier timeouts
const (
	// ClassifierDefault bounds one classification, including LLM retries.
	ClassifierDefault = 8 * time.Second

	// ClassifierInit bounds model loading, including artifact download.
	ClassifierInit = 2 * time.Minute

	// ArtifactDownload bounds a single object download from R2.
	ArtifactDownload = 60 * time.Second
)

// LINE webhook timeouts
const (
	// WebhookProcessing bounds answering one LINE event.
	WebhookProcessing = 20 * time.Second
)

// GracefulShutdown allows in-flight requests to complete before termination.
const GracefulShutdown = 30 * time.Second

// RateLimiterCleanup is how often idle per-client limiters are evicted.
const RateLimiterCleanup = 5 * time.Minute
