package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "AGRI_PORT"
	EnvLogLevel        = "AGRI_LOG_LEVEL"
	EnvShutdownTimeout = "AGRI_SHUTDOWN_TIMEOUT"
	EnvDataDir         = "AGRI_DATA_DIR"
	EnvMaxQueryLength  = "AGRI_MAX_QUERY_LENGTH"

	// Classifier
	EnvClassifierStrategy    = "AGRI_CLASSIFIER_STRATEGY"
	EnvClassifierTimeout     = "AGRI_CLASSIFIER_TIMEOUT"
	EnvClassifierWorkers     = "AGRI_CLASSIFIER_WORKERS"
	EnvClassifierInitTimeout = "AGRI_CLASSIFIER_INIT_TIMEOUT"

	// Extraction and synthesis
	EnvFuzzyThreshold    = "AGRI_FUZZY_THRESHOLD"
	EnvMissingCropPolicy = "AGRI_MISSING_CROP_POLICY"
	EnvKnowledgeDB       = "AGRI_KNOWLEDGE_DB"
	EnvKnowledgeR2Key    = "AGRI_KNOWLEDGE_R2_KEY"

	// Zero-shot LLM strategy
	EnvLLMProviders   = "AGRI_LLM_PROVIDERS"
	EnvLLMMaxAttempts = "AGRI_LLM_MAX_ATTEMPTS"
	EnvGeminiAPIKey   = "AGRI_GEMINI_API_KEY"
	EnvGroqAPIKey     = "AGRI_GROQ_API_KEY"
	EnvCerebrasAPIKey = "AGRI_CEREBRAS_API_KEY"
	EnvOpenAIAPIKey   = "AGRI_OPENAI_API_KEY"
	EnvOpenAIBaseURL  = "AGRI_OPENAI_BASE_URL"
	EnvGeminiModels   = "AGRI_GEMINI_MODELS"
	EnvGroqModels     = "AGRI_GROQ_MODELS"
	EnvCerebrasModels = "AGRI_CEREBRAS_MODELS"
	EnvOpenAIModels   = "AGRI_OPENAI_MODELS"

	// Fine-tuned strategy artifacts
	EnvModelDir      = "AGRI_MODEL_DIR"
	EnvModelR2Prefix = "AGRI_MODEL_R2_PREFIX"

	// R2 object storage
	EnvR2Endpoint        = "AGRI_R2_ENDPOINT"
	EnvR2AccessKeyID     = "AGRI_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "AGRI_R2_SECRET_ACCESS_KEY"
	EnvR2Bucket          = "AGRI_R2_BUCKET"

	// Sentry
	EnvSentryToken       = "AGRI_SENTRY_TOKEN"
	EnvSentryHost        = "AGRI_SENTRY_HOST"
	EnvSentryEnvironment = "AGRI_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "AGRI_SENTRY_SAMPLE_RATE"

	// Better Stack logs
	EnvBetterStackToken    = "AGRI_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "AGRI_BETTERSTACK_ENDPOINT"

	// Metrics auth
	EnvMetricsUsername = "AGRI_METRICS_USERNAME"
	EnvMetricsPassword = "AGRI_METRICS_PASSWORD"

	// Rate limits
	EnvRateLimitBurst  = "AGRI_RATE_LIMIT_BURST"
	EnvRateLimitRefill = "AGRI_RATE_LIMIT_REFILL"

	// LINE front-end
	EnvLineChannelSecret = "AGRI_LINE_CHANNEL_SECRET"
	EnvLineChannelToken  = "AGRI_LINE_CHANNEL_TOKEN"
)
