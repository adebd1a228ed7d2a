package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"summarysnap/internal/apperr"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	MaxFileSize int64
	TempDir     string

	// Model provider
	Provider       string
	GoogleAPIKey   string
	EmbeddingModel string
	LLMModel       string
	LLMTemperature float32
	GeminiTier     string

	OpenAIAPIKey         string
	OpenAIChatModel      string
	OpenAIEmbeddingModel string

	// Pipeline
	ChunkSize             int
	ChunkOverlap          int
	RetrievalK            int
	EmbedBatchSize        int
	SummaryConcurrency    int
	SummaryReduceMaxChars int
	CondenseQuestion      bool
	TranscriptWarnChars   int
	PromptsFile           string

	// Sessions
	SessionSecret        string
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	// Redis rate limiting (optional)
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RateLimitReqs   int
	RateLimitWindow int

	// Tracing (optional)
	OTLPEndpoint     string
	TraceSampleRatio float64
}

var defaults = map[string]any{
	"port":                     "8080",
	"gin_mode":                 "debug",
	"cors_origins":             "http://localhost:3000,http://localhost:8080",
	"max_file_size":            int64(52428800), // 50MB
	"temp_dir":                 "",
	"provider":                 ProviderGoogle,
	"google_api_key":           "",
	"embedding_model":          "models/embedding-001",
	"llm_model":                "gemini-2.0-flash-exp",
	"llm_temperature":          0.3,
	"gemini_tier":              "free",
	"openai_api_key":           "",
	"openai_chat_model":        "gpt-4o-mini",
	"openai_embedding_model":   "text-embedding-3-small",
	"chunk_size":               1000,
	"chunk_overlap":            200,
	"retrieval_k":              3,
	"embed_batch_size":         100,
	"summary_concurrency":      4,
	"summary_reduce_max_chars": 12000,
	"condense_question":        false,
	"transcript_warn_chars":    24000,
	"prompts_file":             "",
	"session_secret":           "",
	"session_ttl":              "2h",
	"session_sweep_interval":   "5m",
	"redis_url":                "",
	"redis_password":           "",
	"redis_db":                 0,
	"rate_limit_requests":      60,
	"rate_limit_window":        60,
	"otlp_endpoint":            "",
	"trace_sample_ratio":       0.1,
}

// New returns a viper instance with defaults applied and environment lookup
// enabled. A .env file in the working directory is loaded first if present.
func New() (*viper.Viper, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v, nil
}

// LoadConfig reads the typed configuration out of v and validates it.
func LoadConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:        v.GetString("port"),
		GinMode:     v.GetString("gin_mode"),
		CORSOrigins: splitList(v.GetString("cors_origins")),
		MaxFileSize: v.GetInt64("max_file_size"),
		TempDir:     v.GetString("temp_dir"),

		Provider:       strings.ToLower(v.GetString("provider")),
		GoogleAPIKey:   v.GetString("google_api_key"),
		EmbeddingModel: v.GetString("embedding_model"),
		LLMModel:       v.GetString("llm_model"),
		LLMTemperature: float32(v.GetFloat64("llm_temperature")),
		GeminiTier:     v.GetString("gemini_tier"),

		OpenAIAPIKey:         v.GetString("openai_api_key"),
		OpenAIChatModel:      v.GetString("openai_chat_model"),
		OpenAIEmbeddingModel: v.GetString("openai_embedding_model"),

		ChunkSize:             v.GetInt("chunk_size"),
		ChunkOverlap:          v.GetInt("chunk_overlap"),
		RetrievalK:            v.GetInt("retrieval_k"),
		EmbedBatchSize:        v.GetInt("embed_batch_size"),
		SummaryConcurrency:    v.GetInt("summary_concurrency"),
		SummaryReduceMaxChars: v.GetInt("summary_reduce_max_chars"),
		CondenseQuestion:      v.GetBool("condense_question"),
		TranscriptWarnChars:   v.GetInt("transcript_warn_chars"),
		PromptsFile:           v.GetString("prompts_file"),

		SessionSecret:        v.GetString("session_secret"),
		SessionTTL:           v.GetDuration("session_ttl"),
		SessionSweepInterval: v.GetDuration("session_sweep_interval"),

		RedisURL:        v.GetString("redis_url"),
		RedisPassword:   v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		RateLimitReqs:   v.GetInt("rate_limit_requests"),
		RateLimitWindow: v.GetInt("rate_limit_window"),

		OTLPEndpoint:     v.GetString("otlp_endpoint"),
		TraceSampleRatio: v.GetFloat64("trace_sample_ratio"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks credentials for the selected provider and pipeline bounds.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGoogle:
		if c.GoogleAPIKey == "" {
			return apperr.Errorf(apperr.ErrConfig, "config", "GOOGLE_API_KEY is required - set it in .env file")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return apperr.Errorf(apperr.ErrConfig, "config", "OPENAI_API_KEY is required when PROVIDER=openai")
		}
	default:
		return apperr.Errorf(apperr.ErrConfig, "config", "unknown provider: %s", c.Provider)
	}

	if c.ChunkSize <= 0 {
		return apperr.Errorf(apperr.ErrConfig, "config", "CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return apperr.Errorf(apperr.ErrConfig, "config", "CHUNK_OVERLAP must be in [0, %d), got %d", c.ChunkSize, c.ChunkOverlap)
	}
	if c.RetrievalK <= 0 {
		return apperr.Errorf(apperr.ErrConfig, "config", "RETRIEVAL_K must be positive, got %d", c.RetrievalK)
	}
	if c.EmbedBatchSize <= 0 {
		c.EmbedBatchSize = 100
	}
	if c.SummaryConcurrency <= 0 {
		c.SummaryConcurrency = 1
	}
	return nil
}

// RequireSessionSecret is checked by the HTTP server only; CLI runs use a
// single in-process session and never issue tokens.
func (c *Config) RequireSessionSecret() error {
	if len(c.SessionSecret) < 32 {
		return apperr.Errorf(apperr.ErrConfig, "config", "SESSION_SECRET must be configured and at least 32 characters")
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
