package ai

import (
	"context"

	"summarysnap/internal/apperr"
	"summarysnap/internal/config"
	"summarysnap/internal/telemetry"
	"summarysnap/models"
)

// Provider is a hosted model backend able to embed text and generate
// answers. Implementations wrap errors in apperr.ErrEmbedding or
// apperr.ErrGeneration.
type Provider interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, history []models.ConversationTurn, prompt string) (string, error)
	Close() error
}

var (
	_ Provider = (*GeminiClient)(nil)
	_ Provider = (*OpenAIClient)(nil)
)

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderGoogle, "":
		return NewGeminiClient(ctx, cfg, metrics)
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg, metrics)
	default:
		return nil, apperr.Errorf(apperr.ErrConfig, "ai.provider", "unknown provider: %s", cfg.Provider)
	}
}
