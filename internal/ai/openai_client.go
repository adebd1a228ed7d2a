package ai

import (
	"context"
	"sort"
	"strings"

	"summarysnap/internal/apperr"
	"summarysnap/internal/config"
	"summarysnap/internal/telemetry"
	"summarysnap/models"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// OpenAIClient is the alternative provider for embeddings and generation.
type OpenAIClient struct {
	client         *openai.Client
	guard          *Guard
	metrics        *telemetry.Metrics
	chatModel      string
	embeddingModel openai.EmbeddingModel
	temperature    float32
}

func NewOpenAIClient(cfg *config.Config, metrics *telemetry.Metrics) (*OpenAIClient, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, apperr.Errorf(apperr.ErrConfig, "openai.new", "missing OPENAI_API_KEY")
	}

	return &OpenAIClient{
		client:         openai.NewClient(cfg.OpenAIAPIKey),
		guard:          NewGuard("OpenAIAPI", "unlimited", metrics),
		metrics:        metrics,
		chatModel:      cfg.OpenAIChatModel,
		embeddingModel: openai.EmbeddingModel(cfg.OpenAIEmbeddingModel),
		temperature:    cfg.LLMTemperature,
	}, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, nil, prompt)
}

func (c *OpenAIClient) Chat(ctx context.Context, history []models.ConversationTurn, prompt string) (string, error) {
	ctx, span := otel.Tracer("openai-client").Start(ctx, "openai.chat_completion")
	defer span.End()
	span.SetAttributes(
		attribute.String("openai.model", c.chatModel),
		attribute.Int("openai.history_turns", len(history)),
	)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, t := range history {
		role := openai.ChatMessageRoleUser
		if t.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	result, err := c.guard.Do(ctx, func() (any, error) {
		return c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.chatModel,
			Messages:    messages,
			Temperature: c.temperature,
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", apperr.New(apperr.ErrGeneration, "openai.chat", err)
	}

	resp := result.(openai.ChatCompletionResponse)
	c.metrics.RecordTokensUsed(int64(resp.Usage.TotalTokens), config.ProviderOpenAI, c.chatModel)
	span.SetAttributes(attribute.Int("openai.total_tokens", resp.Usage.TotalTokens))

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperr.Errorf(apperr.ErrGeneration, "openai.chat", "model returned no text")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, span := otel.Tracer("openai-client").Start(ctx, "openai.embed_documents")
	defer span.End()
	span.SetAttributes(attribute.Int("openai.texts", len(texts)))

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := min(start+maxEmbedBatch, len(texts))
		vecs, err := c.embed(ctx, texts[start:end])
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, apperr.New(apperr.ErrEmbedding, "openai.embed_documents", err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (c *OpenAIClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.embed(ctx, []string{text})
	if err != nil {
		return nil, apperr.New(apperr.ErrEmbedding, "openai.embed_query", err)
	}
	return vecs[0], nil
}

func (c *OpenAIClient) embed(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := c.guard.Do(ctx, func() (any, error) {
		return c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: texts,
			Model: c.embeddingModel,
		})
	})
	if err != nil {
		return nil, err
	}

	resp := result.(openai.EmbeddingResponse)
	if len(resp.Data) != len(texts) {
		return nil, apperr.Errorf(apperr.ErrEmbedding, "openai.embed",
			"expected %d embeddings, got %d", len(texts), len(resp.Data))
	}
	c.metrics.RecordTokensUsed(int64(resp.Usage.TotalTokens), config.ProviderOpenAI, string(c.embeddingModel))

	data := resp.Data
	sort.Slice(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	vecs := make([][]float32, len(data))
	for i, d := range data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}

func (c *OpenAIClient) Close() error { return nil }
