package ai

import (
	"context"
	"fmt"
	"strings"

	"summarysnap/internal/apperr"
	"summarysnap/internal/config"
	"summarysnap/internal/telemetry"
	"summarysnap/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/option"

	genai "github.com/google/generative-ai-go/genai"
)

// maxEmbedBatch is the BatchEmbedContents request limit.
const maxEmbedBatch = 100

type GeminiClient struct {
	client         *genai.Client
	guard          *Guard
	metrics        *telemetry.Metrics
	embeddingModel string
	llmModel       string
	temperature    float32
}

func NewGeminiClient(ctx context.Context, cfg *config.Config, metrics *telemetry.Metrics) (*GeminiClient, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, apperr.Errorf(apperr.ErrConfig, "gemini.new", "missing GOOGLE_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GoogleAPIKey))
	if err != nil {
		return nil, apperr.New(apperr.ErrConfig, "gemini.new", err)
	}

	return &GeminiClient{
		client:         client,
		guard:          NewGuard("GeminiAPI", cfg.GeminiTier, metrics),
		metrics:        metrics,
		embeddingModel: cfg.EmbeddingModel,
		llmModel:       cfg.LLMModel,
		temperature:    cfg.LLMTemperature,
	}, nil
}

func (gc *GeminiClient) model() *genai.GenerativeModel {
	model := gc.client.GenerativeModel(gc.llmModel)
	model.SetTemperature(gc.temperature)
	return model
}

// Generate issues a single prompt with no history.
func (gc *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	return gc.Chat(ctx, nil, prompt)
}

// Chat sends prompt as the next user message after history.
func (gc *GeminiClient) Chat(ctx context.Context, history []models.ConversationTurn, prompt string) (string, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.generate_content")
	defer span.End()

	span.SetAttributes(
		attribute.String("gemini.model", gc.llmModel),
		attribute.Int("gemini.history_turns", len(history)),
		attribute.Int("gemini.prompt_chars", len(prompt)),
	)

	result, err := gc.guard.Do(ctx, func() (any, error) {
		model := gc.model()
		var (
			resp *genai.GenerateContentResponse
			err  error
		)
		if len(history) == 0 {
			resp, err = model.GenerateContent(ctx, genai.Text(prompt))
		} else {
			cs := model.StartChat()
			cs.History = toGeminiHistory(history)
			resp, err = cs.SendMessage(ctx, genai.Text(prompt))
		}
		if err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", apperr.New(apperr.ErrGeneration, "gemini.generate", err)
	}

	resp := result.(*genai.GenerateContentResponse)
	tokens := extractTokenUsage(resp)
	gc.metrics.RecordTokensUsed(int64(tokens), config.ProviderGoogle, gc.llmModel)
	span.SetAttributes(attribute.Int("gemini.actual_tokens", tokens))

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		span.SetStatus(codes.Error, "empty response")
		return "", apperr.Errorf(apperr.ErrGeneration, "gemini.generate", "model returned no text")
	}
	return text, nil
}

// EmbedDocuments embeds texts for storage, in request batches of at most 100.
func (gc *GeminiClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.embed_documents")
	defer span.End()
	span.SetAttributes(
		attribute.String("gemini.embedding_model", gc.embeddingModel),
		attribute.Int("gemini.texts", len(texts)),
	)

	em := gc.client.EmbeddingModel(gc.embeddingModel)
	em.TaskType = genai.TaskTypeRetrievalDocument

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := min(start+maxEmbedBatch, len(texts))

		batch := em.NewBatch()
		for _, t := range texts[start:end] {
			batch.AddContent(genai.Text(t))
		}

		result, err := gc.guard.Do(ctx, func() (any, error) {
			return em.BatchEmbedContents(ctx, batch)
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, apperr.New(apperr.ErrEmbedding, "gemini.embed_documents", err)
		}

		resp := result.(*genai.BatchEmbedContentsResponse)
		if len(resp.Embeddings) != end-start {
			return nil, apperr.Errorf(apperr.ErrEmbedding, "gemini.embed_documents",
				"expected %d embeddings, got %d", end-start, len(resp.Embeddings))
		}
		for _, e := range resp.Embeddings {
			if e == nil {
				return nil, apperr.Errorf(apperr.ErrEmbedding, "gemini.embed_documents", "no embedding returned")
			}
			out = append(out, e.Values)
		}
	}
	return out, nil
}

// EmbedQuery embeds a single retrieval query.
func (gc *GeminiClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	tracer := otel.Tracer("gemini-client")
	ctx, span := tracer.Start(ctx, "gemini.embed_query")
	defer span.End()

	em := gc.client.EmbeddingModel(gc.embeddingModel)
	em.TaskType = genai.TaskTypeRetrievalQuery

	result, err := gc.guard.Do(ctx, func() (any, error) {
		return em.EmbedContent(ctx, genai.Text(text))
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, apperr.New(apperr.ErrEmbedding, "gemini.embed_query", err)
	}

	resp := result.(*genai.EmbedContentResponse)
	if resp.Embedding == nil {
		return nil, apperr.Errorf(apperr.ErrEmbedding, "gemini.embed_query", "no embedding returned")
	}
	return resp.Embedding.Values, nil
}

func (gc *GeminiClient) Close() error {
	if gc.client != nil {
		return gc.client.Close()
	}
	return nil
}

// toGeminiHistory maps transcript roles onto Gemini's "user" and "model".
func toGeminiHistory(turns []models.ConversationTurn) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}
	return history
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// extractTokenUsage prefers reported usage and falls back to ~4 chars per token.
func extractTokenUsage(resp *genai.GenerateContentResponse) int {
	if resp.UsageMetadata != nil {
		return int(resp.UsageMetadata.TotalTokenCount)
	}
	estimated := len(responseText(resp)) / 4
	if estimated < 1 {
		estimated = 1
	}
	return estimated
}

// String describes the client for logs.
func (gc *GeminiClient) String() string {
	return fmt.Sprintf("gemini(llm=%s, embeddings=%s)", gc.llmModel, gc.embeddingModel)
}
