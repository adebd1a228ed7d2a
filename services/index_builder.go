package services

import (
	"context"

	"summarysnap/internal/apperr"
	"summarysnap/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Embedder turns text into vectors. Documents and queries are embedded with
// different task hints by providers that support them.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Generator issues prompts to a hosted language model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, history []models.ConversationTurn, prompt string) (string, error)
}

// IndexBuilder embeds a chunk set and builds a fresh Index from it.
type IndexBuilder struct {
	embedder  Embedder
	batchSize int
}

func NewIndexBuilder(embedder Embedder, batchSize int) *IndexBuilder {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &IndexBuilder{embedder: embedder, batchSize: batchSize}
}

// Build embeds chunks in batches. Provider failures surface as
// apperr.ErrEmbedding and malformed vectors as apperr.ErrIndex. Nothing is
// retried.
func (b *IndexBuilder) Build(ctx context.Context, documentID string, chunks []models.Chunk) (*Index, error) {
	ctx, span := otel.Tracer("index-builder").Start(ctx, "index.build")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.id", documentID),
		attribute.Int("index.chunks", len(chunks)),
	)

	if len(chunks) == 0 {
		return nil, apperr.Errorf(apperr.ErrIndex, "index.build", "no chunks to index")
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += b.batchSize {
		end := min(start+b.batchSize, len(chunks))

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		vecs, err := b.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			span.RecordError(err)
			return nil, apperr.New(apperr.ErrEmbedding, "index.embed", err)
		}
		if len(vecs) != len(texts) {
			return nil, apperr.Errorf(apperr.ErrEmbedding, "index.embed",
				"expected %d embeddings, got %d", len(texts), len(vecs))
		}
		vectors = append(vectors, vecs...)
	}

	return NewIndex(documentID, chunks, vectors)
}
