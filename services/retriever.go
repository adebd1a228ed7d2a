package services

import (
	"context"
	"fmt"
	"strings"

	"summarysnap/internal/apperr"
	"summarysnap/internal/logger"
	"summarysnap/internal/prompts"
	"summarysnap/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Retriever answers questions from the top-k chunks of an index. It never
// modifies the index or the transcript it is given.
type Retriever struct {
	embedder  Embedder
	gen       Generator
	catalog   *prompts.Catalog
	k         int
	condense  bool
	warnChars int
}

type RetrieverOptions struct {
	K                   int
	CondenseQuestion    bool
	TranscriptWarnChars int
}

func NewRetriever(embedder Embedder, gen Generator, catalog *prompts.Catalog, opts RetrieverOptions) *Retriever {
	k := opts.K
	if k <= 0 {
		k = 3
	}
	return &Retriever{
		embedder:  embedder,
		gen:       gen,
		catalog:   catalog,
		k:         k,
		condense:  opts.CondenseQuestion,
		warnChars: opts.TranscriptWarnChars,
	}
}

// Answer retrieves context for question and asks the model with the full
// transcript as history.
func (r *Retriever) Answer(ctx context.Context, ix *Index, transcript []models.ConversationTurn, question string) (*models.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}
	if ix == nil {
		return nil, apperr.Errorf(apperr.ErrRetrieval, "retrieve", "no processed document")
	}

	ctx, span := otel.Tracer("retriever").Start(ctx, "retrieve.answer")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.id", ix.DocumentID()),
		attribute.Int("retrieval.k", r.k),
		attribute.Int("transcript.turns", len(transcript)),
	)

	if r.warnChars > 0 {
		if n := transcriptChars(transcript); n > r.warnChars {
			logger.Warn("chat history is large", "chars", n, "turns", len(transcript), "threshold", r.warnChars)
		}
	}

	query := question
	if r.condense && len(transcript) > 0 {
		prompt, err := r.catalog.RenderCondense(transcript, question)
		if err != nil {
			return nil, apperr.New(apperr.ErrGeneration, "retrieve.condense", err)
		}
		standalone, err := r.gen.Generate(ctx, prompt)
		if err != nil {
			span.RecordError(err)
			return nil, apperr.New(apperr.ErrGeneration, "retrieve.condense", err)
		}
		if s := strings.TrimSpace(standalone); s != "" {
			query = s
		}
	}

	qv, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.New(apperr.ErrEmbedding, "retrieve.embed", err)
	}
	hits, err := ix.Search(qv, r.k)
	if err != nil {
		return nil, err
	}

	prompt, err := r.catalog.RenderAnswer(hits, query)
	if err != nil {
		return nil, apperr.New(apperr.ErrGeneration, "retrieve.answer", err)
	}
	text, err := r.gen.Chat(ctx, transcript, prompt)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.New(apperr.ErrGeneration, "retrieve.answer", err)
	}

	return &models.Answer{
		Text:     strings.TrimSpace(text),
		Question: question,
		Sources:  hits,
	}, nil
}

func transcriptChars(turns []models.ConversationTurn) int {
	n := 0
	for _, t := range turns {
		n += len(t.Content)
	}
	return n
}
