package services

import (
	"context"
	"time"

	"summarysnap/internal/apperr"
	"summarysnap/internal/config"
	"summarysnap/internal/logger"
	"summarysnap/internal/prompts"
	"summarysnap/internal/telemetry"
	"summarysnap/models"
	"summarysnap/utils"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Pipeline runs the user actions against a session. Actions on one session
// run one at a time, and session state changes only when an action succeeds.
type Pipeline struct {
	loader     *PDFLoader
	chunker    *Chunker
	builder    *IndexBuilder
	summarizer *Summarizer
	retriever  *Retriever
	metrics    *telemetry.Metrics
	now        func() time.Time
}

func NewPipeline(cfg *config.Config, embedder Embedder, gen Generator, catalog *prompts.Catalog, metrics *telemetry.Metrics) (*Pipeline, error) {
	chunker, err := NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		loader:     NewPDFLoader(cfg),
		chunker:    chunker,
		builder:    NewIndexBuilder(embedder, cfg.EmbedBatchSize),
		summarizer: NewSummarizer(gen, catalog, cfg.SummaryConcurrency, cfg.SummaryReduceMaxChars),
		retriever: NewRetriever(embedder, gen, catalog, RetrieverOptions{
			K:                   cfg.RetrievalK,
			CondenseQuestion:    cfg.CondenseQuestion,
			TranscriptWarnChars: cfg.TranscriptWarnChars,
		}),
		metrics: metrics,
		now:     time.Now,
	}, nil
}

// ProcessDocument loads, chunks and indexes doc, then replaces the session's
// document and index with it. On failure the session keeps what it had.
func (p *Pipeline) ProcessDocument(ctx context.Context, s *Session, doc *models.Document) (*models.DocumentInfo, error) {
	s.action.Lock()
	defer s.action.Unlock()
	defer s.touch(p.now())

	ctx, span := otel.Tracer("pipeline").Start(ctx, "pipeline.process_document")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("document.filename", doc.Filename),
		attribute.Int("document.size", len(doc.Content)),
	)

	start := p.now()
	prev := s.beginProcessing()

	info, chunks, ix, err := p.build(ctx, doc)
	if err != nil {
		s.restore(prev)
		span.RecordError(err)
		p.metrics.RecordPDFProcessing(time.Since(start).Seconds(), "error")
		logger.Error("document processing failed",
			"session_id", s.ID, "filename", doc.Filename, "kind", kindName(err), "error", err)
		return nil, err
	}

	s.commitDocument(info, chunks, ix)
	doc.Status = models.StatusProcessed
	p.metrics.RecordPDFProcessing(time.Since(start).Seconds(), "success")
	logger.Info("document processed",
		"session_id", s.ID, "document_id", info.ID, "filename", info.Filename,
		"pages", info.Pages, "chunks", info.Chunks, "duration_ms", time.Since(start).Milliseconds())
	return info, nil
}

func (p *Pipeline) build(ctx context.Context, doc *models.Document) (*models.DocumentInfo, []models.Chunk, *Index, error) {
	pages, err := p.loader.Load(ctx, doc)
	if err != nil {
		return nil, nil, nil, err
	}

	docID := doc.ID
	if docID == "" {
		docID = uuid.NewString()
	}
	chunks := p.chunker.Split(docID, pages)
	if len(chunks) == 0 {
		return nil, nil, nil, apperr.Errorf(apperr.ErrLoad, "pipeline.chunk", "%s produced no chunks", doc.Filename)
	}

	ix, err := p.builder.Build(ctx, docID, chunks)
	if err != nil {
		return nil, nil, nil, err
	}

	info := &models.DocumentInfo{
		ID:          docID,
		Filename:    doc.Filename,
		Size:        int64(len(doc.Content)),
		SHA256:      utils.SHA256Hex(doc.Content),
		Pages:       len(pages),
		Chunks:      len(chunks),
		ProcessedAt: p.now().UTC(),
	}
	return info, chunks, ix, nil
}

// Summarize regenerates a summary of the session's document in the given
// style. Nothing is cached.
func (p *Pipeline) Summarize(ctx context.Context, s *Session, style models.SummaryStyle) (*models.SummaryResponse, error) {
	s.action.Lock()
	defer s.action.Unlock()
	defer s.touch(p.now())

	v := s.view()
	if v.state != models.SessionReady || v.index == nil {
		return nil, apperr.Errorf(apperr.ErrRetrieval, "pipeline.summarize", "no processed document")
	}

	start := p.now()
	summary, err := p.summarizer.Summarize(ctx, v.chunks, style)
	status := "success"
	if err != nil {
		status = "error"
	}
	p.metrics.RecordSummary(time.Since(start).Seconds(), string(style), status)
	if err != nil {
		logger.Error("summary failed", "session_id", s.ID, "style", style, "kind", kindName(err), "error", err)
		return nil, err
	}

	logger.Info("summary generated", "session_id", s.ID, "style", style,
		"chunks", len(v.chunks), "duration_ms", time.Since(start).Milliseconds())
	return &models.SummaryResponse{
		Style:   models.NormalizeStyle(string(style)),
		Summary: summary,
		Chunks:  len(v.chunks),
	}, nil
}

// Ask answers question from the session's index. The user and assistant
// turns are appended only if an answer was produced.
func (p *Pipeline) Ask(ctx context.Context, s *Session, question string) (*models.Answer, int, error) {
	s.action.Lock()
	defer s.action.Unlock()
	defer s.touch(p.now())

	v := s.view()
	var ix *Index
	if v.state == models.SessionReady {
		ix = v.index
	}

	answer, err := p.retriever.Answer(ctx, ix, v.transcript, question)
	if err != nil {
		p.metrics.RecordQuestion("error")
		logger.Error("question failed", "session_id", s.ID, "kind", kindName(err), "error", err)
		return nil, len(v.transcript), err
	}

	now := p.now().UTC()
	turns := s.appendTurns(
		models.ConversationTurn{Role: models.RoleUser, Content: answer.Question, Timestamp: now},
		models.ConversationTurn{Role: models.RoleAssistant, Content: answer.Text, Timestamp: now},
	)
	p.metrics.RecordQuestion("success")
	logger.Info("question answered", "session_id", s.ID, "sources", len(answer.Sources), "turns", turns)
	return answer, turns, nil
}

// ClearChat empties the transcript. The document and index are kept.
func (p *Pipeline) ClearChat(s *Session) {
	s.action.Lock()
	defer s.action.Unlock()
	s.clearTranscript()
	s.touch(p.now())
	logger.Info("chat cleared", "session_id", s.ID)
}

func kindName(err error) string {
	if k := apperr.KindOf(err); k != nil {
		return k.Error()
	}
	return "unknown"
}
