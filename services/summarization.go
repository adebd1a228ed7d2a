package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"summarysnap/internal/apperr"
	"summarysnap/internal/logger"
	"summarysnap/internal/prompts"
	"summarysnap/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidInput marks requests rejected before any provider call.
var ErrInvalidInput = errors.New("invalid input")

// maxCollapseRounds bounds the intermediate reduce passes.
const maxCollapseRounds = 5

// Summarizer produces map-reduce summaries of a chunk set.
type Summarizer struct {
	gen            Generator
	catalog        *prompts.Catalog
	concurrency    int
	reduceMaxChars int
}

func NewSummarizer(gen Generator, catalog *prompts.Catalog, concurrency, reduceMaxChars int) *Summarizer {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Summarizer{
		gen:            gen,
		catalog:        catalog,
		concurrency:    concurrency,
		reduceMaxChars: reduceMaxChars,
	}
}

// Summarize summarises every chunk with the style template, then combines the
// partial summaries with the same template. Any failed call aborts the whole
// summary with apperr.ErrGeneration.
func (s *Summarizer) Summarize(ctx context.Context, chunks []models.Chunk, styleName models.SummaryStyle) (string, error) {
	style, ok := s.catalog.Style(styleName)
	if !ok {
		return "", fmt.Errorf("%w: unknown summary style %q (known: %s)",
			ErrInvalidInput, styleName, strings.Join(s.catalog.StyleNames(), ", "))
	}
	if len(chunks) == 0 {
		return "", apperr.Errorf(apperr.ErrRetrieval, "summarize", "no processed document")
	}

	ctx, span := otel.Tracer("summarizer").Start(ctx, "summarize")
	defer span.End()
	span.SetAttributes(
		attribute.String("summary.style", string(style.Name)),
		attribute.Int("summary.chunks", len(chunks)),
	)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	partials, err := s.mapAll(ctx, style, texts, "summarize.map")
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	summary, err := s.reduce(ctx, style, partials)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return trimLines(summary, style.MaxLines), nil
}

// mapAll runs one generation per text with bounded parallelism. Results keep
// input order. The first failure cancels the calls still running.
func (s *Summarizer) mapAll(ctx context.Context, style prompts.Style, texts []string, op string) ([]string, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	results := make([]string, len(texts))
	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return apperr.New(apperr.ErrGeneration, op, err)
			}
			out, err := s.generate(gctx, style, text, op)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// reduce combines partial summaries. While their concatenation is over the
// configured bound, partials are grouped under it and collapsed first.
func (s *Summarizer) reduce(ctx context.Context, style prompts.Style, partials []string) (string, error) {
	for round := 0; ; round++ {
		joined := strings.Join(partials, "\n\n")
		if s.reduceMaxChars <= 0 || len(partials) == 1 || utf8.RuneCountInString(joined) <= s.reduceMaxChars {
			return s.generate(ctx, style, joined, "summarize.reduce")
		}
		if round == maxCollapseRounds {
			logger.Warn("summary reduce input still over bound",
				"chars", utf8.RuneCountInString(joined), "bound", s.reduceMaxChars, "partials", len(partials))
			return s.generate(ctx, style, joined, "summarize.reduce")
		}

		groups := groupUnder(partials, s.reduceMaxChars)
		logger.Debug("collapsing partial summaries", "partials", len(partials), "groups", len(groups), "round", round)

		collapsed, err := s.mapAll(ctx, style, groups, "summarize.collapse")
		if err != nil {
			return "", err
		}
		partials = collapsed
	}
}

func (s *Summarizer) generate(ctx context.Context, style prompts.Style, text, op string) (string, error) {
	prompt, err := style.Render(text)
	if err != nil {
		return "", apperr.New(apperr.ErrGeneration, op, err)
	}
	out, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		return "", apperr.New(apperr.ErrGeneration, op, err)
	}
	return strings.TrimSpace(out), nil
}

// groupUnder packs consecutive texts into groups whose "\n\n"-joined length
// stays within limit. A text longer than limit forms its own group.
func groupUnder(texts []string, limit int) []string {
	var (
		groups []string
		cur    []string
		size   int
	)
	for _, t := range texts {
		n := utf8.RuneCountInString(t)
		extra := n
		if len(cur) > 0 {
			extra += 2
		}
		if len(cur) > 0 && size+extra > limit {
			groups = append(groups, strings.Join(cur, "\n\n"))
			cur, size, extra = nil, 0, n
		}
		cur = append(cur, t)
		size += extra
	}
	if len(cur) > 0 {
		groups = append(groups, strings.Join(cur, "\n\n"))
	}
	return groups
}

// trimLines keeps at most maxLines non-empty lines. Zero means no bound.
func trimLines(text string, maxLines int) string {
	text = strings.TrimSpace(text)
	if maxLines <= 0 {
		return text
	}
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t\r"))
		if len(kept) == maxLines {
			break
		}
	}
	return strings.Join(kept, "\n")
}
