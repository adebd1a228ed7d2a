package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"summarysnap/internal/apperr"
	"summarysnap/internal/testutil"
	"summarysnap/models"
)

func buildTestIndex(t *testing.T, emb Embedder, texts ...string) *Index {
	t.Helper()
	ix, err := NewIndexBuilder(emb, 100).Build(context.Background(), "doc", makeChunks("doc", texts...))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return ix
}

func TestRetrieverAnswersFromTopK(t *testing.T) {
	emb := &testutil.FakeEmbedder{}
	gen := &testutil.FakeGenerator{Respond: func(string) (string, error) { return "  Jupiter.  ", nil }}
	ix := buildTestIndex(t, emb,
		"jupiter is the largest planet",
		"mars is red",
		"saturn has rings",
		"the largest moon is ganymede",
		"venus is hot",
	)
	r := NewRetriever(emb, gen, defaultCatalog(t), RetrieverOptions{K: 3})

	history := []models.ConversationTurn{
		{Role: models.RoleUser, Content: "hi"},
		{Role: models.RoleAssistant, Content: "hello"},
	}
	answer, err := r.Answer(context.Background(), ix, history, "which is the largest planet?")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer.Text != "Jupiter." {
		t.Errorf("answer = %q", answer.Text)
	}
	if len(answer.Sources) != 3 {
		t.Fatalf("sources = %d, want 3", len(answer.Sources))
	}
	if answer.Sources[0].Chunk.Text != "jupiter is the largest planet" {
		t.Errorf("top source = %q", answer.Sources[0].Chunk.Text)
	}

	if gen.CallCount() != 1 {
		t.Fatalf("generation calls = %d, want 1", gen.CallCount())
	}
	call := gen.LastCall()
	if len(call.History) != 2 || call.History[1].Content != "hello" {
		t.Errorf("history not forwarded: %+v", call.History)
	}
	if !strings.Contains(call.Prompt, "jupiter is the largest planet") || !strings.Contains(call.Prompt, "which is the largest planet?") {
		t.Errorf("prompt missing context or question: %q", call.Prompt)
	}
}

func TestRetrieverCondensesFollowUps(t *testing.T) {
	emb := &testutil.FakeEmbedder{}
	gen := &testutil.FakeGenerator{Respond: func(p string) (string, error) {
		if strings.Contains(p, "Standalone question:") {
			return "how many rings does saturn have?", nil
		}
		return "Many.", nil
	}}
	ix := buildTestIndex(t, emb, "jupiter is big", "saturn has many rings", "mars is red")
	r := NewRetriever(emb, gen, defaultCatalog(t), RetrieverOptions{K: 1, CondenseQuestion: true})

	history := []models.ConversationTurn{
		{Role: models.RoleUser, Content: "tell me about saturn"},
		{Role: models.RoleAssistant, Content: "it is a gas giant"},
	}
	answer, err := r.Answer(context.Background(), ix, history, "how many does it have?")
	if err != nil {
		t.Fatal(err)
	}
	if gen.CallCount() != 2 {
		t.Errorf("calls = %d, want condense + answer", gen.CallCount())
	}
	if answer.Question != "how many does it have?" {
		t.Errorf("answer should keep the user's wording, got %q", answer.Question)
	}
	if answer.Sources[0].Chunk.Text != "saturn has many rings" {
		t.Errorf("retrieval did not use the standalone question: %q", answer.Sources[0].Chunk.Text)
	}

	// first question has no history, so nothing to condense
	if _, err := r.Answer(context.Background(), ix, nil, "what is red?"); err != nil {
		t.Fatal(err)
	}
	if gen.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", gen.CallCount())
	}
}

func TestRetrieverErrors(t *testing.T) {
	emb := &testutil.FakeEmbedder{}
	gen := &testutil.FakeGenerator{}
	r := NewRetriever(emb, gen, defaultCatalog(t), RetrieverOptions{})
	ix := buildTestIndex(t, emb, "some text")

	if _, err := r.Answer(context.Background(), nil, nil, "q"); !errors.Is(err, apperr.ErrRetrieval) {
		t.Errorf("no index: expected ErrRetrieval, got %v", err)
	}
	if _, err := r.Answer(context.Background(), ix, nil, "   "); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("blank question: expected ErrInvalidInput, got %v", err)
	}

	emb.SetErr(errors.New("embed down"))
	if _, err := r.Answer(context.Background(), ix, nil, "q"); !errors.Is(err, apperr.ErrEmbedding) {
		t.Errorf("embedding failure: expected ErrEmbedding, got %v", err)
	}
	emb.SetErr(nil)

	gen.SetRespond(func(string) (string, error) { return "", errors.New("llm down") })
	if _, err := r.Answer(context.Background(), ix, nil, "q"); !errors.Is(err, apperr.ErrGeneration) {
		t.Errorf("generation failure: expected ErrGeneration, got %v", err)
	}
}
