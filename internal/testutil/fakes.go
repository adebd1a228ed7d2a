package testutil

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"unicode"

	"summarysnap/internal/apperr"
	"summarysnap/models"
)

// EmbedDim is the vector size produced by FakeEmbedder.
const EmbedDim = 64

// FakeEmbedder hashes lowercase words into a fixed-size bag-of-words vector,
// so texts sharing words are close under cosine similarity.
type FakeEmbedder struct {
	mu         sync.Mutex
	Err        error // returned by every call when set
	BatchCalls int
	QueryCalls int
	Texts      int
}

func (f *FakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.BatchCalls++
	f.Texts += len(texts)
	err := f.Err
	f.mu.Unlock()
	if err != nil {
		return nil, apperr.New(apperr.ErrEmbedding, "fake.embed_documents", err)
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = HashVector(t)
	}
	return out, nil
}

func (f *FakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.QueryCalls++
	err := f.Err
	f.mu.Unlock()
	if err != nil {
		return nil, apperr.New(apperr.ErrEmbedding, "fake.embed_query", err)
	}
	return HashVector(text), nil
}

// SetErr swaps the injected failure.
func (f *FakeEmbedder) SetErr(err error) {
	f.mu.Lock()
	f.Err = err
	f.mu.Unlock()
}

// HashVector is the embedding FakeEmbedder produces for text.
func HashVector(text string) []float32 {
	vec := make([]float32, EmbedDim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%EmbedDim]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	n := float32(math.Sqrt(norm))
	for i := range vec {
		vec[i] /= n
	}
	return vec
}

// ChatCall records one generation request.
type ChatCall struct {
	History []models.ConversationTurn
	Prompt  string
}

// FakeGenerator answers every prompt through Respond. The default response
// is "summary(<n> chars)" for prompt length n.
type FakeGenerator struct {
	mu      sync.Mutex
	Respond func(prompt string) (string, error)
	Calls   []ChatCall
}

func (f *FakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.Chat(ctx, nil, prompt)
}

func (f *FakeGenerator) Chat(ctx context.Context, history []models.ConversationTurn, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperr.New(apperr.ErrGeneration, "fake.chat", err)
	}

	f.mu.Lock()
	f.Calls = append(f.Calls, ChatCall{
		History: append([]models.ConversationTurn(nil), history...),
		Prompt:  prompt,
	})
	respond := f.Respond
	f.mu.Unlock()

	if respond == nil {
		return fmt.Sprintf("summary(%d chars)", len(prompt)), nil
	}
	out, err := respond(prompt)
	if err != nil {
		return "", apperr.New(apperr.ErrGeneration, "fake.chat", err)
	}
	return out, nil
}

// CallCount returns the number of generation requests seen so far.
func (f *FakeGenerator) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// LastCall returns the most recent request.
func (f *FakeGenerator) LastCall() ChatCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return ChatCall{}
	}
	return f.Calls[len(f.Calls)-1]
}

// SetRespond swaps the response function.
func (f *FakeGenerator) SetRespond(fn func(prompt string) (string, error)) {
	f.mu.Lock()
	f.Respond = fn
	f.mu.Unlock()
}
