package apperr

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	cause := context.DeadlineExceeded
	err := New(ErrEmbedding, "index.build", cause)

	if !errors.Is(err, ErrEmbedding) {
		t.Errorf("expected error to match ErrEmbedding")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected error to match its cause")
	}
	if errors.Is(err, ErrGeneration) {
		t.Errorf("did not expect error to match ErrGeneration")
	}
	if !strings.Contains(err.Error(), "index.build") {
		t.Errorf("expected op in message, got %q", err.Error())
	}
}

func TestNewKeepsExistingKind(t *testing.T) {
	inner := New(ErrGeneration, "summarize.map", errors.New("boom"))
	outer := New(ErrGeneration, "summarize", inner)
	if outer != inner {
		t.Errorf("expected same-kind wrap to return inner error unchanged")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"plain", errors.New("x"), nil},
		{"load", New(ErrLoad, "load", nil), ErrLoad},
		{"retrieval wrapped", Errorf(ErrRetrieval, "ask", "no index"), ErrRetrieval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}
