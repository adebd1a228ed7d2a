package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

func TestGetRateLimits(t *testing.T) {
	tests := []struct {
		tier string
		rpm  int
	}{
		{"free", 10},
		{"tier1", 1000},
		{"tier2", 2000},
		{"unlimited", 0},
		{"bogus", 10},
	}
	for _, tt := range tests {
		if got := getRateLimits(tt.tier).RPM; got != tt.rpm {
			t.Errorf("getRateLimits(%q).RPM = %d, want %d", tt.tier, got, tt.rpm)
		}
	}
}

func TestGuardOpensAfterFailuresAndReportsError(t *testing.T) {
	g := NewGuard("test", "unlimited", nil)
	boom := errors.New("provider down")

	for i := 0; i < 3; i++ {
		if _, err := g.Do(context.Background(), func() (any, error) { return nil, boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: expected provider error, got %v", i, err)
		}
	}
	if g.State() != "open" {
		t.Fatalf("breaker state = %s, want open", g.State())
	}

	called := false
	_, err := g.Do(context.Background(), func() (any, error) {
		called = true
		return "ok", nil
	})
	if called {
		t.Error("fn ran while breaker open")
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
}

func TestGuardIgnoresCallerCancellation(t *testing.T) {
	g := NewGuard("test", "unlimited", nil)
	for i := 0; i < 5; i++ {
		_, _ = g.Do(context.Background(), func() (any, error) { return nil, context.Canceled })
	}
	if g.State() != "closed" {
		t.Errorf("breaker state = %s, want closed", g.State())
	}
}

func TestGuardHonoursCancelledContext(t *testing.T) {
	g := NewGuard("test", "free", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the first token is available immediately; drain it
	_, _ = g.Do(context.Background(), func() (any, error) { return nil, nil })

	if _, err := g.Do(ctx, func() (any, error) { return nil, nil }); err == nil {
		t.Error("expected limiter wait to fail on cancelled context")
	}
}
