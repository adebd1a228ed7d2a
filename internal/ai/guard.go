package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"summarysnap/internal/logger"
	"summarysnap/internal/telemetry"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

type RateLimits struct {
	RPM int // Requests per minute
	TPM int // Tokens per minute
	RPD int // Requests per day
}

// getRateLimits maps a provider tier to its published quota. "unlimited"
// disables client side limiting.
func getRateLimits(tier string) RateLimits {
	switch tier {
	case "free":
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	case "tier1":
		return RateLimits{RPM: 1000, TPM: 1000000, RPD: 10000}
	case "tier2":
		return RateLimits{RPM: 2000, TPM: 4000000, RPD: 50000}
	case "unlimited":
		return RateLimits{}
	default:
		return RateLimits{RPM: 10, TPM: 250000, RPD: 250}
	}
}

// Guard wraps every provider call with a rate limiter and a circuit breaker.
// An open breaker is returned to the caller as an error.
type Guard struct {
	name    string
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewGuard(name, tier string, metrics *telemetry.Metrics) *Guard {
	limits := getRateLimits(tier)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		// A caller giving up is not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
			metrics.RecordCircuitBreakerState(name, to.String())
		},
	})

	// RPM limit with some buffer
	limiter := rate.NewLimiter(rate.Inf, 0)
	if limits.RPM > 0 {
		burst := limits.RPM / 10
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(limits.RPM)*0.9/60.0), burst)
	}

	return &Guard{name: name, breaker: breaker, limiter: limiter}
}

// Do waits for a rate limiter slot and runs fn through the breaker.
func (g *Guard) Do(ctx context.Context, fn func() (any, error)) (any, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s rate limiter: %w", g.name, err)
	}

	result, err := g.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s unavailable: %w", g.name, err)
	}
	return result, err
}

// State reports the breaker state, e.g. "closed" or "open".
func (g *Guard) State() string {
	return g.breaker.State().String()
}
