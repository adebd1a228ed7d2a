package utils

import (
	"context"
	"time"
)

const (
	// LongTimeout bounds a whole pipeline action (upload, summary, question)
	LongTimeout = 10 * time.Minute

	// ShortTimeout is for quick operations (rate limit counters, etc.)
	ShortTimeout = 2 * time.Second
)

// WithLongTimeout creates a context with long timeout for pipeline actions
func WithLongTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, LongTimeout)
}

// WithShortTimeout creates a context with short timeout for quick operations
func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, ShortTimeout)
}
