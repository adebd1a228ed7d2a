package services

import (
	"fmt"
	"time"

	"summarysnap/internal/logger"

	"github.com/go-co-op/gocron"
)

const sweepTag = "session-sweep"

// SessionSweeper periodically destroys idle sessions.
type SessionSweeper struct {
	scheduler *gocron.Scheduler
	store     *SessionStore
	interval  time.Duration
}

func NewSessionSweeper(store *SessionStore, interval time.Duration) *SessionSweeper {
	s := gocron.NewScheduler(time.UTC)
	s.TagsUnique()

	return &SessionSweeper{
		scheduler: s,
		store:     store,
		interval:  interval,
	}
}

// Start schedules the sweep and runs the scheduler in the background.
func (s *SessionSweeper) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("session sweep interval must be positive, got %s", s.interval)
	}
	if _, err := s.scheduler.Every(s.interval).Tag(sweepTag).Do(s.sweep); err != nil {
		return fmt.Errorf("schedule session sweep: %w", err)
	}
	s.scheduler.StartAsync()
	logger.Info("session sweeper started", "interval", s.interval.String(), "ttl", s.store.TTL().String())
	return nil
}

func (s *SessionSweeper) Stop() {
	s.scheduler.Stop()
	logger.Info("session sweeper stopped")
}

func (s *SessionSweeper) sweep() {
	removed := s.store.Sweep()
	logger.Debug("session sweep finished", "removed", removed, "active", s.store.Len())
}
