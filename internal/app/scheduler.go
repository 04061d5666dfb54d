package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionEvicter drops dialog sessions idle for longer than ttl.
type SessionEvicter interface {
	EvictIdle(ttl time.Duration) int
}

// Scheduler runs background housekeeping.
type Scheduler struct {
	sessions SessionEvicter
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	done     chan struct{}
}

func NewScheduler(sessions SessionEvicter, ttl time.Duration, logger *zap.Logger) *Scheduler {
	interval := ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Scheduler{
		sessions: sessions,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the session sweep in the background.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))
	go s.runSessionSweep(ctx)
}

// Stop halts the sweep and waits for it to return.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
	<-s.done
}

func (s *Scheduler) runSessionSweep(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopChan:
			s.logger.Info("Session sweep stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Session sweep cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep() {
	if n := s.sessions.EvictIdle(s.ttl); n > 0 {
		s.logger.Info("Evicted idle sessions", zap.Int("count", n))
	}
}
