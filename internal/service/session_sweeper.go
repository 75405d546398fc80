package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Isaac-1-lang/Ecommerce/internal/domain"
)

const DefaultSweepInterval = time.Minute

// SessionSweeper periodically deletes expired sessions. Lookups already
// ignore them, so the sweep only reclaims storage.
type SessionSweeper struct {
	sessions domain.SessionRepository
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewSessionSweeper(sessions domain.SessionRepository, interval time.Duration, logger *slog.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &SessionSweeper{
		sessions: sessions,
		logger:   logger.With("component", "session_sweeper"),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

func (s *SessionSweeper) Start(ctx context.Context) {
	s.logger.Info("Starting session sweeper", "interval", s.interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run(ctx)
	}()
}

func (s *SessionSweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
	s.logger.Info("Session sweeper stopped")
}

// Run sweeps once per interval until ctx is cancelled or Stop is called.
func (s *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *SessionSweeper) SweepOnce(ctx context.Context) int64 {
	removed, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.logger.Warn("Failed to delete expired sessions", "error", err)
		return 0
	}
	if removed > 0 {
		s.logger.Debug("Expired sessions deleted", "count", removed)
	}
	return removed
}
