package service

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper removes expired provider state. Providers that keep no local
// state can skip housekeeping entirely.
type Sweeper interface {
	SweepExpiredSessions(ctx context.Context) (int64, error)
}

// HousekeepingService periodically sweeps expired provider sessions so the
// directory store does not grow without bound.
type HousekeepingService struct {
	Sweeper  Sweeper
	Logger   *slog.Logger
	Interval time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(sweeper Sweeper, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Sweeper:  sweeper,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs the sweep.
// This is non-blocking and should be called after the provider is started.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress sweep.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

// run is the main background worker loop.
func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep performs the actual deletion of expired sessions. A failed sweep is
// logged and retried on the next tick.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	removed, err := s.Sweeper.SweepExpiredSessions(ctx)
	if err != nil {
		s.Logger.Error("failed to sweep expired sessions", "error", err)
		return
	}
	if removed > 0 {
		s.Logger.Info("swept expired sessions", "removed", removed)
	}
}
