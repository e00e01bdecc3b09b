package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/qaboard/internal/qa/store"
)

// HousekeepingService periodically retires expired one-time passwords and
// invitation codes.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh   chan struct{}
	doneCh   chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// NewHousekeepingService returns a stopped worker. A non-positive interval
// defaults to one hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to end it.
// Starting twice, or after Stop, is a no-op.
func (s *HousekeepingService) Start() {
	select {
	case <-s.stopCh:
		return
	default:
	}
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until an in-flight cleanup has finished. It returns at once
// when the worker was never started, and later calls do nothing.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.started.Load() {
			<-s.doneCh
		}
		s.Logger.Info("housekeeping service stopped")
	})
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// CleanupReport counts the records retired by one Cleanup pass.
type CleanupReport struct {
	OTPs        int64
	Invitations int64
}

// Cleanup runs one pass. Each purge is independent; a failure in one does
// not stop the other.
func (s *HousekeepingService) Cleanup(ctx context.Context) CleanupReport {
	now := clock(s.Now)
	var rep CleanupReport

	n, err := s.Store.Users().PurgeExpiredOTPs(ctx, now)
	if err != nil {
		s.Logger.Error("failed to purge expired one-time passwords", "error", err)
	} else {
		rep.OTPs = n
	}

	n, err = s.Store.Invitations().PurgeExpired(ctx, now)
	if err != nil {
		s.Logger.Error("failed to purge expired invitations", "error", err)
	} else {
		rep.Invitations = n
	}

	s.Logger.Info("housekeeping cleanup completed",
		"otps", rep.OTPs,
		"invitations", rep.Invitations,
	)
	return rep
}
