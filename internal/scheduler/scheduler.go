package scheduler

import (
	"context"
	"log/slog"
	"time"

	"premise_fetcher/internal/domain"
)

// Syncer re-extracts every registered source.
type Syncer interface {
	SyncAll(ctx context.Context) (*domain.SyncStats, error)
}

// DefaultRunTimeout bounds a single sync pass.
const DefaultRunTimeout = 5 * time.Minute

type Scheduler struct {
	syncer     Syncer
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(syncer Syncer, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	if runTimeout <= 0 {
		runTimeout = DefaultRunTimeout
	}
	return &Scheduler{
		syncer:     syncer,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Start runs a sync immediately and then once per interval until ctx is done.
// A non-positive interval disables periodic syncing and Start returns at once.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("scheduler disabled")
		return nil
	}
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runSync(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runSync(ctx)
		}
	}
}

func (s *Scheduler) runSync(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	stats, err := s.syncer.SyncAll(syncCtx)
	if err != nil {
		s.logger.Error("sync failed", "error", err)
		return
	}
	s.logger.Info("sync finished",
		"sources", stats.Sources,
		"inserted", stats.Inserted,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)
}
