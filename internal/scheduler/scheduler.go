package scheduler

import (
	"context"
	"log/slog"
	"time"

	"headlines/internal/domain"
)

const defaultRunTimeout = time.Minute

// Syncer runs one load.
type Syncer interface {
	Sync(ctx context.Context) (*domain.LoadStats, error)
}

type Scheduler struct {
	syncer   Syncer
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewScheduler returns a scheduler that runs syncer every interval, bounding
// each run by timeout. A non-positive timeout means one minute.
func NewScheduler(syncer Syncer, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	return &Scheduler{
		syncer:   syncer,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start runs a load immediately and then on every tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval, "timeout", s.timeout)

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
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.syncer.Sync(runCtx); err != nil {
		s.logger.Error("load failed", "error", err)
	}
}
