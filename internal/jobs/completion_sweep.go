// Package jobs schedules background work with cron expressions.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper is the completion sweep use case.
type Sweeper interface {
	Execute(ctx context.Context) (int, error)
}

type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler registers the completion sweep on a cron expression. Overlapping
// runs are skipped rather than queued.
func NewScheduler(spec string, sweep Sweeper, timeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		n, err := sweep.Execute(ctx)
		if err != nil {
			logger.Error("completion sweep failed", "err", err)
			return
		}
		logger.Debug("completion sweep done", "completed", n)
	})
	if err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron scheduler started")
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
