package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/knuut/knuut-api/internal/sweep"
)

// SweepRunner runs one retention sweep pass.
type SweepRunner interface {
	Run(ctx context.Context, now time.Time) (*sweep.Result, error)
}

// Scheduler runs the retention sweep on a fixed interval. It is the
// fallback path for environments without an external cron scheduler;
// when both are configured the sweep's idempotency makes the overlap
// harmless.
type Scheduler struct {
	runner SweepRunner
	config Config
	logger zerolog.Logger
}

// SchedulerConfig holds configuration for the Scheduler.
type SchedulerConfig struct {
	Runner SweepRunner
	Config Config
	Logger zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	return &Scheduler{
		runner: cfg.Runner,
		config: cfg.Config.withDefaults(),
		logger: cfg.Logger,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info().
		Dur("interval", s.config.Interval).
		Bool("run_on_start", s.config.RunOnStart).
		Msg("starting retention sweep scheduler")

	if s.config.RunOnStart {
		s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("retention sweep scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce executes a single sweep pass with the configured timeout.
// A failed pass is logged, not fatal: the next tick retries, and the
// sweep never purges the same user twice.
func (s *Scheduler) RunOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	result, err := s.runner.Run(runCtx, time.Now().UTC())
	if err != nil {
		s.logger.Error().Err(err).Msg("scheduled retention sweep failed")
		return
	}

	event := s.logger.Info().
		Dur("duration", result.Duration).
		Int("purged", len(result.Purged)).
		Int("failed", len(result.Failed))
	if result.Skipped {
		event = event.Bool("skipped", true)
	}
	event.Msg("scheduled retention sweep completed")
}
