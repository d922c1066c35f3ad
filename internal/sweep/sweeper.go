// Package sweep implements the scheduled retention sweep: the batch job
// that finds every user whose 30-day retention window has elapsed and
// invokes the irreversible purge for each of them.
package sweep

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/knuut/knuut-api/internal/audit"
	"github.com/knuut/knuut-api/internal/lifecycle"
)

// CandidateStore lists the users eligible for purge. Satisfied by the
// lifecycle repository.
type CandidateStore interface {
	FindPurgeEligible(ctx context.Context, now time.Time) ([]string, error)
}

// KillSwitch gates sweep execution at runtime. Satisfied by the feature
// flag service.
type KillSwitch interface {
	IsRetentionSweepDisabled(ctx context.Context) bool
}

// Result is the outcome of one sweep run. It is not persisted beyond the
// audit entry that summarizes it.
type Result struct {
	StartedAt time.Time
	Duration  time.Duration

	// Purged holds the identifiers whose purge completed.
	Purged []string

	// Failed holds the identifiers whose purge failed this run. Their
	// lifecycle flags are unchanged, so they remain selectable next run.
	Failed []string

	// Skipped is true when the kill switch suppressed the run.
	Skipped bool
}

// SweeperConfig holds configuration for creating a Sweeper.
type SweeperConfig struct {
	Store  CandidateStore
	Purger lifecycle.Purger
	Audit  *audit.Recorder
	Logger zerolog.Logger

	// Flags is optional; when nil the sweep always runs.
	Flags KillSwitch
}

// Sweeper executes retention sweep runs.
type Sweeper struct {
	store  CandidateStore
	purger lifecycle.Purger
	audit  *audit.Recorder
	logger zerolog.Logger
	flags  KillSwitch
}

// NewSweeper creates a new retention sweeper.
func NewSweeper(cfg SweeperConfig) *Sweeper {
	return &Sweeper{
		store:  cfg.Store,
		purger: cfg.Purger,
		audit:  cfg.Audit,
		logger: cfg.Logger,
		flags:  cfg.Flags,
	}
}

// Run executes one sweep over every candidate eligible at now.
//
// Candidates are processed independently: a purge failure is recorded in
// Failed and the batch continues; nothing short of the candidate query
// itself failing aborts the run. Exactly one audit entry summarizes the
// run. Ordering across candidates carries no guarantee.
func (s *Sweeper) Run(ctx context.Context, now time.Time) (*Result, error) {
	startedAt := time.Now()
	result := &Result{StartedAt: startedAt}

	if s.flags != nil && s.flags.IsRetentionSweepDisabled(ctx) {
		s.logger.Warn().Msg("retention sweep disabled by kill switch, skipping run")
		result.Skipped = true
		return result, nil
	}

	candidates, err := s.store.FindPurgeEligible(ctx, now)
	if err != nil {
		s.logger.Error().Err(err).Msg("retention sweep failed to list candidates")
		s.audit.Record(ctx, &audit.Entry{
			Action:   audit.ActionRetentionSweep,
			Resource: "user_data",
			Result:   audit.ResultFailure,
			Metadata: map[string]any{
				"error":       "candidate query failed",
				"executed_at": now.UTC().Format(time.RFC3339),
			},
		})
		return nil, err
	}

	s.logger.Info().
		Int("candidates", len(candidates)).
		Time("cutoff", now).
		Msg("starting retention sweep")

	for _, userID := range candidates {
		if err := s.purger.Purge(ctx, userID); err != nil {
			s.logger.Error().
				Err(err).
				Str("user_id", userID).
				Msg("purge failed, candidate stays eligible for next run")
			result.Failed = append(result.Failed, userID)
			continue
		}
		result.Purged = append(result.Purged, userID)
	}

	result.Duration = time.Since(startedAt)

	runResult := audit.ResultSuccess
	if len(result.Failed) > 0 {
		runResult = audit.ResultPartialSuccess
	}

	s.audit.Record(ctx, &audit.Entry{
		Action:   audit.ActionRetentionSweep,
		Resource: "user_data",
		Result:   runResult,
		Metadata: map[string]any{
			"deleted_count": len(result.Purged),
			"error_count":   len(result.Failed),
			"deleted_users": result.Purged,
			"errors":        result.Failed,
			"executed_at":   now.UTC().Format(time.RFC3339),
		},
	})

	s.logger.Info().
		Dur("duration", result.Duration).
		Int("purged", len(result.Purged)).
		Int("failed", len(result.Failed)).
		Msg("retention sweep completed")

	return result, nil
}
