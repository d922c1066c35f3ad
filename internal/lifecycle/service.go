package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/knuut/knuut-api/internal/audit"
)

// Service errors.
var (
	// ErrConfirmationRequired indicates the erasure request was submitted
	// without explicit confirmation.
	ErrConfirmationRequired = errors.New("erasure confirmation required")
)

// ServiceConfig holds configuration for creating a Service.
type ServiceConfig struct {
	Repository Repository
	Audit      *audit.Recorder
	Logger     zerolog.Logger

	// Now overrides the clock. Defaults to time.Now. Tests use this to
	// pin the retention arithmetic.
	Now func() time.Time
}

// Service implements the soft-delete transition and status reads over the
// lifecycle state store.
type Service struct {
	repo   Repository
	audit  *audit.Recorder
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new lifecycle service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   cfg.Repository,
		audit:  cfg.Audit,
		logger: cfg.Logger,
		now:    now,
	}
}

// RequestErasure processes a user's right-to-erasure request.
//
// The request must be explicitly confirmed; an already-pending user is
// rejected with ErrErasurePending so the retention clock can never be
// reset by re-submission. On success the user is atomically moved to
// pending-deletion: flags set, retention clock started, AI processing
// disabled. One deletion_request audit entry records the transition.
func (s *Service) RequestErasure(ctx context.Context, userID string, confirmed bool) (*ErasureReceipt, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	requestedAt := s.now().UTC()
	purgeEligibleAt := requestedAt.Add(RetentionPeriod)

	if err := s.repo.RequestErasure(ctx, userID, requestedAt, purgeEligibleAt); err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrErasurePending) {
			return nil, err
		}
		return nil, fmt.Errorf("soft-delete transition: %w", err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Time("purge_eligible_at", purgeEligibleAt).
		Msg("erasure requested, retention clock started")

	s.audit.Record(ctx, &audit.Entry{
		UserID:   &userID,
		Action:   audit.ActionDeletionRequest,
		Resource: "user_data",
		Result:   audit.ResultSuccess,
		Metadata: map[string]any{
			"requested_at":      requestedAt.Format(time.RFC3339),
			"purge_eligible_at": purgeEligibleAt.Format(time.RFC3339),
		},
	})

	return &ErasureReceipt{
		UserID:          userID,
		RequestedAt:     requestedAt,
		PurgeEligibleAt: purgeEligibleAt,
		RetentionNotice: "Data will be retained for 30 days for legal compliance, then permanently deleted.",
		NextSteps: []string{
			"Your account is immediately deactivated",
			"AI processing is disabled for your account",
			"Your data will be anonymized within 24 hours",
			"Complete deletion will occur after 30 days",
		},
		Contact: "If you have questions, contact dpo@knuut.fi",
	}, nil
}

// DeletionStatus reports whether the user has an erasure request pending
// and when the purge is estimated to complete.
func (s *Service) DeletionStatus(ctx context.Context, userID string) (*DeletionStatus, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &DeletionStatus{
		UserID:                u.ID,
		Status:                u.Status(),
		DeletionRequested:     u.DeletionRequested,
		RequestedAt:           u.DeletionRequestedAt,
		EstimatedDeletionDate: u.PurgeEligibleAt,
	}, nil
}
