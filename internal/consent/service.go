package consent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/knuut/knuut-api/internal/audit"
)

// Service errors.
var (
	// ErrInvalidType indicates an unrecognized consent category.
	ErrInvalidType = errors.New("invalid consent type")
)

// ServiceConfig holds configuration for creating a Service.
type ServiceConfig struct {
	Repository Repository
	Audit      *audit.Recorder
	Logger     zerolog.Logger
}

// Service carries the consent ledger rules: history is append-only, the
// projection follows the latest event, and reads default to deny.
type Service struct {
	repo   Repository
	audit  *audit.Recorder
	logger zerolog.Logger
}

// NewService creates a new consent service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:   cfg.Repository,
		audit:  cfg.Audit,
		logger: cfg.Logger,
	}
}

// RecordConsent appends a grant or revoke event for a consent category and
// updates the projection transactionally. One consent_change audit entry is
// written per call.
func (s *Service) RecordConsent(ctx context.Context, userID string, typ Type, granted bool) (*Event, error) {
	if typ != TypeGDPR && typ != TypeAIProcessing {
		return nil, ErrInvalidType
	}

	event := &Event{
		ID:        "cns_" + uuid.New().String()[:22],
		UserID:    userID,
		Type:      typ,
		Granted:   granted,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("record consent: %w", err)
	}

	s.audit.Record(ctx, &audit.Entry{
		UserID:   &userID,
		Action:   audit.ActionConsentChange,
		Resource: "user_consent",
		Result:   audit.ResultSuccess,
		Metadata: map[string]any{
			"consent_type": string(typ),
			"granted":      granted,
			"recorded_at":  event.CreatedAt.Format(time.RFC3339),
		},
	})

	return event, nil
}

// RecordResearchConsent appends a research-participation opt-in or opt-out
// for a named module.
func (s *Service) RecordResearchConsent(ctx context.Context, userID, module string, consented bool) (*Event, error) {
	if module == "" {
		return nil, ErrInvalidType
	}

	event := &Event{
		ID:             "cns_" + uuid.New().String()[:22],
		UserID:         userID,
		Type:           TypeResearch,
		Granted:        consented,
		ResearchModule: &module,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.repo.AppendEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("record research consent: %w", err)
	}

	s.audit.Record(ctx, &audit.Entry{
		UserID:   &userID,
		Action:   audit.ActionResearchConsent,
		Resource: "research_participation",
		Result:   audit.ResultSuccess,
		Metadata: map[string]any{
			"research_module": module,
			"consented":       consented,
			"recorded_at":     event.CreatedAt.Format(time.RFC3339),
		},
	})

	return event, nil
}

// CurrentConsent returns the consent projection for a user. Unknown users
// and users without any ledger read as nothing-granted. A user with a
// pending deletion request reads AIProcessing=false regardless of prior
// grants; the soft-delete transition revokes the stored projection, and
// this check holds the invariant even against a stale row.
func (s *Service) CurrentConsent(ctx context.Context, userID string) (Flags, error) {
	flags, err := s.repo.CurrentFlags(ctx, userID)
	if err != nil {
		return Flags{}, fmt.Errorf("current consent: %w", err)
	}
	if flags.DataDeletionRequested {
		flags.AIProcessing = false
	}
	return flags, nil
}

// History returns the full consent ledger for a user, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]*Event, error) {
	return s.repo.History(ctx, userID)
}
