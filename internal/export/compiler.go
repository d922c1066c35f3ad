package export

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/knuut/knuut-api/internal/ailog"
	"github.com/knuut/knuut-api/internal/audit"
	"github.com/knuut/knuut-api/internal/consent"
	"github.com/knuut/knuut-api/internal/lifecycle"
	"github.com/knuut/knuut-api/internal/privacy"
)

// auditEntryLimit caps how many audit entries the bundle carries.
const auditEntryLimit = 100

// CompilerConfig holds configuration for creating a Compiler.
type CompilerConfig struct {
	Lifecycle    lifecycle.Repository
	Consents     *consent.Service
	Interactions ailog.Repository
	AuditLog     audit.Repository
	Store        Store
	Audit        *audit.Recorder
	Logger       zerolog.Logger
}

// Compiler assembles export bundles from every subsystem that holds data
// about a user.
type Compiler struct {
	lifecycle    lifecycle.Repository
	consents     *consent.Service
	interactions ailog.Repository
	auditLog     audit.Repository
	store        Store
	audit        *audit.Recorder
	logger       zerolog.Logger
}

// NewCompiler creates a new export compiler.
func NewCompiler(cfg CompilerConfig) *Compiler {
	return &Compiler{
		lifecycle:    cfg.Lifecycle,
		consents:     cfg.Consents,
		interactions: cfg.Interactions,
		auditLog:     cfg.AuditLog,
		store:        cfg.Store,
		audit:        cfg.Audit,
		logger:       cfg.Logger,
	}
}

// Export builds the complete data bundle for one user.
//
// AI interactions are joined through the pseudonymized correlation handle;
// the join is derived and read-only, no reverse mapping is persisted. A
// user with zero interactions gets an empty list and a zero token total,
// not an error. On success one data_export audit entry is written and the
// export is registered.
func (c *Compiler) Export(ctx context.Context, userID string) (*Bundle, error) {
	user, err := c.lifecycle.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	progress, err := c.store.IntegrationProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export learning history: %w", err)
	}
	usage, err := c.store.UsageTracking(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export usage tracking: %w", err)
	}
	groups, err := c.store.Groups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export community groups: %w", err)
	}
	events, err := c.store.Events(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export community events: %w", err)
	}

	interactions, err := c.interactions.ListByHash(ctx, privacy.Pseudonymize(userID))
	if err != nil {
		return nil, fmt.Errorf("export ai interactions: %w", err)
	}
	if interactions == nil {
		interactions = []*ailog.Interaction{}
	}

	history, err := c.consents.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("export consent history: %w", err)
	}

	auditEntries, err := c.auditLog.ListByUser(ctx, userID, auditEntryLimit)
	if err != nil {
		return nil, fmt.Errorf("export audit entries: %w", err)
	}
	if auditEntries == nil {
		auditEntries = []*audit.Entry{}
	}

	exportedAt := time.Now().UTC()

	bundle := &Bundle{
		Profile: ProfileSection{
			ID:            user.ID,
			Email:         user.Email,
			Name:          user.Name,
			Country:       user.Country,
			LanguageLevel: user.LanguageLevel,
			CreatedAt:     user.CreatedAt,
			UpdatedAt:     user.UpdatedAt,
		},
		LearningHistory: LearningSection{
			IntegrationProgress: emptyIfNil(progress),
			UsageTracking:       emptyIfNil(usage),
			TotalMinutesUsed:    totalMinutes(usage),
		},
		CommunityActivity: CommunitySection{
			GroupsJoined: emptyIfNil(groups),
			EventsRSVPed: emptyIfNil(events),
			TotalGroups:  len(groups),
			TotalEvents:  len(events),
		},
		AIInteractions: AISection{
			Interactions:      interactions,
			TotalInteractions: len(interactions),
			TopicsUsed:        distinctTopics(interactions),
			TotalTokensUsed:   totalTokens(interactions),
			Note:              "User IDs are pseudonymized in AI interaction logs for privacy",
		},
		ConsentHistory: ConsentSection{
			CurrentConsent: CurrentConsent{
				GDPRConsent:             user.GDPRConsent,
				GDPRConsentDate:         user.GDPRConsentAt,
				AIProcessingConsent:     user.AIProcessingConsent,
				AIProcessingConsentDate: user.AIProcessingConsentAt,
			},
			ConsentLog:            toConsentRecords(history),
			DataDeletionRequested: user.DeletionRequested,
		},
		AuditLog: AuditSection{
			RecentActions:      auditEntries,
			TotalLoggedActions: len(auditEntries),
		},
		Metadata: Metadata{
			ExportedAt:     exportedAt,
			FormatVersion:  FormatVersion,
			DataCategories: Categories,
			UserID:         userID,
		},
	}

	if err := c.store.RecordExport(ctx, userID, "json", Categories, exportedAt); err != nil {
		// The bundle was assembled; losing the register row degrades
		// bookkeeping, not the user's right of access.
		c.logger.Error().Err(err).Str("user_id", userID).Msg("failed to register data export")
	}

	c.audit.Record(ctx, &audit.Entry{
		UserID:   &userID,
		Action:   audit.ActionDataExport,
		Resource: "user_data",
		Result:   audit.ResultSuccess,
		Metadata: map[string]any{
			"exported_at": exportedAt.Format(time.RFC3339),
			"format":      "json",
		},
	})

	return bundle, nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func totalMinutes(usage []UsageRecord) int {
	sum := 0
	for _, u := range usage {
		sum += u.MinutesUsed
	}
	return sum
}

func totalTokens(interactions []*ailog.Interaction) int {
	sum := 0
	for _, in := range interactions {
		if in.TokensUsed != nil {
			sum += *in.TokensUsed
		}
	}
	return sum
}

func distinctTopics(interactions []*ailog.Interaction) []string {
	seen := make(map[string]struct{})
	topics := []string{}
	for _, in := range interactions {
		if in.Topic == "" {
			continue
		}
		if _, ok := seen[in.Topic]; ok {
			continue
		}
		seen[in.Topic] = struct{}{}
		topics = append(topics, in.Topic)
	}
	return topics
}

func toConsentRecords(events []*consent.Event) []ConsentRecord {
	records := make([]ConsentRecord, 0, len(events))
	for _, e := range events {
		records = append(records, ConsentRecord{
			Type:           string(e.Type),
			Granted:        e.Granted,
			ResearchModule: e.ResearchModule,
			ConsentDate:    e.CreatedAt,
		})
	}
	return records
}
