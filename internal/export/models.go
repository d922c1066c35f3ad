// Package export assembles the full data bundle a user receives when they
// exercise their right of access: everything the platform holds about
// them, from every subsystem, in one human-readable document.
package export

import (
	"time"

	"github.com/knuut/knuut-api/internal/ailog"
	"github.com/knuut/knuut-api/internal/audit"
)

// FormatVersion is the versioned contract of the bundle layout. Bump it on
// any field change so downstream consumers can detect schema drift.
const FormatVersion = "1.0"

// Categories lists the data categories a bundle covers.
var Categories = []string{"profile", "learning", "community", "ai_interactions", "consent", "audit"}

// Bundle is the complete export for one user.
type Bundle struct {
	Profile           ProfileSection   `json:"profile"`
	LearningHistory   LearningSection  `json:"learning_history"`
	CommunityActivity CommunitySection `json:"community_activity"`
	AIInteractions    AISection        `json:"ai_interactions"`
	ConsentHistory    ConsentSection   `json:"consent_history"`
	AuditLog          AuditSection     `json:"audit_logs"`
	Metadata          Metadata         `json:"export_metadata"`
}

// ProfileSection holds identity and profile data.
type ProfileSection struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Country       string     `json:"country"`
	LanguageLevel string     `json:"language_level"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ProfileData   any        `json:"profile_data"`
}

// LearningSection holds integration progress and usage history.
type LearningSection struct {
	IntegrationProgress []ProgressRecord `json:"integration_progress"`
	UsageTracking       []UsageRecord    `json:"usage_tracking"`
	TotalMinutesUsed    int              `json:"total_minutes_used"`
}

// ProgressRecord is one month of integration progress.
type ProgressRecord struct {
	MonthStart        time.Time `json:"current_month_start"`
	SessionsCompleted int       `json:"sessions_completed"`
	MinutesPracticed  int       `json:"minutes_practiced"`
}

// UsageRecord is one usage-tracking row.
type UsageRecord struct {
	Feature     string    `json:"feature"`
	MinutesUsed int       `json:"minutes_used"`
	Timestamp   time.Time `json:"timestamp"`
}

// CommunitySection holds group memberships and event RSVPs.
type CommunitySection struct {
	GroupsJoined []GroupMembership `json:"groups_joined"`
	EventsRSVPed []EventRSVP       `json:"events_rsvped"`
	TotalGroups  int               `json:"total_groups"`
	TotalEvents  int               `json:"total_events"`
}

// GroupMembership is one group the user belongs to.
type GroupMembership struct {
	GroupID  string    `json:"group_id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

// EventRSVP is one event the user responded to.
type EventRSVP struct {
	EventID string    `json:"event_id"`
	Title   string    `json:"title"`
	Status  string    `json:"status"`
	RSVPAt  time.Time `json:"rsvp_at"`
}

// AISection holds the pseudonymized AI interaction history. The join to
// these rows goes through the correlation handle, never the raw
// identifier, and is read-only: no reverse mapping is written back.
type AISection struct {
	Interactions      []*ailog.Interaction `json:"interactions"`
	TotalInteractions int                  `json:"total_interactions"`
	TopicsUsed        []string             `json:"topics_used"`
	TotalTokensUsed   int                  `json:"total_tokens_used"`
	Note              string               `json:"note"`
}

// ConsentSection holds current flags plus the full ledger.
type ConsentSection struct {
	CurrentConsent        CurrentConsent  `json:"current_consent"`
	ConsentLog            []ConsentRecord `json:"consent_logs"`
	DataDeletionRequested bool            `json:"data_deletion_requested"`
}

// CurrentConsent is the projection at export time.
type CurrentConsent struct {
	GDPRConsent             bool       `json:"gdpr_consent"`
	GDPRConsentDate         *time.Time `json:"gdpr_consent_date"`
	AIProcessingConsent     bool       `json:"ai_processing_consent"`
	AIProcessingConsentDate *time.Time `json:"ai_processing_consent_date"`
}

// ConsentRecord is one ledger event in the export.
type ConsentRecord struct {
	Type           string    `json:"consent_type"`
	Granted        bool      `json:"granted"`
	ResearchModule *string   `json:"research_module,omitempty"`
	ConsentDate    time.Time `json:"consent_date"`
}

// AuditSection holds the user's recent audit entries.
type AuditSection struct {
	RecentActions      []*audit.Entry `json:"recent_actions"`
	TotalLoggedActions int            `json:"total_logged_actions"`
}

// Metadata describes the export itself.
type Metadata struct {
	ExportedAt     time.Time `json:"exported_at"`
	FormatVersion  string    `json:"format_version"`
	DataCategories []string  `json:"data_categories"`
	UserID         string    `json:"user_id"`
}
