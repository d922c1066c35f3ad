// Package audit provides the append-only compliance audit trail.
//
// Every state-changing operation in the privacy core writes one entry:
// consent changes, deletion requests, retention sweep runs, and data
// exports. Entries are never updated or deleted.
package audit

import (
	"time"
)

// Action identifies the kind of operation an entry records.
type Action string

// Audit actions written by the privacy core.
const (
	ActionConsentChange    Action = "consent_change"
	ActionResearchConsent  Action = "research_consent"
	ActionDeletionRequest  Action = "deletion_request"
	ActionRetentionSweep   Action = "retention_sweep"
	ActionDataExport       Action = "data_export"
)

// Result classifies the outcome of the recorded operation.
type Result string

// Audit results.
const (
	ResultSuccess        Result = "success"
	ResultPartialSuccess Result = "partial_success"
	ResultFailure        Result = "failure"
)

// Entry is a single append-only audit record.
type Entry struct {
	// ID is the entry identifier (format: aud_XXXX).
	ID string

	// UserID references the acting user. Nil for system-triggered
	// operations such as the retention sweep.
	UserID *string

	// Action is the operation kind.
	Action Action

	// Resource names the resource class the operation touched.
	Resource string

	// Result is the operation outcome.
	Result Result

	// Metadata carries structured context for compliance review.
	// Serialized as JSON by the repository.
	Metadata map[string]any

	// CreatedAt is when the entry was written.
	CreatedAt time.Time
}
