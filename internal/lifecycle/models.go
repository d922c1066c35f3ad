// Package lifecycle owns the authoritative erasure state of every user:
// active, pending deletion, or purged. It implements the soft-delete
// transition that a user-facing erasure request triggers and defines the
// purge contract the retention sweeper executes against.
//
// Invariants held by this package:
//   - DeletionRequestedAt is non-nil if and only if DeletionRequested is true.
//   - PurgeEligibleAt is always DeletionRequestedAt + RetentionPeriod once
//     set, and is never moved earlier. Repeating an erasure request is
//     rejected rather than restarting the clock.
package lifecycle

import (
	"time"
)

// RetentionPeriod is the legally mandated window between a deletion request
// and eligibility for irreversible purge.
const RetentionPeriod = 30 * 24 * time.Hour

// Status describes a user's erasure state.
type Status string

// Erasure states.
const (
	StatusActive          Status = "active"
	StatusPendingDeletion Status = "pending_deletion"
)

// User is the lifecycle record for one user. The profile fields mirror what
// the platform stores about the person; the consent flags are the current
// projection maintained by the consent ledger.
type User struct {
	// ID is the unique user identifier (format: usr_XXXX).
	ID string

	Email         string
	Name          string
	Country       string
	LanguageLevel string

	// Current consent projection. The append-only history lives in the
	// consent ledger; these flags are what gate processing right now.
	GDPRConsent           bool
	GDPRConsentAt         *time.Time
	AIProcessingConsent   bool
	AIProcessingConsentAt *time.Time

	// Erasure state.
	DeletionRequested   bool
	DeletionRequestedAt *time.Time
	PurgeEligibleAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Status returns the user's erasure state.
func (u *User) Status() Status {
	if u.DeletionRequested {
		return StatusPendingDeletion
	}
	return StatusActive
}

// ErasureReceipt is returned to the user after a successful soft-delete
// transition.
type ErasureReceipt struct {
	UserID          string
	RequestedAt     time.Time
	PurgeEligibleAt time.Time

	// RetentionNotice explains the retention window in plain language.
	RetentionNotice string

	// NextSteps is the human-readable checklist of what happens next.
	NextSteps []string

	// Contact is where the user can direct questions.
	Contact string
}

// DeletionStatus reports the erasure state of a user on request.
type DeletionStatus struct {
	UserID                string
	Status                Status
	DeletionRequested     bool
	RequestedAt           *time.Time
	EstimatedDeletionDate *time.Time
}
