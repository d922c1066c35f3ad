// Package consent implements the consent ledger: an append-only history of
// grant/revoke events per user plus the current-flag projection every
// AI-adjacent code path must consult before processing.
package consent

import (
	"time"
)

// Type identifies a consent category.
type Type string

// Consent categories tracked by the ledger.
const (
	// TypeGDPR covers processing of personal data under GDPR.
	TypeGDPR Type = "gdpr"

	// TypeAIProcessing covers forwarding pseudonymized data to external
	// AI processors.
	TypeAIProcessing Type = "ai_processing"

	// TypeResearch covers participation in a named research module.
	TypeResearch Type = "research"
)

// Event is one immutable entry in the consent ledger. Events are never
// mutated after creation, only superseded by newer events for the same
// (user, type) pair.
type Event struct {
	// ID is the event identifier (format: cns_XXXX).
	ID string

	UserID  string
	Type    Type
	Granted bool

	// ResearchModule names the research module for TypeResearch events.
	ResearchModule *string

	CreatedAt time.Time
}

// Flags is the current consent projection for one user.
//
// The zero value is the most restrictive state: nothing granted. A user
// with no ledger at all reads as Flags{}, which is what forces explicit
// opt-in before any AI-adjacent code path may run.
type Flags struct {
	GDPR                  bool
	AIProcessing          bool
	DataDeletionRequested bool
}
