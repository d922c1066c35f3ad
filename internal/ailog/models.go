// Package ailog stores the AI interaction log. Rows are keyed by the
// pseudonymized correlation handle, never by raw user identifier: the log
// can be joined to a user for export, but nothing in it identifies anyone
// on its own.
package ailog

import (
	"time"
)

// Interaction statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Interaction is one logged AI call.
type Interaction struct {
	// UserHash is the correlation handle (privacy.Pseudonymize output),
	// or "anonymous" for calls without a known subject.
	UserHash string

	// Topic classifies the interaction (e.g. "workplace-language").
	Topic string

	// MessageLength is the sanitized input length in characters. The
	// input text itself is never stored.
	MessageLength int

	TokensUsed *int
	Model      string
	Status     string
	Timestamp  time.Time
}
