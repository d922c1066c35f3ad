package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder writes audit entries without ever failing the caller's primary
// operation. Losing an audit record must not turn a successful consent
// change or deletion request into a user-visible failure, so a failed write
// is logged and swallowed. That swallow path is a degraded-mode condition:
// the error log carries degraded_mode=audit_write so it can be alerted on.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
}

// NewRecorder creates a new audit recorder.
func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record appends an entry, filling in ID and CreatedAt when unset.
func (r *Recorder) Record(ctx context.Context, entry *Entry) {
	if entry.ID == "" {
		entry.ID = "aud_" + uuid.New().String()[:22]
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	if err := r.repo.Append(ctx, entry); err != nil {
		r.logger.Error().
			Err(err).
			Str("degraded_mode", "audit_write").
			Str("action", string(entry.Action)).
			Str("resource", entry.Resource).
			Msg("audit entry write failed; continuing without audit record")
	}
}
