package export

import (
	"context"
	"sync"
	"time"
)

// Store supplies the platform data the compiler aggregates beyond what the
// lifecycle, consent, ailog, and audit subsystems own directly.
type Store interface {
	// IntegrationProgress returns the user's monthly progress, newest
	// month first.
	IntegrationProgress(ctx context.Context, userID string) ([]ProgressRecord, error)

	// UsageTracking returns the user's feature usage, newest first.
	UsageTracking(ctx context.Context, userID string) ([]UsageRecord, error)

	// Groups returns the user's group memberships.
	Groups(ctx context.Context, userID string) ([]GroupMembership, error)

	// Events returns the user's event RSVPs.
	Events(ctx context.Context, userID string) ([]EventRSVP, error)

	// RecordExport registers that an export was produced.
	RecordExport(ctx context.Context, userID, format string, categories []string, at time.Time) error
}

// InMemoryStore is an in-memory implementation of Store used in tests.
type InMemoryStore struct {
	mu sync.RWMutex

	Progress    map[string][]ProgressRecord
	Usage       map[string][]UsageRecord
	Memberships map[string][]GroupMembership
	RSVPs       map[string][]EventRSVP
	ExportCount map[string]int
}

// NewInMemoryStore creates a new in-memory export store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		Progress:    make(map[string][]ProgressRecord),
		Usage:       make(map[string][]UsageRecord),
		Memberships: make(map[string][]GroupMembership),
		RSVPs:       make(map[string][]EventRSVP),
		ExportCount: make(map[string]int),
	}
}

// IntegrationProgress returns the user's monthly progress.
func (s *InMemoryStore) IntegrationProgress(_ context.Context, userID string) ([]ProgressRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Progress[userID], nil
}

// UsageTracking returns the user's feature usage.
func (s *InMemoryStore) UsageTracking(_ context.Context, userID string) ([]UsageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Usage[userID], nil
}

// Groups returns the user's group memberships.
func (s *InMemoryStore) Groups(_ context.Context, userID string) ([]GroupMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Memberships[userID], nil
}

// Events returns the user's event RSVPs.
func (s *InMemoryStore) Events(_ context.Context, userID string) ([]EventRSVP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.RSVPs[userID], nil
}

// RecordExport registers that an export was produced.
func (s *InMemoryStore) RecordExport(_ context.Context, userID, _ string, _ []string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExportCount[userID]++
	return nil
}

// Ensure InMemoryStore implements Store.
var _ Store = (*InMemoryStore)(nil)
