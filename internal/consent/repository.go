package consent

import (
	"context"
	"sync"
)

// Repository defines persistence for the consent ledger.
type Repository interface {
	// AppendEvent stores a new ledger event and updates the user's
	// current-flag projection in the same transaction.
	AppendEvent(ctx context.Context, event *Event) error

	// CurrentFlags returns the consent projection for a user. An unknown
	// user yields the zero Flags (nothing granted), not an error.
	CurrentFlags(ctx context.Context, userID string) (Flags, error)

	// History returns all ledger events for a user, newest first.
	History(ctx context.Context, userID string) ([]*Event, error)
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events map[string][]*Event
	flags  map[string]Flags
}

// NewInMemoryRepository creates a new in-memory consent repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		events: make(map[string][]*Event),
		flags:  make(map[string]Flags),
	}
}

// SetDeletionRequested marks the user's projection as deletion-pending.
// Test helper standing in for the lifecycle store's transition.
func (r *InMemoryRepository) SetDeletionRequested(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f := r.flags[userID]
	f.DataDeletionRequested = true
	f.AIProcessing = false
	r.flags[userID] = f
}

// AppendEvent stores a new ledger event and updates the projection.
func (r *InMemoryRepository) AppendEvent(_ context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events[event.UserID] = append(r.events[event.UserID], event)

	f := r.flags[event.UserID]
	switch event.Type {
	case TypeGDPR:
		f.GDPR = event.Granted
	case TypeAIProcessing:
		f.AIProcessing = event.Granted
	case TypeResearch:
		// Research participation is tracked per module in the ledger
		// itself; it does not move the top-level flags.
	}
	r.flags[event.UserID] = f
	return nil
}

// CurrentFlags returns the consent projection for a user.
func (r *InMemoryRepository) CurrentFlags(_ context.Context, userID string) (Flags, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flags[userID], nil
}

// History returns all ledger events for a user, newest first.
func (r *InMemoryRepository) History(_ context.Context, userID string) ([]*Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := r.events[userID]
	out := make([]*Event, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
	}
	return out, nil
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
