package audit

import (
	"context"
	"sync"
)

// Repository defines persistence for audit entries. Append-only: there are
// no update or delete operations by design.
type Repository interface {
	// Append stores a new entry.
	Append(ctx context.Context, entry *Entry) error

	// ListByUser returns the most recent entries for a user, newest
	// first, capped at limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]*Entry, error)
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewInMemoryRepository creates a new in-memory audit repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Append stores a new entry.
func (r *InMemoryRepository) Append(_ context.Context, entry *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// ListByUser returns the most recent entries for a user, newest first.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Entry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.entries[i]
		if e.UserID != nil && *e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// All returns every stored entry in append order. Test helper.
func (r *InMemoryRepository) All() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
