package ailog

import (
	"context"
	"sync"
)

// Repository defines persistence for AI interaction logs.
type Repository interface {
	// Insert stores one interaction.
	Insert(ctx context.Context, interaction *Interaction) error

	// ListByHash returns all interactions for a correlation handle,
	// newest first.
	ListByHash(ctx context.Context, userHash string) ([]*Interaction, error)
}

// InMemoryRepository is an in-memory implementation of Repository used in
// tests.
type InMemoryRepository struct {
	mu           sync.RWMutex
	interactions []*Interaction
}

// NewInMemoryRepository creates a new in-memory interaction repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Insert stores one interaction.
func (r *InMemoryRepository) Insert(_ context.Context, interaction *Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interactions = append(r.interactions, interaction)
	return nil
}

// ListByHash returns all interactions for a correlation handle, newest first.
func (r *InMemoryRepository) ListByHash(_ context.Context, userHash string) ([]*Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Interaction
	for i := len(r.interactions) - 1; i >= 0; i-- {
		if r.interactions[i].UserHash == userHash {
			out = append(out, r.interactions[i])
		}
	}
	return out, nil
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
