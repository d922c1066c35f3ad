package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Repository errors.
var (
	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrErasurePending indicates the user already has an erasure request
	// in progress. The retention clock is never reset.
	ErrErasurePending = errors.New("erasure already pending")
)

// Repository defines persistence for the lifecycle state store.
type Repository interface {
	// Get retrieves a user's lifecycle record.
	Get(ctx context.Context, id string) (*User, error)

	// RequestErasure atomically flips a user into pending-deletion state:
	// sets the deletion flags, stamps the retention clock, and revokes
	// the AI-processing consent projection, all in one transaction.
	// Returns ErrUserNotFound for unknown users and ErrErasurePending
	// when the user is already pending.
	RequestErasure(ctx context.Context, id string, requestedAt, purgeEligibleAt time.Time) error

	// FindPurgeEligible returns the identifiers of all users with an
	// erasure request whose retention window elapsed at or before now.
	// No ordering is guaranteed.
	FindPurgeEligible(ctx context.Context, now time.Time) ([]string, error)
}

// Purger is the irreversible purge primitive supplied by the data layer.
//
// Contract: one call removes or irrecoverably anonymizes all personal data
// for the user, and the call is idempotent. Purging a non-existent or
// already-purged user is a no-op, not an error; the retention sweeper
// relies on this to be safely re-runnable.
type Purger interface {
	Purge(ctx context.Context, userID string) error
}

// InMemoryRepository is an in-memory implementation of Repository and
// Purger used in tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User

	// PurgeErr, when set for a user ID, makes Purge fail for that user.
	purgeErr map[string]error
}

// NewInMemoryRepository creates a new in-memory lifecycle repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users:    make(map[string]*User),
		purgeErr: make(map[string]error),
	}
}

// Put stores a user record. Test helper.
func (r *InMemoryRepository) Put(u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
}

// FailPurge makes Purge return err for the given user. Test helper.
func (r *InMemoryRepository) FailPurge(userID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purgeErr[userID] = err
}

// Get retrieves a user's lifecycle record.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// RequestErasure atomically flips a user into pending-deletion state.
func (r *InMemoryRepository) RequestErasure(_ context.Context, id string, requestedAt, purgeEligibleAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if u.DeletionRequested {
		return ErrErasurePending
	}

	u.DeletionRequested = true
	u.DeletionRequestedAt = &requestedAt
	u.PurgeEligibleAt = &purgeEligibleAt
	u.AIProcessingConsent = false
	u.UpdatedAt = requestedAt
	return nil
}

// FindPurgeEligible returns users whose retention window has elapsed.
func (r *InMemoryRepository) FindPurgeEligible(_ context.Context, now time.Time) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []string
	for id, u := range r.users {
		if u.DeletionRequested && u.PurgeEligibleAt != nil && !u.PurgeEligibleAt.After(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Purge removes the user record. Idempotent: purging an unknown user is a
// no-op unless a failure was injected via FailPurge.
func (r *InMemoryRepository) Purge(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err, ok := r.purgeErr[userID]; ok {
		return err
	}
	delete(r.users, userID)
	return nil
}

// Ensure InMemoryRepository implements both contracts.
var (
	_ Repository = (*InMemoryRepository)(nil)
	_ Purger     = (*InMemoryRepository)(nil)
)
