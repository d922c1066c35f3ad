package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL lifecycle repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get retrieves a user's lifecycle record.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, name, country, language_level,
		       gdpr_consent, gdpr_consent_date,
		       ai_processing_consent, ai_processing_consent_date,
		       data_deletion_requested, data_deletion_requested_at, purge_eligible_at,
		       created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Country,
		&u.LanguageLevel,
		&u.GDPRConsent,
		&u.GDPRConsentAt,
		&u.AIProcessingConsent,
		&u.AIProcessingConsentAt,
		&u.DeletionRequested,
		&u.DeletionRequestedAt,
		&u.PurgeEligibleAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// RequestErasure atomically flips a user into pending-deletion state.
//
// The whole transition is one conditional UPDATE: flags, retention clock,
// and forced AI-consent revocation either all apply or none do, and the
// row-level lock serializes concurrent requests for the same user. When
// zero rows are affected a follow-up read distinguishes "unknown user"
// from "already pending".
func (r *PostgresRepository) RequestErasure(ctx context.Context, id string, requestedAt, purgeEligibleAt time.Time) error {
	query := `
		UPDATE users SET
			data_deletion_requested = true,
			data_deletion_requested_at = $2,
			purge_eligible_at = $3,
			ai_processing_consent = false,
			updated_at = $2
		WHERE id = $1 AND data_deletion_requested = false
	`

	result, err := r.pool.Exec(ctx, query, id, requestedAt, purgeEligibleAt)
	if err != nil {
		return fmt.Errorf("request erasure: %w", err)
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var pending bool
	err = r.pool.QueryRow(ctx, `SELECT data_deletion_requested FROM users WHERE id = $1`, id).Scan(&pending)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("request erasure: %w", err)
	}
	if pending {
		return ErrErasurePending
	}
	// The guard lost a race with another writer but the user is not
	// pending; report it as a dependency failure rather than guessing.
	return fmt.Errorf("request erasure: update affected no rows for user in unexpected state")
}

// FindPurgeEligible returns users whose retention window has elapsed.
func (r *PostgresRepository) FindPurgeEligible(ctx context.Context, now time.Time) ([]string, error) {
	query := `
		SELECT id
		FROM users
		WHERE data_deletion_requested = true
		  AND purge_eligible_at IS NOT NULL
		  AND purge_eligible_at <= $1
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("find purge eligible: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan purge candidate: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PostgresPurger invokes the data layer's irreversible purge routine.
//
// hard_delete_user removes or anonymizes every row holding personal data
// for the user across all tables, and is a no-op for unknown identifiers.
// That idempotence is part of the routine's contract, not re-checked here.
type PostgresPurger struct {
	pool *pgxpool.Pool
}

// NewPostgresPurger creates a purger backed by the hard_delete_user routine.
func NewPostgresPurger(pool *pgxpool.Pool) *PostgresPurger {
	return &PostgresPurger{pool: pool}
}

// Purge irreversibly removes all personal data for the user.
func (p *PostgresPurger) Purge(ctx context.Context, userID string) error {
	if _, err := p.pool.Exec(ctx, `SELECT hard_delete_user($1)`, userID); err != nil {
		return fmt.Errorf("hard delete user: %w", err)
	}
	return nil
}

// Ensure the postgres implementations satisfy their contracts.
var (
	_ Repository = (*PostgresRepository)(nil)
	_ Purger     = (*PostgresPurger)(nil)
)
