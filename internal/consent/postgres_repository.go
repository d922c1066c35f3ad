package consent

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL consent repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// AppendEvent stores a new ledger event and updates the user's projection.
// Both writes happen in one transaction: the ledger and the projection can
// never disagree about the latest event.
func (r *PostgresRepository) AppendEvent(ctx context.Context, event *Event) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin consent transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO consent_logs (id, user_id, consent_type, granted, research_module, consent_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		event.ID,
		event.UserID,
		string(event.Type),
		event.Granted,
		event.ResearchModule,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append consent event: %w", err)
	}

	switch event.Type {
	case TypeGDPR:
		_, err = tx.Exec(ctx, `
			UPDATE users SET gdpr_consent = $2, gdpr_consent_date = $3, updated_at = $3
			WHERE id = $1
		`, event.UserID, event.Granted, event.CreatedAt)
	case TypeAIProcessing:
		_, err = tx.Exec(ctx, `
			UPDATE users SET ai_processing_consent = $2, ai_processing_consent_date = $3, updated_at = $3
			WHERE id = $1
		`, event.UserID, event.Granted, event.CreatedAt)
	case TypeResearch:
		// Per-module participation lives in the ledger only.
	}
	if err != nil {
		return fmt.Errorf("update consent projection: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit consent transaction: %w", err)
	}
	return nil
}

// CurrentFlags returns the consent projection for a user. An unknown user
// yields the zero Flags: the system defaults to the most restrictive state.
func (r *PostgresRepository) CurrentFlags(ctx context.Context, userID string) (Flags, error) {
	var f Flags
	err := r.pool.QueryRow(ctx, `
		SELECT gdpr_consent, ai_processing_consent, data_deletion_requested
		FROM users
		WHERE id = $1
	`, userID).Scan(&f.GDPR, &f.AIProcessing, &f.DataDeletionRequested)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Flags{}, nil
		}
		return Flags{}, fmt.Errorf("read consent flags: %w", err)
	}
	return f, nil
}

// History returns all ledger events for a user, newest first.
func (r *PostgresRepository) History(ctx context.Context, userID string) ([]*Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, consent_type, granted, research_module, consent_date
		FROM consent_logs
		WHERE user_id = $1
		ORDER BY consent_date DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list consent history: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			e   Event
			typ string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &typ, &e.Granted, &e.ResearchModule, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan consent event: %w", err)
		}
		e.Type = Type(typ)
		events = append(events, &e)
	}
	return events, rows.Err()
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
