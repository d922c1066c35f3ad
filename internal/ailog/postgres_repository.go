package ailog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL interaction repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert stores one interaction.
func (r *PostgresRepository) Insert(ctx context.Context, interaction *Interaction) error {
	query := `
		INSERT INTO ai_interaction_logs (user_hash, topic, message_length, tokens_used, model, status, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		interaction.UserHash,
		interaction.Topic,
		interaction.MessageLength,
		interaction.TokensUsed,
		interaction.Model,
		interaction.Status,
		interaction.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert ai interaction: %w", err)
	}
	return nil
}

// ListByHash returns all interactions for a correlation handle, newest first.
func (r *PostgresRepository) ListByHash(ctx context.Context, userHash string) ([]*Interaction, error) {
	query := `
		SELECT user_hash, topic, message_length, tokens_used, model, status, timestamp
		FROM ai_interaction_logs
		WHERE user_hash = $1
		ORDER BY timestamp DESC
	`

	rows, err := r.pool.Query(ctx, query, userHash)
	if err != nil {
		return nil, fmt.Errorf("list ai interactions: %w", err)
	}
	defer rows.Close()

	var interactions []*Interaction
	for rows.Next() {
		var in Interaction
		if err := rows.Scan(&in.UserHash, &in.Topic, &in.MessageLength, &in.TokensUsed, &in.Model, &in.Status, &in.Timestamp); err != nil {
			return nil, fmt.Errorf("scan ai interaction: %w", err)
		}
		interactions = append(interactions, &in)
	}
	return interactions, rows.Err()
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
