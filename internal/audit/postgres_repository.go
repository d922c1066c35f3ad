package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL audit repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Append stores a new entry.
func (r *PostgresRepository) Append(ctx context.Context, entry *Entry) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, resource, result, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		entry.ID,
		entry.UserID,
		string(entry.Action),
		entry.Resource,
		string(entry.Result),
		metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

// ListByUser returns the most recent entries for a user, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*Entry, error) {
	query := `
		SELECT id, user_id, action, resource, result, metadata, created_at
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var (
			entry    Entry
			action   string
			result   string
			metadata []byte
			created  time.Time
		)
		if err := rows.Scan(&entry.ID, &entry.UserID, &action, &entry.Resource, &result, &metadata, &created); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.Action = Action(action)
		entry.Result = Result(result)
		entry.CreatedAt = created
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
