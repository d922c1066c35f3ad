package export

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL implementation of Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL export store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// IntegrationProgress returns the user's monthly progress, newest first.
func (s *PostgresStore) IntegrationProgress(ctx context.Context, userID string) ([]ProgressRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT current_month_start, sessions_completed, minutes_practiced
		FROM integration_progress
		WHERE user_id = $1
		ORDER BY current_month_start DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query integration progress: %w", err)
	}
	defer rows.Close()

	var records []ProgressRecord
	for rows.Next() {
		var rec ProgressRecord
		if err := rows.Scan(&rec.MonthStart, &rec.SessionsCompleted, &rec.MinutesPracticed); err != nil {
			return nil, fmt.Errorf("scan integration progress: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UsageTracking returns the user's feature usage, newest first.
func (s *PostgresStore) UsageTracking(ctx context.Context, userID string) ([]UsageRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT feature, minutes_used, timestamp
		FROM usage_tracking
		WHERE user_id = $1
		ORDER BY timestamp DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query usage tracking: %w", err)
	}
	defer rows.Close()

	var records []UsageRecord
	for rows.Next() {
		var rec UsageRecord
		if err := rows.Scan(&rec.Feature, &rec.MinutesUsed, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan usage tracking: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Groups returns the user's group memberships.
func (s *PostgresStore) Groups(ctx context.Context, userID string) ([]GroupMembership, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT g.id, g.name, gm.role, gm.joined_at
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var memberships []GroupMembership
	for rows.Next() {
		var m GroupMembership
		if err := rows.Scan(&m.GroupID, &m.Name, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan group membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// Events returns the user's event RSVPs.
func (s *PostgresStore) Events(ctx context.Context, userID string) ([]EventRSVP, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.id, e.title, er.status, er.rsvp_at
		FROM events e
		JOIN event_rsvps er ON e.id = er.event_id
		WHERE er.user_id = $1
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var rsvps []EventRSVP
	for rows.Next() {
		var r EventRSVP
		if err := rows.Scan(&r.EventID, &r.Title, &r.Status, &r.RSVPAt); err != nil {
			return nil, fmt.Errorf("scan event rsvp: %w", err)
		}
		rsvps = append(rsvps, r)
	}
	return rsvps, rows.Err()
}

// RecordExport registers that an export was produced.
func (s *PostgresStore) RecordExport(ctx context.Context, userID, format string, categories []string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO data_exports (user_id, exported_at, format, data_categories)
		VALUES ($1, $2, $3, $4)
	`, userID, at, format, categories)
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

// Ensure PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
