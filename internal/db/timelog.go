package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TimeLogRepository handles time-log slot database operations.
type TimeLogRepository struct {
	pool *pgxpool.Pool
}

// UpsertSlot writes the activity for (user, date, slot). An occupied slot is
// updated in place and keeps its ID. It reports whether a new row was inserted.
func (r *TimeLogRepository) UpsertSlot(ctx context.Context, entry *TimeLogEntry) (bool, error) {
	query := `
		INSERT INTO time_log_entries (id, user_id, date, time_slot, activity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (user_id, date, time_slot) DO UPDATE SET
			activity = EXCLUDED.activity,
			updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0)
	`
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Date,
		entry.TimeSlot,
		entry.Activity,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("upserting time log entry: %w", err)
	}
	return inserted, nil
}

// ListForDate retrieves a user's time-log entries for a date in slot order.
func (r *TimeLogRepository) ListForDate(ctx context.Context, userID int64, date string) ([]TimeLogEntry, error) {
	query := `
		SELECT id, user_id, date, time_slot, activity, created_at, updated_at
		FROM time_log_entries
		WHERE user_id = $1 AND date = $2
		ORDER BY time_slot ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("querying time log: %w", err)
	}
	defer rows.Close()

	var entries []TimeLogEntry
	for rows.Next() {
		var e TimeLogEntry
		if err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Date,
			&e.TimeSlot,
			&e.Activity,
			&e.CreatedAt,
			&e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning time log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpdateActivity replaces the activity text of an entry.
func (r *TimeLogRepository) UpdateActivity(ctx context.Context, userID int64, id uuid.UUID, activity string) (*TimeLogEntry, error) {
	query := `
		UPDATE time_log_entries
		SET activity = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, date, time_slot, activity, created_at, updated_at
	`
	var e TimeLogEntry
	err := r.pool.QueryRow(ctx, query, id, userID, activity).Scan(
		&e.ID,
		&e.UserID,
		&e.Date,
		&e.TimeSlot,
		&e.Activity,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating time log entry: %w", err)
	}
	return &e, nil
}

// Delete removes a time-log entry by ID.
func (r *TimeLogRepository) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	query := `DELETE FROM time_log_entries WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting time log entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
