package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MoodRepository handles mood check-in database operations.
type MoodRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new mood. A zero Timestamp is stamped with the current time.
func (r *MoodRepository) Create(ctx context.Context, mood *Mood) error {
	query := `
		INSERT INTO moods (id, user_id, mood, emoji, note, timestamp)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		RETURNING timestamp
	`
	if mood.ID == uuid.Nil {
		mood.ID = uuid.New()
	}
	var ts *time.Time
	if !mood.Timestamp.IsZero() {
		ts = &mood.Timestamp
	}
	err := r.pool.QueryRow(ctx, query,
		mood.ID,
		mood.UserID,
		mood.Mood,
		mood.Emoji,
		mood.Note,
		ts,
	).Scan(&mood.Timestamp)
	if err != nil {
		return fmt.Errorf("inserting mood: %w", err)
	}
	return nil
}

// ListBetween retrieves a user's moods with start <= timestamp < end, oldest first.
func (r *MoodRepository) ListBetween(ctx context.Context, userID int64, start, end time.Time) ([]Mood, error) {
	query := `
		SELECT id, user_id, mood, emoji, note, timestamp
		FROM moods
		WHERE user_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying moods: %w", err)
	}
	defer rows.Close()

	var moods []Mood
	for rows.Next() {
		var m Mood
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Mood,
			&m.Emoji,
			&m.Note,
			&m.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scanning mood: %w", err)
		}
		moods = append(moods, m)
	}
	return moods, rows.Err()
}

// Delete removes a mood by ID.
func (r *MoodRepository) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	query := `DELETE FROM moods WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting mood: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
