package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository handles user stats database operations.
type StatsRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves the stats row for a user.
func (r *StatsRepository) Get(ctx context.Context, userID int64) (*UserStats, error) {
	query := `
		SELECT user_id, day_streak, total_recordings, total_completed_tasks,
			total_reflections, total_moods, last_active_date
		FROM user_stats
		WHERE user_id = $1
	`
	stats, err := scanStats(r.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user stats: %w", err)
	}
	return stats, nil
}

// Update loads the stats row for a user under a row lock, creating it when
// missing, lets apply mutate it and writes the result back.
func (r *StatsRepository) Update(ctx context.Context, userID int64, apply func(*UserStats)) (*UserStats, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ensure := `INSERT INTO user_stats (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if _, err := tx.Exec(ctx, ensure, userID); err != nil {
		return nil, fmt.Errorf("ensuring user stats: %w", err)
	}

	selectQuery := `
		SELECT user_id, day_streak, total_recordings, total_completed_tasks,
			total_reflections, total_moods, last_active_date
		FROM user_stats
		WHERE user_id = $1
		FOR UPDATE
	`
	stats, err := scanStats(tx.QueryRow(ctx, selectQuery, userID))
	if err != nil {
		return nil, fmt.Errorf("locking user stats: %w", err)
	}

	apply(stats)

	updateQuery := `
		UPDATE user_stats
		SET day_streak = $2,
			total_recordings = $3,
			total_completed_tasks = $4,
			total_reflections = $5,
			total_moods = $6,
			last_active_date = $7
		WHERE user_id = $1
	`
	_, err = tx.Exec(ctx, updateQuery,
		stats.UserID,
		stats.DayStreak,
		stats.TotalRecordings,
		stats.TotalCompletedTasks,
		stats.TotalReflections,
		stats.TotalMoods,
		stats.LastActiveDate,
	)
	if err != nil {
		return nil, fmt.Errorf("updating user stats: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return stats, nil
}

func scanStats(row pgx.Row) (*UserStats, error) {
	var s UserStats
	if err := row.Scan(
		&s.UserID,
		&s.DayStreak,
		&s.TotalRecordings,
		&s.TotalCompletedTasks,
		&s.TotalReflections,
		&s.TotalMoods,
		&s.LastActiveDate,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkerRepository stores small named values such as the rollover date marker.
type MarkerRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves a marker value.
func (r *MarkerRepository) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := r.pool.QueryRow(ctx, `SELECT value FROM markers WHERE name = $1`, name).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying marker: %w", err)
	}
	return value, nil
}

// Set creates or replaces a marker value.
func (r *MarkerRepository) Set(ctx context.Context, name, value string) error {
	query := `
		INSERT INTO markers (name, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, name, value); err != nil {
		return fmt.Errorf("setting marker: %w", err)
	}
	return nil
}
