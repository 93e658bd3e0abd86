package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SummaryRepository handles the generated per-day artifacts: time-log
// summaries, daily summaries and mood analyses.
type SummaryRepository struct {
	pool *pgxpool.Pool
}

// GetTimeLogSummary retrieves the time-log summary for a user and date.
func (r *SummaryRepository) GetTimeLogSummary(ctx context.Context, userID int64, date string) (*TimeLogSummary, error) {
	query := `
		SELECT user_id, date, summary, total_entries, created_at
		FROM time_log_summaries
		WHERE user_id = $1 AND date = $2
	`
	var s TimeLogSummary
	err := r.pool.QueryRow(ctx, query, userID, date).Scan(
		&s.UserID,
		&s.Date,
		&s.Summary,
		&s.TotalEntries,
		&s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying time log summary: %w", err)
	}
	return &s, nil
}

// UpsertTimeLogSummary stores the time-log summary, replacing any earlier one.
func (r *SummaryRepository) UpsertTimeLogSummary(ctx context.Context, s *TimeLogSummary) error {
	query := `
		INSERT INTO time_log_summaries (user_id, date, summary, total_entries, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, date) DO UPDATE SET
			summary = EXCLUDED.summary,
			total_entries = EXCLUDED.total_entries,
			created_at = NOW()
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, s.UserID, s.Date, s.Summary, s.TotalEntries).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting time log summary: %w", err)
	}
	return nil
}

// GetDailySummary retrieves the daily summary for a user and date.
func (r *SummaryRepository) GetDailySummary(ctx context.Context, userID int64, date string) (*DailySummary, error) {
	query := `
		SELECT user_id, date, summary, highlights, mood_theme, productivity_score, created_at, updated_at
		FROM daily_summaries
		WHERE user_id = $1 AND date = $2
	`
	var s DailySummary
	err := r.pool.QueryRow(ctx, query, userID, date).Scan(
		&s.UserID,
		&s.Date,
		&s.Summary,
		&s.Highlights,
		&s.MoodTheme,
		&s.ProductivityScore,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying daily summary: %w", err)
	}
	return &s, nil
}

// UpsertDailySummary stores the daily summary. The original created_at is
// kept on regeneration; updated_at is refreshed.
func (r *SummaryRepository) UpsertDailySummary(ctx context.Context, s *DailySummary) error {
	query := `
		INSERT INTO daily_summaries (user_id, date, summary, highlights, mood_theme, productivity_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (user_id, date) DO UPDATE SET
			summary = EXCLUDED.summary,
			highlights = EXCLUDED.highlights,
			mood_theme = EXCLUDED.mood_theme,
			productivity_score = EXCLUDED.productivity_score,
			updated_at = NOW()
		RETURNING created_at, updated_at
	`
	highlights := s.Highlights
	if highlights == nil {
		highlights = []string{}
	}
	err := r.pool.QueryRow(ctx, query,
		s.UserID,
		s.Date,
		s.Summary,
		highlights,
		s.MoodTheme,
		s.ProductivityScore,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting daily summary: %w", err)
	}
	return nil
}

// GetMoodAnalysis retrieves the mood analysis for a user and date.
func (r *SummaryRepository) GetMoodAnalysis(ctx context.Context, userID int64, date string) (*MoodAnalysis, error) {
	query := `
		SELECT user_id, date, analysis, mood_count, created_at
		FROM mood_analyses
		WHERE user_id = $1 AND date = $2
	`
	var a MoodAnalysis
	err := r.pool.QueryRow(ctx, query, userID, date).Scan(
		&a.UserID,
		&a.Date,
		&a.Analysis,
		&a.MoodCount,
		&a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying mood analysis: %w", err)
	}
	return &a, nil
}

// UpsertMoodAnalysis stores the mood analysis, replacing any earlier one.
func (r *SummaryRepository) UpsertMoodAnalysis(ctx context.Context, a *MoodAnalysis) error {
	query := `
		INSERT INTO mood_analyses (user_id, date, analysis, mood_count, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, date) DO UPDATE SET
			analysis = EXCLUDED.analysis,
			mood_count = EXCLUDED.mood_count,
			created_at = NOW()
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query, a.UserID, a.Date, a.Analysis, a.MoodCount).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("upserting mood analysis: %w", err)
	}
	return nil
}
