package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotesRepository handles daily notes database operations.
type NotesRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves the notes for a user and date.
func (r *NotesRepository) Get(ctx context.Context, userID int64, date string) (*DailyNotes, error) {
	query := `
		SELECT user_id, date, content, summary, updated_at
		FROM daily_notes
		WHERE user_id = $1 AND date = $2
	`
	notes, err := scanNotes(r.pool.QueryRow(ctx, query, userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	return notes, nil
}

// Upsert creates the notes row or merges the non-nil fields into it.
// A nil content or summary leaves the stored value untouched.
func (r *NotesRepository) Upsert(ctx context.Context, userID int64, date string, content, summary *string) (*DailyNotes, error) {
	query := `
		INSERT INTO daily_notes (user_id, date, content, summary, updated_at)
		VALUES ($1, $2, COALESCE($3::text, ''), $4::text, NOW())
		ON CONFLICT (user_id, date) DO UPDATE SET
			content = COALESCE($3::text, daily_notes.content),
			summary = COALESCE($4::text, daily_notes.summary),
			updated_at = NOW()
		RETURNING user_id, date, content, summary, updated_at
	`
	notes, err := scanNotes(r.pool.QueryRow(ctx, query, userID, date, content, summary))
	if err != nil {
		return nil, fmt.Errorf("upserting notes: %w", err)
	}
	return notes, nil
}

// Search returns notes whose content contains term (case-insensitive),
// newest date first. An empty term matches every row.
func (r *NotesRepository) Search(ctx context.Context, userID int64, term string) ([]DailyNotes, error) {
	query := `
		SELECT user_id, date, content, summary, updated_at
		FROM daily_notes
		WHERE user_id = $1 AND ($2 = '' OR strpos(lower(content), lower($2)) > 0)
		ORDER BY date DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, term)
	if err != nil {
		return nil, fmt.Errorf("searching notes: %w", err)
	}
	defer rows.Close()

	var result []DailyNotes
	for rows.Next() {
		notes, err := scanNotes(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notes: %w", err)
		}
		result = append(result, *notes)
	}
	return result, rows.Err()
}

func scanNotes(row pgx.Row) (*DailyNotes, error) {
	var n DailyNotes
	if err := row.Scan(&n.UserID, &n.Date, &n.Content, &n.Summary, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// GratitudeRepository handles daily gratitude database operations.
type GratitudeRepository struct {
	pool *pgxpool.Pool
}

// Get retrieves the gratitude entry for a user and date.
func (r *GratitudeRepository) Get(ctx context.Context, userID int64, date string) (*DailyGratitude, error) {
	query := `
		SELECT user_id, date, content, updated_at
		FROM daily_gratitude
		WHERE user_id = $1 AND date = $2
	`
	g, err := scanGratitude(r.pool.QueryRow(ctx, query, userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying gratitude: %w", err)
	}
	return g, nil
}

// Upsert creates or replaces the gratitude content for a user and date.
func (r *GratitudeRepository) Upsert(ctx context.Context, userID int64, date, content string) (*DailyGratitude, error) {
	query := `
		INSERT INTO daily_gratitude (user_id, date, content, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, date) DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = NOW()
		RETURNING user_id, date, content, updated_at
	`
	g, err := scanGratitude(r.pool.QueryRow(ctx, query, userID, date, content))
	if err != nil {
		return nil, fmt.Errorf("upserting gratitude: %w", err)
	}
	return g, nil
}

// Search returns gratitude entries whose content contains term, newest first.
// An empty term matches every row.
func (r *GratitudeRepository) Search(ctx context.Context, userID int64, term string) ([]DailyGratitude, error) {
	query := `
		SELECT user_id, date, content, updated_at
		FROM daily_gratitude
		WHERE user_id = $1 AND ($2 = '' OR strpos(lower(content), lower($2)) > 0)
		ORDER BY date DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, term)
	if err != nil {
		return nil, fmt.Errorf("searching gratitude: %w", err)
	}
	defer rows.Close()

	var result []DailyGratitude
	for rows.Next() {
		g, err := scanGratitude(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning gratitude: %w", err)
		}
		result = append(result, *g)
	}
	return result, rows.Err()
}

func scanGratitude(row pgx.Row) (*DailyGratitude, error) {
	var g DailyGratitude
	if err := row.Scan(&g.UserID, &g.Date, &g.Content, &g.UpdatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}
