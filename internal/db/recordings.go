package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecordingRepository handles voice recording and reflection database operations.
type RecordingRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a new recording.
func (r *RecordingRepository) Create(ctx context.Context, rec *Recording) error {
	query := `
		INSERT INTO recordings (id, user_id, kind, transcript, summary, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		string(rec.Kind),
		rec.Transcript,
		rec.Summary,
		rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting recording: %w", err)
	}
	return nil
}

// ListBetween retrieves recordings of one kind with start <= recorded_at < end, oldest first.
func (r *RecordingRepository) ListBetween(ctx context.Context, userID int64, kind RecordingKind, start, end time.Time) ([]Recording, error) {
	query := `
		SELECT id, user_id, kind, transcript, summary, recorded_at
		FROM recordings
		WHERE user_id = $1 AND kind = $2 AND recorded_at >= $3 AND recorded_at < $4
		ORDER BY recorded_at ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, string(kind), start, end)
	if err != nil {
		return nil, fmt.Errorf("querying recordings: %w", err)
	}
	return collectRecordings(rows)
}

// Search retrieves recordings of one kind whose transcript contains term,
// newest first. An empty term matches every row.
func (r *RecordingRepository) Search(ctx context.Context, userID int64, kind RecordingKind, term string) ([]Recording, error) {
	query := `
		SELECT id, user_id, kind, transcript, summary, recorded_at
		FROM recordings
		WHERE user_id = $1 AND kind = $2 AND ($3 = '' OR strpos(lower(transcript), lower($3)) > 0)
		ORDER BY recorded_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, string(kind), term)
	if err != nil {
		return nil, fmt.Errorf("searching recordings: %w", err)
	}
	return collectRecordings(rows)
}

// SetSummary attaches a summary to a recording.
func (r *RecordingRepository) SetSummary(ctx context.Context, userID int64, id uuid.UUID, summary string) error {
	query := `UPDATE recordings SET summary = $3 WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID, summary)
	if err != nil {
		return fmt.Errorf("updating recording summary: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a recording by ID.
func (r *RecordingRepository) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	query := `DELETE FROM recordings WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting recording: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectRecordings(rows pgx.Rows) ([]Recording, error) {
	defer rows.Close()

	var recs []Recording
	for rows.Next() {
		var rec Recording
		var kind string
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&kind,
			&rec.Transcript,
			&rec.Summary,
			&rec.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning recording: %w", err)
		}
		rec.Kind = RecordingKind(kind)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
