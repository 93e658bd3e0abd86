// Package db provides PostgreSQL database access for the wellness journal.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Common errors.
var (
	ErrNotFound = errors.New("not found")
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Pool returns the underlying connection pool for advanced operations.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Notes returns a NotesRepository.
func (db *DB) Notes() *NotesRepository {
	return &NotesRepository{pool: db.pool}
}

// Gratitude returns a GratitudeRepository.
func (db *DB) Gratitude() *GratitudeRepository {
	return &GratitudeRepository{pool: db.pool}
}

// Summaries returns a SummaryRepository.
func (db *DB) Summaries() *SummaryRepository {
	return &SummaryRepository{pool: db.pool}
}

// Tasks returns a TaskRepository.
func (db *DB) Tasks() *TaskRepository {
	return &TaskRepository{pool: db.pool}
}

// TimeLog returns a TimeLogRepository.
func (db *DB) TimeLog() *TimeLogRepository {
	return &TimeLogRepository{pool: db.pool}
}

// Moods returns a MoodRepository.
func (db *DB) Moods() *MoodRepository {
	return &MoodRepository{pool: db.pool}
}

// Recordings returns a RecordingRepository.
func (db *DB) Recordings() *RecordingRepository {
	return &RecordingRepository{pool: db.pool}
}

// Stats returns a StatsRepository.
func (db *DB) Stats() *StatsRepository {
	return &StatsRepository{pool: db.pool}
}

// Markers returns a MarkerRepository.
func (db *DB) Markers() *MarkerRepository {
	return &MarkerRepository{pool: db.pool}
}
