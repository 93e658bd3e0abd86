package db

import (
	"context"
	"fmt"
)

// schema creates every table the journal needs. Date keys are stored as
// YYYY-MM-DD text so they compare and sort lexically. Statements are
// idempotent so Migrate can run on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS daily_notes (
		user_id    BIGINT NOT NULL,
		date       TEXT NOT NULL,
		content    TEXT NOT NULL DEFAULT '',
		summary    TEXT,
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_gratitude (
		user_id    BIGINT NOT NULL,
		date       TEXT NOT NULL,
		content    TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS time_log_summaries (
		user_id       BIGINT NOT NULL,
		date          TEXT NOT NULL,
		summary       TEXT NOT NULL,
		total_entries INT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_summaries (
		user_id            BIGINT NOT NULL,
		date               TEXT NOT NULL,
		summary            TEXT NOT NULL,
		highlights         TEXT[] NOT NULL DEFAULT '{}',
		mood_theme         TEXT NOT NULL DEFAULT '',
		productivity_score INT NOT NULL DEFAULT 0,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS mood_analyses (
		user_id    BIGINT NOT NULL,
		date       TEXT NOT NULL,
		analysis   TEXT NOT NULL,
		mood_count INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS daily_tasks (
		id         UUID PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		text       TEXT NOT NULL,
		completed  BOOLEAN NOT NULL DEFAULT FALSE,
		type       TEXT NOT NULL CHECK (type IN ('task', 'habit', 'learn')),
		date       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS daily_tasks_user_date ON daily_tasks (user_id, date)`,
	`CREATE TABLE IF NOT EXISTS time_log_entries (
		id         UUID PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		date       TEXT NOT NULL,
		time_slot  TEXT NOT NULL,
		activity   TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, date, time_slot)
	)`,
	`CREATE TABLE IF NOT EXISTS moods (
		id        UUID PRIMARY KEY,
		user_id   BIGINT NOT NULL,
		mood      TEXT NOT NULL,
		emoji     TEXT NOT NULL,
		note      TEXT,
		timestamp TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS moods_user_timestamp ON moods (user_id, timestamp)`,
	`CREATE TABLE IF NOT EXISTS recordings (
		id          UUID PRIMARY KEY,
		user_id     BIGINT NOT NULL,
		kind        TEXT NOT NULL CHECK (kind IN ('voice', 'reflection')),
		transcript  TEXT NOT NULL,
		summary     TEXT,
		recorded_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS recordings_user_kind_recorded ON recordings (user_id, kind, recorded_at)`,
	`CREATE TABLE IF NOT EXISTS user_stats (
		user_id               BIGINT PRIMARY KEY,
		day_streak            INT NOT NULL DEFAULT 0,
		total_recordings      INT NOT NULL DEFAULT 0,
		total_completed_tasks INT NOT NULL DEFAULT 0,
		total_reflections     INT NOT NULL DEFAULT 0,
		total_moods           INT NOT NULL DEFAULT 0,
		last_active_date      TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS markers (
		name       TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the schema.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema statement %d: %w", i, err)
		}
	}
	return nil
}
