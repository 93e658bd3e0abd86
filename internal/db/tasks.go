package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository handles daily task database operations.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// CreateWithinLimit inserts a task unless the user already has limit tasks of
// the same type on the same date. It reports whether the row was inserted.
// The count and insert run in one transaction holding an advisory lock on
// (user, date, type) so concurrent creates cannot overshoot the limit.
func (r *TaskRepository) CreateWithinLimit(ctx context.Context, task *DailyTask, limit int) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lockKey := fmt.Sprintf("tasks:%d:%s:%s", task.UserID, task.Date, task.Type)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return false, fmt.Errorf("locking task bucket: %w", err)
	}

	var count int
	countQuery := `SELECT COUNT(*) FROM daily_tasks WHERE user_id = $1 AND date = $2 AND type = $3`
	if err := tx.QueryRow(ctx, countQuery, task.UserID, task.Date, string(task.Type)).Scan(&count); err != nil {
		return false, fmt.Errorf("counting tasks: %w", err)
	}
	if count >= limit {
		return false, nil
	}

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	insertQuery := `
		INSERT INTO daily_tasks (id, user_id, text, completed, type, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err = tx.QueryRow(ctx, insertQuery,
		task.ID,
		task.UserID,
		task.Text,
		task.Completed,
		string(task.Type),
		task.Date,
	).Scan(&task.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("inserting task: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing transaction: %w", err)
	}
	return true, nil
}

// Get retrieves a task by ID.
func (r *TaskRepository) Get(ctx context.Context, userID int64, id uuid.UUID) (*DailyTask, error) {
	query := `
		SELECT id, user_id, text, completed, type, date, created_at
		FROM daily_tasks
		WHERE id = $1 AND user_id = $2
	`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return task, nil
}

// ListForDate retrieves a user's tasks for a date: incomplete first, then
// completed, each group in creation order.
func (r *TaskRepository) ListForDate(ctx context.Context, userID int64, date string) ([]DailyTask, error) {
	query := `
		SELECT id, user_id, text, completed, type, date, created_at
		FROM daily_tasks
		WHERE user_id = $1 AND date = $2
		ORDER BY completed ASC, created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, date)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []DailyTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// Update applies the non-nil fields to a task and returns the updated row
// along with the completion state it had before the update.
func (r *TaskRepository) Update(ctx context.Context, userID int64, id uuid.UUID, text *string, completed *bool) (*DailyTask, bool, error) {
	query := `
		WITH prev AS (
			SELECT completed FROM daily_tasks WHERE id = $1 AND user_id = $2 FOR UPDATE
		)
		UPDATE daily_tasks
		SET text = COALESCE($3::text, text),
			completed = COALESCE($4::boolean, completed)
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, text, completed, type, date, created_at, (SELECT completed FROM prev)
	`
	var task DailyTask
	var wasCompleted bool
	var taskType string
	err := r.pool.QueryRow(ctx, query, id, userID, text, completed).Scan(
		&task.ID,
		&task.UserID,
		&task.Text,
		&task.Completed,
		&taskType,
		&task.Date,
		&task.CreatedAt,
		&wasCompleted,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("updating task: %w", err)
	}
	task.Type = TaskType(taskType)
	return &task, wasCompleted, nil
}

// Delete removes a task by ID.
func (r *TaskRepository) Delete(ctx context.Context, userID int64, id uuid.UUID) error {
	query := `DELETE FROM daily_tasks WHERE id = $1 AND user_id = $2`
	result, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (*DailyTask, error) {
	var task DailyTask
	var taskType string
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Text,
		&task.Completed,
		&taskType,
		&task.Date,
		&task.CreatedAt,
	); err != nil {
		return nil, err
	}
	task.Type = TaskType(taskType)
	return &task, nil
}
