// Package store defines the date-scoped entity store used by every journal
// component, together with an in-process implementation for tests and demos
// and a PostgreSQL implementation for production.
//
// Singleton-per-day entities (notes, gratitude and the generated artifacts)
// are keyed by (user, date) and written with upsert semantics. Multi-entry
// entities (tasks, time-log slots, moods, recordings) are appended with a
// fresh ID. Entities stored with a timestamp rather than a date are filtered
// through the calendar resolver's day bounds.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-wellness-journal/internal/db"
)

// Common errors.
var (
	// ErrNotFound is returned when an update or delete targets a missing ID.
	ErrNotFound = errors.New("not found")

	// ErrCapacityExceeded is returned when a daily list is already full.
	ErrCapacityExceeded = errors.New("daily capacity exceeded")

	// ErrStorageUnavailable wraps failures of the underlying data store.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError reports malformed input rejected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// WildcardTerm is the search term that matches every row of a user.
const WildcardTerm = "."

// DailyLimits caps how many entries of each task type a user may hold per date.
var DailyLimits = map[db.TaskType]int{
	db.TaskTypeTask:  3,
	db.TaskTypeHabit: 3,
	db.TaskTypeLearn: 1,
}

// NotesUpdate is a partial update of a day's notes. Nil fields are left untouched.
type NotesUpdate struct {
	Content *string
	Summary *string
}

// NewTask describes a task to append.
type NewTask struct {
	Text string
	Type db.TaskType
	Date string
}

// TaskUpdate is a partial update of a task. Nil fields are left untouched.
type TaskUpdate struct {
	Text      *string
	Completed *bool
}

// NewTimeLogEntry describes the activity for one slot.
type NewTimeLogEntry struct {
	Date     string
	TimeSlot string
	Activity string
}

// NewMood describes a mood check-in. A zero Timestamp means now.
type NewMood struct {
	Mood      string
	Emoji     string
	Note      *string
	Timestamp time.Time
}

// NewRecording describes a transcribed recording. A zero RecordedAt means now.
type NewRecording struct {
	Kind       db.RecordingKind
	Transcript string
	Summary    *string
	RecordedAt time.Time
}

// Store is the sole write path for journal entities.
//
// Get methods for singleton-per-day entities return (nil, nil) when the day
// has no row yet; that is the normal state of a new day, not an error.
type Store interface {
	GetNotes(ctx context.Context, userID int64, date string) (*db.DailyNotes, error)
	UpsertNotes(ctx context.Context, userID int64, date string, update NotesUpdate) (*db.DailyNotes, error)
	SearchNotes(ctx context.Context, userID int64, term string) ([]db.DailyNotes, error)

	GetGratitude(ctx context.Context, userID int64, date string) (*db.DailyGratitude, error)
	UpsertGratitude(ctx context.Context, userID int64, date, content string) (*db.DailyGratitude, error)
	SearchGratitude(ctx context.Context, userID int64, term string) ([]db.DailyGratitude, error)

	GetTimeLogSummary(ctx context.Context, userID int64, date string) (*db.TimeLogSummary, error)
	SaveTimeLogSummary(ctx context.Context, summary *db.TimeLogSummary) error
	GetDailySummary(ctx context.Context, userID int64, date string) (*db.DailySummary, error)
	SaveDailySummary(ctx context.Context, summary *db.DailySummary) error
	GetMoodAnalysis(ctx context.Context, userID int64, date string) (*db.MoodAnalysis, error)
	SaveMoodAnalysis(ctx context.Context, analysis *db.MoodAnalysis) error

	// CreateTask fails with ErrCapacityExceeded when the date already holds
	// DailyLimits[type] tasks of that type.
	CreateTask(ctx context.Context, userID int64, task NewTask) (*db.DailyTask, error)
	// ListTasks orders incomplete tasks before completed ones, each group by
	// creation time.
	ListTasks(ctx context.Context, userID int64, date string) ([]db.DailyTask, error)
	// UpdateTask also reports whether the update moved the task from
	// incomplete to completed.
	UpdateTask(ctx context.Context, userID int64, id uuid.UUID, update TaskUpdate) (*db.DailyTask, bool, error)
	DeleteTask(ctx context.Context, userID int64, id uuid.UUID) error

	// SaveTimeLogEntry writes to an occupied (date, slot) in place.
	SaveTimeLogEntry(ctx context.Context, userID int64, entry NewTimeLogEntry) (*db.TimeLogEntry, error)
	ListTimeLog(ctx context.Context, userID int64, date string) ([]db.TimeLogEntry, error)
	UpdateTimeLogEntry(ctx context.Context, userID int64, id uuid.UUID, activity string) (*db.TimeLogEntry, error)
	DeleteTimeLogEntry(ctx context.Context, userID int64, id uuid.UUID) error

	CreateMood(ctx context.Context, userID int64, mood NewMood) (*db.Mood, error)
	ListMoods(ctx context.Context, userID int64, date string) ([]db.Mood, error)
	DeleteMood(ctx context.Context, userID int64, id uuid.UUID) error

	CreateRecording(ctx context.Context, userID int64, rec NewRecording) (*db.Recording, error)
	ListRecordings(ctx context.Context, userID int64, kind db.RecordingKind, date string) ([]db.Recording, error)
	SearchRecordings(ctx context.Context, userID int64, kind db.RecordingKind, term string) ([]db.Recording, error)
	SetRecordingSummary(ctx context.Context, userID int64, id uuid.UUID, summary string) error
	DeleteRecording(ctx context.Context, userID int64, id uuid.UUID) error

	// GetStats returns zeroed counters for a user without a stats row.
	GetStats(ctx context.Context, userID int64) (*db.UserStats, error)
	UpdateStats(ctx context.Context, userID int64, apply func(*db.UserStats)) (*db.UserStats, error)

	// GetMarker returns "" for an unset marker.
	GetMarker(ctx context.Context, name string) (string, error)
	SetMarker(ctx context.Context, name, value string) error
}

func capacityError(taskType db.TaskType, limit int) error {
	return fmt.Errorf("%w: at most %d %s entries per day", ErrCapacityExceeded, limit, taskType)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}

// Ensure both stores implement Store.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
