package db

import (
	"time"

	"github.com/google/uuid"
)

// TaskType distinguishes the three daily list kinds.
type TaskType string

const (
	TaskTypeTask  TaskType = "task"
	TaskTypeHabit TaskType = "habit"
	TaskTypeLearn TaskType = "learn"
)

// RecordingKind distinguishes morning brain dumps from end-of-day reflections.
// Both share the recordings table.
type RecordingKind string

const (
	RecordingVoice      RecordingKind = "voice"
	RecordingReflection RecordingKind = "reflection"
)

// DailyNotes is the single notes page for a (user, date).
type DailyNotes struct {
	UserID    int64     `json:"userId"`
	Date      string    `json:"date"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary,omitempty"` // nullable
	UpdatedAt time.Time `json:"updatedAt"`
}

// DailyGratitude is the single gratitude entry for a (user, date).
type DailyGratitude struct {
	UserID    int64     `json:"userId"`
	Date      string    `json:"date"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TimeLogSummary is the generated summary of a day's time log.
type TimeLogSummary struct {
	UserID       int64     `json:"userId"`
	Date         string    `json:"date"`
	Summary      string    `json:"summary"`
	TotalEntries int       `json:"totalEntries"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DailySummary is the generated end-of-day summary.
type DailySummary struct {
	UserID            int64     `json:"userId"`
	Date              string    `json:"date"`
	Summary           string    `json:"summary"`
	Highlights        []string  `json:"highlights"`
	MoodTheme         string    `json:"moodTheme"`
	ProductivityScore int       `json:"productivityScore"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MoodAnalysis is the generated mood-journey insight for a day.
type MoodAnalysis struct {
	UserID    int64     `json:"userId"`
	Date      string    `json:"date"`
	Analysis  string    `json:"analysis"`
	MoodCount int       `json:"moodCount"`
	CreatedAt time.Time `json:"createdAt"`
}

// DailyTask is one entry of the task, habit or learn list for a date.
type DailyTask struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"userId"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Type      TaskType  `json:"type"`
	Date      string    `json:"date"`
	CreatedAt time.Time `json:"createdAt"`
}

// Recording is a transcribed voice brain dump or reflection.
type Recording struct {
	ID         uuid.UUID     `json:"id"`
	UserID     int64         `json:"userId"`
	Kind       RecordingKind `json:"kind"`
	Transcript string        `json:"transcript"`
	Summary    *string       `json:"summary,omitempty"` // nullable
	RecordedAt time.Time     `json:"recordedAt"`
}

// Mood is a single mood check-in.
type Mood struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"userId"`
	Mood      string    `json:"mood"`
	Emoji     string    `json:"emoji"`
	Note      *string   `json:"note,omitempty"` // nullable
	Timestamp time.Time `json:"timestamp"`
}

// TimeLogEntry records the activity of one 30-minute slot.
type TimeLogEntry struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"userId"`
	Date      string    `json:"date"`
	TimeSlot  string    `json:"timeSlot"`
	Activity  string    `json:"activity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserStats holds the per-user running counters.
type UserStats struct {
	UserID              int64   `json:"userId"`
	DayStreak           int     `json:"dayStreak"`
	TotalRecordings     int     `json:"totalRecordings"`
	TotalCompletedTasks int     `json:"totalCompletedTasks"`
	TotalReflections    int     `json:"totalReflections"`
	TotalMoods          int     `json:"totalMoods"`
	LastActiveDate      *string `json:"lastActiveDate,omitempty"` // nullable
}
