// Package aggregate assembles the same-day slices of every journal source
// into a single snapshot for summarization.
package aggregate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/justestif/go-wellness-journal/internal/db"
)

// Source is the subset of the entity store the aggregator reads from.
type Source interface {
	GetNotes(ctx context.Context, userID int64, date string) (*db.DailyNotes, error)
	GetGratitude(ctx context.Context, userID int64, date string) (*db.DailyGratitude, error)
	ListMoods(ctx context.Context, userID int64, date string) ([]db.Mood, error)
	ListTasks(ctx context.Context, userID int64, date string) ([]db.DailyTask, error)
	ListTimeLog(ctx context.Context, userID int64, date string) ([]db.TimeLogEntry, error)
	ListRecordings(ctx context.Context, userID int64, kind db.RecordingKind, date string) ([]db.Recording, error)
}

// MoodItem is one mood check-in in a snapshot.
type MoodItem struct {
	Mood      string    `json:"mood"`
	Emoji     string    `json:"emoji"`
	Note      *string   `json:"note,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// TaskItem is one task in a snapshot.
type TaskItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TimeLogItem is one filled time slot in a snapshot.
type TimeLogItem struct {
	TimeSlot string `json:"timeSlot"`
	Activity string `json:"activity"`
}

// Snapshot is everything the user recorded on one date.
// Sequences are never nil so they encode as [] rather than null.
type Snapshot struct {
	Date       string        `json:"date"`
	BrainDump  string        `json:"brainDump"`
	Notes      string        `json:"notes"`
	Gratitude  string        `json:"gratitude"`
	Moods      []MoodItem    `json:"moods"`
	Reflection string        `json:"reflection"`
	Tasks      []TaskItem    `json:"tasks"`
	TimeLog    []TimeLogItem `json:"timeLog"`
}

// IsEmpty reports whether nothing was recorded on the snapshot's date.
func (s *Snapshot) IsEmpty() bool {
	return s.BrainDump == "" && s.Notes == "" && s.Gratitude == "" && s.Reflection == "" &&
		len(s.Moods) == 0 && len(s.Tasks) == 0 && len(s.TimeLog) == 0
}

// Aggregator builds snapshots from a Source.
type Aggregator struct {
	source Source
}

// New creates an Aggregator.
func New(source Source) *Aggregator {
	return &Aggregator{source: source}
}

// BuildDailySnapshot reads every source for date concurrently. The first
// failing read cancels the rest and is returned.
//
// Recordings, reflections and moods carry timestamps; the source filters them
// by the reference-timezone day so the snapshot never has to slice dates.
func (a *Aggregator) BuildDailySnapshot(ctx context.Context, userID int64, date string) (*Snapshot, error) {
	snap := &Snapshot{
		Date:    date,
		Moods:   []MoodItem{},
		Tasks:   []TaskItem{},
		TimeLog: []TimeLogItem{},
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := a.source.ListRecordings(gctx, userID, db.RecordingVoice, date)
		if err != nil {
			return fmt.Errorf("loading voice recordings: %w", err)
		}
		snap.BrainDump = joinTranscripts(recs)
		return nil
	})

	g.Go(func() error {
		recs, err := a.source.ListRecordings(gctx, userID, db.RecordingReflection, date)
		if err != nil {
			return fmt.Errorf("loading reflections: %w", err)
		}
		snap.Reflection = joinTranscripts(recs)
		return nil
	})

	g.Go(func() error {
		notes, err := a.source.GetNotes(gctx, userID, date)
		if err != nil {
			return fmt.Errorf("loading notes: %w", err)
		}
		if notes != nil {
			snap.Notes = notes.Content
		}
		return nil
	})

	g.Go(func() error {
		gratitude, err := a.source.GetGratitude(gctx, userID, date)
		if err != nil {
			return fmt.Errorf("loading gratitude: %w", err)
		}
		if gratitude != nil {
			snap.Gratitude = gratitude.Content
		}
		return nil
	})

	g.Go(func() error {
		moods, err := a.source.ListMoods(gctx, userID, date)
		if err != nil {
			return fmt.Errorf("loading moods: %w", err)
		}
		for _, m := range moods {
			snap.Moods = append(snap.Moods, MoodItem{Mood: m.Mood, Emoji: m.Emoji, Note: m.Note, Timestamp: m.Timestamp})
		}
		return nil
	})

	g.Go(func() error {
		tasks, err := a.source.ListTasks(gctx, userID, date)
		if err != nil {
			return fmt.Errorf("loading tasks: %w", err)
		}
		for _, t := range tasks {
			snap.Tasks = append(snap.Tasks, TaskItem{Text: t.Text, Completed: t.Completed})
		}
		return nil
	})

	g.Go(func() error {
		entries, err := a.source.ListTimeLog(gctx, userID, date)
		if err != nil {
			return fmt.Errorf("loading time log: %w", err)
		}
		for _, e := range entries {
			snap.TimeLog = append(snap.TimeLog, TimeLogItem{TimeSlot: e.TimeSlot, Activity: e.Activity})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func joinTranscripts(recs []db.Recording) string {
	parts := make([]string, 0, len(recs))
	for _, r := range recs {
		if t := strings.TrimSpace(r.Transcript); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n")
}
