package artifacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/justestif/go-wellness-journal/internal/aggregate"
	"github.com/justestif/go-wellness-journal/internal/db"
	"github.com/justestif/go-wellness-journal/internal/store"
)

// Common errors.
var (
	// ErrGeneration wraps any failure of the text-generation collaborator.
	ErrGeneration = errors.New("AI generation failed")

	// ErrNothingToSummarize is returned when the day has no input for the
	// requested artifact.
	ErrNothingToSummarize = errors.New("nothing to summarize")

	errNoCompleter = errors.New("no language model configured")
)

// Completer produces text from an instruction and a payload.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	CompleteJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)
}

// Snapshotter builds the same-day snapshot.
type Snapshotter interface {
	BuildDailySnapshot(ctx context.Context, userID int64, date string) (*aggregate.Snapshot, error)
}

// Writer is the store surface the generator writes through.
type Writer interface {
	GetNotes(ctx context.Context, userID int64, date string) (*db.DailyNotes, error)
	UpsertNotes(ctx context.Context, userID int64, date string, update store.NotesUpdate) (*db.DailyNotes, error)
	SaveTimeLogSummary(ctx context.Context, summary *db.TimeLogSummary) error
	SaveDailySummary(ctx context.Context, summary *db.DailySummary) error
	SaveMoodAnalysis(ctx context.Context, analysis *db.MoodAnalysis) error
}

// Generator runs the explicit generation actions. Every action makes exactly
// one model call and overwrites the stored artifact on success.
type Generator struct {
	writer    Writer
	snapshots Snapshotter
	completer Completer
	loc       *time.Location
}

// NewGenerator creates a Generator. A nil completer makes every action fail
// with ErrGeneration. loc is used to render timestamps in prompts.
func NewGenerator(writer Writer, snapshots Snapshotter, completer Completer, loc *time.Location) *Generator {
	return &Generator{writer: writer, snapshots: snapshots, completer: completer, loc: loc}
}

// SummarizeNotes generates a summary of the day's notes and stores it beside
// the content, which is left untouched.
func (g *Generator) SummarizeNotes(ctx context.Context, userID int64, date string) (*db.DailyNotes, error) {
	notes, err := g.writer.GetNotes(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if notes == nil || strings.TrimSpace(notes.Content) == "" {
		return nil, fmt.Errorf("%w: no notes for %s", ErrNothingToSummarize, date)
	}

	summary, err := g.complete(ctx, notesSystem, notes.Content)
	if err != nil {
		return nil, err
	}
	return g.writer.UpsertNotes(ctx, userID, date, store.NotesUpdate{Summary: &summary})
}

// AnalyzeMoods generates and stores an analysis of the day's mood check-ins.
func (g *Generator) AnalyzeMoods(ctx context.Context, userID int64, date string) (*db.MoodAnalysis, error) {
	snap, err := g.snapshots.BuildDailySnapshot(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if len(snap.Moods) == 0 {
		return nil, fmt.Errorf("%w: no moods for %s", ErrNothingToSummarize, date)
	}

	prompt, err := render(moodTemplate, snap, g.loc)
	if err != nil {
		return nil, fmt.Errorf("rendering mood prompt: %w", err)
	}
	text, err := g.complete(ctx, moodSystem, prompt)
	if err != nil {
		return nil, err
	}

	analysis := &db.MoodAnalysis{UserID: userID, Date: date, Analysis: text, MoodCount: len(snap.Moods)}
	if err := g.writer.SaveMoodAnalysis(ctx, analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

// SummarizeTimeLog generates and stores a summary of the day's time blocks.
func (g *Generator) SummarizeTimeLog(ctx context.Context, userID int64, date string) (*db.TimeLogSummary, error) {
	snap, err := g.snapshots.BuildDailySnapshot(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if len(snap.TimeLog) == 0 {
		return nil, fmt.Errorf("%w: no time log for %s", ErrNothingToSummarize, date)
	}

	prompt, err := render(timeLogTemplate, snap, g.loc)
	if err != nil {
		return nil, fmt.Errorf("rendering time log prompt: %w", err)
	}
	text, err := g.complete(ctx, timeLogSystem, prompt)
	if err != nil {
		return nil, err
	}

	summary := &db.TimeLogSummary{UserID: userID, Date: date, Summary: text, TotalEntries: len(snap.TimeLog)}
	if err := g.writer.SaveTimeLogSummary(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// SummarizeDay generates and stores the structured end-of-day summary from
// the full snapshot.
func (g *Generator) SummarizeDay(ctx context.Context, userID int64, date string) (*db.DailySummary, error) {
	snap, err := g.snapshots.BuildDailySnapshot(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing recorded on %s", ErrNothingToSummarize, date)
	}

	prompt, err := render(snapshotTemplate, snap, g.loc)
	if err != nil {
		return nil, fmt.Errorf("rendering snapshot prompt: %w", err)
	}
	if g.completer == nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, errNoCompleter)
	}
	obj, err := g.completer.CompleteJSON(ctx, dailySystem, prompt, "daily_summary", dailySummarySchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	summary := decodeDailySummary(obj)
	if summary.Summary == "" {
		return nil, fmt.Errorf("%w: reply has no summary", ErrGeneration)
	}
	summary.UserID = userID
	summary.Date = date
	if err := g.writer.SaveDailySummary(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// Motivate returns a motivational message for the day. The message is not
// stored; an empty day still gets one.
func (g *Generator) Motivate(ctx context.Context, userID int64, date string) (string, error) {
	snap, err := g.snapshots.BuildDailySnapshot(ctx, userID, date)
	if err != nil {
		return "", err
	}
	prompt, err := render(snapshotTemplate, snap, g.loc)
	if err != nil {
		return "", fmt.Errorf("rendering snapshot prompt: %w", err)
	}
	return g.complete(ctx, motivationSystem, prompt)
}

// Summarize produces a one-shot summary of free text. Used for enriching
// recordings.
func (g *Generator) Summarize(ctx context.Context, transcript string) (string, error) {
	return g.complete(ctx, notesSystem, transcript)
}

func (g *Generator) complete(ctx context.Context, system, user string) (string, error) {
	if g.completer == nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, errNoCompleter)
	}
	text, err := g.completer.Complete(ctx, system, user)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", ErrGeneration)
	}
	return text, nil
}

func decodeDailySummary(obj map[string]any) *db.DailySummary {
	s := &db.DailySummary{Highlights: []string{}}
	s.Summary, _ = obj["summary"].(string)
	s.MoodTheme, _ = obj["moodTheme"].(string)
	if n, ok := obj["productivityScore"].(float64); ok {
		s.ProductivityScore = min(max(int(n), 1), 10)
	}
	if items, ok := obj["highlights"].([]any); ok {
		for _, it := range items {
			if h, ok := it.(string); ok && strings.TrimSpace(h) != "" {
				s.Highlights = append(s.Highlights, h)
			}
		}
	}
	return s
}
