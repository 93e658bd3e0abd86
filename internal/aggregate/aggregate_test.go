package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/justestif/go-wellness-journal/internal/calendar"
	"github.com/justestif/go-wellness-journal/internal/db"
	"github.com/justestif/go-wellness-journal/internal/store"
)

func newStore(t *testing.T, now time.Time) *store.MemoryStore {
	t.Helper()
	r, err := calendar.NewResolver(calendar.DefaultTimeZone, calendar.WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	return store.NewMemoryStore(r)
}

func TestBuildDailySnapshot_LateEveningRecording(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, time.Date(2024, 6, 2, 12, 0, 0, 0, time.UTC))

	eastern, _ := time.LoadLocation("America/New_York")
	lateNight := time.Date(2024, 6, 1, 23, 50, 0, 0, eastern) // 2024-06-02T03:50:00Z
	if _, err := s.CreateRecording(ctx, 1, store.NewRecording{Kind: db.RecordingVoice, Transcript: "wind down thoughts", RecordedAt: lateNight}); err != nil {
		t.Fatalf("CreateRecording() error = %v", err)
	}
	nextMorning := time.Date(2024, 6, 2, 4, 10, 0, 0, time.UTC)
	if _, err := s.CreateRecording(ctx, 1, store.NewRecording{Kind: db.RecordingVoice, Transcript: "morning plan", RecordedAt: nextMorning}); err != nil {
		t.Fatalf("CreateRecording() error = %v", err)
	}

	agg := New(s)

	june1, err := agg.BuildDailySnapshot(ctx, 1, "2024-06-01")
	if err != nil {
		t.Fatalf("BuildDailySnapshot() error = %v", err)
	}
	if june1.BrainDump != "wind down thoughts" {
		t.Errorf("June 1 BrainDump = %q, want the 23:50 recording", june1.BrainDump)
	}

	june2, err := agg.BuildDailySnapshot(ctx, 1, "2024-06-02")
	if err != nil {
		t.Fatalf("BuildDailySnapshot() error = %v", err)
	}
	if june2.BrainDump != "morning plan" {
		t.Errorf("June 2 BrainDump = %q, want only the morning recording", june2.BrainDump)
	}
}

func TestBuildDailySnapshot_AllSources(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC))
	const date = "2024-06-01"

	content := "Met Bob today"
	if _, err := s.UpsertNotes(ctx, 1, date, store.NotesUpdate{Content: &content}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UpsertGratitude(ctx, 1, date, "sunshine"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateMood(ctx, 1, store.NewMood{Mood: "calm", Emoji: "😌"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateRecording(ctx, 1, store.NewRecording{Kind: db.RecordingReflection, Transcript: "proud of today"}); err != nil {
		t.Fatal(err)
	}
	task, err := s.CreateTask(ctx, 1, store.NewTask{Text: "write report", Type: db.TaskTypeTask, Date: date})
	if err != nil {
		t.Fatal(err)
	}
	done := true
	if _, _, err := s.UpdateTask(ctx, 1, task.ID, store.TaskUpdate{Completed: &done}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveTimeLogEntry(ctx, 1, store.NewTimeLogEntry{Date: date, TimeSlot: "09:00", Activity: "deep work"}); err != nil {
		t.Fatal(err)
	}

	snap, err := New(s).BuildDailySnapshot(ctx, 1, date)
	if err != nil {
		t.Fatalf("BuildDailySnapshot() error = %v", err)
	}

	if snap.Notes != content || snap.Gratitude != "sunshine" || snap.Reflection != "proud of today" {
		t.Errorf("text fields = %q / %q / %q", snap.Notes, snap.Gratitude, snap.Reflection)
	}
	if snap.BrainDump != "" {
		t.Errorf("BrainDump = %q, want empty", snap.BrainDump)
	}
	if len(snap.Moods) != 1 || snap.Moods[0].Mood != "calm" {
		t.Errorf("Moods = %+v", snap.Moods)
	}
	if len(snap.Tasks) != 1 || !snap.Tasks[0].Completed {
		t.Errorf("Tasks = %+v", snap.Tasks)
	}
	if len(snap.TimeLog) != 1 || snap.TimeLog[0] != (TimeLogItem{TimeSlot: "09:00", Activity: "deep work"}) {
		t.Errorf("TimeLog = %+v", snap.TimeLog)
	}
	if snap.IsEmpty() {
		t.Error("IsEmpty() = true for a populated day")
	}
}

func TestBuildDailySnapshot_EmptyDay(t *testing.T) {
	s := newStore(t, time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC))

	snap, err := New(s).BuildDailySnapshot(context.Background(), 1, "2024-06-01")
	if err != nil {
		t.Fatalf("BuildDailySnapshot() error = %v", err)
	}
	if !snap.IsEmpty() {
		t.Errorf("IsEmpty() = false for %+v", snap)
	}
	if snap.Moods == nil || snap.Tasks == nil || snap.TimeLog == nil {
		t.Error("sequences should be empty, not nil")
	}
}

// failingSource fails one read and delegates the rest.
type failingSource struct {
	Source
	err error
}

func (f failingSource) ListTimeLog(context.Context, int64, string) ([]db.TimeLogEntry, error) {
	return nil, f.err
}

func TestBuildDailySnapshot_PropagatesFailure(t *testing.T) {
	boom := errors.New("connection reset")
	src := failingSource{Source: newStore(t, time.Now()), err: boom}

	_, err := New(src).BuildDailySnapshot(context.Background(), 1, "2024-06-01")
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapped %v", err, boom)
	}
}
