package journal

import (
	"context"

	"github.com/google/uuid"

	"github.com/justestif/go-wellness-journal/internal/db"
	"github.com/justestif/go-wellness-journal/internal/querycache"
	"github.com/justestif/go-wellness-journal/internal/store"
)

// ============================================================================
// Notes and gratitude
// ============================================================================

// Notes returns the day's notes, or nil.
func (s *Service) Notes(ctx context.Context, userID int64, date string) (*db.DailyNotes, error) {
	return cached(ctx, s, querycache.KeyNotes, userID, date, func(ctx context.Context) (*db.DailyNotes, error) {
		return s.store.GetNotes(ctx, userID, date)
	})
}

// SaveNotes upserts the day's notes.
func (s *Service) SaveNotes(ctx context.Context, userID int64, date string, update store.NotesUpdate) (*db.DailyNotes, error) {
	notes, err := s.store.UpsertNotes(ctx, userID, date, update)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, querycache.KeyNotes, userID, date)
	return notes, nil
}

// SearchNotes searches all of the user's notes.
func (s *Service) SearchNotes(ctx context.Context, userID int64, term string) ([]db.DailyNotes, error) {
	return s.store.SearchNotes(ctx, userID, term)
}

// Gratitude returns the day's gratitude entry, or nil.
func (s *Service) Gratitude(ctx context.Context, userID int64, date string) (*db.DailyGratitude, error) {
	return cached(ctx, s, querycache.KeyGratitude, userID, date, func(ctx context.Context) (*db.DailyGratitude, error) {
		return s.store.GetGratitude(ctx, userID, date)
	})
}

// SaveGratitude upserts the day's gratitude entry.
func (s *Service) SaveGratitude(ctx context.Context, userID int64, date, content string) (*db.DailyGratitude, error) {
	g, err := s.store.UpsertGratitude(ctx, userID, date, content)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, querycache.KeyGratitude, userID, date)
	return g, nil
}

// SearchGratitude searches all of the user's gratitude entries.
func (s *Service) SearchGratitude(ctx context.Context, userID int64, term string) ([]db.DailyGratitude, error) {
	return s.store.SearchGratitude(ctx, userID, term)
}

// ============================================================================
// Tasks
// ============================================================================

// Tasks returns the day's tasks, incomplete first.
func (s *Service) Tasks(ctx context.Context, userID int64, date string) ([]db.DailyTask, error) {
	return cached(ctx, s, querycache.KeyTasks, userID, date, func(ctx context.Context) ([]db.DailyTask, error) {
		tasks, err := s.store.ListTasks(ctx, userID, date)
		if tasks == nil && err == nil {
			tasks = []db.DailyTask{}
		}
		return tasks, err
	})
}

// AddTask appends a task, subject to the daily caps.
func (s *Service) AddTask(ctx context.Context, userID int64, task store.NewTask) (*db.DailyTask, error) {
	t, err := s.store.CreateTask(ctx, userID, task)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, querycache.KeyTasks, userID, t.Date)
	return t, nil
}

// UpdateTask edits a task and counts a newly completed one.
func (s *Service) UpdateTask(ctx context.Context, userID int64, id uuid.UUID, update store.TaskUpdate) (*db.DailyTask, error) {
	t, completed, err := s.store.UpdateTask(ctx, userID, id, update)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, querycache.KeyTasks, userID, t.Date)
	if completed {
		s.recordActivity(ctx, userID, store.StatsDelta{CompletedTasks: 1})
	}
	return t, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(ctx context.Context, userID int64, id uuid.UUID) error {
	if err := s.store.DeleteTask(ctx, userID, id); err != nil {
		return err
	}
	s.forget(ctx, querycache.KeyTasks, userID, "")
	return nil
}

// ============================================================================
// Time log
// ============================================================================

// TimeLog returns the day's filled slots in slot order.
func (s *Service) TimeLog(ctx context.Context, userID int64, date string) ([]db.TimeLogEntry, error) {
	return cached(ctx, s, querycache.KeyTimeLog, userID, date, func(ctx context.Context) ([]db.TimeLogEntry, error) {
		entries, err := s.store.ListTimeLog(ctx, userID, date)
		if entries == nil && err == nil {
			entries = []db.TimeLogEntry{}
		}
		return entries, err
	})
}

// SaveTimeLogEntry writes a slot, overwriting an occupied one.
func (s *Service) SaveTimeLogEntry(ctx context.Context, userID int64, entry store.NewTimeLogEntry) (*db.TimeLogEntry, error) {
	e, err := s.store.SaveTimeLogEntry(ctx, userID, entry)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, querycache.KeyTimeLog, userID, e.Date)
	return e, nil
}

// UpdateTimeLogEntry replaces a slot's activity.
func (s *Service) UpdateTimeLogEntry(ctx context.Context, userID int64, id uuid.UUID, activity string) (*db.TimeLogEntry, error) {
	e, err := s.store.UpdateTimeLogEntry(ctx, userID, id, activity)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, querycache.KeyTimeLog, userID, e.Date)
	return e, nil
}

// DeleteTimeLogEntry clears a slot.
func (s *Service) DeleteTimeLogEntry(ctx context.Context, userID int64, id uuid.UUID) error {
	if err := s.store.DeleteTimeLogEntry(ctx, userID, id); err != nil {
		return err
	}
	s.forget(ctx, querycache.KeyTimeLog, userID, "")
	return nil
}

// ============================================================================
// Moods
// ============================================================================

// Moods returns the day's mood check-ins, oldest first.
func (s *Service) Moods(ctx context.Context, userID int64, date string) ([]db.Mood, error) {
	moods, err := s.store.ListMoods(ctx, userID, date)
	if moods == nil && err == nil {
		moods = []db.Mood{}
	}
	return moods, err
}

// AddMood records a mood check-in. A check-in on the current day becomes the
// day's mood pointer.
func (s *Service) AddMood(ctx context.Context, userID int64, mood store.NewMood) (*db.Mood, error) {
	m, err := s.store.CreateMood(ctx, userID, mood)
	if err != nil {
		return nil, err
	}
	if s.resolver.Contains(s.Today(), m.Timestamp) {
		s.moodMu.Lock()
		if prev, ok := s.todayMood[userID]; !ok || !m.Timestamp.Before(prev.Timestamp) {
			s.todayMood[userID] = *m
		}
		s.moodMu.Unlock()
	}
	s.recordActivity(ctx, userID, store.StatsDelta{Moods: 1})
	return m, nil
}

// TodayMood returns the latest mood recorded today through this instance, or nil.
func (s *Service) TodayMood(userID int64) *db.Mood {
	s.moodMu.Lock()
	defer s.moodMu.Unlock()
	m, ok := s.todayMood[userID]
	if !ok || !s.resolver.Contains(s.Today(), m.Timestamp) {
		return nil
	}
	return &m
}

// DeleteMood removes a check-in.
func (s *Service) DeleteMood(ctx context.Context, userID int64, id uuid.UUID) error {
	if err := s.store.DeleteMood(ctx, userID, id); err != nil {
		return err
	}
	s.moodMu.Lock()
	if m, ok := s.todayMood[userID]; ok && m.ID == id {
		delete(s.todayMood, userID)
	}
	s.moodMu.Unlock()
	return nil
}

// ============================================================================
// Recordings
// ============================================================================

// Recordings returns the day's recordings of one kind, oldest first.
func (s *Service) Recordings(ctx context.Context, userID int64, kind db.RecordingKind, date string) ([]db.Recording, error) {
	recs, err := s.store.ListRecordings(ctx, userID, kind, date)
	if recs == nil && err == nil {
		recs = []db.Recording{}
	}
	return recs, err
}

// AddRecording stores a recording and then tries to attach a generated
// summary. A failed summary is logged and the recording is returned without
// one.
func (s *Service) AddRecording(ctx context.Context, userID int64, rec store.NewRecording) (*db.Recording, error) {
	r, err := s.store.CreateRecording(ctx, userID, rec)
	if err != nil {
		return nil, err
	}

	delta := store.StatsDelta{Recordings: 1}
	if r.Kind == db.RecordingReflection {
		delta = store.StatsDelta{Reflections: 1}
	}
	s.recordActivity(ctx, userID, delta)

	if r.Summary == nil {
		s.enrich(ctx, userID, r)
	}
	return r, nil
}

func (s *Service) enrich(ctx context.Context, userID int64, r *db.Recording) {
	log := s.log.With("recording_id", r.ID, "kind", r.Kind)

	summary, err := s.generator.Summarize(ctx, r.Transcript)
	if err != nil {
		log.Warn("Recording summary unavailable", "error", err)
		return
	}
	if err := s.store.SetRecordingSummary(ctx, userID, r.ID, summary); err != nil {
		log.Warn("Failed to store recording summary", "error", err)
		return
	}
	r.Summary = &summary
}

// SearchRecordings searches the user's recordings of one kind.
func (s *Service) SearchRecordings(ctx context.Context, userID int64, kind db.RecordingKind, term string) ([]db.Recording, error) {
	return s.store.SearchRecordings(ctx, userID, kind, term)
}

// DeleteRecording removes a recording.
func (s *Service) DeleteRecording(ctx context.Context, userID int64, id uuid.UUID) error {
	return s.store.DeleteRecording(ctx, userID, id)
}
