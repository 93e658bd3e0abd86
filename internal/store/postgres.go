package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/justestif/go-wellness-journal/internal/calendar"
	"github.com/justestif/go-wellness-journal/internal/db"
)

// PostgresStore implements Store on top of the db repositories.
type PostgresStore struct {
	database *db.DB
	resolver *calendar.Resolver
}

// NewPostgresStore creates a database-backed store.
func NewPostgresStore(database *db.DB, resolver *calendar.Resolver) *PostgresStore {
	return &PostgresStore{database: database, resolver: resolver}
}

// absent maps db.ErrNotFound on a singleton lookup to the (nil, nil) sentinel.
func absent[T any](v *T, err error, op string) (*T, error) {
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, unavailable(op, err)
	}
	return v, nil
}

// mapErr translates repository errors for update and delete paths.
func mapErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, db.ErrNotFound) {
		return ErrNotFound
	}
	return unavailable(op, err)
}

// GetNotes returns the notes for a day, or nil if none were written.
func (s *PostgresStore) GetNotes(ctx context.Context, userID int64, date string) (*db.DailyNotes, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	n, err := s.database.Notes().Get(ctx, userID, date)
	return absent(n, err, "getting notes")
}

// UpsertNotes creates the day's notes or merges the non-nil fields into them.
func (s *PostgresStore) UpsertNotes(ctx context.Context, userID int64, date string, update NotesUpdate) (*db.DailyNotes, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	n, err := s.database.Notes().Upsert(ctx, userID, date, update.Content, update.Summary)
	if err != nil {
		return nil, unavailable("saving notes", err)
	}
	return n, nil
}

// SearchNotes returns the user's notes containing term, newest date first.
func (s *PostgresStore) SearchNotes(ctx context.Context, userID int64, term string) ([]db.DailyNotes, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	term, err := searchTerm(term)
	if err != nil {
		return nil, err
	}
	notes, err := s.database.Notes().Search(ctx, userID, term)
	if err != nil {
		return nil, unavailable("searching notes", err)
	}
	return notes, nil
}

// GetGratitude returns the gratitude entry for a day, or nil.
func (s *PostgresStore) GetGratitude(ctx context.Context, userID int64, date string) (*db.DailyGratitude, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	g, err := s.database.Gratitude().Get(ctx, userID, date)
	return absent(g, err, "getting gratitude")
}

// UpsertGratitude creates or replaces the day's gratitude content.
func (s *PostgresStore) UpsertGratitude(ctx context.Context, userID int64, date, content string) (*db.DailyGratitude, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	g, err := s.database.Gratitude().Upsert(ctx, userID, date, content)
	if err != nil {
		return nil, unavailable("saving gratitude", err)
	}
	return g, nil
}

// SearchGratitude returns the user's gratitude entries containing term, newest first.
func (s *PostgresStore) SearchGratitude(ctx context.Context, userID int64, term string) ([]db.DailyGratitude, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	term, err := searchTerm(term)
	if err != nil {
		return nil, err
	}
	result, err := s.database.Gratitude().Search(ctx, userID, term)
	if err != nil {
		return nil, unavailable("searching gratitude", err)
	}
	return result, nil
}

// GetTimeLogSummary returns the day's time-log summary, or nil.
func (s *PostgresStore) GetTimeLogSummary(ctx context.Context, userID int64, date string) (*db.TimeLogSummary, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	v, err := s.database.Summaries().GetTimeLogSummary(ctx, userID, date)
	return absent(v, err, "getting time log summary")
}

// SaveTimeLogSummary stores the day's time-log summary.
func (s *PostgresStore) SaveTimeLogSummary(ctx context.Context, summary *db.TimeLogSummary) error {
	if err := validateDay(summary.UserID, summary.Date); err != nil {
		return err
	}
	return mapErr(s.database.Summaries().UpsertTimeLogSummary(ctx, summary), "saving time log summary")
}

// GetDailySummary returns the day's summary, or nil.
func (s *PostgresStore) GetDailySummary(ctx context.Context, userID int64, date string) (*db.DailySummary, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	v, err := s.database.Summaries().GetDailySummary(ctx, userID, date)
	return absent(v, err, "getting daily summary")
}

// SaveDailySummary stores the day's summary.
func (s *PostgresStore) SaveDailySummary(ctx context.Context, summary *db.DailySummary) error {
	if err := validateDay(summary.UserID, summary.Date); err != nil {
		return err
	}
	return mapErr(s.database.Summaries().UpsertDailySummary(ctx, summary), "saving daily summary")
}

// GetMoodAnalysis returns the day's mood analysis, or nil.
func (s *PostgresStore) GetMoodAnalysis(ctx context.Context, userID int64, date string) (*db.MoodAnalysis, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	v, err := s.database.Summaries().GetMoodAnalysis(ctx, userID, date)
	return absent(v, err, "getting mood analysis")
}

// SaveMoodAnalysis stores the day's mood analysis.
func (s *PostgresStore) SaveMoodAnalysis(ctx context.Context, analysis *db.MoodAnalysis) error {
	if err := validateDay(analysis.UserID, analysis.Date); err != nil {
		return err
	}
	return mapErr(s.database.Summaries().UpsertMoodAnalysis(ctx, analysis), "saving mood analysis")
}

// CreateTask appends a task unless the day's list of that type is full.
func (s *PostgresStore) CreateTask(ctx context.Context, userID int64, task NewTask) (*db.DailyTask, error) {
	if err := validateNewTask(userID, task); err != nil {
		return nil, err
	}
	t := &db.DailyTask{
		UserID: userID,
		Text:   task.Text,
		Type:   task.Type,
		Date:   task.Date,
	}
	limit := DailyLimits[task.Type]
	ok, err := s.database.Tasks().CreateWithinLimit(ctx, t, limit)
	if err != nil {
		return nil, unavailable("creating task", err)
	}
	if !ok {
		return nil, capacityError(task.Type, limit)
	}
	return t, nil
}

// ListTasks returns the day's tasks, incomplete first, each group in creation order.
func (s *PostgresStore) ListTasks(ctx context.Context, userID int64, date string) ([]db.DailyTask, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	tasks, err := s.database.Tasks().ListForDate(ctx, userID, date)
	if err != nil {
		return nil, unavailable("listing tasks", err)
	}
	return tasks, nil
}

// UpdateTask applies a partial update to a task.
func (s *PostgresStore) UpdateTask(ctx context.Context, userID int64, id uuid.UUID, update TaskUpdate) (*db.DailyTask, bool, error) {
	if err := validateUser(userID); err != nil {
		return nil, false, err
	}
	if err := validateTaskUpdate(update); err != nil {
		return nil, false, err
	}
	task, wasCompleted, err := s.database.Tasks().Update(ctx, userID, id, update.Text, update.Completed)
	if err != nil {
		return nil, false, mapErr(err, "updating task")
	}
	return task, !wasCompleted && task.Completed, nil
}

// DeleteTask removes a task.
func (s *PostgresStore) DeleteTask(ctx context.Context, userID int64, id uuid.UUID) error {
	return mapErr(s.database.Tasks().Delete(ctx, userID, id), "deleting task")
}

// SaveTimeLogEntry writes the activity for a slot, updating an occupied slot in place.
func (s *PostgresStore) SaveTimeLogEntry(ctx context.Context, userID int64, entry NewTimeLogEntry) (*db.TimeLogEntry, error) {
	if err := validateTimeLogEntry(userID, entry); err != nil {
		return nil, err
	}
	e := &db.TimeLogEntry{
		UserID:   userID,
		Date:     entry.Date,
		TimeSlot: entry.TimeSlot,
		Activity: entry.Activity,
	}
	if _, err := s.database.TimeLog().UpsertSlot(ctx, e); err != nil {
		return nil, unavailable("saving time log entry", err)
	}
	return e, nil
}

// ListTimeLog returns the day's entries in slot order.
func (s *PostgresStore) ListTimeLog(ctx context.Context, userID int64, date string) ([]db.TimeLogEntry, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	entries, err := s.database.TimeLog().ListForDate(ctx, userID, date)
	if err != nil {
		return nil, unavailable("listing time log", err)
	}
	return entries, nil
}

// UpdateTimeLogEntry replaces the activity of an entry.
func (s *PostgresStore) UpdateTimeLogEntry(ctx context.Context, userID int64, id uuid.UUID, activity string) (*db.TimeLogEntry, error) {
	if err := required("activity", activity); err != nil {
		return nil, err
	}
	e, err := s.database.TimeLog().UpdateActivity(ctx, userID, id, activity)
	if err != nil {
		return nil, mapErr(err, "updating time log entry")
	}
	return e, nil
}

// DeleteTimeLogEntry removes an entry.
func (s *PostgresStore) DeleteTimeLogEntry(ctx context.Context, userID int64, id uuid.UUID) error {
	return mapErr(s.database.TimeLog().Delete(ctx, userID, id), "deleting time log entry")
}

// CreateMood appends a mood check-in.
func (s *PostgresStore) CreateMood(ctx context.Context, userID int64, mood NewMood) (*db.Mood, error) {
	if err := validateNewMood(userID, mood); err != nil {
		return nil, err
	}
	m := &db.Mood{
		UserID:    userID,
		Mood:      mood.Mood,
		Emoji:     mood.Emoji,
		Note:      mood.Note,
		Timestamp: mood.Timestamp,
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.resolver.Now()
	}
	if err := s.database.Moods().Create(ctx, m); err != nil {
		return nil, unavailable("creating mood", err)
	}
	return m, nil
}

// ListMoods returns the moods whose timestamp falls on date in the reference
// timezone, oldest first.
func (s *PostgresStore) ListMoods(ctx context.Context, userID int64, date string) ([]db.Mood, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	start, end, err := s.resolver.Bounds(date)
	if err != nil {
		return nil, err
	}
	moods, err := s.database.Moods().ListBetween(ctx, userID, start, end)
	if err != nil {
		return nil, unavailable("listing moods", err)
	}
	return moods, nil
}

// DeleteMood removes a mood.
func (s *PostgresStore) DeleteMood(ctx context.Context, userID int64, id uuid.UUID) error {
	return mapErr(s.database.Moods().Delete(ctx, userID, id), "deleting mood")
}

// CreateRecording appends a voice recording or reflection.
func (s *PostgresStore) CreateRecording(ctx context.Context, userID int64, rec NewRecording) (*db.Recording, error) {
	if err := validateNewRecording(userID, rec); err != nil {
		return nil, err
	}
	r := &db.Recording{
		UserID:     userID,
		Kind:       rec.Kind,
		Transcript: rec.Transcript,
		Summary:    rec.Summary,
		RecordedAt: rec.RecordedAt,
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = s.resolver.Now()
	}
	if err := s.database.Recordings().Create(ctx, r); err != nil {
		return nil, unavailable("creating recording", err)
	}
	return r, nil
}

// ListRecordings returns recordings of one kind made on date in the reference
// timezone, oldest first.
func (s *PostgresStore) ListRecordings(ctx context.Context, userID int64, kind db.RecordingKind, date string) ([]db.Recording, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	start, end, err := s.resolver.Bounds(date)
	if err != nil {
		return nil, err
	}
	recs, err := s.database.Recordings().ListBetween(ctx, userID, kind, start, end)
	if err != nil {
		return nil, unavailable("listing recordings", err)
	}
	return recs, nil
}

// SearchRecordings returns recordings of one kind containing term, newest first.
func (s *PostgresStore) SearchRecordings(ctx context.Context, userID int64, kind db.RecordingKind, term string) ([]db.Recording, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	term, err := searchTerm(term)
	if err != nil {
		return nil, err
	}
	recs, err := s.database.Recordings().Search(ctx, userID, kind, term)
	if err != nil {
		return nil, unavailable("searching recordings", err)
	}
	return recs, nil
}

// SetRecordingSummary attaches a summary to a recording.
func (s *PostgresStore) SetRecordingSummary(ctx context.Context, userID int64, id uuid.UUID, summary string) error {
	return mapErr(s.database.Recordings().SetSummary(ctx, userID, id, summary), "saving recording summary")
}

// DeleteRecording removes a recording.
func (s *PostgresStore) DeleteRecording(ctx context.Context, userID int64, id uuid.UUID) error {
	return mapErr(s.database.Recordings().Delete(ctx, userID, id), "deleting recording")
}

// GetStats returns the user's counters.
func (s *PostgresStore) GetStats(ctx context.Context, userID int64) (*db.UserStats, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	st, err := s.database.Stats().Get(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return &db.UserStats{UserID: userID}, nil
	}
	if err != nil {
		return nil, unavailable("getting user stats", err)
	}
	return st, nil
}

// UpdateStats applies a mutation to the user's counters under a row lock.
func (s *PostgresStore) UpdateStats(ctx context.Context, userID int64, apply func(*db.UserStats)) (*db.UserStats, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	st, err := s.database.Stats().Update(ctx, userID, apply)
	if err != nil {
		return nil, unavailable("updating user stats", err)
	}
	return st, nil
}

// GetMarker returns a marker value, or "" if unset.
func (s *PostgresStore) GetMarker(ctx context.Context, name string) (string, error) {
	v, err := s.database.Markers().Get(ctx, name)
	if errors.Is(err, db.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", unavailable("getting marker", err)
	}
	return v, nil
}

// SetMarker stores a marker value.
func (s *PostgresStore) SetMarker(ctx context.Context, name, value string) error {
	if err := s.database.Markers().Set(ctx, name, value); err != nil {
		return unavailable("setting marker", err)
	}
	return nil
}
