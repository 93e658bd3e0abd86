package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-wellness-journal/internal/calendar"
	"github.com/justestif/go-wellness-journal/internal/db"
)

type dayKey struct {
	userID int64
	date   string
}

// seq breaks creation-time ties so ordering stays stable under a frozen clock.
type taskRow struct {
	db.DailyTask
	seq uint64
}

// MemoryStore is an in-process arena of maps. It is safe for concurrent use.
type MemoryStore struct {
	resolver *calendar.Resolver

	mu             sync.RWMutex
	seq            uint64
	notes          map[dayKey]db.DailyNotes
	gratitude      map[dayKey]db.DailyGratitude
	timeLogSummary map[dayKey]db.TimeLogSummary
	dailySummary   map[dayKey]db.DailySummary
	moodAnalysis   map[dayKey]db.MoodAnalysis
	tasks          map[uuid.UUID]taskRow
	timeLog        map[uuid.UUID]db.TimeLogEntry
	moods          map[uuid.UUID]db.Mood
	recordings     map[uuid.UUID]db.Recording
	stats          map[int64]db.UserStats
	markers        map[string]string
}

// NewMemoryStore creates an empty in-memory store. Timestamps come from the
// resolver's clock.
func NewMemoryStore(resolver *calendar.Resolver) *MemoryStore {
	return &MemoryStore{
		resolver:       resolver,
		notes:          make(map[dayKey]db.DailyNotes),
		gratitude:      make(map[dayKey]db.DailyGratitude),
		timeLogSummary: make(map[dayKey]db.TimeLogSummary),
		dailySummary:   make(map[dayKey]db.DailySummary),
		moodAnalysis:   make(map[dayKey]db.MoodAnalysis),
		tasks:          make(map[uuid.UUID]taskRow),
		timeLog:        make(map[uuid.UUID]db.TimeLogEntry),
		moods:          make(map[uuid.UUID]db.Mood),
		recordings:     make(map[uuid.UUID]db.Recording),
		stats:          make(map[int64]db.UserStats),
		markers:        make(map[string]string),
	}
}

func (s *MemoryStore) now() time.Time {
	return s.resolver.Now()
}

// ============================================================================
// Singleton-per-day entities
// ============================================================================

// GetNotes returns the notes for a day, or nil if none were written.
func (s *MemoryStore) GetNotes(_ context.Context, userID int64, date string) (*db.DailyNotes, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[dayKey{userID, date}]
	if !ok {
		return nil, nil
	}
	n.Summary = clonePtr(n.Summary)
	return &n, nil
}

// UpsertNotes creates the day's notes or merges the non-nil fields into them.
func (s *MemoryStore) UpsertNotes(_ context.Context, userID int64, date string, update NotesUpdate) (*db.DailyNotes, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{userID, date}
	n, ok := s.notes[key]
	if !ok {
		n = db.DailyNotes{UserID: userID, Date: date}
	}
	if update.Content != nil {
		n.Content = *update.Content
	}
	if update.Summary != nil {
		n.Summary = clonePtr(update.Summary)
	}
	n.UpdatedAt = s.now()
	s.notes[key] = n

	n.Summary = clonePtr(n.Summary)
	return &n, nil
}

// SearchNotes returns the user's notes containing term, newest date first.
func (s *MemoryStore) SearchNotes(_ context.Context, userID int64, term string) ([]db.DailyNotes, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	term, err := searchTerm(term)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []db.DailyNotes
	for key, n := range s.notes {
		if key.userID == userID && matches(n.Content, term) {
			n.Summary = clonePtr(n.Summary)
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	return result, nil
}

// GetGratitude returns the gratitude entry for a day, or nil.
func (s *MemoryStore) GetGratitude(_ context.Context, userID int64, date string) (*db.DailyGratitude, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.gratitude[dayKey{userID, date}]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

// UpsertGratitude creates or replaces the day's gratitude content.
func (s *MemoryStore) UpsertGratitude(_ context.Context, userID int64, date, content string) (*db.DailyGratitude, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	g := db.DailyGratitude{UserID: userID, Date: date, Content: content, UpdatedAt: s.now()}
	s.gratitude[dayKey{userID, date}] = g
	return &g, nil
}

// SearchGratitude returns the user's gratitude entries containing term, newest first.
func (s *MemoryStore) SearchGratitude(_ context.Context, userID int64, term string) ([]db.DailyGratitude, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	term, err := searchTerm(term)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []db.DailyGratitude
	for key, g := range s.gratitude {
		if key.userID == userID && matches(g.Content, term) {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	return result, nil
}

// GetTimeLogSummary returns the day's time-log summary, or nil.
func (s *MemoryStore) GetTimeLogSummary(_ context.Context, userID int64, date string) (*db.TimeLogSummary, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.timeLogSummary[dayKey{userID, date}]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// SaveTimeLogSummary stores the day's time-log summary, replacing any earlier one.
func (s *MemoryStore) SaveTimeLogSummary(_ context.Context, summary *db.TimeLogSummary) error {
	if err := validateDay(summary.UserID, summary.Date); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	summary.CreatedAt = s.now()
	s.timeLogSummary[dayKey{summary.UserID, summary.Date}] = *summary
	return nil
}

// GetDailySummary returns the day's summary, or nil.
func (s *MemoryStore) GetDailySummary(_ context.Context, userID int64, date string) (*db.DailySummary, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.dailySummary[dayKey{userID, date}]
	if !ok {
		return nil, nil
	}
	v.Highlights = slices.Clone(v.Highlights)
	return &v, nil
}

// SaveDailySummary stores the day's summary, keeping the original creation time.
func (s *MemoryStore) SaveDailySummary(_ context.Context, summary *db.DailySummary) error {
	if err := validateDay(summary.UserID, summary.Date); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := dayKey{summary.UserID, summary.Date}
	now := s.now()
	summary.CreatedAt = now
	if prev, ok := s.dailySummary[key]; ok {
		summary.CreatedAt = prev.CreatedAt
	}
	summary.UpdatedAt = now
	stored := *summary
	stored.Highlights = slices.Clone(summary.Highlights)
	s.dailySummary[key] = stored
	return nil
}

// GetMoodAnalysis returns the day's mood analysis, or nil.
func (s *MemoryStore) GetMoodAnalysis(_ context.Context, userID int64, date string) (*db.MoodAnalysis, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.moodAnalysis[dayKey{userID, date}]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// SaveMoodAnalysis stores the day's mood analysis, replacing any earlier one.
func (s *MemoryStore) SaveMoodAnalysis(_ context.Context, analysis *db.MoodAnalysis) error {
	if err := validateDay(analysis.UserID, analysis.Date); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	analysis.CreatedAt = s.now()
	s.moodAnalysis[dayKey{analysis.UserID, analysis.Date}] = *analysis
	return nil
}

// ============================================================================
// Tasks
// ============================================================================

// CreateTask appends a task unless the day's list of that type is full.
func (s *MemoryStore) CreateTask(_ context.Context, userID int64, task NewTask) (*db.DailyTask, error) {
	if err := validateNewTask(userID, task); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.tasks {
		if t.UserID == userID && t.Date == task.Date && t.Type == task.Type {
			count++
		}
	}
	if limit := DailyLimits[task.Type]; count >= limit {
		return nil, capacityError(task.Type, limit)
	}

	s.seq++
	row := taskRow{
		DailyTask: db.DailyTask{
			ID:        uuid.New(),
			UserID:    userID,
			Text:      task.Text,
			Type:      task.Type,
			Date:      task.Date,
			CreatedAt: s.now(),
		},
		seq: s.seq,
	}
	s.tasks[row.ID] = row
	out := row.DailyTask
	return &out, nil
}

// ListTasks returns the day's tasks, incomplete first, each group in creation order.
func (s *MemoryStore) ListTasks(_ context.Context, userID int64, date string) ([]db.DailyTask, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var rows []taskRow
	for _, t := range s.tasks {
		if t.UserID == userID && t.Date == date {
			rows = append(rows, t)
		}
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.seq < b.seq
	})

	tasks := make([]db.DailyTask, len(rows))
	for i, r := range rows {
		tasks[i] = r.DailyTask
	}
	return tasks, nil
}

// UpdateTask applies a partial update to a task.
func (s *MemoryStore) UpdateTask(_ context.Context, userID int64, id uuid.UUID, update TaskUpdate) (*db.DailyTask, bool, error) {
	if err := validateUser(userID); err != nil {
		return nil, false, err
	}
	if err := validateTaskUpdate(update); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.tasks[id]
	if !ok || row.UserID != userID {
		return nil, false, ErrNotFound
	}
	wasCompleted := row.Completed
	if update.Text != nil {
		row.Text = *update.Text
	}
	if update.Completed != nil {
		row.Completed = *update.Completed
	}
	s.tasks[id] = row
	out := row.DailyTask
	return &out, !wasCompleted && out.Completed, nil
}

// DeleteTask removes a task.
func (s *MemoryStore) DeleteTask(_ context.Context, userID int64, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.tasks[id]
	if !ok || row.UserID != userID {
		return ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// ============================================================================
// Time log
// ============================================================================

// SaveTimeLogEntry writes the activity for a slot, updating an occupied slot in place.
func (s *MemoryStore) SaveTimeLogEntry(_ context.Context, userID int64, entry NewTimeLogEntry) (*db.TimeLogEntry, error) {
	if err := validateTimeLogEntry(userID, entry); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.timeLog {
		if e.UserID == userID && e.Date == entry.Date && e.TimeSlot == entry.TimeSlot {
			e.Activity = entry.Activity
			e.UpdatedAt = now
			s.timeLog[id] = e
			return &e, nil
		}
	}

	e := db.TimeLogEntry{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      entry.Date,
		TimeSlot:  entry.TimeSlot,
		Activity:  entry.Activity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.timeLog[e.ID] = e
	return &e, nil
}

// ListTimeLog returns the day's entries in slot order.
func (s *MemoryStore) ListTimeLog(_ context.Context, userID int64, date string) ([]db.TimeLogEntry, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []db.TimeLogEntry
	for _, e := range s.timeLog {
		if e.UserID == userID && e.Date == date {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return calendar.SlotIndex(entries[i].TimeSlot) < calendar.SlotIndex(entries[j].TimeSlot)
	})
	return entries, nil
}

// UpdateTimeLogEntry replaces the activity of an entry.
func (s *MemoryStore) UpdateTimeLogEntry(_ context.Context, userID int64, id uuid.UUID, activity string) (*db.TimeLogEntry, error) {
	if err := required("activity", activity); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timeLog[id]
	if !ok || e.UserID != userID {
		return nil, ErrNotFound
	}
	e.Activity = activity
	e.UpdatedAt = s.now()
	s.timeLog[id] = e
	return &e, nil
}

// DeleteTimeLogEntry removes an entry.
func (s *MemoryStore) DeleteTimeLogEntry(_ context.Context, userID int64, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.timeLog[id]
	if !ok || e.UserID != userID {
		return ErrNotFound
	}
	delete(s.timeLog, id)
	return nil
}

// ============================================================================
// Moods and recordings
// ============================================================================

// CreateMood appends a mood check-in.
func (s *MemoryStore) CreateMood(_ context.Context, userID int64, mood NewMood) (*db.Mood, error) {
	if err := validateNewMood(userID, mood); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := db.Mood{
		ID:        uuid.New(),
		UserID:    userID,
		Mood:      mood.Mood,
		Emoji:     mood.Emoji,
		Note:      clonePtr(mood.Note),
		Timestamp: mood.Timestamp,
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now()
	}
	s.moods[m.ID] = m
	m.Note = clonePtr(m.Note)
	return &m, nil
}

// ListMoods returns the moods whose timestamp falls on date in the reference
// timezone, oldest first.
func (s *MemoryStore) ListMoods(_ context.Context, userID int64, date string) ([]db.Mood, error) {
	if err := validateDay(userID, date); err != nil {
		return nil, err
	}
	start, end, err := s.resolver.Bounds(date)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var moods []db.Mood
	for _, m := range s.moods {
		if m.UserID == userID && within(m.Timestamp, start, end) {
			m.Note = clonePtr(m.Note)
			moods = append(moods, m)
		}
	}
	sort.Slice(moods, func(i, j int) bool { return moods[i].Timestamp.Before(moods[j].Timestamp) })
	return moods, nil
}

// DeleteMood removes a mood.
func (s *MemoryStore) DeleteMood(_ context.Context, userID int64, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.moods[id]
	if !ok || m.UserID != userID {
		return ErrNotFound
	}
	delete(s.moods, id)
	return nil
}

// CreateRecording appends a voice recording or reflection.
func (s *MemoryStore) CreateRecording(_ context.Context, userID int64, rec NewRecording) (*db.Recording, error) {
	if err := validateNewRecording(userID, rec); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := db.Recording{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       rec.Kind,
		Transcript: rec.Transcript,
		Summary:    clonePtr(rec.Summary),
		RecordedAt: rec.RecordedAt,
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = s.now()
	}
	s.recordings[r.ID] = r
	r.Summary = clonePtr(r.Summary)
	return &r, nil
}

// ListRecordings returns recordings of one kind made on date in the reference
// timezone, oldest first.
func (s *MemoryStore) ListRecordings(_ context.Context, userID int64, kind db.RecordingKind, date string) ([]db.Recording, error) {
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
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []db.Recording
	for _, r := range s.recordings {
		if r.UserID == userID && r.Kind == kind && within(r.RecordedAt, start, end) {
			r.Summary = clonePtr(r.Summary)
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].RecordedAt.Before(recs[j].RecordedAt) })
	return recs, nil
}

// SearchRecordings returns recordings of one kind containing term, newest first.
func (s *MemoryStore) SearchRecordings(_ context.Context, userID int64, kind db.RecordingKind, term string) ([]db.Recording, error) {
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
	s.mu.RLock()
	defer s.mu.RUnlock()

	var recs []db.Recording
	for _, r := range s.recordings {
		if r.UserID == userID && r.Kind == kind && matches(r.Transcript, term) {
			r.Summary = clonePtr(r.Summary)
			recs = append(recs, r)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].RecordedAt.After(recs[j].RecordedAt) })
	return recs, nil
}

// SetRecordingSummary attaches a summary to a recording.
func (s *MemoryStore) SetRecordingSummary(_ context.Context, userID int64, id uuid.UUID, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recordings[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	r.Summary = &summary
	s.recordings[id] = r
	return nil
}

// DeleteRecording removes a recording.
func (s *MemoryStore) DeleteRecording(_ context.Context, userID int64, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.recordings[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	delete(s.recordings, id)
	return nil
}

// ============================================================================
// Stats and markers
// ============================================================================

// GetStats returns the user's counters.
func (s *MemoryStore) GetStats(_ context.Context, userID int64) (*db.UserStats, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stats[userID]
	if !ok {
		st = db.UserStats{UserID: userID}
	}
	st.LastActiveDate = clonePtr(st.LastActiveDate)
	return &st, nil
}

// UpdateStats applies a mutation to the user's counters atomically.
func (s *MemoryStore) UpdateStats(_ context.Context, userID int64, apply func(*db.UserStats)) (*db.UserStats, error) {
	if err := validateUser(userID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stats[userID]
	if !ok {
		st = db.UserStats{UserID: userID}
	}
	st.LastActiveDate = clonePtr(st.LastActiveDate)
	apply(&st)
	s.stats[userID] = st

	out := st
	out.LastActiveDate = clonePtr(st.LastActiveDate)
	return &out, nil
}

// GetMarker returns a marker value, or "" if unset.
func (s *MemoryStore) GetMarker(_ context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.markers[name], nil
}

// SetMarker stores a marker value.
func (s *MemoryStore) SetMarker(_ context.Context, name, value string) error {
	s.mu.Lock()
	s.markers[name] = value
	s.mu.Unlock()
	return nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
