package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/justestif/go-wellness-journal/internal/artifacts"
	"github.com/justestif/go-wellness-journal/internal/calendar"
	"github.com/justestif/go-wellness-journal/internal/db"
	"github.com/justestif/go-wellness-journal/internal/journal"
	"github.com/justestif/go-wellness-journal/internal/logger"
	"github.com/justestif/go-wellness-journal/internal/rollover"
	"github.com/justestif/go-wellness-journal/internal/store"
)

const (
	voice      = db.RecordingVoice
	reflection = db.RecordingReflection

	notesSummary   = artifacts.KindNotesSummary
	moodAnalysis   = artifacts.KindMoodAnalysis
	timeLogSummary = artifacts.KindTimeLogSummary
	dailySummary   = artifacts.KindDailySummary
)

// Handlers contains HTTP handlers for the journal API.
type Handlers struct {
	journal *journal.Service
	monitor *rollover.Monitor
	log     *logger.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(j *journal.Service, monitor *rollover.Monitor, log *logger.Logger) *Handlers {
	return &Handlers{journal: j, monitor: monitor, log: log}
}

// Health reports liveness (GET /healthz).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Today returns the resolved date key (GET /api/today).
func (h *Handlers) Today(w http.ResponseWriter, r *http.Request) {
	res := h.journal.Resolver()
	writeJSON(w, http.StatusOK, map[string]any{
		"date":     res.Today(),
		"timeZone": res.Location().String(),
		"now":      res.Now().In(res.Location()),
	})
}

// TimeSlots lists the valid time-log slot labels (GET /api/time-slots).
func (h *Handlers) TimeSlots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, calendar.TimeSlots())
}

// UserStats returns the user's counters (GET /api/user-stats).
func (h *Handlers) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.journal.Stats(r.Context(), UserFromContext(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Snapshot returns the aggregated day (GET /api/snapshot?date=).
func (h *Handlers) Snapshot(w http.ResponseWriter, r *http.Request) {
	date, err := h.resolveDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	snap, err := h.journal.Snapshot(r.Context(), UserFromContext(r.Context()), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ============================================================================
// Notes and gratitude
// ============================================================================

type notesRequest struct {
	Date    string  `json:"date"`
	Content *string `json:"content"`
	Summary *string `json:"summary"`
}

// GetNotes handles GET /api/notes?date=.
func (h *Handlers) GetNotes(w http.ResponseWriter, r *http.Request) {
	date, err := h.resolveDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	notes, err := h.journal.Notes(r.Context(), UserFromContext(r.Context()), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if notes == nil {
		writeAbsent(w)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// SaveNotes handles POST /api/notes. Fields left out of the body keep their
// stored values.
func (h *Handlers) SaveNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Content == nil && req.Summary == nil {
		h.writeError(w, r, badRequest("body", "content or summary is required"))
		return
	}
	date, err := h.resolveDate(req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	notes, err := h.journal.SaveNotes(r.Context(), UserFromContext(r.Context()), date, store.NotesUpdate{Content: req.Content, Summary: req.Summary})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// SearchNotes handles GET /api/search-notes?q=. The term "." lists every entry.
func (h *Handlers) SearchNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.journal.SearchNotes(r.Context(), UserFromContext(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(notes))
}

type gratitudeRequest struct {
	Date    string  `json:"date"`
	Content *string `json:"content"`
}

// GetGratitude handles GET /api/gratitude?date=.
func (h *Handlers) GetGratitude(w http.ResponseWriter, r *http.Request) {
	date, err := h.resolveDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	g, err := h.journal.Gratitude(r.Context(), UserFromContext(r.Context()), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if g == nil {
		writeAbsent(w)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// SaveGratitude handles POST /api/gratitude.
func (h *Handlers) SaveGratitude(w http.ResponseWriter, r *http.Request) {
	var req gratitudeRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Content == nil {
		h.writeError(w, r, badRequest("content", "is required"))
		return
	}
	date, err := h.resolveDate(req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	g, err := h.journal.SaveGratitude(r.Context(), UserFromContext(r.Context()), date, *req.Content)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// SearchGratitude handles GET /api/search-gratitude?q=.
func (h *Handlers) SearchGratitude(w http.ResponseWriter, r *http.Request) {
	entries, err := h.journal.SearchGratitude(r.Context(), UserFromContext(r.Context()), r.URL.Query().Get("q"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// ============================================================================
// Tasks
// ============================================================================

type createTaskRequest struct {
	Text string      `json:"text"`
	Type db.TaskType `json:"type"`
	Date string      `json:"date"`
}

type updateTaskRequest struct {
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
}

// ListTasks handles GET /api/tasks?date=.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	date, err := h.resolveDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	tasks, err := h.journal.Tasks(r.Context(), UserFromContext(r.Context()), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(tasks))
}

// CreateTask handles POST /api/tasks.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Type == "" {
		req.Type = db.TaskTypeTask
	}
	date, err := h.resolveDate(req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	task, err := h.journal.AddTask(r.Context(), UserFromContext(r.Context()), store.NewTask{Text: req.Text, Type: req.Type, Date: date})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PATCH /api/tasks/{id}.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req updateTaskRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	task, err := h.journal.UpdateTask(r.Context(), UserFromContext(r.Context()), id, store.TaskUpdate{Text: req.Text, Completed: req.Completed})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.journal.DeleteTask)
}

// ============================================================================
// Time log
// ============================================================================

type timeLogRequest struct {
	Date     string `json:"date"`
	TimeSlot string `json:"timeSlot"`
	Activity string `json:"activity"`
}

// ListTimeLog handles GET /api/time-log?date=.
func (h *Handlers) ListTimeLog(w http.ResponseWriter, r *http.Request) {
	date, err := h.resolveDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := h.journal.TimeLog(r.Context(), UserFromContext(r.Context()), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(entries))
}

// SaveTimeLogEntry handles POST /api/time-log. Writing an occupied slot
// replaces its activity.
func (h *Handlers) SaveTimeLogEntry(w http.ResponseWriter, r *http.Request) {
	var req timeLogRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	date, err := h.resolveDate(req.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, err := h.journal.SaveTimeLogEntry(r.Context(), UserFromContext(r.Context()), store.NewTimeLogEntry{
		Date:     date,
		TimeSlot: req.TimeSlot,
		Activity: req.Activity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// UpdateTimeLogEntry handles PATCH /api/time-log/{id}.
func (h *Handlers) UpdateTimeLogEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req timeLogRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, err := h.journal.UpdateTimeLogEntry(r.Context(), UserFromContext(r.Context()), id, req.Activity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteTimeLogEntry handles DELETE /api/time-log/{id}.
func (h *Handlers) DeleteTimeLogEntry(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.journal.DeleteTimeLogEntry)
}

// ============================================================================
// Moods
// ============================================================================

type moodRequest struct {
	Mood      string     `json:"mood"`
	Emoji     string     `json:"emoji"`
	Note      *string    `json:"note"`
	Timestamp *time.Time `json:"timestamp"`
}

// ListMoods handles GET /api/moods?date=.
func (h *Handlers) ListMoods(w http.ResponseWriter, r *http.Request) {
	date, err := h.resolveDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	moods, err := h.journal.Moods(r.Context(), UserFromContext(r.Context()), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(moods))
}

// TodayMood handles GET /api/moods/today.
func (h *Handlers) TodayMood(w http.ResponseWriter, r *http.Request) {
	mood := h.journal.TodayMood(UserFromContext(r.Context()))
	if mood == nil {
		writeAbsent(w)
		return
	}
	writeJSON(w, http.StatusOK, mood)
}

// CreateMood handles POST /api/moods.
func (h *Handlers) CreateMood(w http.ResponseWriter, r *http.Request) {
	var req moodRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	in := store.NewMood{Mood: req.Mood, Emoji: req.Emoji, Note: req.Note}
	if req.Timestamp != nil {
		in.Timestamp = *req.Timestamp
	}
	mood, err := h.journal.AddMood(r.Context(), UserFromContext(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mood)
}

// DeleteMood handles DELETE /api/moods/{id}.
func (h *Handlers) DeleteMood(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.journal.DeleteMood)
}

// ============================================================================
// Recordings
// ============================================================================

type recordingRequest struct {
	Transcript string     `json:"transcript"`
	Summary    *string    `json:"summary"`
	RecordedAt *time.Time `json:"recordedAt"`
}

// ListRecordings handles GET /api/voice-recordings and /api/reflections.
func (h *Handlers) ListRecordings(kind db.RecordingKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := h.resolveDate(r.URL.Query().Get("date"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		recs, err := h.journal.Recordings(r.Context(), UserFromContext(r.Context()), kind, date)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(recs))
	}
}

// CreateRecording handles POST /api/voice-recordings and /api/reflections.
// The response carries a summary when one could be generated.
func (h *Handlers) CreateRecording(kind db.RecordingKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordingRequest
		if err := decodeBody(r, &req); err != nil {
			h.writeError(w, r, err)
			return
		}
		in := store.NewRecording{Kind: kind, Transcript: req.Transcript, Summary: req.Summary}
		if req.RecordedAt != nil {
			in.RecordedAt = *req.RecordedAt
		}
		rec, err := h.journal.AddRecording(r.Context(), UserFromContext(r.Context()), in)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// SearchRecordings handles GET /api/search-voice-recordings?q= and its
// reflection counterpart.
func (h *Handlers) SearchRecordings(kind db.RecordingKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := h.journal.SearchRecordings(r.Context(), UserFromContext(r.Context()), kind, r.URL.Query().Get("q"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(recs))
	}
}

// DeleteRecording handles DELETE of a voice recording or reflection.
func (h *Handlers) DeleteRecording(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.journal.DeleteRecording)
}

// ============================================================================
// Artifacts
// ============================================================================

type generateRequest struct {
	Date string `json:"date"`
}

// GetArtifactValue serves a stored artifact row directly, or {} when absent.
func (h *Handlers) GetArtifactValue(kind artifacts.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := h.resolveDate(r.URL.Query().Get("date"))
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		art, err := h.journal.Artifact(r.Context(), UserFromContext(r.Context()), kind, date)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if art == nil {
			writeAbsent(w)
			return
		}
		writeJSON(w, http.StatusOK, art.Value)
	}
}

// GetArtifact handles GET /api/artifacts/{kind}?date= and tells the client
// whether to offer generation or refresh.
func (h *Handlers) GetArtifact(w http.ResponseWriter, r *http.Request) {
	kind, ok := artifacts.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		h.writeError(w, r, badRequest("kind", "unknown artifact kind"))
		return
	}
	date, err := h.resolveDate(r.URL.Query().Get("date"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	art, err := h.journal.Artifact(r.Context(), UserFromContext(r.Context()), kind, date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if art == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "absent"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "cached", "artifact": art})
}

// Generate handles POST /api/generate-{kind}. It always regenerates.
func (h *Handlers) Generate(kind artifacts.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date, err := h.requestDate(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		result, err := h.journal.Generate(r.Context(), UserFromContext(r.Context()), kind, date)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// Motivate handles POST /api/generate-motivation.
func (h *Handlers) Motivate(w http.ResponseWriter, r *http.Request) {
	date, err := h.requestDate(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	msg, err := h.journal.Motivate(r.Context(), UserFromContext(r.Context()), date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"date": date, "message": msg})
}

// ============================================================================
// Rollover
// ============================================================================

// RolloverStatus handles GET /api/rollover.
func (h *Handlers) RolloverStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.monitor.Status())
}

// RolloverCheck handles POST /api/rollover/check, sent when a client regains
// focus. It reports which keys were invalidated.
func (h *Handlers) RolloverCheck(w http.ResponseWriter, r *http.Request) {
	keys, err := h.monitor.Check(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"invalidated": nonNil(keys),
		"status":      h.monitor.Status(),
	})
}

// ============================================================================
// Helper Functions
// ============================================================================

// requestDate reads the target date from the JSON body, then the query
// string, defaulting to today.
func (h *Handlers) requestDate(r *http.Request) (string, error) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		return "", err
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = r.URL.Query().Get("date")
	}
	return h.resolveDate(date)
}

func (h *Handlers) deleteByID(w http.ResponseWriter, r *http.Request, del func(ctx context.Context, userID int64, id uuid.UUID) error) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := del(r.Context(), UserFromContext(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
