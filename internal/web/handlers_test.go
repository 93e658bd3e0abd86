package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-wellness-journal/internal/aggregate"
	"github.com/justestif/go-wellness-journal/internal/artifacts"
	"github.com/justestif/go-wellness-journal/internal/calendar"
	"github.com/justestif/go-wellness-journal/internal/journal"
	"github.com/justestif/go-wellness-journal/internal/logger"
	"github.com/justestif/go-wellness-journal/internal/querycache"
	"github.com/justestif/go-wellness-journal/internal/rollover"
	"github.com/justestif/go-wellness-journal/internal/store"
)

type fakeCompleter struct {
	text string
	err  error

	// When set, Complete signals started and waits for release or ctx.
	started chan struct{}
	release chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, _, _ string) (string, error) {
	if f.release != nil {
		f.started <- struct{}{}
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

func (f *fakeCompleter) CompleteJSON(context.Context, string, string, string, map[string]any) (map[string]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return map[string]any{"summary": f.text, "highlights": []any{}, "moodTheme": "calm", "productivityScore": float64(5)}, nil
}

type testServer struct {
	handler http.Handler
	llm     *fakeCompleter
	now     *time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	now := time.Date(2024, 6, 1, 16, 0, 0, 0, time.UTC)
	ts := &testServer{now: &now, llm: &fakeCompleter{text: "a summary"}}

	r, err := calendar.NewResolver(calendar.DefaultTimeZone, calendar.WithClock(func() time.Time { return *ts.now }))
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	st := store.NewMemoryStore(r)
	cache := querycache.New()
	gen := artifacts.NewGenerator(st, aggregate.New(st), ts.llm, r.Location())
	svc := journal.New(st, r, cache, gen, logger.Nop())
	monitor := rollover.New(r.Today, st, cache, querycache.DateScopedKeys, logger.Nop(), rollover.WithResetHook(svc.ResetDayState))

	srv, err := NewServer(ServerConfig{Journal: svc, Monitor: monitor, Log: logger.Nop()})
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	ts.handler = srv.Handler()
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestAbsentSingletons(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{
		"/api/notes",
		"/api/gratitude",
		"/api/moods/today",
		"/api/time-log-summary",
		"/api/mood-analysis",
		"/api/daily-summary",
	} {
		rec := ts.do(t, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", path, rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "{}" {
			t.Errorf("GET %s body = %s, want {}", path, got)
		}
	}

	for _, path := range []string{"/api/tasks", "/api/time-log", "/api/moods", "/api/reflections"} {
		rec := ts.do(t, http.MethodGet, path, "")
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("GET %s body = %s, want []", path, got)
		}
	}
}

func TestTasks_CapacityPerType(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 3; i++ {
		rec := ts.do(t, http.MethodPost, "/api/tasks", `{"text":"write","type":"task"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("task #%d status = %d: %s", i+1, rec.Code, rec.Body)
		}
	}

	rec := ts.do(t, http.MethodPost, "/api/tasks", `{"text":"one more","type":"task"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("4th task status = %d, want 400", rec.Code)
	}
	if body := decode[errorBody](t, rec); body.Error == "" {
		t.Error("capacity error has no message")
	}

	rec = ts.do(t, http.MethodPost, "/api/tasks", `{"text":"stretch","type":"habit"}`)
	if rec.Code != http.StatusCreated {
		t.Errorf("habit status = %d, want 201", rec.Code)
	}

	tasks := decode[[]map[string]any](t, ts.do(t, http.MethodGet, "/api/tasks", ""))
	if len(tasks) != 4 {
		t.Errorf("listed %d tasks, want 4", len(tasks))
	}
}

func TestTasks_UpdateAndDelete(t *testing.T) {
	ts := newTestServer(t)

	created := decode[map[string]any](t, ts.do(t, http.MethodPost, "/api/tasks", `{"text":"read","type":"learn"}`))
	id := created["id"].(string)

	rec := ts.do(t, http.MethodPatch, "/api/tasks/"+id, `{"completed":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PATCH status = %d: %s", rec.Code, rec.Body)
	}
	if got := decode[map[string]any](t, rec); got["completed"] != true {
		t.Errorf("PATCH result = %v", got)
	}

	stats := decode[map[string]any](t, ts.do(t, http.MethodGet, "/api/user-stats", ""))
	if stats["totalCompletedTasks"] != float64(1) {
		t.Errorf("stats = %v", stats)
	}

	if rec := ts.do(t, http.MethodDelete, "/api/tasks/"+id, ""); rec.Code != http.StatusOK {
		t.Errorf("DELETE status = %d", rec.Code)
	}
	if rec := ts.do(t, http.MethodDelete, "/api/tasks/"+id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", rec.Code)
	}
}

func TestErrorStatuses(t *testing.T) {
	ts := newTestServer(t)
	missing := uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"invalid date", http.MethodGet, "/api/notes?date=2024-13-45", "", http.StatusBadRequest},
		{"invalid body date", http.MethodPost, "/api/gratitude", `{"date":"June 1","content":"x"}`, http.StatusBadRequest},
		{"malformed JSON", http.MethodPost, "/api/notes", `{"content":`, http.StatusBadRequest},
		{"notes without fields", http.MethodPost, "/api/notes", `{}`, http.StatusBadRequest},
		{"unknown task type", http.MethodPost, "/api/tasks", `{"text":"x","type":"chore"}`, http.StatusBadRequest},
		{"blank task text", http.MethodPost, "/api/tasks", `{"text":"  ","type":"task"}`, http.StatusBadRequest},
		{"invalid slot", http.MethodPost, "/api/time-log", `{"timeSlot":"09:15","activity":"x"}`, http.StatusBadRequest},
		{"bad id", http.MethodDelete, "/api/moods/not-a-uuid", "", http.StatusBadRequest},
		{"missing mood", http.MethodDelete, "/api/moods/" + missing, "", http.StatusNotFound},
		{"missing recording", http.MethodDelete, "/api/voice-recordings/" + missing, "", http.StatusNotFound},
		{"missing time-log entry", http.MethodPatch, "/api/time-log/" + missing, `{"activity":"x"}`, http.StatusNotFound},
		{"unknown artifact kind", http.MethodGet, "/api/artifacts/weather", "", http.StatusBadRequest},
		{"blank search term", http.MethodGet, "/api/search-notes?q=", "", http.StatusBadRequest},
		{"nothing to summarize", http.MethodPost, "/api/generate-mood-analysis", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("%s %s status = %d, want %d: %s", tt.method, tt.path, rec.Code, tt.want, rec.Body)
			}
			if body := decode[errorBody](t, rec); body.Error == "" {
				t.Error("error body has no message")
			}
		})
	}
}

func TestNotesSummaryFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.text = "Summary: met Bob"

	if rec := ts.do(t, http.MethodPost, "/api/notes", `{"content":"Met Bob today"}`); rec.Code != http.StatusOK {
		t.Fatalf("POST notes status = %d: %s", rec.Code, rec.Body)
	}

	got := decode[map[string]any](t, ts.do(t, http.MethodGet, "/api/artifacts/notes-summary", ""))
	if got["status"] != "absent" {
		t.Fatalf("artifact before generation = %v", got)
	}

	rec := ts.do(t, http.MethodPost, "/api/generate-notes-summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d: %s", rec.Code, rec.Body)
	}

	got = decode[map[string]any](t, ts.do(t, http.MethodGet, "/api/artifacts/notes-summary?date=2024-06-01", ""))
	if got["status"] != "cached" {
		t.Fatalf("artifact after generation = %v", got)
	}
	if art := got["artifact"].(map[string]any); art["value"] != "Summary: met Bob" {
		t.Errorf("artifact = %v", art)
	}

	notes := decode[map[string]any](t, ts.do(t, http.MethodGet, "/api/notes", ""))
	if notes["content"] != "Met Bob today" || notes["summary"] != "Summary: met Bob" {
		t.Errorf("notes = %v", notes)
	}

	found := decode[[]map[string]any](t, ts.do(t, http.MethodGet, "/api/search-notes?q=BOB", ""))
	if len(found) != 1 {
		t.Errorf("search found %d entries, want 1", len(found))
	}
}

func TestGenerate_CompletesAfterClientLeaves(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.text = "Summary: met Bob"

	if rec := ts.do(t, http.MethodPost, "/api/notes", `{"content":"Met Bob today"}`); rec.Code != http.StatusOK {
		t.Fatalf("POST notes status = %d: %s", rec.Code, rec.Body)
	}

	ts.llm.started = make(chan struct{}, 1)
	ts.llm.release = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodPost, "/api/generate-notes-summary", nil).WithContext(ctx)
	done := make(chan struct{})
	go func() {
		ts.handler.ServeHTTP(httptest.NewRecorder(), req)
		close(done)
	}()

	<-ts.llm.started
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(ts.llm.release)
	<-done

	ts.llm.started, ts.llm.release = nil, nil
	notes := decode[map[string]any](t, ts.do(t, http.MethodGet, "/api/notes?date=2024-06-01", ""))
	if notes["summary"] != "Summary: met Bob" {
		t.Errorf("notes after client left = %v, want summary stored", notes)
	}
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.err = errors.New("upstream timeout")

	if rec := ts.do(t, http.MethodPost, "/api/time-log", `{"timeSlot":"10:00","activity":"reading"}`); rec.Code != http.StatusOK {
		t.Fatalf("POST time-log status = %d: %s", rec.Code, rec.Body)
	}

	rec := ts.do(t, http.MethodPost, "/api/generate-time-log-summary", `{"date":"2024-06-01"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("generate status = %d, want 502: %s", rec.Code, rec.Body)
	}

	if got := strings.TrimSpace(ts.do(t, http.MethodGet, "/api/time-log-summary", "").Body.String()); got != "{}" {
		t.Errorf("summary after failure = %s, want {}", got)
	}
}

func TestRecordings_SummaryDegrades(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.err = errors.New("rate limited")

	rec := ts.do(t, http.MethodPost, "/api/reflections", `{"transcript":"long walk, clear head"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST reflection status = %d: %s", rec.Code, rec.Body)
	}
	if got := decode[map[string]any](t, rec); got["summary"] != nil || got["kind"] != "reflection" {
		t.Errorf("reflection = %v", got)
	}

	if voice := decode[[]map[string]any](t, ts.do(t, http.MethodGet, "/api/voice-recordings", "")); len(voice) != 0 {
		t.Errorf("voice recordings = %v, want none", voice)
	}
	found := decode[[]map[string]any](t, ts.do(t, http.MethodGet, "/api/search-reflections?q=.", ""))
	if len(found) != 1 {
		t.Errorf("wildcard search found %d, want 1", len(found))
	}
}

func TestMoods_TodayPointer(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/moods", `{"mood":"happy","emoji":"😊","note":"sunny"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST mood status = %d: %s", rec.Code, rec.Body)
	}
	today := decode[map[string]any](t, ts.do(t, http.MethodGet, "/api/moods/today", ""))
	if today["mood"] != "happy" {
		t.Errorf("today mood = %v", today)
	}

	// 03:59 UTC on June 1 is still May 31 in New York.
	ts.do(t, http.MethodPost, "/api/moods", `{"mood":"tired","emoji":"😴","timestamp":"2024-06-01T03:59:00Z"}`)
	moods := decode[[]map[string]any](t, ts.do(t, http.MethodGet, "/api/moods?date=2024-05-31", ""))
	if len(moods) != 1 || moods[0]["mood"] != "tired" {
		t.Errorf("May 31 moods = %v", moods)
	}
}

func TestRolloverCheck(t *testing.T) {
	ts := newTestServer(t)

	first := decode[map[string]any](t, ts.do(t, http.MethodPost, "/api/rollover/check", ""))
	if keys := first["invalidated"].([]any); len(keys) != len(querycache.DateScopedKeys) {
		t.Errorf("first check invalidated %v", keys)
	}

	ts.do(t, http.MethodPost, "/api/notes", `{"content":"yesterday's notes"}`)

	second := decode[map[string]any](t, ts.do(t, http.MethodPost, "/api/rollover/check", ""))
	if keys := second["invalidated"].([]any); len(keys) != 0 {
		t.Errorf("same-day check invalidated %v", keys)
	}

	*ts.now = ts.now.Add(24 * time.Hour)
	third := decode[map[string]any](t, ts.do(t, http.MethodPost, "/api/rollover/check", ""))
	if keys := third["invalidated"].([]any); len(keys) != len(querycache.DateScopedKeys) {
		t.Errorf("next-day check invalidated %v", keys)
	}

	status := decode[map[string]any](t, ts.do(t, http.MethodGet, "/api/rollover", ""))
	if status["date"] != "2024-06-02" || status["state"] != "settled" || status["rollovers"] != float64(2) {
		t.Errorf("status = %v", status)
	}

	if got := strings.TrimSpace(ts.do(t, http.MethodGet, "/api/notes", "").Body.String()); got != "{}" {
		t.Errorf("notes on the new day = %s, want {}", got)
	}
}

func TestToday(t *testing.T) {
	ts := newTestServer(t)

	got := decode[map[string]any](t, ts.do(t, http.MethodGet, "/api/today", ""))
	if got["date"] != "2024-06-01" || got["timeZone"] != calendar.DefaultTimeZone {
		t.Errorf("today = %v", got)
	}

	slots := decode[[]string](t, ts.do(t, http.MethodGet, "/api/time-slots", ""))
	if len(slots) != len(calendar.TimeSlots()) {
		t.Errorf("slots = %d", len(slots))
	}
}
