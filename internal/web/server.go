package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/justestif/go-wellness-journal/internal/journal"
	"github.com/justestif/go-wellness-journal/internal/logger"
	"github.com/justestif/go-wellness-journal/internal/rollover"
)

const (
	// DefaultAddr is the default server address.
	DefaultAddr = "127.0.0.1:8080"

	// DefaultUserID is the single demo user every request acts as.
	DefaultUserID int64 = 1
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr    string
	UserID  int64
	Journal *journal.Service
	Monitor *rollover.Monitor
	Log     *logger.Logger
}

// Server is the HTTP server for the journal API.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	log      *logger.Logger
	userID   int64
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Journal == nil || cfg.Monitor == nil {
		return nil, errors.New("journal service and rollover monitor are required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.UserID == 0 {
		cfg.UserID = DefaultUserID
	}
	log := cfg.Log.With("service", "HTTPServer")

	router := chi.NewRouter()

	s := &Server{
		router:   router,
		handlers: NewHandlers(cfg.Journal, cfg.Monitor, log),
		log:      log,
		userID:   cfg.UserID,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second, // generation requests wait on the model
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(WithUser(s.userID))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/healthz", h.Health)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/today", h.Today)
		r.Get("/time-slots", h.TimeSlots)
		r.Get("/user-stats", h.UserStats)
		r.Get("/snapshot", h.Snapshot)

		r.Get("/notes", h.GetNotes)
		r.Post("/notes", h.SaveNotes)
		r.Get("/search-notes", h.SearchNotes)

		r.Get("/gratitude", h.GetGratitude)
		r.Post("/gratitude", h.SaveGratitude)
		r.Get("/search-gratitude", h.SearchGratitude)

		r.Get("/tasks", h.ListTasks)
		r.Post("/tasks", h.CreateTask)
		r.Patch("/tasks/{id}", h.UpdateTask)
		r.Delete("/tasks/{id}", h.DeleteTask)

		r.Get("/time-log", h.ListTimeLog)
		r.Post("/time-log", h.SaveTimeLogEntry)
		r.Patch("/time-log/{id}", h.UpdateTimeLogEntry)
		r.Delete("/time-log/{id}", h.DeleteTimeLogEntry)

		r.Get("/moods", h.ListMoods)
		r.Get("/moods/today", h.TodayMood)
		r.Post("/moods", h.CreateMood)
		r.Delete("/moods/{id}", h.DeleteMood)

		r.Get("/voice-recordings", h.ListRecordings(voice))
		r.Post("/voice-recordings", h.CreateRecording(voice))
		r.Delete("/voice-recordings/{id}", h.DeleteRecording)
		r.Get("/search-voice-recordings", h.SearchRecordings(voice))

		r.Get("/reflections", h.ListRecordings(reflection))
		r.Post("/reflections", h.CreateRecording(reflection))
		r.Delete("/reflections/{id}", h.DeleteRecording)
		r.Get("/search-reflections", h.SearchRecordings(reflection))

		r.Get("/time-log-summary", h.GetArtifactValue(timeLogSummary))
		r.Get("/mood-analysis", h.GetArtifactValue(moodAnalysis))
		r.Get("/daily-summary", h.GetArtifactValue(dailySummary))
		r.Get("/artifacts/{kind}", h.GetArtifact)

		r.Post("/generate-notes-summary", h.Generate(notesSummary))
		r.Post("/generate-mood-analysis", h.Generate(moodAnalysis))
		r.Post("/generate-time-log-summary", h.Generate(timeLogSummary))
		r.Post("/generate-daily-summary", h.Generate(dailySummary))
		r.Post("/generate-motivation", h.Motivate)

		r.Get("/rollover", h.RolloverStatus)
		r.Post("/rollover/check", h.RolloverCheck)
	})
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Info("Starting server", "url", "http://"+s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down gracefully once ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("Shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.log.Info("Server stopped")
	return nil
}
