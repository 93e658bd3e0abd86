// Package journal is the application layer over the entity store. It adds
// read caching, cross-instance invalidation, usage counters, opportunistic
// summaries of recordings, and the current-day mood pointer.
package journal

import (
	"context"
	"sync"

	"github.com/justestif/go-wellness-journal/internal/artifacts"
	"github.com/justestif/go-wellness-journal/internal/calendar"
	"github.com/justestif/go-wellness-journal/internal/db"
	"github.com/justestif/go-wellness-journal/internal/logger"
	"github.com/justestif/go-wellness-journal/internal/querycache"
	"github.com/justestif/go-wellness-journal/internal/store"
)

// Publisher broadcasts invalidations to other instances.
type Publisher interface {
	Publish(ctx context.Context, msg querycache.Message) error
}

// Service coordinates journal reads and writes.
type Service struct {
	store     store.Store
	resolver  *calendar.Resolver
	cache     *querycache.Cache
	generator *artifacts.Generator
	artifacts *artifacts.Cache
	publisher Publisher
	log       *logger.Logger

	moodMu    sync.Mutex
	todayMood map[int64]db.Mood
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher broadcasts every write invalidation through p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// New creates a Service.
func New(st store.Store, resolver *calendar.Resolver, cache *querycache.Cache, generator *artifacts.Generator, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		store:     st,
		resolver:  resolver,
		cache:     cache,
		generator: generator,
		artifacts: artifacts.NewCache(st),
		log:       log.With("service", "JournalService"),
		todayMood: make(map[int64]db.Mood),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current date key.
func (s *Service) Today() string {
	return s.resolver.Today()
}

// Resolver returns the calendar resolver.
func (s *Service) Resolver() *calendar.Resolver {
	return s.resolver
}

// ResetDayState clears day-scoped in-process state. The rollover monitor
// calls it when the date changes.
func (s *Service) ResetDayState() {
	s.moodMu.Lock()
	clear(s.todayMood)
	s.moodMu.Unlock()
}

// forget drops cached reads of key and tells other instances to do the same.
// An empty date covers every date of the user.
func (s *Service) forget(ctx context.Context, key string, userID int64, date string) {
	s.cache.Forget(key, userID, date)
	if s.publisher == nil {
		return
	}
	msg := querycache.Message{Keys: []string{key}, UserID: userID, Date: date}
	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.log.Warn("Failed to broadcast invalidation", "key", key, "error", err)
	}
}

func cached[T any](ctx context.Context, s *Service, key string, userID int64, date string, load func(context.Context) (T, error)) (T, error) {
	return querycache.Load(ctx, s.cache, querycache.Slot{Key: key, UserID: userID, Date: date}, load)
}

// recordActivity bumps usage counters. Failures are logged; the entry that
// caused them is already stored.
func (s *Service) recordActivity(ctx context.Context, userID int64, delta store.StatsDelta) {
	if _, err := s.store.UpdateStats(ctx, userID, store.RecordActivity(s.Today(), delta)); err != nil {
		s.log.Error("Failed to update user stats", "user_id", userID, "error", err)
	}
}

// Stats returns the user's counters.
func (s *Service) Stats(ctx context.Context, userID int64) (*db.UserStats, error) {
	return s.store.GetStats(ctx, userID)
}
