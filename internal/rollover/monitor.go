// Package rollover detects the change of the reference calendar day and
// invalidates everything cached for the previous day.
package rollover

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/justestif/go-wellness-journal/internal/logger"
)

// MarkerName is the persisted marker holding the last date the monitor settled on.
const MarkerName = "rollover.last_active_date"

// DefaultInterval is how often Run re-checks the date.
const DefaultInterval = 60 * time.Second

// State is the monitor's position in its two-state machine.
type State int

const (
	Settled State = iota
	RollingOver
)

func (s State) String() string {
	if s == RollingOver {
		return "rolling-over"
	}
	return "settled"
}

// MarkerStore persists named markers.
type MarkerStore interface {
	GetMarker(ctx context.Context, name string) (string, error)
	SetMarker(ctx context.Context, name, value string) error
}

// Invalidator drops cached data for logical query keys.
type Invalidator interface {
	Invalidate(ctx context.Context, keys []string) error
}

// Fanout invalidates through every member, continuing past failures.
type Fanout []Invalidator

// Invalidate implements Invalidator.
func (f Fanout) Invalidate(ctx context.Context, keys []string) error {
	var errs []error
	for _, inv := range f {
		if inv == nil {
			continue
		}
		if err := inv.Invalidate(ctx, keys); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Status is a point-in-time view of the monitor.
type Status struct {
	State     string    `json:"state"`
	Date      string    `json:"date"`
	LastCheck time.Time `json:"lastCheck"`
	Rollovers int       `json:"rollovers"`
}

// Monitor compares the resolved date with the last settled date and runs the
// rollover actions when they differ.
type Monitor struct {
	today       func() string
	now         func() time.Time
	markers     MarkerStore
	invalidator Invalidator
	keys        []string
	resetHooks  []func()
	interval    time.Duration
	log         *logger.Logger

	mu        sync.Mutex
	state     State
	current   string
	loaded    bool
	lastCheck time.Time
	rollovers int
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the periodic check interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithResetHook registers a function that clears day-scoped in-process state.
// Hooks run after invalidation and before the marker is written.
func WithResetHook(hook func()) Option {
	return func(m *Monitor) {
		m.resetHooks = append(m.resetHooks, hook)
	}
}

// WithNow overrides the clock used for status timestamps.
func WithNow(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

// New creates a Monitor that invalidates keys whenever today() changes.
func New(today func() string, markers MarkerStore, invalidator Invalidator, keys []string, log *logger.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		today:       today,
		now:         time.Now,
		markers:     markers,
		invalidator: invalidator,
		keys:        slices.Clone(keys),
		interval:    DefaultInterval,
		log:         log.With("service", "RolloverMonitor"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Check runs one comparison. It returns the keys it invalidated, or nil when
// the date has not changed since the last settled check.
//
// The persisted marker is read only on the first check; later checks compare
// against the date this monitor settled on, so every process invalidates its
// own caches even when another process already moved the marker.
func (m *Monitor) Check(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastCheck = m.now()
	today := m.today()

	if !m.loaded {
		marker, err := m.markers.GetMarker(ctx, MarkerName)
		if err != nil {
			return nil, fmt.Errorf("reading rollover marker: %w", err)
		}
		m.current = marker
		m.loaded = true
	}

	if m.current == today {
		m.state = Settled
		return nil, nil
	}

	m.state = RollingOver
	previous := m.current

	if err := m.invalidator.Invalidate(ctx, m.keys); err != nil {
		return nil, fmt.Errorf("invalidating %v: %w", m.keys, err)
	}
	for _, hook := range m.resetHooks {
		hook()
	}
	if err := m.markers.SetMarker(ctx, MarkerName, today); err != nil {
		return nil, fmt.Errorf("writing rollover marker: %w", err)
	}

	m.current = today
	m.state = Settled
	m.rollovers++
	m.log.Info("Day rolled over", "from", previous, "to", today, "keys", len(m.keys))
	return slices.Clone(m.keys), nil
}

// Run checks on start and on every interval tick until ctx is done. Check
// failures are logged and retried on the next tick. Focus events call Check
// directly.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.runCheck(ctx, "start")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.runCheck(ctx, "interval")
		}
	}
}

func (m *Monitor) runCheck(ctx context.Context, trigger string) {
	if _, err := m.Check(ctx); err != nil {
		m.log.Warn("Rollover check failed", "trigger", trigger, "error", err)
	}
}

// Status reports the current state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		State:     m.state.String(),
		Date:      m.current,
		LastCheck: m.lastCheck,
		Rollovers: m.rollovers,
	}
}
