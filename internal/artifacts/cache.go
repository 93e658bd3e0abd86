// Package artifacts serves and produces the generated artifacts attached to
// a day: the notes summary, mood analysis, time-log summary and daily summary.
//
// Artifacts live on the same singleton-per-day rows the store owns. They are
// only ever produced by an explicit Generate call; a stale artifact is served
// as-is until the user asks for a new one.
package artifacts

import (
	"context"
	"fmt"
	"time"

	"github.com/justestif/go-wellness-journal/internal/db"
)

// Kind names a cacheable artifact.
type Kind string

// Artifact kinds.
const (
	KindNotesSummary   Kind = "notes-summary"
	KindMoodAnalysis   Kind = "mood-analysis"
	KindTimeLogSummary Kind = "time-log-summary"
	KindDailySummary   Kind = "daily-summary"
)

// Kinds lists every cacheable artifact kind.
var Kinds = []Kind{KindNotesSummary, KindMoodAnalysis, KindTimeLogSummary, KindDailySummary}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Artifact is a previously generated result.
type Artifact struct {
	Kind        Kind      `json:"kind"`
	Date        string    `json:"date"`
	Value       any       `json:"value"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Reader is the store surface the cache reads from.
type Reader interface {
	GetNotes(ctx context.Context, userID int64, date string) (*db.DailyNotes, error)
	GetTimeLogSummary(ctx context.Context, userID int64, date string) (*db.TimeLogSummary, error)
	GetDailySummary(ctx context.Context, userID int64, date string) (*db.DailySummary, error)
	GetMoodAnalysis(ctx context.Context, userID int64, date string) (*db.MoodAnalysis, error)
}

// Cache looks up generated artifacts.
type Cache struct {
	reader Reader
}

// NewCache creates a Cache over the store.
func NewCache(reader Reader) *Cache {
	return &Cache{reader: reader}
}

// Lookup returns the artifact of kind for date, or nil when it was never
// generated. A nil result is the cue to offer generation rather than refresh.
func (c *Cache) Lookup(ctx context.Context, userID int64, kind Kind, date string) (*Artifact, error) {
	switch kind {
	case KindNotesSummary:
		notes, err := c.reader.GetNotes(ctx, userID, date)
		if err != nil || notes == nil || notes.Summary == nil {
			return nil, err
		}
		return &Artifact{Kind: kind, Date: date, Value: *notes.Summary, GeneratedAt: notes.UpdatedAt}, nil

	case KindMoodAnalysis:
		v, err := c.reader.GetMoodAnalysis(ctx, userID, date)
		if err != nil || v == nil {
			return nil, err
		}
		return &Artifact{Kind: kind, Date: date, Value: v, GeneratedAt: v.CreatedAt}, nil

	case KindTimeLogSummary:
		v, err := c.reader.GetTimeLogSummary(ctx, userID, date)
		if err != nil || v == nil {
			return nil, err
		}
		return &Artifact{Kind: kind, Date: date, Value: v, GeneratedAt: v.CreatedAt}, nil

	case KindDailySummary:
		v, err := c.reader.GetDailySummary(ctx, userID, date)
		if err != nil || v == nil {
			return nil, err
		}
		return &Artifact{Kind: kind, Date: date, Value: v, GeneratedAt: v.UpdatedAt}, nil
	}
	return nil, fmt.Errorf("unknown artifact kind %q", kind)
}
