package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/justestif/go-wellness-journal/internal/aggregate"
	"github.com/justestif/go-wellness-journal/internal/artifacts"
	"github.com/justestif/go-wellness-journal/internal/querycache"
)

const (
	artifactVariant = "artifact"

	// generateTimeout bounds a generation once it no longer follows the
	// caller's context.
	generateTimeout = 2 * time.Minute
)

// cacheKey maps an artifact kind to the query key of the row it lives on.
func cacheKey(kind artifacts.Kind) string {
	switch kind {
	case artifacts.KindNotesSummary:
		return querycache.KeyNotes
	case artifacts.KindMoodAnalysis:
		return querycache.KeyMoodAnalysis
	case artifacts.KindTimeLogSummary:
		return querycache.KeyTimeLogSummary
	default:
		return querycache.KeyDailySummary
	}
}

// Artifact returns the cached artifact of kind for date, or nil when it was
// never generated.
func (s *Service) Artifact(ctx context.Context, userID int64, kind artifacts.Kind, date string) (*artifacts.Artifact, error) {
	slot := querycache.Slot{Key: cacheKey(kind), UserID: userID, Date: date, Variant: artifactVariant}
	return querycache.Load(ctx, s.cache, slot, func(ctx context.Context) (*artifacts.Artifact, error) {
		return s.artifacts.Lookup(ctx, userID, kind, date)
	})
}

// Generate runs the explicit generation action for kind and returns the
// stored result. The previous artifact, if any, is overwritten.
//
// The generation is not cancelled with ctx: a caller that goes away before
// the model answers still gets its artifact stored.
func (s *Service) Generate(ctx context.Context, userID int64, kind artifacts.Kind, date string) (any, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
	defer cancel()

	var (
		result any
		err    error
	)
	switch kind {
	case artifacts.KindNotesSummary:
		result, err = s.generator.SummarizeNotes(ctx, userID, date)
	case artifacts.KindMoodAnalysis:
		result, err = s.generator.AnalyzeMoods(ctx, userID, date)
	case artifacts.KindTimeLogSummary:
		result, err = s.generator.SummarizeTimeLog(ctx, userID, date)
	case artifacts.KindDailySummary:
		result, err = s.generator.SummarizeDay(ctx, userID, date)
	default:
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}
	if err != nil {
		s.log.Warn("Generation failed", "kind", kind, "date", date, "error", err)
		return nil, err
	}

	s.forget(ctx, cacheKey(kind), userID, date)
	s.log.Info("Generated artifact", "kind", kind, "date", date)
	return result, nil
}

// Motivate returns a fresh motivational message for date. It is not stored.
func (s *Service) Motivate(ctx context.Context, userID int64, date string) (string, error) {
	return s.generator.Motivate(ctx, userID, date)
}

// Snapshot returns the aggregated same-day snapshot for date.
func (s *Service) Snapshot(ctx context.Context, userID int64, date string) (*aggregate.Snapshot, error) {
	return aggregate.New(s.store).BuildDailySnapshot(ctx, userID, date)
}
