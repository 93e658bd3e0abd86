package store

import (
	"context"
	"testing"
	"time"

	"github.com/justestif/go-wellness-journal/internal/db"
)

func TestRecordActivity_Streak(t *testing.T) {
	tests := []struct {
		name       string
		last       *string
		streak     int
		today      string
		wantStreak int
		wantLast   string
	}{
		{"first activity", nil, 0, "2024-06-01", 1, "2024-06-01"},
		{"same day", ptr("2024-06-01"), 4, "2024-06-01", 4, "2024-06-01"},
		{"next day", ptr("2024-06-01"), 4, "2024-06-02", 5, "2024-06-02"},
		{"across month end", ptr("2024-02-29"), 2, "2024-03-01", 3, "2024-03-01"},
		{"gap resets", ptr("2024-05-28"), 9, "2024-06-01", 1, "2024-06-01"},
		{"backdated write ignored", ptr("2024-06-05"), 3, "2024-06-01", 3, "2024-06-05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &db.UserStats{DayStreak: tt.streak, LastActiveDate: tt.last}
			RecordActivity(tt.today, StatsDelta{Moods: 1})(s)

			if s.DayStreak != tt.wantStreak {
				t.Errorf("DayStreak = %d, want %d", s.DayStreak, tt.wantStreak)
			}
			if s.LastActiveDate == nil || *s.LastActiveDate != tt.wantLast {
				t.Errorf("LastActiveDate = %v, want %s", s.LastActiveDate, tt.wantLast)
			}
			if s.TotalMoods != 1 {
				t.Errorf("TotalMoods = %d, want 1", s.TotalMoods)
			}
		})
	}
}

func TestUpdateStats_Counters(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))

	empty, err := s.GetStats(ctx, testUser)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if empty.UserID != testUser || empty.DayStreak != 0 || empty.LastActiveDate != nil {
		t.Errorf("GetStats() on new user = %+v, want zeroed", empty)
	}

	deltas := []StatsDelta{{Recordings: 1}, {CompletedTasks: 1}, {Reflections: 1}, {Moods: 2}, {Moods: -5}}
	for _, d := range deltas {
		if _, err := s.UpdateStats(ctx, testUser, RecordActivity("2024-06-01", d)); err != nil {
			t.Fatalf("UpdateStats() error = %v", err)
		}
	}

	got, err := s.GetStats(ctx, testUser)
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if got.TotalRecordings != 1 || got.TotalCompletedTasks != 1 || got.TotalReflections != 1 || got.TotalMoods != 2 {
		t.Errorf("counters = %+v", got)
	}
	if got.DayStreak != 1 {
		t.Errorf("DayStreak = %d, want 1", got.DayStreak)
	}
}
