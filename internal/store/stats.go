package store

import (
	"github.com/justestif/go-wellness-journal/internal/calendar"
	"github.com/justestif/go-wellness-journal/internal/db"
)

// StatsDelta lists counter increments caused by one journal event.
type StatsDelta struct {
	Recordings     int
	CompletedTasks int
	Reflections    int
	Moods          int
}

// RecordActivity returns an apply function for UpdateStats that adds delta to
// the counters and advances the day streak for activity on today.
//
// Activity on the day after lastActiveDate extends the streak, activity on
// the same day leaves it unchanged, and anything else restarts it at 1.
func RecordActivity(today string, delta StatsDelta) func(*db.UserStats) {
	return func(s *db.UserStats) {
		s.TotalRecordings += max(delta.Recordings, 0)
		s.TotalCompletedTasks += max(delta.CompletedTasks, 0)
		s.TotalReflections += max(delta.Reflections, 0)
		s.TotalMoods += max(delta.Moods, 0)

		switch {
		case s.LastActiveDate != nil && *s.LastActiveDate == today:
			if s.DayStreak == 0 {
				s.DayStreak = 1
			}
		case s.LastActiveDate != nil && isDayBefore(*s.LastActiveDate, today):
			s.DayStreak++
		case s.LastActiveDate != nil && *s.LastActiveDate > today:
			// Clock skew or a backdated write; never move the marker backwards.
			return
		default:
			s.DayStreak = 1
		}
		last := today
		s.LastActiveDate = &last
	}
}

func isDayBefore(prev, today string) bool {
	yesterday, err := calendar.PreviousDay(today)
	if err != nil {
		return false
	}
	return prev == yesterday
}
