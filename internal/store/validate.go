package store

import (
	"strings"

	"github.com/justestif/go-wellness-journal/internal/calendar"
	"github.com/justestif/go-wellness-journal/internal/db"
)

func validateUser(userID int64) error {
	if userID <= 0 {
		return &ValidationError{Field: "userId", Message: "must be positive"}
	}
	return nil
}

func validateDate(date string) error {
	if !calendar.ValidDate(date) {
		return &ValidationError{Field: "date", Message: "expected YYYY-MM-DD"}
	}
	return nil
}

func validateDay(userID int64, date string) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	return validateDate(date)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

func validateNewTask(userID int64, t NewTask) error {
	if err := validateDay(userID, t.Date); err != nil {
		return err
	}
	if err := required("text", t.Text); err != nil {
		return err
	}
	if _, ok := DailyLimits[t.Type]; !ok {
		return &ValidationError{Field: "type", Message: "must be one of task, habit, learn"}
	}
	return nil
}

func validateTaskUpdate(u TaskUpdate) error {
	if u.Text == nil && u.Completed == nil {
		return &ValidationError{Field: "body", Message: "no fields to update"}
	}
	if u.Text != nil {
		return required("text", *u.Text)
	}
	return nil
}

func validateTimeLogEntry(userID int64, e NewTimeLogEntry) error {
	if err := validateDay(userID, e.Date); err != nil {
		return err
	}
	if !calendar.ValidSlot(e.TimeSlot) {
		return &ValidationError{Field: "timeSlot", Message: "must be a 30-minute slot between 05:00 and 22:00"}
	}
	return required("activity", e.Activity)
}

func validateNewMood(userID int64, m NewMood) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	if err := required("mood", m.Mood); err != nil {
		return err
	}
	return required("emoji", m.Emoji)
}

func validateNewRecording(userID int64, r NewRecording) error {
	if err := validateUser(userID); err != nil {
		return err
	}
	if err := validateKind(r.Kind); err != nil {
		return err
	}
	return required("transcript", r.Transcript)
}

func validateKind(kind db.RecordingKind) error {
	if kind != db.RecordingVoice && kind != db.RecordingReflection {
		return &ValidationError{Field: "kind", Message: "must be voice or reflection"}
	}
	return nil
}

// searchTerm normalizes a search term. The wildcard becomes "" which matches
// every row; an empty term is rejected.
func searchTerm(term string) (string, error) {
	term = strings.TrimSpace(term)
	if term == WildcardTerm {
		return "", nil
	}
	if term == "" {
		return "", &ValidationError{Field: "q", Message: "is required"}
	}
	return term, nil
}

func matches(content, term string) bool {
	return term == "" || strings.Contains(strings.ToLower(content), strings.ToLower(term))
}
