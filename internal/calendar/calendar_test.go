package calendar

import (
	"errors"
	"testing"
	"time"
)

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func TestToday(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{
			name: "evening in New York is still the same day",
			now:  time.Date(2024, 6, 2, 3, 50, 0, 0, time.UTC),
			want: "2024-06-01",
		},
		{
			name: "after local midnight",
			now:  time.Date(2024, 6, 2, 4, 0, 0, 0, time.UTC),
			want: "2024-06-02",
		},
		{
			name: "winter offset",
			now:  time.Date(2024, 1, 2, 4, 59, 0, 0, time.UTC),
			want: "2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewResolver(DefaultTimeZone, WithClock(fixedClock(tt.now)))
			if err != nil {
				t.Fatalf("NewResolver() error = %v", err)
			}
			if got := r.Today(); got != tt.want {
				t.Errorf("Today() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNewResolver_UnknownZone(t *testing.T) {
	if _, err := NewResolver("Not/AZone"); err == nil {
		t.Fatal("expected error for unknown timezone")
	}
}

func TestBounds(t *testing.T) {
	r, err := NewResolver(DefaultTimeZone)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	start, end, err := r.Bounds("2024-06-01")
	if err != nil {
		t.Fatalf("Bounds() error = %v", err)
	}
	if want := time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start.UTC(), want)
	}
	if want := time.Date(2024, 6, 2, 4, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end.UTC(), want)
	}

	// Spring-forward day is 23 hours long.
	start, end, err = r.Bounds("2024-03-10")
	if err != nil {
		t.Fatalf("Bounds() error = %v", err)
	}
	if got := end.Sub(start); got != 23*time.Hour {
		t.Errorf("DST day length = %v, want 23h", got)
	}

	if _, _, err := r.Bounds("2024-6-1"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("Bounds(bad) error = %v, want ErrInvalidDate", err)
	}
}

func TestContains(t *testing.T) {
	r, err := NewResolver(DefaultTimeZone)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}

	late := time.Date(2024, 6, 2, 3, 50, 0, 0, time.UTC)
	if !r.Contains("2024-06-01", late) {
		t.Error("expected 03:50Z on June 2 to fall on 2024-06-01 Eastern")
	}
	if r.Contains("2024-06-02", late) {
		t.Error("03:50Z on June 2 must not fall on 2024-06-02 Eastern")
	}
}

func TestPreviousDay(t *testing.T) {
	got, err := PreviousDay("2024-03-01")
	if err != nil {
		t.Fatalf("PreviousDay() error = %v", err)
	}
	if got != "2024-02-29" {
		t.Errorf("PreviousDay() = %s, want 2024-02-29", got)
	}
}

func TestValidDate(t *testing.T) {
	for in, want := range map[string]bool{
		"2024-06-01": true,
		"2024-02-30": false,
		"2024-6-01":  false,
		"":           false,
		"yesterday":  false,
	} {
		if got := ValidDate(in); got != want {
			t.Errorf("ValidDate(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()
	if len(slots) != 35 {
		t.Fatalf("len(TimeSlots()) = %d, want 35", len(slots))
	}
	if slots[0] != "05:00" || slots[len(slots)-1] != "22:00" {
		t.Errorf("slot range = %s..%s, want 05:00..22:00", slots[0], slots[len(slots)-1])
	}
	if !ValidSlot("13:30") {
		t.Error("13:30 should be a valid slot")
	}
	if ValidSlot("13:15") || ValidSlot("04:30") || ValidSlot("22:30") {
		t.Error("off-grid or out-of-range labels should be invalid")
	}
}
