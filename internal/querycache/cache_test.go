package querycache

import (
	"context"
	"errors"
	"testing"
)

func counter(calls *int, value string) func(context.Context) (string, error) {
	return func(context.Context) (string, error) {
		*calls++
		return value, nil
	}
}

func TestLoad_CachesUntilForgotten(t *testing.T) {
	ctx := context.Background()
	c := New()
	slot := Slot{Key: KeyNotes, UserID: 1, Date: "2024-06-01"}

	calls := 0
	for i := 0; i < 3; i++ {
		v, err := Load(ctx, c, slot, counter(&calls, "notes"))
		if err != nil || v != "notes" {
			t.Fatalf("Load() = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}

	c.Forget(KeyNotes, 1, "2024-06-01")
	Load(ctx, c, slot, counter(&calls, "notes"))
	if calls != 2 {
		t.Errorf("loader called %d times after Forget, want 2", calls)
	}

	entries, hits, misses := c.Stats()
	if entries != 1 || hits != 2 || misses != 2 {
		t.Errorf("Stats() = %d, %d, %d", entries, hits, misses)
	}
}

func TestLoad_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	c := New()
	slot := Slot{Key: KeyTasks, UserID: 1, Date: "2024-06-01"}
	boom := errors.New("boom")

	_, err := Load(ctx, c, slot, func(context.Context) ([]string, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("Load() error = %v", err)
	}

	calls := 0
	Load(ctx, c, slot, func(context.Context) ([]string, error) { calls++; return []string{"a"}, nil })
	if calls != 1 {
		t.Error("failed load should not have been cached")
	}
}

func TestLoad_CachesNilPointer(t *testing.T) {
	ctx := context.Background()
	c := New()
	slot := Slot{Key: KeyGratitude, UserID: 1, Date: "2024-06-01"}

	calls := 0
	load := func(context.Context) (*string, error) { calls++; return nil, nil }
	Load(ctx, c, slot, load)
	Load(ctx, c, slot, load)
	if calls != 1 {
		t.Errorf("absent value loaded %d times, want 1", calls)
	}
}

func TestApply_Scopes(t *testing.T) {
	ctx := context.Background()
	seed := func() *Cache {
		c := New()
		for _, s := range []Slot{
			{Key: KeyNotes, UserID: 1, Date: "2024-06-01"},
			{Key: KeyNotes, UserID: 1, Date: "2024-06-02"},
			{Key: KeyNotes, UserID: 1, Date: "2024-06-02", Variant: "artifact"},
			{Key: KeyNotes, UserID: 2, Date: "2024-06-01"},
			{Key: KeyTasks, UserID: 1, Date: "2024-06-01"},
		} {
			Load(ctx, c, s, func(context.Context) (int, error) { return 1, nil })
		}
		return c
	}

	tests := []struct {
		name string
		msg  Message
		want int
	}{
		{"one day", Message{Keys: []string{KeyNotes}, UserID: 1, Date: "2024-06-02"}, 3},
		{"all dates of user", Message{Keys: []string{KeyNotes}, UserID: 1}, 2},
		{"all users", Message{Keys: []string{KeyNotes}}, 1},
		{"every date-scoped key", Message{Keys: DateScopedKeys}, 0},
		{"no keys", Message{}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := seed()
			c.Apply(tt.msg)
			if n, _, _ := c.Stats(); n != tt.want {
				t.Errorf("entries after Apply = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestLoad_InvalidationDuringLoadNotCached(t *testing.T) {
	ctx := context.Background()
	c := New()
	slot := Slot{Key: KeyNotes, UserID: 1, Date: "2024-06-01"}

	reading := make(chan struct{})
	resume := make(chan struct{})
	done := make(chan string)
	go func() {
		v, _ := Load(ctx, c, slot, func(context.Context) (string, error) {
			close(reading)
			<-resume
			return "old", nil
		})
		done <- v
	}()

	<-reading
	c.Forget(KeyNotes, 1, "2024-06-01") // a write lands while the read is in flight
	close(resume)
	if v := <-done; v != "old" {
		t.Fatalf("in-flight Load() = %q, want old", v)
	}

	calls := 0
	v, err := Load(ctx, c, slot, counter(&calls, "new"))
	if err != nil || v != "new" {
		t.Errorf("Load() after write = %q, %v; want new", v, err)
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}
