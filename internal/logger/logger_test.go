package logger

import "testing"

func TestNew(t *testing.T) {
	for _, mode := range []string{"", "dev", "production", "PROD", "silent"} {
		t.Run(mode, func(t *testing.T) {
			log, err := New(mode)
			if err != nil {
				t.Fatalf("New(%q) error = %v", mode, err)
			}
			log.With("service", "test").Info("hello", "n", 1)
		})
	}
}
