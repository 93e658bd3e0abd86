package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func textReply(text string) map[string]any {
	return map[string]any{
		"output": []any{
			map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(&Config{APIKey: "sk-test", BaseURL: server.URL, Model: "test-model", Timeout: 5 * time.Second})
}

func TestComplete(t *testing.T) {
	var got responsesRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != responsesPath {
			t.Errorf("path = %s, want %s", r.URL.Path, responsesPath)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(textReply("  Summary: met Bob \n"))
	})

	text, err := client.Complete(context.Background(), "Summarize.", "Met Bob today")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "Summary: met Bob" {
		t.Errorf("Complete() = %q, want trimmed text", text)
	}
	if got.Model != "test-model" || len(got.Input) != 2 || got.Input[0].Role != "system" || got.Input[1].Content != "Met Bob today" {
		t.Errorf("request = %+v", got)
	}
	if got.Text != nil {
		t.Error("plain completion should not request a response format")
	}
}

func TestCompleteJSON(t *testing.T) {
	var format map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req responsesRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Text != nil {
			format = req.Text.Format
		}
		json.NewEncoder(w).Encode(textReply(`{"summary":"good day","productivityScore":7}`))
	})

	schema := map[string]any{"type": "object"}
	obj, err := client.CompleteJSON(context.Background(), "sys", "user", "daily_summary", schema)
	if err != nil {
		t.Fatalf("CompleteJSON() error = %v", err)
	}
	if obj["summary"] != "good day" || obj["productivityScore"] != float64(7) {
		t.Errorf("CompleteJSON() = %v", obj)
	}
	if format["type"] != "json_schema" || format["name"] != "daily_summary" || format["strict"] != true {
		t.Errorf("format = %v", format)
	}
}

func TestComplete_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr error
	}{
		{
			name:   "refusal",
			status: http.StatusOK,
			body: map[string]any{"output": []any{map[string]any{
				"type":    "message",
				"content": []any{map[string]any{"type": "refusal", "refusal": "no"}},
			}}},
			wantErr: ErrRefused,
		},
		{
			name:    "empty output",
			status:  http.StatusOK,
			body:    map[string]any{"output": []any{}},
			wantErr: ErrEmptyOutput,
		},
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			body:   map[string]any{"error": map[string]any{"message": "overloaded"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(tt.body)
			})

			_, err := client.Complete(context.Background(), "sys", "user")
			if err == nil {
				t.Fatal("Complete() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Complete() error = %v, want %v", err, tt.wantErr)
			}
			if n := calls.Load(); n != 1 {
				t.Errorf("made %d requests, want exactly 1", n)
			}
		})
	}
}

func TestCompleteJSON_RequiresSchema(t *testing.T) {
	client := NewClient(&Config{APIKey: "k", BaseURL: "http://unused", Timeout: time.Second})
	if _, err := client.CompleteJSON(context.Background(), "s", "u", "", nil); err == nil {
		t.Error("CompleteJSON() without schema should fail")
	}
}
