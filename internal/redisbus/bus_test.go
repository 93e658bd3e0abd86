package redisbus

import (
	"context"
	"encoding/json"
	"slices"
	"testing"

	goredis "github.com/redis/go-redis/v9"

	"github.com/justestif/go-wellness-journal/internal/logger"
	"github.com/justestif/go-wellness-journal/internal/querycache"
)

// fakeRedis records published payloads.
type fakeRedis struct {
	channels []string
	payloads []string
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message any) *goredis.IntCmd {
	f.channels = append(f.channels, channel)
	f.payloads = append(f.payloads, string(message.([]byte)))
	cmd := goredis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func TestPublish_OwnMessagesNotDelivered(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{}
	b := &Bus{log: logger.Nop(), pub: fake, channel: DefaultChannel, origin: "self"}

	if err := b.Publish(ctx, querycache.Message{Keys: []string{querycache.KeyNotes}, UserID: 1, Date: "2024-06-01"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := b.Invalidate(ctx, querycache.DateScopedKeys); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if len(fake.payloads) != 2 || fake.channels[0] != DefaultChannel {
		t.Fatalf("published %v on %v", fake.payloads, fake.channels)
	}

	var sent querycache.Message
	if err := json.Unmarshal([]byte(fake.payloads[0]), &sent); err != nil {
		t.Fatal(err)
	}
	if sent.Origin != "self" || sent.UserID != 1 || sent.Date != "2024-06-01" {
		t.Errorf("published message = %+v, want origin stamped", sent)
	}

	remote, _ := json.Marshal(querycache.Message{Keys: []string{querycache.KeyTasks}, Origin: "other"})
	ch := make(chan *goredis.Message, 4)
	for _, p := range append(fake.payloads, "not json", string(remote)) {
		ch <- &goredis.Message{Channel: DefaultChannel, Payload: p}
	}
	close(ch)

	var got []querycache.Message
	b.forward(ctx, ch, func(msg querycache.Message) { got = append(got, msg) })

	if len(got) != 1 || !slices.Equal(got[0].Keys, []string{querycache.KeyTasks}) {
		t.Errorf("delivered %+v, want only the remote tasks message", got)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantRemote bool
		wantErr    bool
		wantKeys   []string
	}{
		{
			name:       "remote rollover",
			payload:    `{"keys":["notes","tasks"],"origin":"other"}`,
			wantRemote: true,
			wantKeys:   []string{"notes", "tasks"},
		},
		{
			name:     "own message",
			payload:  `{"keys":["notes"],"origin":"self"}`,
			wantKeys: []string{"notes"},
		},
		{
			name:       "scoped write",
			payload:    `{"keys":["notes"],"userId":1,"date":"2024-06-01","origin":"other"}`,
			wantRemote: true,
			wantKeys:   []string{"notes"},
		},
		{
			name:    "garbage",
			payload: `not json`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, remote, err := decode(tt.payload, "self")
			if (err != nil) != tt.wantErr {
				t.Fatalf("decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if remote != tt.wantRemote {
				t.Errorf("remote = %v, want %v", remote, tt.wantRemote)
			}
			if !slices.Equal(msg.Keys, tt.wantKeys) {
				t.Errorf("Keys = %v, want %v", msg.Keys, tt.wantKeys)
			}
		})
	}
}
