// Package redisbus broadcasts cache invalidations between server instances
// over Redis pub/sub.
package redisbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/justestif/go-wellness-journal/internal/logger"
	"github.com/justestif/go-wellness-journal/internal/querycache"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "journal-invalidate"

// publisher is the part of the Redis client Publish needs.
type publisher interface {
	Publish(ctx context.Context, channel string, message any) *goredis.IntCmd
}

// Bus publishes and receives invalidation messages. Messages this instance
// published are not delivered back to it.
type Bus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	pub     publisher
	channel string
	origin  string
}

// New connects to Redis at addr and verifies the connection.
func New(ctx context.Context, addr, channel string, log *logger.Logger) (*Bus, error) {
	if addr == "" {
		return nil, errors.New("missing redis address")
	}
	if channel == "" {
		channel = DefaultChannel
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Bus{
		log:     log.With("service", "RedisBus"),
		rdb:     rdb,
		pub:     rdb,
		channel: channel,
		origin:  uuid.NewString(),
	}, nil
}

// Publish broadcasts msg to every subscriber.
func (b *Bus) Publish(ctx context.Context, msg querycache.Message) error {
	msg.Origin = b.origin
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding invalidation: %w", err)
	}
	if err := b.pub.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publishing invalidation: %w", err)
	}
	return nil
}

// Invalidate broadcasts an invalidation of keys for every user and date.
func (b *Bus) Invalidate(ctx context.Context, keys []string) error {
	return b.Publish(ctx, querycache.Message{Keys: keys})
}

// Subscribe delivers messages from other instances to onMsg until ctx is
// done. It returns once the subscription is confirmed.
func (b *Bus) Subscribe(ctx context.Context, onMsg func(querycache.Message)) error {
	if onMsg == nil {
		return errors.New("onMsg callback required")
	}

	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		b.forward(ctx, sub.Channel(), onMsg)
	}()
	return nil
}

// forward delivers messages from other instances until ctx is done or ch
// closes.
func (b *Bus) forward(ctx context.Context, ch <-chan *goredis.Message, onMsg func(querycache.Message)) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok || m == nil {
				return
			}
			msg, remote, err := decode(m.Payload, b.origin)
			if err != nil {
				b.log.Warn("Bad invalidation payload", "error", err)
				continue
			}
			if remote {
				onMsg(msg)
			}
		}
	}
}

// Close releases the connection.
func (b *Bus) Close() error {
	return b.rdb.Close()
}

// decode parses a payload and reports whether it came from another instance.
func decode(payload, origin string) (querycache.Message, bool, error) {
	var msg querycache.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return msg, false, err
	}
	return msg, msg.Origin != origin, nil
}
