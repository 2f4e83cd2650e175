package ws

import (
	"context"
	"encoding/json"
	"strings"

	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/deepankarpant15/BanterBox/internal/app"
)

// BusMessage is the cross-instance fanout frame. Origin identifies the
// publishing instance so subscribers can skip their own messages.
type BusMessage struct {
	Origin  string          `json:"origin"`
	Room    string          `json:"room"`
	Payload json.RawMessage `json:"payload"`
}

type RedisBus struct {
	rdb    *redis.Client
	log    *slog.Logger
	origin string
}

// NewRedisBus connects to redis and verifies connectivity.
func NewRedisBus(ctx context.Context, cfg app.Config, log *slog.Logger) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisBus{rdb: rdb, log: log, origin: uuid.NewString()}, nil
}

// Publish sends a frame to the redis channel for a room.
func (b *RedisBus) Publish(ctx context.Context, room string, payload []byte) error {
	raw, _ := json.Marshal(BusMessage{Origin: b.origin, Room: room, Payload: payload})
	return b.rdb.Publish(ctx, channel(room), raw).Err()
}

// Subscribe listens on all room channels and invokes fn for every frame
// published by another instance.
func (b *RedisBus) Subscribe(ctx context.Context, fn func(room string, payload []byte)) {
	pubsub := b.rdb.PSubscribe(ctx, channel("*"))
	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg := <-ch:
			var bm BusMessage
			if err := json.Unmarshal([]byte(msg.Payload), &bm); err != nil {
				b.log.Debug("bus.frame.bad", "err", err)
				continue
			}
			if bm.Origin == b.origin || bm.Room == "" {
				continue
			}
			fn(bm.Room, bm.Payload)
		}
	}
}

// Close shuts down the redis connection.
func (b *RedisBus) Close() { _ = b.rdb.Close() }

// channel namespacing for room pub/sub.
func channel(room string) string {
	return "room:" + strings.ToLower(room)
}
