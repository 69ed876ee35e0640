package realtime

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const channelPrefix = "chat:conversation:"

// RedisBridge fans broadcasts out across process instances. Each instance
// publishes to a per-conversation channel and delivers to its local room
// members only on receipt, so a frame reaches every instance exactly once,
// the publisher included.
type RedisBridge struct {
	rdb *redis.Client
	log zerolog.Logger
}

func NewRedisBridge(redisURL string, logger zerolog.Logger) (*RedisBridge, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBridge{rdb: rdb, log: logger}, nil
}

func (b *RedisBridge) Publish(ctx context.Context, conversationID uint, frame []byte) error {
	return b.rdb.Publish(ctx, channelPrefix+strconv.FormatUint(uint64(conversationID), 10), frame).Err()
}

func (b *RedisBridge) Close() error {
	return b.rdb.Close()
}

// run consumes the conversation channels until ctx is done, handing each
// frame to deliver with the conversation id parsed from the channel name.
func (b *RedisBridge) run(ctx context.Context, deliver func(conversationID uint, frame []byte)) {
	sub := b.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer func() { _ = sub.Close() }()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-sub.Channel():
			if !ok {
				return
			}
			raw := strings.TrimPrefix(msg.Channel, channelPrefix)
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				b.log.Warn().Str("channel", msg.Channel).Msg("ignoring frame on malformed channel")
				continue
			}
			deliver(uint(id), []byte(msg.Payload))
		}
	}
}
