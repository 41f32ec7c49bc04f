package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisPublisher is the subset of *redis.Client used by RedisSink.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// RedisSink PUBLISHes each event on one channel.
type RedisSink struct {
	client  redisPublisher
	channel string
}

// NewRedisSink connects lazily; the first failed publish is logged by the dispatcher.
func NewRedisSink(opts *redis.Options, channel string) *RedisSink {
	return newRedisSink(redis.NewClient(opts), channel)
}

func newRedisSink(client redisPublisher, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Deliver(ctx context.Context, event string, body []byte) error {
	if err := s.client.Publish(ctx, s.channel, body).Err(); err != nil {
		return fmt.Errorf("redis publish %s to %s: %w", event, s.channel, err)
	}
	return nil
}

func (s *RedisSink) Check(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
