package safety

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// recordSentScript adds one send to the window set, drops entries older than
// the window and refreshes the key expiry.
const recordSentScript = `
redis.call("ZADD", KEYS[1], ARGV[1], ARGV[2])
redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", "(" .. ARGV[3])
redis.call("PEXPIRE", KEYS[1], ARGV[4])
return redis.call("ZCARD", KEYS[1])
`

// DefaultRedisKey is the sorted set holding recent sends.
const DefaultRedisKey = "review:email:sent"

// RedisCounter tracks recent sends in a Redis sorted set scored by send time,
// so several service instances share one volume window.
type RedisCounter struct {
	client *redis.Client
	key    string
	window time.Duration
	script *redis.Script
}

// NewRedisCounter returns nil when client is nil.
func NewRedisCounter(client *redis.Client, key string, window time.Duration) *RedisCounter {
	if client == nil {
		return nil
	}
	if key == "" {
		key = DefaultRedisKey
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisCounter{
		client: client,
		key:    key,
		window: window,
		script: redis.NewScript(recordSentScript),
	}
}

// CountSentSince counts sends recorded at or after since.
func (c *RedisCounter) CountSentSince(ctx context.Context, since time.Time) (int, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	count, err := c.client.ZCount(ctx, c.key, strconv.FormatInt(since.UTC().UnixMilli(), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("redis count sent: %w", err)
	}
	return int(count), nil
}

// RecordSent adds one send to the window.
func (c *RedisCounter) RecordSent(ctx context.Context, emailID string, sentAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}
	sentMillis := sentAt.UTC().UnixMilli()
	cutoff := sentAt.Add(-c.window).UTC().UnixMilli()
	ttl := c.window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	if err := c.script.Run(ctx, c.client, []string{c.key}, sentMillis, emailID, cutoff, ttl).Err(); err != nil {
		return fmt.Errorf("redis record sent: %w", err)
	}
	return nil
}

// ConnectRedis parses url and pings the server.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
