// Package cache owns the Redis side of the lab event sink: the client and
// the stream that classroom dashboards consume.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a Redis client bound to one event stream.
type Cache struct {
	Client *redis.Client
	Stream string
	MaxLen int64 // approximate cap on stream length, 0 = unbounded
}

// ParseURL validates a Redis connection URL.
func ParseURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// New connects to Redis and checks that stream can receive events.
func New(ctx context.Context, url, stream string, maxLen int64) (*Cache, error) {
	if stream == "" {
		return nil, fmt.Errorf("event stream name is empty")
	}
	if maxLen < 0 {
		return nil, fmt.Errorf("stream max length must not be negative, got %d", maxLen)
	}
	opts, err := ParseURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	c := &Cache{Client: redis.NewClient(opts), Stream: stream, MaxLen: maxLen}
	if err := c.HealthCheck(ctx); err != nil {
		c.Client.Close()
		return nil, err
	}
	return c, nil
}

// Append adds one entry to the event stream and returns its ID.
func (c *Cache) Append(ctx context.Context, values map[string]any) (string, error) {
	id, err := c.Client.XAdd(ctx, c.addArgs(values)).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", c.Stream, err)
	}
	return id, nil
}

func (c *Cache) addArgs(values map[string]any) *redis.XAddArgs {
	args := &redis.XAddArgs{Stream: c.Stream, Values: values}
	if c.MaxLen > 0 {
		args.MaxLen = c.MaxLen
		args.Approx = true
	}
	return args
}

// Len reports how many entries the event stream holds.
func (c *Cache) Len(ctx context.Context) (int64, error) {
	n, err := c.Client.XLen(ctx, c.Stream).Result()
	if err != nil {
		return 0, fmt.Errorf("xlen %s: %w", c.Stream, err)
	}
	return n, nil
}

// Close shuts down the cache client.
func (c *Cache) Close() error {
	return c.Client.Close()
}

// HealthCheck verifies Redis is reachable and the stream key is either a
// stream or not yet created. Any other type would make every XADD fail.
func (c *Cache) HealthCheck(ctx context.Context) error {
	typ, err := c.Client.Type(ctx, c.Stream).Result()
	if err != nil {
		return fmt.Errorf("checking stream %s: %w", c.Stream, err)
	}
	return checkStreamType(c.Stream, typ)
}

func checkStreamType(stream, typ string) error {
	switch typ {
	case "stream", "none":
		return nil
	default:
		return fmt.Errorf("key %s holds a %s, not a stream", stream, typ)
	}
}
