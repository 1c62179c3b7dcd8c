// Package ratelimit implements fixed-window request limits keyed by caller, backed
// by Redis when configured and by process memory otherwise.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes the window a request landed in.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// RetryAfter returns how long until the window resets, relative to now.
func (r Result) RetryAfter(now time.Time) time.Duration {
	if d := r.Reset.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Limiter counts requests per key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// Config selects and sizes the limiter.
type Config struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	RedisURL string        `koanf:"redis_url"`
}

// New returns a Redis limiter when a URL is configured, an in-memory one otherwise,
// and nil when limiting is disabled.
func New(cfg Config) (Limiter, error) {
	if cfg.Requests <= 0 {
		return nil, nil
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.RedisURL == "" {
		return NewMemory(cfg.Requests, cfg.Window), nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return NewRedis(redis.NewClient(opts), cfg.Requests, cfg.Window), nil
}

func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}

// Redis is a fixed-window limiter shared by every server process.
type Redis struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

func NewRedis(client *redis.Client, limit int, window time.Duration) *Redis {
	return &Redis{client: client, limit: limit, window: window, prefix: "innkeeper:ratelimit:", now: time.Now}
}

func (r *Redis) Allow(ctx context.Context, key string) (Result, error) {
	start := windowStart(r.now(), r.window)
	redisKey := fmt.Sprintf("%s%s:%d", r.prefix, key, start.Unix())

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit %s: %w", key, err)
	}

	count := int(incr.Val())
	return Result{
		Allowed:   count <= r.limit,
		Limit:     r.limit,
		Remaining: max(r.limit-count, 0),
		Reset:     start.Add(r.window),
	}, nil
}

// Close releases the Redis connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Memory is a fixed-window limiter local to one process.
type Memory struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*bucket
	now     func() time.Time
}

type bucket struct {
	start time.Time
	count int
}

func NewMemory(limit int, window time.Duration) *Memory {
	return &Memory{limit: limit, window: window, buckets: make(map[string]*bucket), now: time.Now}
}

func (m *Memory) Allow(_ context.Context, key string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := windowStart(m.now(), m.window)
	b, ok := m.buckets[key]
	if !ok || !b.start.Equal(start) {
		b = &bucket{start: start}
		m.buckets[key] = b
		m.sweep(start)
	}
	b.count++

	return Result{
		Allowed:   b.count <= m.limit,
		Limit:     m.limit,
		Remaining: max(m.limit-b.count, 0),
		Reset:     start.Add(m.window),
	}, nil
}

// sweep drops buckets from earlier windows.
func (m *Memory) sweep(current time.Time) {
	for k, b := range m.buckets {
		if b.start.Before(current) {
			delete(m.buckets, k)
		}
	}
}
