package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dennisdiepolder/fleetpulse/internal/types"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// WeekCache stores built week reports keyed by week and roster version
type WeekCache interface {
	Get(ctx context.Context, weekStart string, rosterVersion int64) (*types.WeekReport, bool, error)
	Set(ctx context.Context, weekStart string, rosterVersion int64, report types.WeekReport) error
	Delete(ctx context.Context, weekStart string, rosterVersion int64) error
}

// RedisWeekCache keeps week reports in Redis with a TTL
type RedisWeekCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger zerolog.Logger
}

// NewRedisWeekCache creates a Redis-backed week cache
func NewRedisWeekCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisWeekCache {
	return &RedisWeekCache{
		client: client,
		ttl:    ttl,
		prefix: "fleetpulse:week:",
		logger: logger.With().Str("component", "week_cache").Logger(),
	}
}

// NewRedisClient parses a redis:// URL and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func (c *RedisWeekCache) key(weekStart string, rosterVersion int64) string {
	return fmt.Sprintf("%s%s:v%d", c.prefix, weekStart, rosterVersion)
}

// Get returns the cached report, or false when absent
func (c *RedisWeekCache) Get(ctx context.Context, weekStart string, rosterVersion int64) (*types.WeekReport, bool, error) {
	data, err := c.client.Get(ctx, c.key(weekStart, rosterVersion)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read week %s from cache: %w", weekStart, err)
	}

	var report types.WeekReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached week %s: %w", weekStart, err)
	}
	return &report, true, nil
}

// Set stores a report
func (c *RedisWeekCache) Set(ctx context.Context, weekStart string, rosterVersion int64, report types.WeekReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode week %s: %w", weekStart, err)
	}

	if err := c.client.Set(ctx, c.key(weekStart, rosterVersion), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache week %s: %w", weekStart, err)
	}

	c.logger.Debug().
		Str("week_start", weekStart).
		Int64("roster_version", rosterVersion).
		Dur("ttl", c.ttl).
		Msg("week report cached")
	return nil
}

// Delete drops a cached report after its ledger rows changed
func (c *RedisWeekCache) Delete(ctx context.Context, weekStart string, rosterVersion int64) error {
	if err := c.client.Del(ctx, c.key(weekStart, rosterVersion)).Err(); err != nil {
		return fmt.Errorf("failed to evict week %s: %w", weekStart, err)
	}
	return nil
}

// NoopWeekCache never stores anything
type NoopWeekCache struct{}

// NewNoopWeekCache returns a cache that always misses
func NewNoopWeekCache() *NoopWeekCache { return &NoopWeekCache{} }

// Get always reports a miss
func (NoopWeekCache) Get(_ context.Context, _ string, _ int64) (*types.WeekReport, bool, error) {
	return nil, false, nil
}

// Set discards the report
func (NoopWeekCache) Set(_ context.Context, _ string, _ int64, _ types.WeekReport) error { return nil }

// Delete is a no-op
func (NoopWeekCache) Delete(_ context.Context, _ string, _ int64) error { return nil }
