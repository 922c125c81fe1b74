package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisReportCache shares entries between server instances.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ReportCache = (*RedisReportCache)(nil)

// NewRedisReportCache connects to url and verifies the connection.
func NewRedisReportCache(ctx context.Context, url string, ttl time.Duration, logger *slog.Logger) (*RedisReportCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return NewRedisReportCacheFromClient(client, ttl, logger), nil
}

// NewRedisReportCacheFromClient wraps an existing client.
func NewRedisReportCacheFromClient(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisReportCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisReportCache{client: client, ttl: defaultTTL(ttl), logger: logger}
}

// Get implements ReportCache.
func (c *RedisReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return data, true, nil
}

// Set implements ReportCache.
func (c *RedisReportCache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Version implements ReportCache.
func (c *RedisReportCache) Version(ctx context.Context, userID int64) (int64, error) {
	v, err := c.client.Get(ctx, versionKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get version: %w", err)
	}
	return v, nil
}

// Bump implements ReportCache.
func (c *RedisReportCache) Bump(ctx context.Context, userID int64) error {
	if err := c.client.Incr(ctx, versionKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis incr version: %w", err)
	}
	return nil
}

// Close implements ReportCache.
func (c *RedisReportCache) Close() error {
	return c.client.Close()
}
