package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vendor-service/internal/models"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewClient creates a new Redis client. snapshotTTL bounds how long a
// cached performance report is served before falling back to the store.
func NewClient(addr, password string, db int, snapshotTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb, ttl: snapshotTTL}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func snapshotKey(vendorID int64) string {
	return fmt.Sprintf("performance:%d", vendorID)
}

// GetSnapshot returns the cached performance report for a vendor, or nil
// on a cache miss.
func (c *Client) GetSnapshot(ctx context.Context, vendorID int64) (*models.PerformanceReport, error) {
	raw, err := c.rdb.Get(ctx, snapshotKey(vendorID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot cache: %w", err)
	}

	var report models.PerformanceReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("corrupt snapshot cache entry: %w", err)
	}
	return &report, nil
}

// SetSnapshot caches the performance report for a vendor
func (c *Client) SetSnapshot(ctx context.Context, vendorID int64, report *models.PerformanceReport) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.rdb.Set(ctx, snapshotKey(vendorID), raw, c.ttl).Err()
}

// Invalidate drops the cached report for a vendor
func (c *Client) Invalidate(ctx context.Context, vendorID int64) error {
	return c.rdb.Del(ctx, snapshotKey(vendorID)).Err()
}

// AcquireLock acquires an advisory lock with a TTL
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases an advisory lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
