package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reviewhub/internal/reviewchain"
)

// StatsCache keeps per-business aggregate stats in Redis so directory pages
// don't rebuild chains on every hit. Review writes invalidate the key; a
// cache miss falls back to the aggregator and repopulates.
//
// A nil StatsCache is valid and disables caching, so the API can run without
// Redis in development.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache connects to Redis and verifies the connection
func NewStatsCache(redisAddr, password string, ttl time.Duration) (*StatsCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &StatsCache{client: rdb, ttl: ttl}, nil
}

func statsKey(businessID int64) string {
	return fmt.Sprintf("business:%d:stats", businessID)
}

// GetStats returns the cached stats for a business, or nil on a miss
func (c *StatsCache) GetStats(ctx context.Context, businessID int64) (*reviewchain.Stats, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	raw, err := c.client.Get(ctx, statsKey(businessID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats reviewchain.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		// a corrupt entry behaves like a miss
		return nil, nil
	}
	return &stats, nil
}

// SetStats stores the stats with the configured TTL
func (c *StatsCache) SetStats(ctx context.Context, businessID int64, stats reviewchain.Stats) error {
	if c == nil || c.client == nil {
		return nil
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(businessID), raw, c.ttl).Err()
}

// Invalidate drops the cached stats after a review write
func (c *StatsCache) Invalidate(ctx context.Context, businessID int64) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, statsKey(businessID)).Err()
}

// Close releases the underlying Redis connection
func (c *StatsCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
