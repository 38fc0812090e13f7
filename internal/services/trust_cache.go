package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const trustCachePrefix = "trust:approved:"

// RedisTrustCache memoizes approved-edit counts with a TTL.
type RedisTrustCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTrustCache(rdb *redis.Client, ttl time.Duration) *RedisTrustCache {
	return &RedisTrustCache{rdb: rdb, ttl: ttl}
}

func (c *RedisTrustCache) Get(ctx context.Context, actorID string) (int, bool, error) {
	v, err := c.rdb.Get(ctx, trustCachePrefix+actorID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (c *RedisTrustCache) Set(ctx context.Context, actorID string, count int) error {
	return c.rdb.Set(ctx, trustCachePrefix+actorID, count, c.ttl).Err()
}

func (c *RedisTrustCache) Invalidate(ctx context.Context, actorID string) error {
	return c.rdb.Del(ctx, trustCachePrefix+actorID).Err()
}
