// Package cache holds the Redis cache in front of the public job viewer.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "jobcard:public:"

// JobViewCache caches public job views by job id. A nil client disables caching.
type JobViewCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewJobViewCache instantiates the cache helper
func NewJobViewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *JobViewCache {
	return &JobViewCache{client: client, ttl: ttl, logger: logger}
}

func key(jobID string) string {
	return keyPrefix + jobID
}

// Fetch loads a cached view or populates it using the loader.
// Redis failures fall back to the loader; loader errors are returned as is.
func (c *JobViewCache) Fetch(ctx context.Context, jobID string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}

	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key(jobID)).Bytes()
		switch {
		case err == nil:
			return json.Unmarshal(payload, dest)
		case !errors.Is(err, redis.Nil):
			c.logger.Warn("Failed to read job view cache",
				slog.String("job_id", jobID),
				slog.Any("error", err),
			)
		}
	}

	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key(jobID), raw, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to write job view cache",
				slog.String("job_id", jobID),
				slog.Any("error", err),
			)
		}
	}
	return json.Unmarshal(raw, dest)
}

// Invalidate drops the cached view for jobID
func (c *JobViewCache) Invalidate(ctx context.Context, jobID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key(jobID)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate job view cache",
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
	}
}
