package health

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisChecker pings the mark store backend. Failures are reported as
// degraded because only the mark endpoints depend on Redis.
type RedisChecker struct {
	client redis.UniversalClient
	name   string
}

func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{
		client: client,
		name:   "redis",
	}
}

func (r *RedisChecker) Name() string {
	return r.name
}

func (r *RedisChecker) Check(ctx context.Context) error {
	if r.client == nil {
		return Degraded(fmt.Errorf("redis client not configured"))
	}

	if err := r.client.Ping(ctx).Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return Degraded(fmt.Errorf("redis ping failed: %w", err))
	}

	return nil
}
