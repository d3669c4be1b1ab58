package ratelimit

import (
	"context"
	"time"

	"github.com/NdanyuzweGentil/My-DS-Portfolio/pkg/redis"
)

const keyPrefix = "ratelimit:"

// RedisCounter shares windows across replicas through Redis.
type RedisCounter struct {
	adapter redis.RedisAdapter
	now     func() time.Time
}

func NewRedisCounter(adapter redis.RedisAdapter) *RedisCounter {
	return &RedisCounter{adapter: adapter, now: time.Now}
}

func (r *RedisCounter) Incr(ctx context.Context, key string, size time.Duration) (int64, time.Time, error) {
	count, left, err := r.adapter.IncrWindow(ctx, keyPrefix+key, size)
	if err != nil {
		return 0, time.Time{}, err
	}
	return count, r.now().Add(left), nil
}
