package tokencache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisCache shares the token across all instances of the service. Redis
// expiry enforces the TTL; a read failure is treated as a miss so the caller
// just fetches a fresh token.
type RedisCache struct {
	redis *redis.Client
	key   string
}

func NewRedisCache(client *redis.Client, keyPrefix string) *RedisCache {
	return &RedisCache{
		redis: client,
		key:   fmt.Sprintf("%s:gateway:token", keyPrefix),
	}
}

func (c *RedisCache) Get(ctx context.Context) (string, bool) {
	token, err := c.redis.Get(ctx, c.key).Result()
	if err != nil {
		if err != redis.Nil {
			logrus.Warnf("Token cache read failed, fetching fresh token: %v", err)
		}
		return "", false
	}
	return token, token != ""
}

func (c *RedisCache) Put(ctx context.Context, token string, ttl time.Duration) error {
	return c.redis.Set(ctx, c.key, token, ttl).Err()
}
