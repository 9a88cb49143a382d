package cache

import (
	"context"
	"time"

	"pickleradar/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from config. The returned
// client may be nil if a connection cannot be established; callers must
// degrade gracefully by skipping the cache.
func NewRedisClient(config utils.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}

	return client
}
