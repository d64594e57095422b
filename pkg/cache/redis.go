package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/assa-portal-api/pkg/config"
)

// NewRedis returns a Redis client, or nil when no host is configured. The shared
// rate-limit counters live here when several API instances run.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, nil
	}
	port := cfg.Port
	if port == 0 {
		port = 6379
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
