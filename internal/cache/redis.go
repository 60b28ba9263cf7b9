package cache

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewRedis creates a Redis client from url. Returns nil if url is empty
// (cache not configured).
func NewRedis(lc fx.Lifecycle, logger *zap.Logger, url string) (*goredis.Client, error) {
	if url == "" {
		logger.Info("REDIS_URL not set, office cache disabled")
		return nil, nil
	}

	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := goredis.NewClient(opts)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Error("redis ping failed", zap.Error(err))
				return fmt.Errorf("redis ping failed: %w", err)
			}
			logger.Info("connected to redis")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
