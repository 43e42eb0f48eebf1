package store

import (
	"context"
	"fmt"
	"time"

	"lingo-relay/internal/types"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// NewStore creates a Store based on the configuration. When REDIS_DSN is
// set a Redis-backed store is used, otherwise the in-memory store.
func NewStore(configManager types.ConfigManager) (Store, error) {
	redisDSN := configManager.GetRedisDSN()
	if redisDSN == "" {
		logrus.Info("Using in-memory store")
		return NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(redisDSN)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DSN: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logrus.Info("Using redis store")
	return NewRedisStore(client), nil
}
