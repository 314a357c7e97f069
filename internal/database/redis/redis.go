package redis

import (
	"context"
	"fmt"
	"time"

	"dataroom-service/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to Redis. An empty address disables Redis and returns
// a nil client.
func NewClient(cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.Address == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error connecting to Redis at %s: %w", cfg.Address, err)
	}
	return client, nil
}
