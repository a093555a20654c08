package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/gridironlink/backend/internal/config"
)

// Connect establishes a connection to Redis. The pool size comes from the
// configuration; everything else from the URL.
func Connect(cfg *config.Config) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	opt.PoolSize = cfg.RedisPoolSize

	client := redis.NewClient(opt)

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}
