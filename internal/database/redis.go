package database

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/ruralpay/ledger/internal/config"
)

// InitRedis connects to Redis. It returns nil when the server cannot be
// reached so callers can fall back to in-process state.
func InitRedis(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr()).Msg("redis connection failed, continuing without redis")
		rdb.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Addr()).Msg("redis connection established")
	return rdb
}
