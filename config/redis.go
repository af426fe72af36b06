package config

import (
	"context"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

// RDB is nil when no Redis is configured; callers must fall back to the database
var RDB *redis.Client
var Ctx = context.Background()

// ConnectRedis connects to REDIS_ADDR if set. Caching stays disabled otherwise.
func ConnectRedis() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		slog.Info("REDIS_ADDR not set, settings cache disabled")
		return
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	if _, err := RDB.Ping(Ctx).Result(); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		RDB = nil
		return
	}

	slog.Info("Connected to Redis", "addr", redisAddr)
}
