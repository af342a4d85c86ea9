package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberredis "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"

	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/config"
)

// Redis database numbers. The usage counter lives in 0, limiter windows in 1.
const (
	counterDatabase = 0
	limiterDatabase = 1
)

var (
	client    *redis.Client
	available bool
)

// SetupCache initializes the shared Redis client. An unreachable server is
// logged, not fatal: every cache consumer is best-effort.
func SetupCache(cfg config.CacheConfig) *redis.Client {
	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       counterDatabase,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		available = false
		slog.Warn("could not connect to redis", "addr", cfg.Addr(), "err", err)
	} else {
		available = true
		slog.Info("connected to redis", "addr", cfg.Addr())
	}
	return client
}

// Available reports whether the last SetupCache reached the server.
func Available() bool {
	return client != nil && available
}

// NewLimiterStorage returns a fiber.Storage for the rate limiter backed by
// Redis, or nil when Redis is unavailable so the limiter keeps its windows
// in memory.
func NewLimiterStorage(cfg config.CacheConfig) fiber.Storage {
	if !Available() {
		return nil
	}
	port, err := strconv.Atoi(cfg.Port)
	if err != nil {
		slog.Warn("invalid CACHE_PORT, limiter uses memory", "port", cfg.Port)
		return nil
	}
	return fiberredis.New(fiberredis.Config{
		Host:     cfg.Host,
		Port:     port,
		Password: cfg.Password,
		Database: limiterDatabase,
		Reset:    false,
	})
}
