package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis configuration
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RedisCache marks games whose classification has reached its terminal state
// (final, maintained-lead resolved). Later runs skip the live-feed fetch and
// upsert for marked games. The worker runs fine without it.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(cfg Config) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func terminalKey(gamePk int64) string {
	return fmt.Sprintf("blowout:terminal:%d", gamePk)
}

// MarkTerminal records that a game's classification will never change again
func (c *RedisCache) MarkTerminal(ctx context.Context, gamePk int64, ttl time.Duration) error {
	if err := c.client.Set(ctx, terminalKey(gamePk), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark game terminal: %w", err)
	}

	log.Debug().Int64("game_pk", gamePk).Dur("ttl", ttl).Msg("Game marked terminal")
	return nil
}

// IsTerminal reports whether a game was already classified in its final state
func (c *RedisCache) IsTerminal(ctx context.Context, gamePk int64) (bool, error) {
	n, err := c.client.Exists(ctx, terminalKey(gamePk)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check terminal marker: %w", err)
	}
	return n > 0, nil
}
