package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ResponseCache stores model responses in Redis keyed by the request
// contents, so identical prompts within the TTL skip the model call.
type ResponseCache struct {
	client *redis.Client
	config *config.CacheConfig
}

// NewResponseCache connects to Redis. Returns (nil, nil) when the Redis
// cache is disabled in config.
func NewResponseCache(cfg *config.CacheConfig) (*ResponseCache, error) {
	if !cfg.RedisEnabled {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &ResponseCache{
		client: client,
		config: cfg,
	}, nil
}

// Get returns a cached response and whether it was present.
func (c *ResponseCache) Get(ctx context.Context, model, system, user string) (string, bool) {
	key := cacheKey(model, system, user)

	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			common.LogWarn("AI response cache read failed", zap.Error(err))
		}
		return "", false
	}
	return val, true
}

// Set stores a response. Failures are logged and ignored; the cache is an
// optimization, not a dependency.
func (c *ResponseCache) Set(ctx context.Context, model, system, user, content string) {
	key := cacheKey(model, system, user)

	if err := c.client.Set(ctx, key, content, c.config.ResponseTTL).Err(); err != nil {
		common.LogWarn("AI response cache write failed", zap.Error(err))
	}
}

// Close closes the Redis connection.
func (c *ResponseCache) Close() error {
	return c.client.Close()
}

func cacheKey(model, system, user string) string {
	hash := sha256.Sum256([]byte(model + "|" + system + "|" + user))
	return "ai:response:" + hex.EncodeToString(hash[:])
}
