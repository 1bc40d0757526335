package middleware

import (
	"context"
	"fmt"
	"time"

	"lifeline/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Redis     *redis.Client
	Requests  int           // Number of requests allowed
	Window    time.Duration // Time window
	KeyPrefix string        // Redis key prefix
	SkipPaths []string      // Paths to skip rate limiting
}

// RateLimiter provides fixed-window, per-IP rate limiting backed by Redis.
type RateLimiter struct {
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit"
	}
	return &RateLimiter{config: config}
}

// Middleware returns the gin handler enforcing the limit. When Redis is
// unavailable requests pass through; rate limiting degrades before the API
// does.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.config.Redis == nil || shouldSkipPath(c.Request.URL.Path, rl.config.SkipPaths) {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, c.ClientIP(),
			time.Now().Unix()/int64(rl.config.Window.Seconds()))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := rl.config.Redis.Incr(ctx, key).Result()
		if err != nil {
			logrus.WithError(err).Warn("rate limit: redis unavailable, allowing request")
			c.Next()
			return
		}

		if count == 1 {
			rl.config.Redis.Expire(ctx, key, rl.config.Window)
		}

		if count > int64(rl.config.Requests) {
			utils.RateLimitResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
