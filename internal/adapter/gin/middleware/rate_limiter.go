package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	grpcmiddleware "user-registry-service/internal/adapter/grpc/middleware"
	"user-registry-service/pkg/logger"
)

// RateLimiter returns a Gin middleware that spends one token per request from
// the bucket shared with the gRPC interceptor. A nil or disabled limiter is a no-op.
func RateLimiter(limiter *grpcmiddleware.RateLimiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !limiter.Enabled() {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := fmt.Sprintf("ratelimit:tb:http:%s:%s:%s", c.Request.Method, route, c.ClientIP())

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.WithContext(c.Request.Context(), log).Warn("rate limiter unavailable, allowing request", zap.Error(err))
		}
		if !allowed {
			cfg := limiter.Config()
			logger.WithContext(c.Request.Context(), log).Warn("rate limit exceeded",
				zap.String("key", key),
				zap.Float64("rate", cfg.RequestsPerSecond),
				zap.Int("burst", cfg.BurstCapacity),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":  "rate_limit_exceeded",
				"detail": "Too many requests, please retry later",
			})
			return
		}

		c.Next()
	}
}
