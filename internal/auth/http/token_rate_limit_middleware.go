package http

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// TokenRateLimitMiddleware enforces per-IP rate limiting on the register and
// authenticate endpoints.
//
// Designed for unauthenticated endpoints to slow down credential stuffing and account
// enumeration. Each IP address gets an independent token bucket. Uses c.ClientIP(),
// which honours X-Forwarded-For and X-Real-IP only from trusted proxies.
//
// Returns:
//   - 429 Too Many Requests: Rate limit exceeded (includes Retry-After header)
//   - Continues: Request allowed within rate limit
func TokenRateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore[string](rps, burst)

	go store.cleanupStale(ctx, limiterCleanupInterval, limiterIdleTTL)

	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		limiter := store.getLimiter(clientIP)
		if !limiter.Allow() {
			retryAfter := retryAfterSeconds(limiter)

			logger.Debug("token rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter))

			abortTooManyRequests(c, retryAfter,
				"Too many authentication requests from this IP. Please retry after the specified delay.")
			return
		}

		c.Next()
	}
}
