package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sanctyr/site/pkg/ratelimit"
)

// RateLimitMiddleware limits requests per client IP and route. A nil
// limiter (no Redis configured) makes this a no-op, matching the optional
// rate-limit store.
func RateLimitMiddleware(limiter ratelimit.Limiter, requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := c.ClientIP() + ":" + c.FullPath()
		allowed, err := limiter.Allow(c.Request.Context(), key, requests, window)
		if err != nil {
			// the limiter is protective, not load-bearing
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "You have reached the request limit. Please try again in a minute.",
			})
			return
		}
		c.Next()
	}
}
