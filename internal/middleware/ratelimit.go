package middleware

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/botspace/pkg/errors"
	"github.com/charlesng35/botspace/pkg/logger"
	"github.com/charlesng35/botspace/pkg/response"
)

// RateLimit limits requests per (clientIP, route) within a fixed window. Requests pass
// through when store is nil or unreachable.
func RateLimit(store RateStore, maxRequests int, window time.Duration) gin.HandlerFunc {
	log := logger.WithModule("ratelimit")

	return func(c *gin.Context) {
		if store == nil || maxRequests <= 0 || window <= 0 {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := c.ClientIP() + "|" + route

		count, ttl, err := store.Increment(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("rate limit store unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		remaining := maxRequests - count
		if remaining < 0 {
			remaining = 0
		}
		reset := int(math.Ceil(ttl.Seconds()))

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(reset))

		if count > maxRequests {
			c.Header("Retry-After", strconv.Itoa(reset))
			response.Abort(c, errors.ErrRateLimit)
			return
		}

		c.Next()
	}
}
