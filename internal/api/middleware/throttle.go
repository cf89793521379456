package middleware

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Counter counts hits per key in fixed windows.
type Counter interface {
	// Hit records a hit and returns the count so far in the window and the time left in it.
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// Throttle limits each client IP to limit requests per window.
// Counter failures let the request through.
func Throttle(counter Counter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.FullPath() + "|" + c.ClientIP()
		count, remaining, err := counter.Hit(c.Request.Context(), key, window)
		if err != nil {
			log.Printf("Throttle middleware: counter unavailable, allowing request: %v", err)
			c.Next()
			return
		}

		if count > int64(limit) {
			retryAfter := int(math.Ceil(remaining.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			log.Printf("Throttle middleware: %s exceeded %d requests per %s", c.ClientIP(), limit, window)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":    "Too many submissions from this network. Please try again later.",
				"retryAfter": retryAfter,
			})
			return
		}
		c.Next()
	}
}
