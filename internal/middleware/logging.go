package middleware

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pelada/matchday/internal/metrics"
)

// Logging returns a middleware that logs every request with its route, user,
// status and duration, and records the latency histogram.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		duration := time.Since(start)

		metrics.HTTPDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(duration.Seconds())

		attrs := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"user_id", GetUserID(c), // empty if pre-auth
			"duration_ms", duration.Milliseconds(),
		}
		switch {
		case status >= 500:
			slog.Error("Request failed", attrs...)
		case status >= 400:
			slog.Warn("Request rejected", attrs...)
		default:
			slog.Info("Request ok", attrs...)
		}
	}
}
