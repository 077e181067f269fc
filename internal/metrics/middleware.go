package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records request counts and latency per route.
func Middleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		statusCode := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
