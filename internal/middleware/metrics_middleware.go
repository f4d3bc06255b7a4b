// internal/middleware/metrics_middleware.go
package middleware

import (
	"time"

	"isp-billing-service/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency under the matched route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
