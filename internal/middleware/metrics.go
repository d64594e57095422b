package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/assa-portal-api/internal/service"
)

// Metrics records request duration and count by route template. Unmatched
// routes share one label so random paths cannot grow the series set.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
