package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kkampardi/educa-coursware/internal/service"
)

// Metrics records request count and latency per route template. The
// raw URL path is used only when the route did not match, so label
// cardinality stays bounded.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
