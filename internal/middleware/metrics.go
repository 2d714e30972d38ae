package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devmatch/rotation-api/internal/service"
)

// Metrics records one HTTP observation per request, labelled by the
// route template rather than the raw path to keep cardinality bounded.
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
			route = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
