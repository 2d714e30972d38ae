package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devmatch/rotation-api/internal/service"
)

// MetricsHandler exposes the Prometheus scrape endpoint and a liveness
// probe.
type MetricsHandler struct {
	scrape http.Handler
}

func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	h := &MetricsHandler{}
	if metrics != nil {
		h.scrape = metrics.Handler()
	}
	return h
}

// Prometheus serves the metrics registry in the exposition format.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.scrape == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.scrape.ServeHTTP(c.Writer, c.Request)
}

// Health reports process liveness.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
