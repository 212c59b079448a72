package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poshuk/captives-gateway/internal/service"
)

// Metrics times every gateway request for the Prometheus collectors.
// Matched routes are labelled by their pattern so record IDs and signed
// download tokens stay out of the label space; unmatched paths fall back
// to the raw URL.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, status, duration)
	}
}
