package middleware

import (
	"strconv"
	"time"

	"github.com/ErlanBelekov/auth-service/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records auth_http_requests_total and auth_http_request_duration_seconds,
// labelled by route template so /api/auth/* stays a fixed label set.
// Unmatched paths collapse into "unmatched".
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}

		metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
	}
}
