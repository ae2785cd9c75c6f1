// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tireshop_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tireshop_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"method", "route"})

	StockMovements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tireshop_stock_movements_total",
		Help: "Inventory movements recorded by type.",
	}, []string{"type"})

	OrderTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tireshop_service_order_transitions_total",
		Help: "Service order status changes.",
	}, []string{"from", "to"})

	JobsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tireshop_jobs_processed_total",
		Help: "Background jobs by type and result (ok, retry, dead).",
	}, []string{"type", "result"})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, StockMovements, OrderTransitions, JobsProcessed)
}

// GinMiddleware records count and latency per matched route. Unmatched
// paths share one label so scanners cannot blow up cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}
