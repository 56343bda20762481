// Package metrics provides Prometheus instrumentation for the back office.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backoffice_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "route"})

	// PaymentEventsTotal counts ledger events recorded, by kind.
	PaymentEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_payment_events_total",
		Help: "Payment ledger events recorded",
	}, []string{"kind"})

	// PricingIterations observes how many cent increments the price
	// rounding needed per derivation.
	PricingIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backoffice_pricing_round_iterations",
		Help:    "Cent increments applied by the tax rounding",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 20},
	})

	// CacheHits counts cache hits and misses per entity.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "backoffice_cache_requests_total",
		Help: "Cache lookups by entity and outcome",
	}, []string{"entity", "outcome"})
)

// Handler serves the Prometheus scrape endpoint through gin.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request counts and latency. Uses the route pattern as
// the label to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
