package observability

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler provides Prometheus metrics and health endpoints
type MetricsHandler struct {
	registry *prometheus.Registry

	// readiness probes for database and redis, optional
	checks []func() error
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(checks ...func() error) *MetricsHandler {
	registry := prometheus.NewRegistry()

	// Register default Go metrics
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &MetricsHandler{
		registry: registry,
		checks:   checks,
	}
}

// MetricsEndpoint returns the Prometheus metrics handler
func (h *MetricsHandler) MetricsEndpoint() gin.HandlerFunc {
	handler := promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})

	return func(c *gin.Context) {
		handler.ServeHTTP(c.Writer, c.Request)
	}
}

// HealthEndpoint provides the basic health check
func (h *MetricsHandler) HealthEndpoint() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "keyshop-api",
		})
	}
}

// ReadinessEndpoint reports ready only when all dependency checks pass
func (h *MetricsHandler) ReadinessEndpoint() gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, check := range h.checks {
			if err := check(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "not_ready",
					"error":  err.Error(),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
		})
	}
}

// LivenessEndpoint provides liveness check
func (h *MetricsHandler) LivenessEndpoint() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "alive",
		})
	}
}
