package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// Business metrics
	purchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "purchases_total",
			Help: "Total number of purchase attempts",
		},
		[]string{"status", "delivery"},
	)

	purchaseAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "purchase_amount_dong",
			Help:    "Charged purchase amount in dong",
			Buckets: []float64{10000, 25000, 50000, 100000, 250000, 500000, 1000000, 2500000, 5000000},
		},
		[]string{"delivery"},
	)

	catalogFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetches_total",
			Help: "Total number of catalog fetches by source",
		},
		[]string{"source"},
	)

	// Gateway metrics
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of purchase gateway requests",
		},
		[]string{"status"},
	)

	gatewayRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Purchase gateway request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Notification metrics
	notificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Total number of outbound notifications",
		},
		[]string{"kind", "status"},
	)

	// Queue metrics
	queueSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "queue_size",
			Help: "Current queue size",
		},
		[]string{"queue_name"},
	)

	systemErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "system_errors_total",
			Help: "Total number of system errors",
		},
		[]string{"error_type", "component"},
	)
)

// HTTP Metrics
func RecordHTTPRequest(method, endpoint, statusCode string, duration float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint, statusCode).Observe(duration)
}

// Purchase Metrics
func RecordPurchase(status, delivery string, amount int64) {
	purchasesTotal.WithLabelValues(status, delivery).Inc()
	if amount > 0 {
		purchaseAmount.WithLabelValues(delivery).Observe(float64(amount))
	}
}

// Catalog Metrics
func RecordCatalogFetch(source string) {
	catalogFetchesTotal.WithLabelValues(source).Inc()
}

// Gateway Metrics
func RecordGatewayRequest(status string, duration float64) {
	gatewayRequestsTotal.WithLabelValues(status).Inc()
	gatewayRequestDuration.Observe(duration)
}

// Notification Metrics
func RecordNotification(kind, status string) {
	notificationsTotal.WithLabelValues(kind, status).Inc()
}

// Queue Metrics
func SetQueueSize(queueName string, size float64) {
	queueSize.WithLabelValues(queueName).Set(size)
}

func RecordSystemError(errorType, component string) {
	systemErrorsTotal.WithLabelValues(errorType, component).Inc()
}
