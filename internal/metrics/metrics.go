package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks handler latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ventech_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			Buckets: []float64{
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"method", "route", "status"},
	)

	// DealProductsResolved counts deal product rows by outcome
	// ("resolved" or "dropped").
	DealProductsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ventech_deal_products_resolved_total",
			Help: "Deal product rows passed through the pricing resolver",
		},
		[]string{"source", "outcome"},
	)

	// CacheLookups counts typed cache reads by result ("hit", "miss", "error").
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ventech_cache_lookups_total",
			Help: "Cache lookups by cache name and result",
		},
		[]string{"cache", "result"},
	)

	// InvoicesSent counts invoice deliveries by channel and status.
	InvoicesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ventech_invoices_total",
			Help: "Invoices rendered, stored and emailed",
		},
		[]string{"step", "status"},
	)

	SSEClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ventech_admin_streams",
		Help: "Open admin event streams",
	})

	SSEDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ventech_admin_stream_dropped_events_total",
		Help: "Change events not delivered to a lagging admin stream",
	})
)

// RecordHTTPRequest records the duration of a finished request.
func RecordHTTPRequest(method, route, status string, seconds float64) {
	HTTPRequestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// RecordResolution adds resolved and dropped counts for one resolver pass.
func RecordResolution(source string, resolved, dropped int) {
	if resolved > 0 {
		DealProductsResolved.WithLabelValues(source, "resolved").Add(float64(resolved))
	}
	if dropped > 0 {
		DealProductsResolved.WithLabelValues(source, "dropped").Add(float64(dropped))
	}
}

// RecordCacheLookup records a single cache read.
func RecordCacheLookup(cache, result string) {
	CacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordInvoiceStep records one invoice pipeline step.
func RecordInvoiceStep(step, status string) {
	InvoicesSent.WithLabelValues(step, status).Inc()
}

// SetSSEClients reports the number of open admin streams.
func SetSSEClients(n int) {
	SSEClients.Set(float64(n))
}

// RecordSSEDropped adds undelivered change events.
func RecordSSEDropped(n int) {
	if n > 0 {
		SSEDropped.Add(float64(n))
	}
}
