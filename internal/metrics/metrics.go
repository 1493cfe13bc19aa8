package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hikari_reserve"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Backend API requests by endpoint and status class.",
		},
		[]string{"endpoint", "status"},
	)

	availabilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_checks_total",
			Help:      "Availability searches by outcome.",
		},
		[]string{"outcome"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Booking submissions by flow (member, guest) and outcome.",
		},
		[]string{"flow", "outcome"},
	)

	tablesFallback = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_fallback_total",
			Help:      "Times the bundled table layout replaced the backend list.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, availabilityChecks, bookings, tablesFallback)
	})
}

// IncHTTP counts one backend request.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncAvailability counts one availability search.
func IncAvailability(outcome string) {
	availabilityChecks.WithLabelValues(outcome).Inc()
}

// IncBooking counts one booking submission.
func IncBooking(flow, outcome string) {
	bookings.WithLabelValues(flow, outcome).Inc()
}

// IncTablesFallback counts one use of the bundled layout.
func IncTablesFallback() {
	tablesFallback.Inc()
}
