package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("tables", "2xx")
		IncAvailability("ok")
	})

	before := testutil.ToFloat64(bookings.WithLabelValues("guest", "success"))
	IncBooking("guest", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(bookings.WithLabelValues("guest", "success")))

	fb := testutil.ToFloat64(tablesFallback)
	IncTablesFallback()
	assert.Equal(t, fb+1, testutil.ToFloat64(tablesFallback))
}
