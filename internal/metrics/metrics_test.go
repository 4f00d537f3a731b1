package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New("storefront")

	m.OrdersPlaced(3)
	m.OrdersPlaced(0)
	m.OrderCancelled()
	m.StockRejected("out_of_stock")
	m.StockRejected("out_of_stock")
	m.CheckoutUnavailable(2)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ordersPlaced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersCancelled))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.stockRejections.WithLabelValues("out_of_stock")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.checkoutUnavailable))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrdersPlaced(1)
		m.OrderCancelled()
		m.StockRejected("x")
		m.CheckoutUnavailable(1)
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New("storefront")
	m.ObserveHTTP("GET", "/api/v1/products", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `storefront_http_requests_total{method="GET",route="/api/v1/products",status="200"} 1`))
}
