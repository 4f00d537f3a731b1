package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	ordersPlaced        prometheus.Counter
	ordersCancelled     prometheus.Counter
	stockRejections     *prometheus.CounterVec // reason
	checkoutUnavailable prometheus.Counter
	httpRequests        *prometheus.CounterVec   // method, route, status
	httpDuration        *prometheus.HistogramVec // method, route
}

func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "orders_placed_total", Help: "Orders created, single or via checkout.",
		}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "orders_cancelled_total", Help: "Orders cancelled with stock restored.",
		}),
		stockRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_rejections_total", Help: "Reservations refused by the inventory ledger.",
		}, []string{"reason"}),
		checkoutUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "checkout_unavailable_items_total", Help: "Cart products skipped at checkout.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.ordersPlaced, m.ordersCancelled, m.stockRejections, m.checkoutUnavailable,
		m.httpRequests, m.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

func (m *Metrics) OrdersPlaced(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ordersPlaced.Add(float64(n))
}

func (m *Metrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

func (m *Metrics) StockRejected(reason string) {
	if m == nil {
		return
	}
	m.stockRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) CheckoutUnavailable(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.checkoutUnavailable.Add(float64(n))
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
