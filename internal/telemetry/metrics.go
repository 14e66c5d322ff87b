package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reasons used as the reason label on orders_failed_total.
const (
	ReasonValidation = "validation"
	ReasonGateway    = "gateway"
	ReasonInternal   = "internal"
)

// Metrics holds Prometheus metrics for checkout observability. All
// methods are nil-receiver safe so callers can run without a registry.
type Metrics struct {
	OrdersCreated  *prometheus.CounterVec
	OrdersFailed   *prometheus.CounterVec
	OrderValue     prometheus.Histogram
	GatewayLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers checkout metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	namespace := "kickz"
	subsystem := "checkout"

	return &Metrics{
		OrdersCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_created_total",
				Help:      "Total orders created with an open payment session",
			},
			[]string{"gateway"},
		),
		OrdersFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_failed_total",
				Help:      "Total order creation failures",
			},
			[]string{"gateway", "reason"}, // reason: validation, gateway, internal
		),
		OrderValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_paise",
				Help:      "Order value distribution in paise",
				Buckets:   []float64{50000, 100000, 250000, 500000, 750000, 1000000, 2500000, 5000000},
			},
		),
		GatewayLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "gateway_session_duration_seconds",
				Help:      "Payment gateway session creation duration",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"gateway"},
		),
	}
}

// RecordOrderCreated counts a successful order and observes its value.
func (m *Metrics) RecordOrderCreated(gateway string, amount int64) {
	if m == nil {
		return
	}
	m.OrdersCreated.WithLabelValues(gateway).Inc()
	m.OrderValue.Observe(float64(amount))
}

// RecordOrderFailed counts a failed order creation by reason.
func (m *Metrics) RecordOrderFailed(gateway, reason string) {
	if m == nil {
		return
	}
	m.OrdersFailed.WithLabelValues(gateway, reason).Inc()
}

// ObserveGatewayLatency records how long a gateway session call took.
func (m *Metrics) ObserveGatewayLatency(gateway string, d time.Duration) {
	if m == nil {
		return
	}
	m.GatewayLatency.WithLabelValues(gateway).Observe(d.Seconds())
}
