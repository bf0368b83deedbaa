package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// OrderMetrics covers the payment-order lifecycle.
type OrderMetrics struct {
	OrdersCreatedTotal       prometheus.CounterVec
	OrdersCreatedAmountTotal prometheus.CounterVec
	OrdersFulfilledTotal     prometheus.CounterVec
	OrdersFailedTotal        prometheus.CounterVec
	OrdersExpiredTotal       prometheus.CounterVec

	MatchAttemptsTotal   prometheus.CounterVec
	TokenGateChecksTotal prometheus.CounterVec

	FulfillmentDuration prometheus.HistogramVec

	OrderErrorsTotal prometheus.CounterVec
}

func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWith(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWith registers on the given registerer so tests can use an
// isolated registry.
func NewOrderMetricsWith(reg prometheus.Registerer) *OrderMetrics {
	factory := promauto.With(reg)
	return &OrderMetrics{
		OrdersCreatedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_orders_created_total",
				Help: "Total number of created payment orders",
			},
			[]string{"kind"},
		),

		OrdersCreatedAmountTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_orders_created_amount_total",
				Help: "Total fiat amount of created payment orders",
			},
			[]string{"kind"},
		),

		OrdersFulfilledTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_orders_fulfilled_total",
				Help: "Total number of orders that reached FULFILLED",
			},
			[]string{"kind"},
		),

		OrdersFailedTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_orders_failed_total",
				Help: "Total number of orders that reached FAILED",
			},
			[]string{"kind", "reason"},
		),

		OrdersExpiredTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_orders_expired_total",
				Help: "Total number of orders that expired unpaid",
			},
			[]string{"kind"},
		),

		MatchAttemptsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_order_match_attempts_total",
				Help: "Transfer-matching attempts by outcome",
			},
			[]string{"trigger", "result"},
		),

		TokenGateChecksTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "token_gate_checks_total",
				Help: "Token-gate checks by verdict",
			},
			[]string{"passed"},
		),

		FulfillmentDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "order_fulfillment_duration_seconds",
				Help:    "Time from dispatch claim to terminal state",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
			[]string{"kind"},
		),

		OrderErrorsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_order_errors_total",
				Help: "Errors while creating or reconciling orders",
			},
			[]string{"stage"},
		),
	}
}

func (m *OrderMetrics) RecordOrderCreated(kind string, amountFiat float64) {
	m.OrdersCreatedTotal.WithLabelValues(kind).Inc()
	m.OrdersCreatedAmountTotal.WithLabelValues(kind).Add(amountFiat)
}

func (m *OrderMetrics) RecordOrderFulfilled(kind string) {
	m.OrdersFulfilledTotal.WithLabelValues(kind).Inc()
}

func (m *OrderMetrics) RecordOrderFailed(kind, reason string) {
	m.OrdersFailedTotal.WithLabelValues(kind, reason).Inc()
}

func (m *OrderMetrics) RecordOrderExpired(kind string) {
	m.OrdersExpiredTotal.WithLabelValues(kind).Inc()
}

func (m *OrderMetrics) RecordMatchAttempt(trigger, result string) {
	m.MatchAttemptsTotal.WithLabelValues(trigger, result).Inc()
}

func (m *OrderMetrics) RecordTokenGateCheck(passed bool) {
	passedStr := "false"
	if passed {
		passedStr = "true"
	}
	m.TokenGateChecksTotal.WithLabelValues(passedStr).Inc()
}

func (m *OrderMetrics) RecordFulfillmentDuration(kind string, seconds float64) {
	m.FulfillmentDuration.WithLabelValues(kind).Observe(seconds)
}

func (m *OrderMetrics) RecordError(stage string) {
	m.OrderErrorsTotal.WithLabelValues(stage).Inc()
}
