// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Purchase metrics
	PurchasesCommitted   *prometheus.CounterVec
	PurchasesRejected    *prometheus.CounterVec
	ReconciliationAlerts prometheus.Counter

	// Sale progress
	TotalRaisedEur prometheus.Gauge
	TotalCoinsSold prometheus.Gauge
	PurchaseCount  prometheus.Gauge
	CurrentPrice   prometheus.Gauge

	// Gateway metrics
	GatewayCallLatency *prometheus.HistogramVec
	GatewayCallErrors  *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "presale"
	}

	return &Metrics{
		PurchasesCommitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchases",
			Name:      "committed_total",
			Help:      "Total number of committed purchases by payment method",
		}, []string{"method"}),
		PurchasesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchases",
			Name:      "rejected_total",
			Help:      "Total number of rejected purchase attempts by kind",
		}, []string{"kind"}),
		ReconciliationAlerts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "purchases",
			Name:      "reconciliation_alerts_total",
			Help:      "Total number of captures without a matching ledger entry",
		}),

		TotalRaisedEur: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sale",
			Name:      "total_raised_eur",
			Help:      "Cumulative funds raised",
		}),
		TotalCoinsSold: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sale",
			Name:      "total_coins_sold",
			Help:      "Cumulative coins sold",
		}),
		PurchaseCount: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sale",
			Name:      "purchase_count",
			Help:      "Number of committed purchases",
		}),
		CurrentPrice: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sale",
			Name:      "current_unit_price",
			Help:      "Cached unit price for the current sale day",
		}),

		GatewayCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "call_latency_seconds",
			Help:      "Payment gateway call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		GatewayCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "call_errors_total",
			Help:      "Total number of failed payment gateway calls",
		}, []string{"operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordPurchaseCommitted increments the committed purchases counter.
func RecordPurchaseCommitted(method string) {
	DefaultMetrics.PurchasesCommitted.WithLabelValues(method).Inc()
}

// RecordPurchaseRejected increments the rejected purchases counter.
// Kind is one of "validation", "limit", "gateway".
func RecordPurchaseRejected(kind string) {
	DefaultMetrics.PurchasesRejected.WithLabelValues(kind).Inc()
}

// RecordReconciliationAlert counts a capture without a ledger entry.
func RecordReconciliationAlert() {
	DefaultMetrics.ReconciliationAlerts.Inc()
}

// UpdateSaleTotals updates the sale progress gauges after a commit.
func UpdateSaleTotals(raisedEur, coinsSold float64, purchaseCount int64) {
	DefaultMetrics.TotalRaisedEur.Set(raisedEur)
	DefaultMetrics.TotalCoinsSold.Set(coinsSold)
	DefaultMetrics.PurchaseCount.Set(float64(purchaseCount))
}

// UpdateCurrentPrice updates the cached unit price gauge.
func UpdateCurrentPrice(price float64) {
	DefaultMetrics.CurrentPrice.Set(price)
}

// RecordGatewayCall records gateway call latency and errors.
func RecordGatewayCall(operation string, seconds float64, err error) {
	DefaultMetrics.GatewayCallLatency.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.GatewayCallErrors.WithLabelValues(operation).Inc()
	}
}
