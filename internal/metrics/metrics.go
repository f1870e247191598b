package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eugenenazirov/checkout/internal/checkout"
)

// Checkout result labels.
const (
	ResultOK      = "ok"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// CheckoutMetrics groups Prometheus collectors for checkout pricing.
type CheckoutMetrics struct {
	CheckoutsTotal   *prometheus.CounterVec
	CheckoutDuration *prometheus.HistogramVec
	BasketTotal      prometheus.Histogram
	DealApplications *prometheus.CounterVec
	CatalogUpdates   prometheus.Counter
}

// NewCheckoutMetrics registers and returns checkout collectors. A nil
// registerer falls back to the default Prometheus registry.
func NewCheckoutMetrics(namespace string, reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &CheckoutMetrics{
		CheckoutsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkouts_total",
			Help:      "Count of checkout computations by strategy and outcome.",
		}, []string{"strategy", "result"}),
		CheckoutDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_duration_ms",
			Help:      "Checkout computation latency in milliseconds.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500},
		}, []string{"strategy"}),
		BasketTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_basket_total",
			Help:      "Distribution of priced basket totals.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 8),
		}),
		DealApplications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deal_applications_total",
			Help:      "Count of deal applications across priced baskets by discounted item and deal kind.",
		}, []string{"item", "kind"}),
		CatalogUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_updates_total",
			Help:      "Count of accepted catalog replacements.",
		}),
	}
	reg.MustRegister(m.CheckoutsTotal, m.CheckoutDuration, m.BasketTotal, m.DealApplications, m.CatalogUpdates)
	return m
}

// ObserveCheckout records one checkout computation. It is safe to call on a nil receiver.
func (m *CheckoutMetrics) ObserveCheckout(strategy, result string, elapsed time.Duration, receipt checkout.Receipt) {
	if m == nil {
		return
	}
	m.CheckoutsTotal.WithLabelValues(strategy, result).Inc()
	m.CheckoutDuration.WithLabelValues(strategy).Observe(float64(elapsed) / float64(time.Millisecond))
	if result != ResultOK {
		return
	}
	m.BasketTotal.Observe(float64(receipt.Total))
	for _, deal := range receipt.Deals {
		m.DealApplications.WithLabelValues(deal.Item, string(deal.Kind)).Add(float64(deal.Count))
	}
}

// ObserveCatalogUpdate records an accepted catalog replacement.
func (m *CheckoutMetrics) ObserveCatalogUpdate() {
	if m == nil {
		return
	}
	m.CatalogUpdates.Inc()
}
