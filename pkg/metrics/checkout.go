package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records point-of-sale commit outcomes.
type CheckoutMetrics struct {
	salesCommitted prometheus.Counter
	failures       *prometheus.CounterVec
	saleTotal      prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	salesCommitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sales_committed_total",
		Help: "Sales committed through checkout.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Failed checkout attempts by error code.",
	}, []string{"code"})
	saleTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sale_total_amount",
		Help:    "Distribution of committed sale totals.",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500},
	})
	reg.MustRegister(salesCommitted, failures, saleTotal)
	return &CheckoutMetrics{
		salesCommitted: salesCommitted,
		failures:       failures,
		saleTotal:      saleTotal,
	}
}

// ObserveCommit records one committed sale and its total.
func (c *CheckoutMetrics) ObserveCommit(total float64) {
	if c == nil || c.salesCommitted == nil {
		return
	}
	c.salesCommitted.Inc()
	c.saleTotal.Observe(total)
}

// IncFailure increments the failure counter for the given error code.
func (c *CheckoutMetrics) IncFailure(code string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(code)).Inc()
}

func normalizeLabel(code string) string {
	if code == "" {
		return "unknown"
	}
	return code
}
