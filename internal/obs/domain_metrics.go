package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// PaymentOpsTotal counts gateway operation outcomes by admission result.
	PaymentOpsTotal *prometheus.CounterVec
	// BackendCallsTotal counts calls to the payment backend by outcome.
	BackendCallsTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers gateway-specific
// Prometheus collectors. Safe to call more than once.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		PaymentOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_ops_total",
			Help:      "Count of payment operation outcomes by admission result.",
		}, []string{"op", "result"})
		BackendCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_calls_total",
			Help:      "Count of payment backend calls by outcome.",
		}, []string{"endpoint", "outcome"})

		mustRegisterCollector(reg, PaymentOpsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				PaymentOpsTotal = v
			}
		})
		mustRegisterCollector(reg, BackendCallsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BackendCallsTotal = v
			}
		})
	})
}

// ObservePaymentOp records an operation outcome when domain metrics are
// registered, and is a no-op otherwise so handlers stay test-friendly.
func ObservePaymentOp(op, result string) {
	if PaymentOpsTotal != nil {
		PaymentOpsTotal.WithLabelValues(op, result).Inc()
	}
}

// ObserveBackendCall records a backend call outcome when domain metrics are
// registered.
func ObserveBackendCall(endpoint, outcome string) {
	if BackendCallsTotal != nil {
		BackendCallsTotal.WithLabelValues(endpoint, outcome).Inc()
	}
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
