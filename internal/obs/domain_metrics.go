package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersValidatedTotal counts cart validation outcomes by result.
	OrdersValidatedTotal *prometheus.CounterVec
	// CheckoutOrdersTotal counts checkout attempts by outcome.
	CheckoutOrdersTotal *prometheus.CounterVec
	// KitsPricedTotal counts kit pricing computations.
	KitsPricedTotal prometheus.Counter
	// OrderValueCentavos records the final value distribution of accepted orders.
	OrderValueCentavos prometheus.Histogram
	// BracketDiscountTotal counts validations per discount bracket.
	BracketDiscountTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersValidatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_validated_total",
			Help:      "Count of cart validations by result (valid, invalid).",
		}, []string{"result"})
		CheckoutOrdersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_orders_total",
			Help:      "Count of checkout attempts by outcome (accepted, rejected, error).",
		}, []string{"outcome"})
		KitsPricedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kits_priced_total",
			Help:      "Total number of kit bundle price computations.",
		})
		OrderValueCentavos = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_value_centavos",
			Help:      "Final order value distribution in centavos.",
			Buckets:   []float64{20000, 50000, 100000, 250000, 500000, 1000000, 2500000, 5000000},
		})
		BracketDiscountTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bracket_discount_total",
			Help:      "Count of validations landing in each quantity discount bracket.",
		}, []string{"bps"})

		mustRegisterCollector(reg, OrdersValidatedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrdersValidatedTotal = v
			}
		})
		mustRegisterCollector(reg, CheckoutOrdersTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				CheckoutOrdersTotal = v
			}
		})
		mustRegisterCollector(reg, KitsPricedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				KitsPricedTotal = v
			}
		})
		mustRegisterCollector(reg, OrderValueCentavos, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				OrderValueCentavos = v
			}
		})
		mustRegisterCollector(reg, BracketDiscountTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BracketDiscountTotal = v
			}
		})
	})
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
