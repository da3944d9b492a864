package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LendingMetrics records ledger operation activity segmented by operation and
// outcome.
type LendingMetrics struct {
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// GatewayMetrics records inbound cross-chain message handling and outbound
// payout queueing.
type GatewayMetrics struct {
	inbound *prometheus.CounterVec
	payouts *prometheus.CounterVec
}

var (
	lendingMetricsOnce sync.Once
	lendingRegistry    *LendingMetrics

	gatewayMetricsOnce sync.Once
	gatewayRegistry    *GatewayMetrics
)

// Lending returns the lazily-initialised ledger metrics registry.
func Lending() *LendingMetrics {
	lendingMetricsOnce.Do(func() {
		lendingRegistry = &LendingMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "crosslend",
				Subsystem: "lending",
				Name:      "operations_total",
				Help:      "Total ledger operations segmented by operation and outcome.",
			}, []string{"operation", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "crosslend",
				Subsystem: "lending",
				Name:      "operation_duration_seconds",
				Help:      "Latency distribution for ledger operations.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"operation"}),
		}
		prometheus.MustRegister(lendingRegistry.operations, lendingRegistry.latency)
	})
	return lendingRegistry
}

// Observe records one ledger operation. Outcomes should be stable strings
// such as "ok", "rejected" or "error" so dashboards stay consistent.
func (m *LendingMetrics) Observe(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	if operation == "" {
		operation = "unknown"
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.latency.WithLabelValues(operation).Observe(duration.Seconds())
}

// Gateway returns the lazily-initialised gateway metrics registry.
func Gateway() *GatewayMetrics {
	gatewayMetricsOnce.Do(func() {
		gatewayRegistry = &GatewayMetrics{
			inbound: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "crosslend",
				Subsystem: "gateway",
				Name:      "inbound_messages_total",
				Help:      "Total inbound deposit-and-call messages segmented by result.",
			}, []string{"result"}),
			payouts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "crosslend",
				Subsystem: "gateway",
				Name:      "payouts_queued_total",
				Help:      "Total outbound payout instructions segmented by destination chain.",
			}, []string{"chain"}),
		}
		prometheus.MustRegister(gatewayRegistry.inbound, gatewayRegistry.payouts)
	})
	return gatewayRegistry
}

// RecordInbound increments the inbound counter. Results should be one of
// "accepted", "duplicate", "malformed" or "rejected".
func (m *GatewayMetrics) RecordInbound(result string) {
	if m == nil {
		return
	}
	if result == "" {
		result = "unknown"
	}
	m.inbound.WithLabelValues(result).Inc()
}

// RecordPayout increments the outbound payout counter for the chain.
func (m *GatewayMetrics) RecordPayout(chain string) {
	if m == nil {
		return
	}
	if chain == "" {
		chain = "unknown"
	}
	m.payouts.WithLabelValues(chain).Inc()
}
