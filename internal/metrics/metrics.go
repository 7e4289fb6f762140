// Package metrics exposes the Prometheus counters and gauges the
// ingestion pipeline and evaluation engine update on every tick.
package metrics

import (
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// namespace is read directly from the environment rather than threaded
// through internal/config: these vars are built by promauto at package-load
// time, before main() ever calls config.Load(), so a Config-sourced value
// would arrive too late to affect the registered metric names.
// config.MetricsConfig.Namespace documents and validates the same setting
// under METRICS_NAMESPACE for operators who look in one place.
var namespace = envOrDefault("METRICS_NAMESPACE", "arbitrage")

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ============ Ingestion ============

var QuotesIngestedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingestion",
		Name:      "quotes_ingested_total",
		Help:      "Total number of quotes applied to the quote store",
	},
	[]string{"exchange"},
)

var QuotesDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingestion",
		Name:      "quotes_dropped_total",
		Help:      "Total number of quotes dropped due to a full intake channel",
	},
	[]string{"exchange"},
)

var SymbolMapFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingestion",
		Name:      "symbol_map_failures_total",
		Help:      "Total number of ticker rows dropped for an unmapped venue symbol",
	},
	[]string{"exchange"},
)

var AdapterPollErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ingestion",
		Name:      "adapter_poll_errors_total",
		Help:      "Total number of failed adapter polls",
	},
	[]string{"exchange"},
)

var ExchangeConnectionStatus = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ingestion",
		Name:      "exchange_connection_status",
		Help:      "Exchange connection status (1=connected, 0=disconnected)",
	},
	[]string{"exchange"},
)

var ExchangeQuoteCount = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ingestion",
		Name:      "exchange_quote_count",
		Help:      "Number of distinct non-stale symbols currently held for an exchange",
	},
	[]string{"exchange"},
)

// ============ Evaluation ============

var EvaluationTickDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "evaluation",
		Name:      "tick_duration_ms",
		Help:      "Time to complete one evaluation tick in milliseconds",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500},
	},
)

var OpportunitiesDetectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "evaluation",
		Name:      "opportunities_detected_total",
		Help:      "Total number of profitable opportunities emitted by a tick",
	},
	[]string{"symbol"},
)

var OpportunitiesStable = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "evaluation",
		Name:      "opportunities_stable",
		Help:      "Number of opportunities in the latest snapshot marked stable",
	},
)

var BestSpreadPct = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "evaluation",
		Name:      "best_spread_pct",
		Help:      "Best pre-fee price spread percent observed for a symbol in the latest tick",
	},
	[]string{"symbol"},
)

// ============ Publish ============

var SubscribersConnected = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "publish",
		Name:      "subscribers_connected",
		Help:      "Number of currently connected WebSocket subscribers",
	},
)

// RecordTick records the duration of one evaluation tick and the resulting
// per-symbol opportunity counts/spreads in one call.
func RecordTick(durationMs float64, bestSpreadBySymbol map[string]float64, countBySymbol map[string]int, stableCount int) {
	EvaluationTickDuration.Observe(durationMs)
	OpportunitiesStable.Set(float64(stableCount))
	for symbol, count := range countBySymbol {
		OpportunitiesDetectedTotal.WithLabelValues(symbol).Add(float64(count))
	}
	for symbol, spread := range bestSpreadBySymbol {
		BestSpreadPct.WithLabelValues(symbol).Set(spread)
	}
}
