// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the trader.
type Metrics struct {
	// Feed metrics
	EventsProcessed *prometheus.CounterVec
	FramesDropped   prometheus.Counter
	FeedReconnects  prometheus.Counter

	// Decision-loop metrics
	DecisionPasses  prometheus.Counter
	ChecksPerformed *prometheus.CounterVec
	TokensEvicted   prometheus.Counter

	// Trading metrics
	TradesExecuted   *prometheus.CounterVec
	TradesRejected   *prometheus.CounterVec
	LedgerBalanceSol prometheus.Gauge
	HoldingsValueSol prometheus.Gauge
	TrackedTokens    prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
// A nil registerer uses the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "paper_trader"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		EventsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "events_processed_total",
			Help:      "Total number of feed events processed by kind",
		}, []string{"kind"}),
		FramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "frames_dropped_total",
			Help:      "Total number of malformed frames dropped",
		}),
		FeedReconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total number of feed reconnect attempts",
		}),

		DecisionPasses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "passes_total",
			Help:      "Total number of decision-loop passes",
		}),
		ChecksPerformed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "checks_total",
			Help:      "Total number of legitimacy checks by outcome",
		}, []string{"outcome"}),
		TokensEvicted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "tokens_evicted_total",
			Help:      "Total number of tokens evicted by retention sweep",
		}),

		TradesExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_executed_total",
			Help:      "Total number of executed paper trades by action",
		}, []string{"action"}),
		TradesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "trades_rejected_total",
			Help:      "Total number of ledger-rejected decisions by reason",
		}, []string{"reason"}),
		LedgerBalanceSol: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "ledger_balance_sol",
			Help:      "Current virtual balance in SOL",
		}),
		HoldingsValueSol: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "trading",
			Name:      "holdings_value_sol",
			Help:      "Current value of open positions in SOL",
		}),
		TrackedTokens: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "market",
			Name:      "tracked_tokens",
			Help:      "Number of tokens currently tracked in market state",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
