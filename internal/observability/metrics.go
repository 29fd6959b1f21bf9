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
	// Refresh metrics
	RefreshRunsTotal    *prometheus.CounterVec
	RefreshDuration     prometheus.Histogram
	ObligationsRefreshed prometheus.Gauge
	RewardStreamsActive prometheus.Gauge

	// Risk metrics
	ObligationsByRiskState *prometheus.GaugeVec

	// Planner metrics
	PlansBuilt      *prometheus.CounterVec
	PlansSubmitted  *prometheus.CounterVec
	AssetsSkipped   *prometheus.CounterVec
	PlanBuildDuration prometheus.Histogram

	// Routing metrics
	QuotesRequested prometheus.Counter
	QuoteFailures   prometheus.Counter
	QuoteLatency    prometheus.Histogram

	// Ledger RPC metrics
	RPCCallLatency *prometheus.HistogramVec
	PriceUpdates   prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulRefresh prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "lendlab"
	}

	return &Metrics{
		// Refresh metrics
		RefreshRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "runs_total",
			Help:      "Total number of refresh cycles by status",
		}, []string{"status"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "duration_seconds",
			Help:      "Refresh cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ObligationsRefreshed: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "obligations",
			Help:      "Number of obligations seen in the last refresh cycle",
		}),
		RewardStreamsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "refresh",
			Name:      "reward_streams_active",
			Help:      "Number of active reward streams in the last refresh cycle",
		}),

		// Risk metrics
		ObligationsByRiskState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "risk",
			Name:      "obligations_by_state",
			Help:      "Number of obligations in each risk state",
		}, []string{"state"}),

		// Planner metrics
		PlansBuilt: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "plans_built_total",
			Help:      "Total number of claim plans built by mode",
		}, []string{"mode"}),
		PlansSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "plans_submitted_total",
			Help:      "Total number of claim plans submitted by status",
		}, []string{"status"}),
		AssetsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "assets_skipped_total",
			Help:      "Total number of assets skipped during consolidation by reason",
		}, []string{"reason"}),
		PlanBuildDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "build_duration_seconds",
			Help:      "Claim plan build duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Routing metrics
		QuotesRequested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "quotes_requested_total",
			Help:      "Total number of route quotes requested",
		}),
		QuoteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "quote_failures_total",
			Help:      "Total number of route quote failures",
		}),
		QuoteLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "routing",
			Name:      "quote_latency_seconds",
			Help:      "Route quote latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Ledger RPC metrics
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "rpc_call_latency_seconds",
			Help:      "Ledger RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		PriceUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "price_updates_total",
			Help:      "Total number of price feed updates consumed",
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulRefresh: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_refresh_timestamp",
			Help:      "Unix timestamp of last successful refresh cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRefreshRun records one refresh cycle.
func RecordRefreshRun(status string, durationSeconds float64) {
	DefaultMetrics.RefreshRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.RefreshDuration.Observe(durationSeconds)
}

// RecordPlanBuilt increments the plans built counter.
func RecordPlanBuilt(mode string, durationSeconds float64) {
	DefaultMetrics.PlansBuilt.WithLabelValues(mode).Inc()
	DefaultMetrics.PlanBuildDuration.Observe(durationSeconds)
}

// RecordPlanSubmitted increments the plans submitted counter.
func RecordPlanSubmitted(status string) {
	DefaultMetrics.PlansSubmitted.WithLabelValues(status).Inc()
}

// RecordAssetSkipped records one asset excluded from a consolidation plan.
func RecordAssetSkipped(reason string) {
	DefaultMetrics.AssetsSkipped.WithLabelValues(reason).Inc()
}

// RecordQuote records a route quote attempt.
func RecordQuote(seconds float64, err error) {
	DefaultMetrics.QuotesRequested.Inc()
	DefaultMetrics.QuoteLatency.Observe(seconds)
	if err != nil {
		DefaultMetrics.QuoteFailures.Inc()
	}
}

// RecordRPCLatency records ledger RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// UpdateRiskStates sets the per-state obligation gauges.
func UpdateRiskStates(counts map[string]int) {
	for state, count := range counts {
		DefaultMetrics.ObligationsByRiskState.WithLabelValues(state).Set(float64(count))
	}
}
