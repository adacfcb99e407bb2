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
	// Simulation metrics
	TicksTotal       prometheus.Counter
	TokensUpdated    prometheus.Counter
	TradesSimulated  prometheus.Counter
	DegenerateSkips  prometheus.Counter
	TickDuration     prometheus.Histogram
	UniverseSize     prometheus.Gauge
	FeedTickOverruns prometheus.Counter

	// Filter metrics
	FilterChanges *prometheus.CounterVec
	ActiveFilters *prometheus.GaugeVec

	// Push metrics
	WSClients        prometheus.Gauge
	WSMessagesSent   prometheus.Counter
	WSMessageDropped prometheus.Counter

	// Archive metrics
	SamplesArchived prometheus.Counter
	ArchiveErrors   *prometheus.CounterVec
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastTickTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "token_pulse"
	}

	return &Metrics{
		// Simulation metrics
		TicksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "ticks_total",
			Help:      "Total number of simulation ticks applied",
		}),
		TokensUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "tokens_updated_total",
			Help:      "Total number of token price updates across all ticks",
		}),
		TradesSimulated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trades_simulated_total",
			Help:      "Total number of simulated trades (volume and transaction increments)",
		}),
		DegenerateSkips: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "degenerate_skips_total",
			Help:      "Total number of record updates skipped to avoid non-finite values",
		}),
		TickDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "tick_duration_seconds",
			Help:      "Time spent applying one tick",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		UniverseSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "universe_size",
			Help:      "Number of tokens in the simulated universe",
		}),
		FeedTickOverruns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "tick_overruns_total",
			Help:      "Ticks whose processing took longer than the tick interval",
		}),

		// Filter metrics
		FilterChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "changes_total",
			Help:      "Total number of filter replacements by category",
		}, []string{"status"}),
		ActiveFilters: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "active_rules",
			Help:      "Number of active filter rules by category",
		}, []string{"status"}),

		// Push metrics
		WSClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "websocket_clients",
			Help:      "Number of connected websocket clients",
		}),
		WSMessagesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "messages_sent_total",
			Help:      "Total number of change messages written to websocket clients",
		}),
		WSMessageDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "messages_dropped_total",
			Help:      "Total number of change messages dropped for slow clients",
		}),

		// Archive metrics
		SamplesArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "samples_archived_total",
			Help:      "Total number of price samples written to the archive",
		}),
		ArchiveErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "errors_total",
			Help:      "Total number of archive write errors by store",
		}, []string{"store"}),
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastTickTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_tick_timestamp",
			Help:      "Unix timestamp of the last applied tick",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTick records the outcome of one tick.
func RecordTick(updated, trades, degenerate int, seconds float64) {
	DefaultMetrics.TicksTotal.Inc()
	DefaultMetrics.TokensUpdated.Add(float64(updated))
	DefaultMetrics.TradesSimulated.Add(float64(trades))
	DefaultMetrics.DegenerateSkips.Add(float64(degenerate))
	DefaultMetrics.TickDuration.Observe(seconds)
	DefaultMetrics.LastTickTimestamp.SetToCurrentTime()
}

// RecordTickOverrun increments the overrun counter.
func RecordTickOverrun() {
	DefaultMetrics.FeedTickOverruns.Inc()
}

// SetUniverseSize updates the universe size gauge.
func SetUniverseSize(n int) {
	DefaultMetrics.UniverseSize.Set(float64(n))
}

// RecordFilterChange records a filter replacement for a category.
func RecordFilterChange(status string, activeRules int) {
	DefaultMetrics.FilterChanges.WithLabelValues(status).Inc()
	DefaultMetrics.ActiveFilters.WithLabelValues(status).Set(float64(activeRules))
}

// SetWSClients updates the websocket client gauge.
func SetWSClients(n int) {
	DefaultMetrics.WSClients.Set(float64(n))
}

// RecordWSMessage records a websocket delivery outcome.
func RecordWSMessage(dropped bool) {
	if dropped {
		DefaultMetrics.WSMessageDropped.Inc()
		return
	}
	DefaultMetrics.WSMessagesSent.Inc()
}

// RecordSamplesArchived increments the archived samples counter.
func RecordSamplesArchived(n int) {
	DefaultMetrics.SamplesArchived.Add(float64(n))
}

// RecordArchiveError records an archive write failure.
func RecordArchiveError(store string) {
	DefaultMetrics.ArchiveErrors.WithLabelValues(store).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
