package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the blowout checker

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_blowout_api_calls_total",
			Help: "Total number of MLB Stats API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mlb_blowout_api_call_duration_seconds",
			Help:    "Duration of API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Run metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_blowout_runs_total",
			Help: "Total number of check runs",
		},
		[]string{"trigger", "status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mlb_blowout_run_duration_seconds",
			Help:    "Duration of check runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Classification metrics
	GamesClassified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mlb_blowout_games_classified_total",
			Help: "Total number of games classified",
		},
	)

	GamesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_blowout_games_skipped_total",
			Help: "Total number of games skipped",
		},
		[]string{"reason"},
	)

	BlowoutsDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mlb_blowout_blowouts_detected_total",
			Help: "Total number of blowouts detected",
		},
	)

	// Persistence metrics
	UpsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_blowout_upserts_total",
			Help: "Total number of classification upserts",
		},
		[]string{"status"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_blowout_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mlb_blowout_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mlb_blowout_last_successful_run_timestamp",
			Help: "Timestamp of last successful check run",
		},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordRun records a check run
func RecordRun(trigger, status string, duration float64) {
	RunsTotal.WithLabelValues(trigger, status).Inc()
	RunDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordUpsert records a classification upsert
func RecordUpsert(status string) {
	UpsertsTotal.WithLabelValues(status).Inc()
}

// RecordSkip records a skipped game
func RecordSkip(reason string) {
	GamesSkipped.WithLabelValues(reason).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
