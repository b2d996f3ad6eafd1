// Package metrics exposes Prometheus counters/gauges/histograms for the
// worker pool, alongside the health endpoint on the same HTTP server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WorkerState is 1 for the worker's current state and 0 for every other
	// label value; state is one of idle/acquiring/proving/polling/submitting.
	WorkerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "prover_worker_state",
			Help: "Current state machine state per worker (1=current, 0=otherwise)",
		},
		[]string{"worker", "state"},
	)

	TasksAcquiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prover_tasks_acquired_total",
			Help: "Total number of tasks successfully acquired from the coordinator",
		},
		[]string{"worker"},
	)

	TasksSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prover_tasks_submitted_total",
			Help: "Total number of proof submissions by outcome",
		},
		[]string{"worker", "status"},
	)

	LoginTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prover_login_total",
			Help: "Total number of coordinator login attempts by result",
		},
		[]string{"worker", "result"},
	)

	PollDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prover_poll_duration_seconds",
			Help:    "Time from entering Polling to reaching a terminal backend status",
			Buckets: []float64{1, 5, 10, 30, 60, 300, 600, 1800, 3600},
		},
	)
)

func init() {
	prometheus.MustRegister(WorkerState)
	prometheus.MustRegister(TasksAcquiredTotal)
	prometheus.MustRegister(TasksSubmittedTotal)
	prometheus.MustRegister(LoginTotal)
	prometheus.MustRegister(PollDuration)
}

// Handler returns the Prometheus scrape handler, mounted alongside the
// health endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// stateLabels lists every worker-state label value so SetWorkerState can
// zero out the ones the worker isn't currently in.
var stateLabels = []string{"idle", "acquiring", "proving", "polling", "submitting"}

// SetWorkerState records worker as currently being in state and clears the
// gauge for every other state, so a single gauge vector reflects exactly one
// active state per worker at a time.
func SetWorkerState(worker, state string) {
	for _, s := range stateLabels {
		value := 0.0
		if s == state {
			value = 1.0
		}
		WorkerState.WithLabelValues(worker, s).Set(value)
	}
}

// Timer is a helper for timing operations
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
