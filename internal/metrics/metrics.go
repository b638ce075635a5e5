// Package metrics exposes Prometheus collectors for a monitoring session.
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Session states reported by the bridgewatch_session_state gauge.
const (
	StatePolling   = 0
	StateCompleted = 1
	StateTimeout   = 2
	StateCancelled = 3
)

// maxStatusLabels bounds the status label set; later statuses are
// reported as otherStatus.
const (
	maxStatusLabels = 16
	otherStatus     = "other"
)

// Recorder owns a private registry so several monitors in one process do not
// collide on metric names.
type Recorder struct {
	registry         *prometheus.Registry
	pollsTotal       *prometheus.CounterVec
	pollDuration     prometheus.Histogram
	transactionsSeen *prometheus.GaugeVec
	sessionState     prometheus.Gauge
	iterations       prometheus.Gauge

	// statuses seen so far, used as label values
	knownStatuses map[string]struct{}
}

// NewRecorder creates a [Recorder] with all collectors registered.
func NewRecorder() *Recorder {
	polls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgewatch_polls_total",
		Help: "Total number of bridge status polls",
	}, []string{"result"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bridgewatch_poll_duration_seconds",
		Help:    "Latency of bridge status requests",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 9),
	})

	seen := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bridgewatch_transactions_seen",
		Help: "Transactions in the last successful response, by status",
	}, []string{"status"})

	state := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bridgewatch_session_state",
		Help: "Session state: 0 polling, 1 completed, 2 timeout, 3 cancelled",
	})

	iterations := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bridgewatch_iterations",
		Help: "Number of poll iterations attempted in the current session",
	})

	r := prometheus.NewRegistry()
	r.MustRegister(polls, duration, seen, state, iterations)

	return &Recorder{
		registry:         r,
		pollsTotal:       polls,
		pollDuration:     duration,
		transactionsSeen: seen,
		sessionState:     state,
		iterations:       iterations,
		knownStatuses:    make(map[string]struct{}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Recorder) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePoll records one poll attempt.
func (m *Recorder) ObservePoll(iteration int, latency time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.pollsTotal.WithLabelValues(result).Inc()
	m.pollDuration.Observe(latency.Seconds())
	m.iterations.Set(float64(iteration))
}

// SetTransactions replaces the per-status gauge with the given statuses.
// Once maxStatusLabels distinct statuses have been seen, new ones are
// counted under "other".
func (m *Recorder) SetTransactions(statuses []string) {
	m.transactionsSeen.Reset()
	for _, s := range statuses {
		m.transactionsSeen.WithLabelValues(m.statusLabel(s)).Inc()
	}
}

// statusLabel maps a server-reported status to a valid, bounded label value.
func (m *Recorder) statusLabel(status string) string {
	status = strings.ToValidUTF8(status, "\uFFFD")
	if _, ok := m.knownStatuses[status]; ok {
		return status
	}
	if len(m.knownStatuses) >= maxStatusLabels {
		return otherStatus
	}
	m.knownStatuses[status] = struct{}{}
	return status
}

// SetState records the session state; see the State constants.
func (m *Recorder) SetState(state int) {
	m.sessionState.Set(float64(state))
}
