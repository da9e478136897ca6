package loader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "nativecore"

// Metrics records load attempts. A nil *Metrics is valid and records nothing.
type Metrics struct {
	attempts *prometheus.CounterVec
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
	state    *prometheus.GaugeVec
}

// NewMetrics creates the loader collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "loader",
				Name:      "load_attempts_total",
				Help:      "Number of native library load attempts started.",
			},
			[]string{"component"},
		),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "loader",
				Name:      "load_outcomes_total",
				Help:      "Number of finished load attempts by outcome and error code.",
			},
			[]string{"component", "outcome", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "loader",
				Name:      "load_duration_seconds",
				Help:      "Duration of native library load attempts.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"component"},
		),
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "loader",
				Name:      "component_state",
				Help:      "1 for the current state of each component, 0 otherwise.",
			},
			[]string{"component", "state"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.attempts, m.outcomes, m.duration, m.state)
	}
	return m
}

func (m *Metrics) attemptStarted(component string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(component).Inc()
}

func (m *Metrics) attemptFinished(component, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if code != "" {
		outcome = "failure"
	}
	m.outcomes.WithLabelValues(component, outcome, code).Inc()
	m.duration.WithLabelValues(component).Observe(elapsed.Seconds())
}

func (m *Metrics) setState(component string, s State) {
	if m == nil {
		return
	}
	for _, st := range States() {
		v := 0.0
		if st == s {
			v = 1
		}
		m.state.WithLabelValues(component, st.String()).Set(v)
	}
}
