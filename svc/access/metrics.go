package access

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors of the engine.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Decisions       *prometheus.CounterVec
	StaleDiscarded  prometheus.Counter
	ResolveDuration *prometheus.HistogramVec
	OpenSessions    prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "access",
			Name:      "decisions_total",
			Help:      "Terminal access decisions by state and block reason.",
		}, []string{"state", "reason"}),
		StaleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "access",
			Name:      "stale_results_discarded_total",
			Help:      "Resolution results dropped because a newer request superseded them or the session closed.",
		}),
		ResolveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "access",
			Name:      "resolve_duration_seconds",
			Help:      "Time from navigation to terminal decision.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"state"}),
		OpenSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "access",
			Name:      "open_sessions",
			Help:      "Sessions currently held by the registry.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Decisions, m.StaleDiscarded, m.ResolveDuration, m.OpenSessions)
	}
	return m
}

func (m *Metrics) decided(d Decision, took time.Duration) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(string(d.State), d.Reason.String()).Inc()
	m.ResolveDuration.WithLabelValues(string(d.State)).Observe(took.Seconds())
}

func (m *Metrics) stale() {
	if m == nil {
		return
	}
	m.StaleDiscarded.Inc()
}

func (m *Metrics) sessions(n int) {
	if m == nil {
		return
	}
	m.OpenSessions.Set(float64(n))
}
