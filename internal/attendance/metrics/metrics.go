package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for attendance verification and override.
type Metrics struct {
	// Verification outcomes by status and method
	Outcomes *prometheus.CounterVec

	// Factor results by factor and result ("passed", "failed", "missing")
	Factors *prometheus.CounterVec

	// Evidence lookups by source ("token", "enrollment")
	EvidenceLatency *prometheus.HistogramVec

	// Full verification latency including persistence
	VerifyLatency prometheus.Histogram

	// Overrides by effective status
	Overrides *prometheus.CounterVec
}

// New creates and registers the attendance metrics.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_attendance_outcomes_total",
			Help: "Automatic attendance outcomes by status and method",
		}, []string{"status", "method"}),

		Factors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_attendance_factor_results_total",
			Help: "Evidence factor results by factor and result",
		}, []string{"factor", "result"}),

		EvidenceLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "presence_attendance_evidence_duration_seconds",
			Help:    "Duration of evidence lookups by source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"source"}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "presence_attendance_verify_duration_seconds",
			Help:    "Duration of attendance verification including persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		Overrides: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_attendance_overrides_total",
			Help: "Administrative overrides by effective status",
		}, []string{"effective_status"}),
	}
}

func (m *Metrics) IncrementOutcome(status, method string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status, method).Inc()
	}
}

func (m *Metrics) IncrementFactor(factor, result string) {
	if m != nil {
		m.Factors.WithLabelValues(factor, result).Inc()
	}
}

func (m *Metrics) ObserveEvidenceLatency(source string, d time.Duration) {
	if m != nil {
		m.EvidenceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementOverride(effective string) {
	if m != nil {
		m.Overrides.WithLabelValues(effective).Inc()
	}
}
