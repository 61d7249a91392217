package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for venue token rotation and validation.
type Metrics struct {
	TokensIssued prometheus.Counter

	// Validations by result: "ok" or the rejection reason
	Validations *prometheus.CounterVec
}

// New creates and registers the venue token metrics.
func New() *Metrics {
	return &Metrics{
		TokensIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "presence_venue_tokens_issued_total",
			Help: "Total venue tokens issued",
		}),
		Validations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "presence_venue_token_validations_total",
			Help: "Venue token validations by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementIssued() {
	if m != nil {
		m.TokensIssued.Inc()
	}
}

func (m *Metrics) IncrementValidation(result string) {
	if m != nil {
		m.Validations.WithLabelValues(result).Inc()
	}
}
