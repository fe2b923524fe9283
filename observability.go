package validy

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors updated by an engine. A nil *Metrics records nothing.
type Metrics struct {
	validations *prometheus.CounterVec
	duration    prometheus.Histogram
	rejections  prometheus.Counter
}

// Validation outcomes used as the "outcome" label.
const (
	outcomeValid   = "valid"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validy_validations_total",
				Help: "Total number of Validate calls by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "validy_validation_duration_seconds",
			Help:    "Duration of Validate calls",
			Buckets: prometheus.DefBuckets,
		}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "validy_validator_rejections_total",
			Help: "Custom validators that returned an error or panicked",
		}),
	}
	for _, c := range []prometheus.Collector{m.validations, m.duration, m.rejections} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(res Result, err error, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := outcomeValid
	switch {
	case err != nil:
		outcome = outcomeError
	case !res.Valid:
		outcome = outcomeInvalid
	}
	m.validations.WithLabelValues(outcome).Inc()
	m.duration.Observe(dur.Seconds())
}

func (m *Metrics) observeRejection() {
	if m == nil {
		return
	}
	m.rejections.Inc()
}
