package reviewsense

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records classification outcomes. A nil *Metrics records nothing.
type Metrics struct {
	classifications *prometheus.CounterVec
	scorerErrors    prometheus.Counter
	scoreDuration   prometheus.Histogram
	unknownRatio    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewsense_classifications_total",
			Help: "Reviews classified, by verdict",
		}, []string{"verdict"}),
		scorerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reviewsense_scorer_errors_total",
			Help: "Scorer calls that returned an error",
		}),
		scoreDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reviewsense_score_duration_seconds",
			Help:    "Time spent in the scorer",
			Buckets: prometheus.DefBuckets,
		}),
		unknownRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "reviewsense_unknown_tokens_ratio",
			Help:    "Share of tokens per review missing from the vocabulary",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}

	for _, c := range []prometheus.Collector{m.classifications, m.scorerErrors, m.scoreDuration, m.unknownRatio} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeScore(elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.scoreDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.scorerErrors.Inc()
	}
}

func (m *Metrics) observeReview(r *Review) {
	if m == nil {
		return
	}
	m.classifications.WithLabelValues(r.Verdict.String()).Inc()
	if r.Metadata.TokenCount > 0 {
		m.unknownRatio.Observe(float64(r.Metadata.UnknownCount) / float64(r.Metadata.TokenCount))
	}
}
