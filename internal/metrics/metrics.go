package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics groups the Prometheus collectors for the headline pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// FetchTotal counts outbound top-headlines requests by outcome.
	FetchTotal *prometheus.CounterVec

	// FetchDuration observes request latency, including failed requests.
	FetchDuration prometheus.Histogram

	// LoadTotal counts store loads by source and outcome.
	LoadTotal *prometheus.CounterVec

	// ArticlesLoaded holds the size of the last successful load per source.
	ArticlesLoaded *prometheus.GaugeVec

	// ArchivedTotal counts articles written to the archive per source.
	ArchivedTotal *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		FetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "headlines_fetch_total",
			Help: "Total top-headlines requests by outcome",
		}, []string{"outcome"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "headlines_fetch_duration_seconds",
			Help:    "Duration of top-headlines requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LoadTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "headlines_load_total",
			Help: "Total store loads by source and outcome",
		}, []string{"source", "outcome"}),
		ArticlesLoaded: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "headlines_articles_loaded",
			Help: "Number of articles held after the last successful load",
		}, []string{"source"}),
		ArchivedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "headlines_archived_total",
			Help: "Total articles written to the archive",
		}, []string{"source"}),
	}
}

func (m *Metrics) RecordFetch(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchTotal.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordLoad(source, outcome string, articles int) {
	if m == nil {
		return
	}
	m.LoadTotal.WithLabelValues(source, outcome).Inc()
	if outcome == OutcomeSuccess {
		m.ArticlesLoaded.WithLabelValues(source).Set(float64(articles))
	}
}

func (m *Metrics) RecordArchived(source string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ArchivedTotal.WithLabelValues(source).Add(float64(n))
}
