package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordFetch(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordFetch(OutcomeSuccess, 120*time.Millisecond)
	m.RecordFetch(OutcomeSuccess, 80*time.Millisecond)
	m.RecordFetch(OutcomeFailure, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))
}

func TestMetrics_RecordLoad(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordLoad("bbc-news", OutcomeSuccess, 20)
	m.RecordLoad("bbc-news", OutcomeFailure, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadTotal.WithLabelValues("bbc-news", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadTotal.WithLabelValues("bbc-news", OutcomeFailure)))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.ArticlesLoaded.WithLabelValues("bbc-news")))
}

func TestMetrics_RecordArchived(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordArchived("cnn", 3)
	m.RecordArchived("cnn", 0)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.ArchivedTotal.WithLabelValues("cnn")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordFetch(OutcomeSuccess, time.Second)
		m.RecordLoad("cnn", OutcomeSuccess, 1)
		m.RecordArchived("cnn", 1)
	})
}
