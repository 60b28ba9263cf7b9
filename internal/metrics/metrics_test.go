package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/septivank/attendance-ingestion-worker/internal/metrics"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.IncrementOutcome("recorded")
	m.IncrementOutcome("recorded")
	m.IncrementOutcome("no_office")
	m.IncrementSettlement("ack")
	m.ObserveStage("geofence", 15*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.MessagesProcessed.WithLabelValues("recorded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesProcessed.WithLabelValues("no_office")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Settlements.WithLabelValues("ack")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageLatency))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.IncrementOutcome("recorded")
		m.IncrementSettlement("ack")
		m.ObserveStage("record", time.Millisecond)
	})
}
