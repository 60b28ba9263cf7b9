package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ingestion pipeline.
type Metrics struct {
	// Pipeline outcomes by terminal reason
	MessagesProcessed *prometheus.CounterVec

	// Settlements sent back to the broker
	Settlements *prometheus.CounterVec

	// Per-stage store latencies
	StageLatency *prometheus.HistogramVec
}

// New creates the pipeline metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		MessagesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attendease_messages_processed_total",
			Help: "Check-in messages processed by outcome",
		}, []string{"outcome"}), // outcome: "recorded", "malformed", "device_mismatch", "unknown_user", "no_office", "error"

		Settlements: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "attendease_settlements_total",
			Help: "Acknowledgements sent to the broker by action",
		}, []string{"action"}), // action: "ack", "nack_requeue"

		StageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attendease_stage_duration_seconds",
			Help:    "Duration of pipeline stages that call the store",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"stage"}), // stage: "device_check", "geofence", "record"
	}
}

// IncrementOutcome records a pipeline outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.MessagesProcessed.WithLabelValues(outcome).Inc()
	}
}

// IncrementSettlement records an ack or nack sent to the broker.
func (m *Metrics) IncrementSettlement(action string) {
	if m != nil {
		m.Settlements.WithLabelValues(action).Inc()
	}
}

// ObserveStage records the duration of a pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
	}
}
