package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics provides observability for the training core operations.
type Metrics struct {
	Operations           *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
	IdentifierCollisions prometheus.Counter
	CleanupRows          *prometheus.CounterVec
	EventsPublishFailed  prometheus.Counter
}

// New registers all metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "training_operations_total",
			Help: "Core operations by outcome kind (empty kind means success)",
		}, []string{"operation", "kind"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "training_operation_duration_seconds",
			Help:    "Duration of core operations",
			Buckets: durationBuckets,
		}, []string{"operation"}),
		IdentifierCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "training_identifier_collisions_total",
			Help: "Generated certificate numbers rejected as already taken",
		}),
		CleanupRows: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "training_cleanup_rows_total",
			Help: "Rows removed or reassigned by forced deletion, by step",
		}, []string{"step"}),
		EventsPublishFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "training_events_publish_failed_total",
			Help: "Notification events that could not be published",
		}),
	}
}

// ObserveOperation records the outcome and duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation, kind string, start time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, kind).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementIdentifierCollisions() {
	if m == nil {
		return
	}
	m.IdentifierCollisions.Inc()
}

func (m *Metrics) AddCleanupRows(step string, rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.CleanupRows.WithLabelValues(step).Add(float64(rows))
}

func (m *Metrics) IncrementEventsPublishFailed() {
	if m == nil {
		return
	}
	m.EventsPublishFailed.Inc()
}
