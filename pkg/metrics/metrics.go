package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Appointment flow
	AppointmentsCreated *prometheus.CounterVec
	ConflictRejections  prometheus.Counter
	QueueAssignments    *prometheus.CounterVec
	QueueDepth          prometheus.Gauge

	// Activity publishing
	ActivityPublished      prometheus.Counter
	ActivityPublishFailed  prometheus.Counter
	ActivityPublishLatency prometheus.Histogram
	ActivityRetries        prometheus.Counter
	ActivityEntriesPurged  prometheus.Counter
	ActivityPendingEntries prometheus.Gauge

	// HTTP
	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics on the default registerer
func NewMetrics(namespace, subsystem string) *Metrics {
	return New(prometheus.DefaultRegisterer, namespace, subsystem)
}

// New registers the metrics on reg. Tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AppointmentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "appointments_created_total",
			Help:      "Appointments created, by outcome (assigned or queued)",
		}, []string{"outcome"}),
		ConflictRejections: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "appointment_conflicts_total",
			Help:      "Requests rejected because of an overlapping appointment",
		}),
		QueueAssignments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_assignments_total",
			Help:      "Queue assignment attempts by mode (auto, manual) and result",
		}, []string{"mode", "result"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queue_depth",
			Help:      "Number of entries in the waiting queue after the last change",
		}),

		ActivityPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "activity_published_total",
			Help:      "Activity entries published to the broker",
		}),
		ActivityPublishFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "activity_publish_failed_total",
			Help:      "Activity entries that failed to publish after retries",
		}),
		ActivityPublishLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "activity_publish_duration_seconds",
			Help:      "Time spent publishing a batch of activity entries",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		ActivityRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "activity_publish_retries_total",
			Help:      "Retry attempts while publishing activity entries",
		}),
		ActivityEntriesPurged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "activity_entries_purged_total",
			Help:      "Activity entries removed by the retention worker",
		}),
		ActivityPendingEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "activity_pending_entries",
			Help:      "Unpublished activity entries seen in the last poll",
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		DatabaseOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}

// ObserveAppointmentCreated records whether a new appointment was assigned or queued.
func (m *Metrics) ObserveAppointmentCreated(queued bool) {
	if m == nil {
		return
	}
	outcome := "assigned"
	if queued {
		outcome = "queued"
	}
	m.AppointmentsCreated.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.ConflictRejections.Inc()
}

func (m *Metrics) SetQueueDepth(n int) {
	if m == nil {
		return
	}
	m.QueueDepth.Set(float64(n))
}

// ObserveQueueAssignment records an assignment attempt.
func (m *Metrics) ObserveQueueAssignment(mode string, assigned bool) {
	if m == nil {
		return
	}
	result := "assigned"
	if !assigned {
		result = "skipped"
	}
	m.QueueAssignments.WithLabelValues(mode, result).Inc()
}
