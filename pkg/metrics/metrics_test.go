package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveHelpers(t *testing.T) {
	m := New(prometheus.NewRegistry(), "apptqueue", "test")

	m.ObserveAppointmentCreated(true)
	m.ObserveAppointmentCreated(false)
	m.ObserveAppointmentCreated(true)
	m.ObserveQueueAssignment("auto", false)
	m.SetQueueDepth(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AppointmentsCreated.WithLabelValues("queued")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AppointmentsCreated.WithLabelValues("assigned")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueueAssignments.WithLabelValues("auto", "skipped")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.QueueDepth))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAppointmentCreated(true)
		m.ObserveConflict()
		m.SetQueueDepth(1)
		m.ObserveQueueAssignment("manual", true)
	})
}
