package queue

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
	"github.com/jwalitptl/apptqueue/internal/repository/memory"
	"github.com/jwalitptl/apptqueue/internal/service/activity"
	apperrors "github.com/jwalitptl/apptqueue/pkg/errors"
)

const day = "2024-01-01"

type env struct {
	store    *memory.Store
	repos    repository.Repositories
	activity *activity.Recorder
	checkup  *model.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	e := &env{store: store, repos: store.Repositories(), activity: &activity.Recorder{}}
	e.checkup = &model.Service{ServiceName: "Checkup", Duration: 30, RequiredStaffType: model.StaffTypeDoctor}
	require.NoError(t, e.repos.Services.Create(context.Background(), e.checkup))
	return e
}

func (e *env) manager(opts ...Option) *Manager {
	return NewManager(e.store, e.activity, opts...)
}

func (e *env) staff(t *testing.T, name string, staffType model.StaffType, capacity int, status model.AvailabilityStatus) *model.Staff {
	t.Helper()
	s := &model.Staff{Name: name, StaffType: staffType, DailyCapacity: capacity, AvailabilityStatus: status}
	require.NoError(t, e.repos.Staff.Create(context.Background(), s))
	return s
}

func (e *env) booked(t *testing.T, staff *model.Staff, clock string) *model.Appointment {
	t.Helper()
	a := &model.Appointment{
		CustomerName: "Booked", ServiceID: e.checkup.ID, StaffID: &staff.ID,
		AppointmentDate: day, AppointmentTime: clock, Status: model.AppointmentStatusScheduled,
	}
	require.NoError(t, e.repos.Appointments.Create(context.Background(), a))
	return a
}

// queued creates unassigned appointments and enqueues them in order.
func (e *env) queued(t *testing.T, m *Manager, names ...string) []uuid.UUID {
	t.Helper()
	ctx := context.Background()
	var ids []uuid.UUID
	for _, name := range names {
		err := e.store.WithTx(ctx, func(repos repository.Repositories) error {
			a := &model.Appointment{
				CustomerName: name, ServiceID: e.checkup.ID,
				AppointmentDate: day, AppointmentTime: "09:00", Status: model.AppointmentStatusScheduled,
			}
			if err := repos.Appointments.Create(ctx, a); err != nil {
				return err
			}
			ids = append(ids, a.ID)
			_, err := m.Enqueue(ctx, repos, a.ID)
			return err
		})
		require.NoError(t, err)
	}
	return ids
}

func (e *env) positions(t *testing.T) []uuid.UUID {
	t.Helper()
	entries, err := e.repos.Queue.Entries(context.Background())
	require.NoError(t, err)
	out := make([]uuid.UUID, len(entries))
	for i, entry := range entries {
		require.Equal(t, i+1, entry.QueuePosition, "positions must be gapless")
		out[i] = entry.AppointmentID
	}
	return out
}

func TestEnqueueAppendsAtTail(t *testing.T) {
	e := newEnv(t)
	m := e.manager()
	ids := e.queued(t, m, "A", "B", "C")
	assert.Equal(t, ids, e.positions(t))
}

func TestRemoveRepacksPreservingOrder(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	m := e.manager()
	ids := e.queued(t, m, "A", "B", "C", "D")

	err := e.store.WithTx(ctx, func(repos repository.Repositories) error {
		removed, err := m.RemoveAppointment(ctx, repos, ids[1])
		assert.True(t, removed)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{ids[0], ids[2], ids[3]}, e.positions(t))

	err = e.store.WithTx(ctx, func(repos repository.Repositories) error {
		removed, err := m.RemoveAppointment(ctx, repos, ids[1])
		assert.False(t, removed, "removal is idempotent")
		return err
	})
	require.NoError(t, err)

	more := e.queued(t, m, "E")
	assert.Equal(t, []uuid.UUID{ids[0], ids[2], ids[3], more[0]}, e.positions(t))
}

func TestRepackClosesGaps(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	m := e.manager()
	ids := e.queued(t, m, "A", "B", "C")

	entries, err := e.repos.Queue.Entries(ctx)
	require.NoError(t, err)
	require.NoError(t, e.repos.Queue.UpdatePosition(ctx, entries[1].ID, 7))
	require.NoError(t, e.repos.Queue.UpdatePosition(ctx, entries[2].ID, 9))

	require.NoError(t, e.store.WithTx(ctx, func(repos repository.Repositories) error {
		return Repack(ctx, repos)
	}))
	assert.Equal(t, ids, e.positions(t))
}

func TestAutoAssignEmptyQueue(t *testing.T) {
	e := newEnv(t)
	res, err := e.manager().AutoAssign(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Assigned)
	assert.Equal(t, MsgQueueEmpty, res.Message)
}

func TestAutoAssignNoEligibleStaffIsNoop(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	m := e.manager()
	full := e.staff(t, "Dr. Full", model.StaffTypeDoctor, 1, model.AvailabilityAvailable)
	e.booked(t, full, "14:00")
	e.staff(t, "Dr. Away", model.StaffTypeDoctor, 5, model.AvailabilityOnLeave)
	e.staff(t, "Consultant", model.StaffTypeConsultant, 5, model.AvailabilityAvailable)
	ids := e.queued(t, m, "A", "B")

	res, err := m.AutoAssign(ctx)
	require.NoError(t, err)
	assert.False(t, res.Assigned)
	assert.Equal(t, MsgNoEligibleStaff, res.Message)

	assert.Equal(t, ids, e.positions(t))
	for _, id := range ids {
		a, err := e.repos.Appointments.Get(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, a.StaffID)
	}
	assert.Empty(t, e.activity.Entries())
}

func TestAutoAssignFirstFit(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	m := e.manager()
	full := e.staff(t, "Dr. Adams", model.StaffTypeDoctor, 1, model.AvailabilityAvailable)
	e.booked(t, full, "14:00")
	free := e.staff(t, "Dr. Brown", model.StaffTypeDoctor, 2, model.AvailabilityAvailable)
	ids := e.queued(t, m, "Ann", "Bob", "Cat")

	res, err := m.AutoAssign(ctx)
	require.NoError(t, err)
	require.True(t, res.Assigned)
	assert.Equal(t, "Appointment assigned to Dr. Brown", res.Message)
	assert.Equal(t, free.ID, *res.StaffID)
	assert.Equal(t, ids[0], *res.AppointmentID)

	a, err := e.repos.Appointments.Get(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, free.ID, *a.StaffID)
	assert.Equal(t, []uuid.UUID{ids[1], ids[2]}, e.positions(t))
	assert.Equal(t, []string{"Appointment for Ann auto-assigned to Dr. Brown"}, e.activity.Actions())
}

func TestAutoAssignIgnoresOverlapByDefault(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	doc := e.staff(t, "Dr. X", model.StaffTypeDoctor, 5, model.AvailabilityAvailable)
	e.booked(t, doc, "09:00")

	m := e.manager()
	e.queued(t, m, "A")
	res, err := m.AutoAssign(ctx)
	require.NoError(t, err)
	assert.True(t, res.Assigned)
}

func TestAutoAssignWithConflictCheckSkipsOverlap(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	busy := e.staff(t, "Dr. Busy", model.StaffTypeDoctor, 5, model.AvailabilityAvailable)
	e.booked(t, busy, "09:00")
	free := e.staff(t, "Dr. Free", model.StaffTypeDoctor, 5, model.AvailabilityAvailable)

	m := e.manager(WithConflictCheck(true))
	e.queued(t, m, "A")
	res, err := m.AutoAssign(ctx)
	require.NoError(t, err)
	require.True(t, res.Assigned)
	assert.Equal(t, free.ID, *res.StaffID)
}

func TestManualAssign(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	m := e.manager()
	doc := e.staff(t, "Dr. X", model.StaffTypeDoctor, 5, model.AvailabilityAvailable)
	ids := e.queued(t, m, "Ann", "Bob")

	items, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Checkup", items[1].ServiceName)
	assert.Equal(t, model.StaffTypeDoctor, items[1].RequiredStaffType)

	res, err := m.ManualAssign(ctx, items[1].QueueID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Appointment assigned to Dr. X", res.Message)
	assert.Equal(t, ids[1], res.AppointmentID)
	assert.Equal(t, []uuid.UUID{ids[0]}, e.positions(t))
	assert.Equal(t, []string{"Appointment for Bob assigned to Dr. X"}, e.activity.Actions())
}

func TestManualAssignErrors(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	m := e.manager(WithConflictCheck(true))
	doc := e.staff(t, "Dr. Full", model.StaffTypeDoctor, 1, model.AvailabilityAvailable)
	e.booked(t, doc, "14:00")
	away := e.staff(t, "Dr. Away", model.StaffTypeDoctor, 5, model.AvailabilityOnLeave)
	agent := e.staff(t, "Agent", model.StaffTypeSupportAgent, 5, model.AvailabilityAvailable)
	busy := e.staff(t, "Dr. Busy", model.StaffTypeDoctor, 5, model.AvailabilityAvailable)
	e.booked(t, busy, "09:15")
	e.queued(t, m, "Ann")

	items, err := m.List(ctx)
	require.NoError(t, err)
	queueID := items[0].QueueID

	_, err = m.ManualAssign(ctx, uuid.New(), doc.ID)
	assert.Equal(t, "Queue item not found", err.Error())

	_, err = m.ManualAssign(ctx, queueID, uuid.New())
	assert.Equal(t, "Staff not found", err.Error())

	_, err = m.ManualAssign(ctx, queueID, agent.ID)
	assert.True(t, apperrors.IsInvalidState(err))
	assert.Equal(t, "This service requires a Doctor", err.Error())

	_, err = m.ManualAssign(ctx, queueID, away.ID)
	assert.Equal(t, MsgStaffOnLeave, err.Error())

	_, err = m.ManualAssign(ctx, queueID, doc.ID)
	assert.Equal(t, MsgStaffAtCapacity, err.Error())

	_, err = m.ManualAssign(ctx, queueID, busy.ID)
	assert.True(t, apperrors.IsConflict(err))

	assert.Len(t, e.positions(t), 1, "failed assignments leave the queue alone")
}

func TestDrain(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	m := e.manager()
	e.staff(t, "Dr. X", model.StaffTypeDoctor, 2, model.AvailabilityAvailable)
	e.queued(t, m, "A", "B", "C", "D")

	res, err := m.Drain(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, res.Assigned, 1)
	assert.Equal(t, "Reached limit of 1 assignments", res.Stopped)

	res, err = m.Drain(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, res.Assigned, 1)
	assert.Equal(t, MsgNoEligibleStaff, res.Stopped)
	assert.Len(t, e.positions(t), 2)
}
