package staff

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository/memory"
	"github.com/jwalitptl/apptqueue/internal/service/activity"
	apperrors "github.com/jwalitptl/apptqueue/pkg/errors"
)

func setup(t *testing.T) (*Service, *memory.Store, *activity.Recorder) {
	t.Helper()
	store := memory.NewStore()
	rec := &activity.Recorder{}
	return NewService(store, rec), store, rec
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _, rec := setup(t)

	staff, err := svc.Create(context.Background(), &model.CreateStaffRequest{
		Name: "Dr. Lee", StaffType: model.StaffTypeDoctor,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, staff.ID)
	assert.Equal(t, model.DefaultDailyCapacity, staff.DailyCapacity)
	assert.Equal(t, model.AvailabilityAvailable, staff.AvailabilityStatus)
	assert.Equal(t, []string{"Staff created"}, rec.Actions())
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &model.CreateStaffRequest{Name: "X", StaffType: "Nurse"})
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))

	_, err = svc.Create(ctx, &model.CreateStaffRequest{Name: "X", StaffType: model.StaffTypeDoctor, DailyCapacity: 51})
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))
}

func TestGetUpdateDelete(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, "Staff not found", err.Error())

	staff, err := svc.Create(ctx, &model.CreateStaffRequest{Name: "Sam", StaffType: model.StaffTypeConsultant, DailyCapacity: 3})
	require.NoError(t, err)

	onLeave := model.AvailabilityOnLeave
	capacity := 8
	updated, err := svc.Update(ctx, staff.ID, &model.UpdateStaffRequest{AvailabilityStatus: &onLeave, DailyCapacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, "Sam", updated.Name)
	assert.Equal(t, 8, updated.DailyCapacity)
	assert.False(t, updated.IsAvailable())

	require.NoError(t, svc.Delete(ctx, staff.ID))
	assert.True(t, apperrors.IsNotFound(svc.Delete(ctx, staff.ID)))
}

func TestDeleteReferencedStaff(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()
	repos := store.Repositories()

	staff, err := svc.Create(ctx, &model.CreateStaffRequest{Name: "Dr. Ray", StaffType: model.StaffTypeDoctor})
	require.NoError(t, err)
	service := &model.Service{ServiceName: "Checkup", Duration: 30, RequiredStaffType: model.StaffTypeDoctor}
	require.NoError(t, repos.Services.Create(ctx, service))
	require.NoError(t, repos.Appointments.Create(ctx, &model.Appointment{
		CustomerName: "Ann", ServiceID: service.ID, StaffID: &staff.ID,
		AppointmentDate: "2024-01-01", AppointmentTime: "09:00", Status: model.AppointmentStatusScheduled,
	}))

	err = svc.Delete(ctx, staff.ID)
	assert.True(t, apperrors.IsInvalidState(err))
}

func TestAvailability(t *testing.T) {
	svc, store, _ := setup(t)
	ctx := context.Background()
	repos := store.Repositories()

	busy, err := svc.Create(ctx, &model.CreateStaffRequest{Name: "Dr. Busy", StaffType: model.StaffTypeDoctor, DailyCapacity: 2})
	require.NoError(t, err)
	idle, err := svc.Create(ctx, &model.CreateStaffRequest{Name: "Dr. Idle", StaffType: model.StaffTypeDoctor, AvailabilityStatus: model.AvailabilityOnLeave})
	require.NoError(t, err)

	service := &model.Service{ServiceName: "Checkup", Duration: 30, RequiredStaffType: model.StaffTypeDoctor}
	require.NoError(t, repos.Services.Create(ctx, service))
	for _, slot := range []struct {
		clock  string
		status model.AppointmentStatus
	}{
		{"09:00", model.AppointmentStatusScheduled},
		{"10:00", model.AppointmentStatusScheduled},
		{"11:00", model.AppointmentStatusCancelled},
	} {
		require.NoError(t, repos.Appointments.Create(ctx, &model.Appointment{
			CustomerName: "C", ServiceID: service.ID, StaffID: &busy.ID,
			AppointmentDate: "2024-01-01", AppointmentTime: slot.clock, Status: slot.status,
		}))
	}

	one, err := svc.Availability(ctx, busy.ID, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 2, one.CurrentAppointments)
	assert.False(t, one.IsAvailable)

	other, err := svc.Availability(ctx, busy.ID, "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, 0, other.CurrentAppointments)
	assert.True(t, other.IsAvailable)

	all, err := svc.AvailabilityAll(ctx, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Dr. Busy", all[0].StaffName)
	assert.Equal(t, idle.ID, all[1].StaffID)
	assert.False(t, all[1].IsAvailable)
	assert.Equal(t, model.AvailabilityOnLeave, all[1].AvailabilityStatus)
}
