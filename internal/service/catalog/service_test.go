package catalog

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

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rec := &activity.Recorder{}
	svc := NewService(store.Repositories().Services, rec)

	b, err := svc.Create(ctx, &model.CreateServiceRequest{ServiceName: "Billing help", Duration: 15, RequiredStaffType: model.StaffTypeSupportAgent})
	require.NoError(t, err)
	a, err := svc.Create(ctx, &model.CreateServiceRequest{ServiceName: "Annual checkup", Duration: 60, RequiredStaffType: model.StaffTypeDoctor})
	require.NoError(t, err)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a.ID, list[0].ID, "services are listed by name")

	duration := 45
	updated, err := svc.Update(ctx, b.ID, &model.UpdateServiceRequest{Duration: &duration})
	require.NoError(t, err)
	assert.Equal(t, 45, updated.Duration)
	assert.Equal(t, "Billing help", updated.ServiceName)

	require.NoError(t, svc.Delete(ctx, b.ID))
	_, err = svc.Get(ctx, b.ID)
	assert.Equal(t, "Service not found", err.Error())

	assert.Equal(t, []string{"Service created", "Service created", "Service updated", "Service deleted"}, rec.Actions())
}

func TestServiceValidation(t *testing.T) {
	svc := NewService(memory.NewStore().Repositories().Services, &activity.Recorder{})

	_, err := svc.Create(context.Background(), &model.CreateServiceRequest{ServiceName: "X", Duration: 0, RequiredStaffType: model.StaffTypeDoctor})
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))

	_, err = svc.Update(context.Background(), uuid.New(), &model.UpdateServiceRequest{})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteReferencedService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Repositories().Services, &activity.Recorder{})

	s, err := svc.Create(ctx, &model.CreateServiceRequest{ServiceName: "Checkup", Duration: 30, RequiredStaffType: model.StaffTypeDoctor})
	require.NoError(t, err)
	require.NoError(t, store.Repositories().Appointments.Create(ctx, &model.Appointment{
		CustomerName: "Ann", ServiceID: s.ID, AppointmentDate: "2024-01-01",
		AppointmentTime: "09:00", Status: model.AppointmentStatusScheduled,
	}))

	assert.True(t, apperrors.IsInvalidState(svc.Delete(ctx, s.ID)))
}
