package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
	"github.com/jwalitptl/apptqueue/internal/repository/memory"
)

func TestOverlaps(t *testing.T) {
	nine, _ := ParseSlot("2024-01-01", "09:00")
	nineFifteen, _ := ParseSlot("2024-01-01", "09:15")
	nineThirty, _ := ParseSlot("2024-01-01", "09:30")
	eight, _ := ParseSlot("2024-01-01", "08:00")

	assert.True(t, Overlaps(nine, 30, nineFifteen, 30), "09:00-09:30 overlaps 09:15-09:45")
	assert.False(t, Overlaps(nine, 30, nineThirty, 30), "touching boundary is allowed")
	assert.False(t, Overlaps(nineThirty, 30, nine, 30), "touching boundary is symmetric")
	assert.True(t, Overlaps(eight, 120, nineFifteen, 15), "containment overlaps")
	assert.False(t, Overlaps(nineFifteen, 0, nine, 30), "empty candidate never conflicts")
	assert.False(t, Overlaps(nine, 30, nineFifteen, 0), "empty existing never conflicts")
}

func TestParseSlotRejectsGarbage(t *testing.T) {
	_, err := ParseSlot("2024-13-01", "09:00")
	assert.Error(t, err)
	_, err = ParseSlot("2024-01-01", "9am")
	assert.Error(t, err)
}

type fixture struct {
	repos repository.Repositories
	staff *model.Staff
	svc   *model.Service
}

func newFixture(t *testing.T, capacity int) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	staff := &model.Staff{Name: "Dr. X", StaffType: model.StaffTypeDoctor, DailyCapacity: capacity, AvailabilityStatus: model.AvailabilityAvailable}
	require.NoError(t, repos.Staff.Create(ctx, staff))
	svc := &model.Service{ServiceName: "Checkup", Duration: 30, RequiredStaffType: model.StaffTypeDoctor}
	require.NoError(t, repos.Services.Create(ctx, svc))
	return &fixture{repos: repos, staff: staff, svc: svc}
}

func (f *fixture) book(t *testing.T, date, clock string, status model.AppointmentStatus) *model.Appointment {
	t.Helper()
	a := &model.Appointment{
		CustomerName:    "Customer",
		ServiceID:       f.svc.ID,
		StaffID:         &f.staff.ID,
		AppointmentDate: date,
		AppointmentTime: clock,
		Status:          status,
	}
	require.NoError(t, f.repos.Appointments.Create(context.Background(), a))
	return a
}

func TestHasConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 5)
	a := f.book(t, "2024-01-01", "09:00", model.AppointmentStatusScheduled)
	f.book(t, "2024-01-01", "11:00", model.AppointmentStatusCancelled)

	conflict, err := HasConflict(ctx, f.repos.Appointments, f.staff.ID, "2024-01-01", "09:15", 30, nil)
	require.NoError(t, err)
	assert.True(t, conflict)

	conflict, err = HasConflict(ctx, f.repos.Appointments, f.staff.ID, "2024-01-01", "09:30", 30, nil)
	require.NoError(t, err)
	assert.False(t, conflict)

	conflict, err = HasConflict(ctx, f.repos.Appointments, f.staff.ID, "2024-01-01", "09:15", 30, &a.ID)
	require.NoError(t, err)
	assert.False(t, conflict, "an appointment never conflicts with itself")

	conflict, err = HasConflict(ctx, f.repos.Appointments, f.staff.ID, "2024-01-01", "11:00", 30, nil)
	require.NoError(t, err)
	assert.False(t, conflict, "cancelled appointments free their slot")

	conflict, err = HasConflict(ctx, f.repos.Appointments, f.staff.ID, "2024-01-02", "09:00", 30, nil)
	require.NoError(t, err)
	assert.False(t, conflict, "other dates are ignored")

	conflict, err = HasConflict(ctx, f.repos.Appointments, uuid.New(), "2024-01-01", "09:00", 30, nil)
	require.NoError(t, err)
	assert.False(t, conflict)
}

func TestHasCapacity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	f.book(t, "2024-01-01", "09:00", model.AppointmentStatusScheduled)
	f.book(t, "2024-01-01", "10:00", model.AppointmentStatusCompleted)

	ok, n, err := HasCapacity(ctx, f.repos.Appointments, f.staff, "2024-01-01")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	f.book(t, "2024-01-01", "11:00", model.AppointmentStatusScheduled)
	ok, n, err = HasCapacity(ctx, f.repos.Appointments, f.staff, "2024-01-01")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, n)

	view := Describe(f.staff, "2024-01-01", n)
	assert.False(t, view.IsAvailable)
	assert.Equal(t, 2, view.DailyCapacity)
}
