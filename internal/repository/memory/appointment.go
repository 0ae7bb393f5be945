package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
)

type appointmentRepository struct{ base }

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return r.do(func(st *state, now time.Time) error {
		if _, ok := st.services[appointment.ServiceID]; !ok {
			return repository.ErrReferenced
		}
		if appointment.StaffID != nil {
			if _, ok := st.staff[*appointment.StaffID]; !ok {
				return repository.ErrReferenced
			}
		}
		if appointment.ID == uuid.Nil {
			appointment.ID = uuid.New()
		}
		appointment.CreatedAt = now
		appointment.UpdatedAt = now
		st.appointments[appointment.ID] = copyAppointment(*appointment)
		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var out *model.Appointment
	err := r.do(func(st *state, _ time.Time) error {
		a, ok := st.appointments[id]
		if !ok {
			return repository.ErrNotFound
		}
		a = copyAppointment(a)
		out = &a
		return nil
	})
	return out, err
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	var out *model.AppointmentDetail
	err := r.do(func(st *state, _ time.Time) error {
		a, ok := st.appointments[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = detail(st, a)
		return nil
	})
	return out, err
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	return r.do(func(st *state, now time.Time) error {
		if _, ok := st.appointments[appointment.ID]; !ok {
			return repository.ErrNotFound
		}
		if _, ok := st.services[appointment.ServiceID]; !ok {
			return repository.ErrReferenced
		}
		if appointment.StaffID != nil {
			if _, ok := st.staff[*appointment.StaffID]; !ok {
				return repository.ErrReferenced
			}
		}
		appointment.UpdatedAt = now
		st.appointments[appointment.ID] = copyAppointment(*appointment)
		return nil
	})
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	if filters == nil {
		filters = &model.AppointmentFilters{}
	}
	var out []*model.AppointmentDetail
	err := r.do(func(st *state, _ time.Time) error {
		for _, a := range st.appointments {
			if filters.Date != "" && a.AppointmentDate != filters.Date {
				continue
			}
			if filters.Status != "" && a.Status != filters.Status {
				continue
			}
			if filters.StaffID != nil && (a.StaffID == nil || *a.StaffID != *filters.StaffID) {
				continue
			}
			out = append(out, detail(st, a))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AppointmentDate != b.AppointmentDate {
			return a.AppointmentDate < b.AppointmentDate
		}
		if a.AppointmentTime != b.AppointmentTime {
			return a.AppointmentTime < b.AppointmentTime
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return out, err
}

func (r *appointmentRepository) ListScheduledForStaff(ctx context.Context, staffID uuid.UUID, date string, exclude *uuid.UUID) ([]*model.ScheduledSlot, error) {
	var out []*model.ScheduledSlot
	err := r.do(func(st *state, _ time.Time) error {
		for _, a := range st.appointments {
			if !scheduledFor(a, staffID, date) {
				continue
			}
			if exclude != nil && a.ID == *exclude {
				continue
			}
			out = append(out, &model.ScheduledSlot{
				AppointmentID:   a.ID,
				AppointmentTime: a.AppointmentTime,
				Duration:        st.services[a.ServiceID].Duration,
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].AppointmentTime < out[j].AppointmentTime })
	return out, err
}

func (r *appointmentRepository) CountScheduled(ctx context.Context, staffID uuid.UUID, date string) (int, error) {
	var n int
	err := r.do(func(st *state, _ time.Time) error {
		for _, a := range st.appointments {
			if scheduledFor(a, staffID, date) {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *appointmentRepository) CountScheduledByStaff(ctx context.Context, date string) (map[uuid.UUID]int, error) {
	counts := map[uuid.UUID]int{}
	err := r.do(func(st *state, _ time.Time) error {
		for _, a := range st.appointments {
			if a.StaffID != nil && a.AppointmentDate == date && a.Status == model.AppointmentStatusScheduled {
				counts[*a.StaffID]++
			}
		}
		return nil
	})
	return counts, err
}

func (r *appointmentRepository) CountByStatus(ctx context.Context, date string) (map[model.AppointmentStatus]int, error) {
	counts := map[model.AppointmentStatus]int{}
	err := r.do(func(st *state, _ time.Time) error {
		for _, a := range st.appointments {
			if a.AppointmentDate == date {
				counts[a.Status]++
			}
		}
		return nil
	})
	return counts, err
}

func scheduledFor(a model.Appointment, staffID uuid.UUID, date string) bool {
	return a.StaffID != nil && *a.StaffID == staffID &&
		a.AppointmentDate == date &&
		a.Status == model.AppointmentStatusScheduled
}

func detail(st *state, a model.Appointment) *model.AppointmentDetail {
	d := &model.AppointmentDetail{Appointment: copyAppointment(a)}
	if svc, ok := st.services[a.ServiceID]; ok {
		d.ServiceName = svc.ServiceName
		d.ServiceDuration = svc.Duration
	}
	if a.StaffID != nil {
		if s, ok := st.staff[*a.StaffID]; ok {
			name := s.Name
			d.StaffName = &name
		}
	}
	return d
}

// copyAppointment detaches the StaffID pointer from the caller's value.
func copyAppointment(a model.Appointment) model.Appointment {
	if a.StaffID != nil {
		id := *a.StaffID
		a.StaffID = &id
	}
	return a
}
