package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
	"github.com/jwalitptl/apptqueue/internal/service/activity"
	"github.com/jwalitptl/apptqueue/internal/service/availability"
	"github.com/jwalitptl/apptqueue/internal/service/queue"
	apperrors "github.com/jwalitptl/apptqueue/pkg/errors"
	"github.com/jwalitptl/apptqueue/pkg/logger"
	"github.com/jwalitptl/apptqueue/pkg/metrics"
	"github.com/jwalitptl/apptqueue/pkg/telemetry"
)

const (
	MsgCreated       = "Appointment created successfully"
	MsgCreatedQueued = "Appointment created and added to waiting queue"
	MsgStaffOnLeave  = "Staff is on leave"
	MsgStaffConflict = "This staff member already has an appointment at this time."
)

// Service is the assignment engine. It decides between direct assignment
// and the waiting queue, and drives the appointment status machine.
type Service struct {
	store    repository.Store
	queue    *queue.Manager
	activity activity.Logger
	metrics  *metrics.Metrics
	logger   *logger.Logger
	tracer   trace.Tracer
}

func NewService(store repository.Store, q *queue.Manager, activityLog activity.Logger, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		store:    store,
		queue:    q,
		activity: activityLog,
		metrics:  m,
		logger:   log,
		tracer:   telemetry.Tracer("apptqueue/appointment"),
	}
}

// Create books an appointment. A requested staff member who is at capacity
// is dropped and the appointment is queued instead; without a requested
// staff member the appointment always goes to the queue.
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.CreateAppointmentResult, error) {
	ctx, span := s.tracer.Start(ctx, "appointment.Create")
	defer span.End()

	result := &model.CreateAppointmentResult{}

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Locks.Lock(ctx, repository.QueueLockKey); err != nil {
			return err
		}

		svc, err := loadService(ctx, repos, req.ServiceID)
		if err != nil {
			return err
		}

		appt := &model.Appointment{
			CustomerName:    req.CustomerName,
			ServiceID:       svc.ID,
			AppointmentDate: req.AppointmentDate,
			AppointmentTime: req.AppointmentTime,
			Status:          model.AppointmentStatusScheduled,
		}

		queued := true
		if req.StaffID != nil {
			staff, err := loadStaff(ctx, repos, *req.StaffID)
			if err != nil {
				return err
			}
			if err := checkEligible(staff, svc); err != nil {
				return err
			}
			if err := repos.Locks.Lock(ctx, repository.StaffDateLockKey(staff.ID, req.AppointmentDate)); err != nil {
				return err
			}
			if err := s.checkConflict(ctx, repos, staff.ID, req.AppointmentDate, req.AppointmentTime, svc.Duration, nil); err != nil {
				return err
			}
			ok, count, err := availability.HasCapacity(ctx, repos.Appointments, staff, req.AppointmentDate)
			if err != nil {
				return err
			}
			if ok {
				appt.StaffID = &staff.ID
				queued = false
			} else {
				s.logger.WithContext(ctx).Debug("staff at capacity, queueing appointment",
					"staff_id", staff.ID.String(),
					"date", req.AppointmentDate,
					"count", count)
			}
		}

		if err := repos.Appointments.Create(ctx, appt); err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		result.Appointment = appt
		result.AddedToQueue = queued
		if queued {
			pos, err := s.queue.Enqueue(ctx, repos, appt.ID)
			if err != nil {
				return err
			}
			result.QueuePosition = pos
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	appt := result.Appointment
	span.SetAttributes(
		attribute.String("appointment.id", appt.ID.String()),
		attribute.Bool("appointment.queued", result.AddedToQueue),
	)
	s.metrics.ObserveAppointmentCreated(result.AddedToQueue)

	if result.AddedToQueue {
		result.Message = MsgCreatedQueued
		s.activity.Log(ctx, "Appointment added to queue", model.JSONMap{
			"appointmentId": appt.ID,
			"customerName":  appt.CustomerName,
			"queuePosition": result.QueuePosition,
		})
		s.queue.RefreshDepth(ctx)
	} else {
		result.Message = MsgCreated
		s.activity.Log(ctx, "Appointment created", model.JSONMap{
			"appointmentId": appt.ID,
			"customerName":  appt.CustomerName,
			"staffId":       appt.StaffID,
		})
	}
	return result, nil
}

// Update applies a partial change. The conflict check is re-run, excluding
// the appointment itself, whenever the result is a Scheduled appointment
// with staff and the change touched staff, date, time or service. Capacity
// is not re-checked.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "appointment.Update")
	defer span.End()

	var updated *model.Appointment
	var dequeued bool

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Locks.Lock(ctx, repository.QueueLockKey); err != nil {
			return err
		}

		current, err := loadAppointment(ctx, repos, id)
		if err != nil {
			return err
		}
		if current.Status.Terminal() {
			return terminalError(current.Status)
		}

		next := *current
		applyUpdate(&next, req)

		var svc *model.Service
		if req.ServiceID != nil || req.TouchesSchedule() {
			if svc, err = loadService(ctx, repos, next.ServiceID); err != nil {
				return err
			}
		}
		if req.StaffID != nil {
			if _, err := loadStaff(ctx, repos, *req.StaffID); err != nil {
				return err
			}
		}

		if next.StaffID != nil && next.Status == model.AppointmentStatusScheduled && req.TouchesSchedule() {
			if err := repos.Locks.Lock(ctx, repository.StaffDateLockKey(*next.StaffID, next.AppointmentDate)); err != nil {
				return err
			}
			if err := s.checkConflict(ctx, repos, *next.StaffID, next.AppointmentDate, next.AppointmentTime, svc.Duration, &next.ID); err != nil {
				return err
			}
		}

		if err := repos.Appointments.Update(ctx, &next); err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}

		if req.StaffID != nil || next.Status != model.AppointmentStatusScheduled {
			if dequeued, err = s.queue.RemoveAppointment(ctx, repos, next.ID); err != nil {
				return err
			}
		}

		updated = &next
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.activity.Log(ctx, "Appointment updated", model.JSONMap{
		"appointmentId": updated.ID,
		"customerName":  updated.CustomerName,
		"staffId":       updated.StaffID,
		"status":        updated.Status,
	})
	if dequeued {
		s.queue.RefreshDepth(ctx)
	}
	return updated, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusCancelled, "Appointment cancelled")
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusCompleted, "Appointment completed")
}

func (s *Service) NoShow(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusNoShow, "Appointment marked as no-show")
}

// transition moves a Scheduled appointment into a terminal status and
// drops any queue entry it still had.
func (s *Service) transition(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, action string) (*model.Appointment, error) {
	ctx, span := s.tracer.Start(ctx, "appointment.Transition", trace.WithAttributes(
		attribute.String("appointment.id", id.String()),
		attribute.String("appointment.status", string(status)),
	))
	defer span.End()

	var appt *model.Appointment
	var dequeued bool

	err := s.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Locks.Lock(ctx, repository.QueueLockKey); err != nil {
			return err
		}

		var err error
		appt, err = loadAppointment(ctx, repos, id)
		if err != nil {
			return err
		}
		if appt.Status.Terminal() {
			return terminalError(appt.Status)
		}

		appt.Status = status
		if err := repos.Appointments.Update(ctx, appt); err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}

		dequeued, err = s.queue.RemoveAppointment(ctx, repos, appt.ID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.activity.Log(ctx, action, model.JSONMap{
		"appointmentId": appt.ID,
		"customerName":  appt.CustomerName,
	})
	if dequeued {
		s.queue.RefreshDepth(ctx)
	}
	return appt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	detail, err := s.store.Repositories().Appointments.GetDetail(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Appointment", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return detail, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error) {
	appointments, err := s.store.Repositories().Appointments.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	if appointments == nil {
		appointments = []*model.AppointmentDetail{}
	}
	return appointments, nil
}

func (s *Service) checkConflict(ctx context.Context, repos repository.Repositories, staffID uuid.UUID, date, clock string, duration int, exclude *uuid.UUID) error {
	conflict, err := availability.HasConflict(ctx, repos.Appointments, staffID, date, clock, duration, exclude)
	if err != nil {
		return err
	}
	if conflict {
		s.metrics.ObserveConflict()
		return apperrors.Conflict(MsgStaffConflict)
	}
	return nil
}

func checkEligible(staff *model.Staff, svc *model.Service) error {
	if !staff.IsAvailable() {
		return apperrors.InvalidState(MsgStaffOnLeave)
	}
	if staff.StaffType != svc.RequiredStaffType {
		return apperrors.InvalidState(fmt.Sprintf("This service requires a %s", svc.RequiredStaffType))
	}
	return nil
}

func applyUpdate(a *model.Appointment, req *model.UpdateAppointmentRequest) {
	if req.CustomerName != nil {
		a.CustomerName = *req.CustomerName
	}
	if req.ServiceID != nil {
		a.ServiceID = *req.ServiceID
	}
	if req.StaffID != nil {
		id := *req.StaffID
		a.StaffID = &id
	}
	if req.AppointmentDate != nil {
		a.AppointmentDate = *req.AppointmentDate
	}
	if req.AppointmentTime != nil {
		a.AppointmentTime = *req.AppointmentTime
	}
	if req.Status != nil {
		a.Status = *req.Status
	}
}

func terminalError(status model.AppointmentStatus) error {
	return apperrors.InvalidState(fmt.Sprintf("Appointment is already %s", status))
}

func loadAppointment(ctx context.Context, repos repository.Repositories, id uuid.UUID) (*model.Appointment, error) {
	appt, err := repos.Appointments.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Appointment", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appt, nil
}

func loadService(ctx context.Context, repos repository.Repositories, id uuid.UUID) (*model.Service, error) {
	svc, err := repos.Services.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Service", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

func loadStaff(ctx context.Context, repos repository.Repositories, id uuid.UUID) (*model.Staff, error) {
	staff, err := repos.Staff.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Staff", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return staff, nil
}
