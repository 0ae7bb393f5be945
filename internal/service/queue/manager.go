package queue

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
	apperrors "github.com/jwalitptl/apptqueue/pkg/errors"
	"github.com/jwalitptl/apptqueue/pkg/logger"
	"github.com/jwalitptl/apptqueue/pkg/metrics"
	"github.com/jwalitptl/apptqueue/pkg/telemetry"
)

const (
	MsgQueueEmpty       = "No appointments in queue"
	MsgNoEligibleStaff  = "No available staff with capacity for this appointment"
	MsgStaffOnLeave     = "Staff is on leave"
	MsgStaffAtCapacity  = "Staff is at maximum capacity for this date"
	MsgScheduleConflict = "This staff member already has an appointment at this time."
)

// Manager owns the waiting queue. Every mutation runs inside a store
// transaction holding the queue lock, and every removal is followed by a
// repack so positions stay 1..N.
type Manager struct {
	store          repository.Store
	activity       activity.Logger
	metrics        *metrics.Metrics
	logger         *logger.Logger
	tracer         trace.Tracer
	checkConflicts bool
}

type Option func(*Manager)

// WithConflictCheck makes auto and manual assignment also reject staff
// whose schedule overlaps the queued appointment.
func WithConflictCheck(enabled bool) Option {
	return func(m *Manager) { m.checkConflicts = enabled }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(store repository.Store, activityLog activity.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		activity: activityLog,
		logger:   logger.Nop(),
		tracer:   telemetry.Tracer("apptqueue/queue"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enqueue appends appointmentID at max(position)+1 and returns the position.
// It must run inside the caller's transaction.
func (m *Manager) Enqueue(ctx context.Context, repos repository.Repositories, appointmentID uuid.UUID) (int, error) {
	if err := repos.Locks.Lock(ctx, repository.QueueLockKey); err != nil {
		return 0, err
	}
	pos, err := repos.Queue.NextPosition(ctx)
	if err != nil {
		return 0, err
	}
	entry := &model.QueueEntry{AppointmentID: appointmentID, QueuePosition: pos}
	if err := repos.Queue.Create(ctx, entry); err != nil {
		return 0, fmt.Errorf("failed to enqueue appointment: %w", err)
	}
	return pos, nil
}

// RemoveAppointment drops the appointment's entry, if any, and repacks.
// It must run inside the caller's transaction.
func (m *Manager) RemoveAppointment(ctx context.Context, repos repository.Repositories, appointmentID uuid.UUID) (bool, error) {
	if err := repos.Locks.Lock(ctx, repository.QueueLockKey); err != nil {
		return false, err
	}
	deleted, err := repos.Queue.DeleteByAppointment(ctx, appointmentID)
	if err != nil || !deleted {
		return deleted, err
	}
	return true, Repack(ctx, repos)
}

// Repack renumbers every entry to 1..N keeping the current order.
func Repack(ctx context.Context, repos repository.Repositories) error {
	entries, err := repos.Queue.Entries(ctx)
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.QueuePosition == i+1 {
			continue
		}
		if err := repos.Queue.UpdatePosition(ctx, e.ID, i+1); err != nil {
			return fmt.Errorf("failed to repack queue: %w", err)
		}
	}
	return nil
}

// List returns queued Scheduled appointments in position order.
func (m *Manager) List(ctx context.Context) ([]*model.QueueItem, error) {
	items, err := m.store.Repositories().Queue.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}
	if items == nil {
		items = []*model.QueueItem{}
	}
	return items, nil
}

// AutoAssign gives the head of the queue to the first eligible staff
// member with capacity. Nothing changes when no one qualifies.
func (m *Manager) AutoAssign(ctx context.Context) (*model.AutoAssignResult, error) {
	ctx, span := m.tracer.Start(ctx, "queue.AutoAssign")
	defer span.End()

	result := &model.AutoAssignResult{}
	var head *model.QueueItem
	var chosen *model.Staff

	err := m.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Locks.Lock(ctx, repository.QueueLockKey); err != nil {
			return err
		}

		var err error
		head, err = repos.Queue.Head(ctx)
		if errors.Is(err, repository.ErrNotFound) {
			result.Message = MsgQueueEmpty
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read queue head: %w", err)
		}

		candidates, err := repos.Staff.ListEligible(ctx, head.RequiredStaffType)
		if err != nil {
			return fmt.Errorf("failed to list eligible staff: %w", err)
		}

		for _, c := range candidates {
			ok, err := m.eligible(ctx, repos, c, head)
			if err != nil {
				return err
			}
			if ok {
				chosen = c
				break
			}
		}
		if chosen == nil {
			result.Message = MsgNoEligibleStaff
			return nil
		}

		return assign(ctx, repos, head, chosen)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	m.metrics.ObserveQueueAssignment("auto", chosen != nil)
	if chosen == nil {
		m.logger.WithContext(ctx).Debug("auto-assign skipped", "reason", result.Message)
		return result, nil
	}

	result.Assigned = true
	result.Message = fmt.Sprintf("Appointment assigned to %s", chosen.Name)
	result.StaffID = &chosen.ID
	result.StaffName = chosen.Name
	result.AppointmentID = &head.AppointmentID
	span.SetAttributes(
		attribute.String("appointment.id", head.AppointmentID.String()),
		attribute.String("staff.id", chosen.ID.String()),
	)

	m.activity.Log(ctx, fmt.Sprintf("Appointment for %s auto-assigned to %s", head.CustomerName, chosen.Name), model.JSONMap{
		"appointmentId": head.AppointmentID,
		"staffId":       chosen.ID,
		"staffName":     chosen.Name,
	})
	m.RefreshDepth(ctx)
	return result, nil
}

// eligible checks the candidate under its (staff, date) lock.
func (m *Manager) eligible(ctx context.Context, repos repository.Repositories, staff *model.Staff, item *model.QueueItem) (bool, error) {
	if err := repos.Locks.Lock(ctx, repository.StaffDateLockKey(staff.ID, item.AppointmentDate)); err != nil {
		return false, err
	}
	ok, _, err := availability.HasCapacity(ctx, repos.Appointments, staff, item.AppointmentDate)
	if err != nil || !ok {
		return false, err
	}
	if !m.checkConflicts {
		return true, nil
	}
	conflict, err := availability.HasConflict(ctx, repos.Appointments, staff.ID,
		item.AppointmentDate, item.AppointmentTime, item.ServiceDuration, &item.AppointmentID)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// ManualAssign gives a specific queue entry to a specific staff member.
func (m *Manager) ManualAssign(ctx context.Context, queueID, staffID uuid.UUID) (*model.ManualAssignResult, error) {
	ctx, span := m.tracer.Start(ctx, "queue.ManualAssign")
	defer span.End()

	var item *model.QueueItem
	var staff *model.Staff

	err := m.store.WithTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Locks.Lock(ctx, repository.QueueLockKey); err != nil {
			return err
		}

		var err error
		item, err = repos.Queue.GetItem(ctx, queueID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Queue item", nil)
		}
		if err != nil {
			return fmt.Errorf("failed to get queue item: %w", err)
		}
		if item.Status != model.AppointmentStatusScheduled {
			return apperrors.InvalidState(fmt.Sprintf("Appointment is %s", item.Status))
		}

		staff, err = repos.Staff.Get(ctx, staffID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("Staff", nil)
		}
		if err != nil {
			return fmt.Errorf("failed to get staff: %w", err)
		}

		if staff.StaffType != item.RequiredStaffType {
			return apperrors.InvalidState(fmt.Sprintf("This service requires a %s", item.RequiredStaffType))
		}
		if !staff.IsAvailable() {
			return apperrors.InvalidState(MsgStaffOnLeave)
		}

		if err := repos.Locks.Lock(ctx, repository.StaffDateLockKey(staff.ID, item.AppointmentDate)); err != nil {
			return err
		}
		ok, _, err := availability.HasCapacity(ctx, repos.Appointments, staff, item.AppointmentDate)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.InvalidState(MsgStaffAtCapacity)
		}
		if m.checkConflicts {
			conflict, err := availability.HasConflict(ctx, repos.Appointments, staff.ID,
				item.AppointmentDate, item.AppointmentTime, item.ServiceDuration, &item.AppointmentID)
			if err != nil {
				return err
			}
			if conflict {
				m.metrics.ObserveConflict()
				return apperrors.Conflict(MsgScheduleConflict)
			}
		}

		return assign(ctx, repos, item, staff)
	})
	if err != nil {
		span.RecordError(err)
		m.metrics.ObserveQueueAssignment("manual", false)
		return nil, err
	}

	m.metrics.ObserveQueueAssignment("manual", true)
	m.activity.Log(ctx, fmt.Sprintf("Appointment for %s assigned to %s", item.CustomerName, staff.Name), model.JSONMap{
		"appointmentId": item.AppointmentID,
		"staffId":       staff.ID,
		"staffName":     staff.Name,
	})
	m.RefreshDepth(ctx)

	return &model.ManualAssignResult{
		Message:       fmt.Sprintf("Appointment assigned to %s", staff.Name),
		StaffID:       staff.ID,
		StaffName:     staff.Name,
		AppointmentID: item.AppointmentID,
	}, nil
}

// Drain auto-assigns until the head cannot be placed or limit assignments
// were made. limit <= 0 means no limit.
func (m *Manager) Drain(ctx context.Context, limit int) (*model.DrainResult, error) {
	out := &model.DrainResult{Assigned: []model.AutoAssignResult{}}
	for limit <= 0 || len(out.Assigned) < limit {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := m.AutoAssign(ctx)
		if err != nil {
			return out, err
		}
		if !res.Assigned {
			out.Stopped = res.Message
			return out, nil
		}
		out.Assigned = append(out.Assigned, *res)
	}
	out.Stopped = fmt.Sprintf("Reached limit of %d assignments", limit)
	return out, nil
}

// RefreshDepth publishes the current queue size to the depth gauge.
func (m *Manager) RefreshDepth(ctx context.Context) {
	if m.metrics == nil {
		return
	}
	n, err := m.store.Repositories().Queue.Count(ctx)
	if err != nil {
		m.logger.WithContext(ctx).Warn("failed to read queue depth", "error", err.Error())
		return
	}
	m.metrics.SetQueueDepth(n)
}

func assign(ctx context.Context, repos repository.Repositories, item *model.QueueItem, staff *model.Staff) error {
	appt, err := repos.Appointments.Get(ctx, item.AppointmentID)
	if err != nil {
		return fmt.Errorf("failed to load queued appointment: %w", err)
	}
	appt.StaffID = &staff.ID
	if err := repos.Appointments.Update(ctx, appt); err != nil {
		return err
	}
	if err := repos.Queue.Delete(ctx, item.QueueID); err != nil {
		return err
	}
	return Repack(ctx, repos)
}
