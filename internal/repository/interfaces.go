package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("duplicate record")
	ErrReferenced = errors.New("record is still referenced")
)

// All repository interfaces in one file
type (
	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		Update(ctx context.Context, staff *model.Staff) error
		Delete(ctx context.Context, id uuid.UUID) error
		// List returns all staff ordered by name.
		List(ctx context.Context) ([]*model.Staff, error)
		// ListEligible returns Available staff of the given type ordered by name.
		ListEligible(ctx context.Context, staffType model.StaffType) ([]*model.Staff, error)
		Count(ctx context.Context) (total int, available int, err error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Service, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.AppointmentDetail, error)
		// ListScheduledForStaff returns the Scheduled appointments of a staff
		// member on date with their service durations, skipping exclude.
		ListScheduledForStaff(ctx context.Context, staffID uuid.UUID, date string, exclude *uuid.UUID) ([]*model.ScheduledSlot, error)
		CountScheduled(ctx context.Context, staffID uuid.UUID, date string) (int, error)
		// CountScheduledByStaff returns Scheduled counts on date keyed by staff.
		CountScheduledByStaff(ctx context.Context, date string) (map[uuid.UUID]int, error)
		CountByStatus(ctx context.Context, date string) (map[model.AppointmentStatus]int, error)
	}

	QueueRepository interface {
		Create(ctx context.Context, entry *model.QueueEntry) error
		// NextPosition returns max(queue_position)+1, or 1 for an empty queue.
		NextPosition(ctx context.Context) (int, error)
		// Head returns the lowest-positioned entry whose appointment is Scheduled.
		Head(ctx context.Context) (*model.QueueItem, error)
		GetItem(ctx context.Context, queueID uuid.UUID) (*model.QueueItem, error)
		List(ctx context.Context) ([]*model.QueueItem, error)
		// Entries returns every queue row ordered by position.
		Entries(ctx context.Context) ([]*model.QueueEntry, error)
		UpdatePosition(ctx context.Context, id uuid.UUID, position int) error
		Delete(ctx context.Context, id uuid.UUID) error
		DeleteByAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error)
		Count(ctx context.Context) (int, error)
	}

	ActivityRepository interface {
		Create(ctx context.Context, entry *model.ActivityLog) error
		ListRecent(ctx context.Context, limit int) ([]*model.ActivityLog, error)
		// ListUnpublished returns the oldest entries not yet fanned out.
		ListUnpublished(ctx context.Context, limit int) ([]*model.ActivityLog, error)
		MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
		DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	// LockRepository takes locks that are released when the surrounding
	// transaction ends.
	LockRepository interface {
		Lock(ctx context.Context, key string) error
	}
)

// Repositories bundles every repository bound to one connection or transaction.
type Repositories struct {
	Staff        StaffRepository
	Services     ServiceRepository
	Appointments AppointmentRepository
	Queue        QueueRepository
	Activity     ActivityRepository
	Users        UserRepository
	Locks        LockRepository
}

// Store hands out repositories and runs units of work atomically. fn's
// writes are committed only if it returns nil.
type Store interface {
	Repositories() Repositories
	WithTx(ctx context.Context, fn func(Repositories) error) error
	Ping(ctx context.Context) error
}

// Lock keys shared by every store implementation.
const QueueLockKey = "queue"

func StaffDateLockKey(staffID uuid.UUID, date string) string {
	return "staff:" + staffID.String() + ":" + date
}
