package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
)

type queueRepository struct{ base }

func (r *queueRepository) Create(ctx context.Context, entry *model.QueueEntry) error {
	return r.do(func(st *state, now time.Time) error {
		if _, ok := st.appointments[entry.AppointmentID]; !ok {
			return repository.ErrReferenced
		}
		for _, e := range st.queue {
			if e.AppointmentID == entry.AppointmentID {
				return repository.ErrDuplicate
			}
		}
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.AddedAt.IsZero() {
			entry.AddedAt = now
		}
		st.queue[entry.ID] = *entry
		return nil
	})
}

func (r *queueRepository) NextPosition(ctx context.Context) (int, error) {
	var max int
	err := r.do(func(st *state, _ time.Time) error {
		for _, e := range st.queue {
			if e.QueuePosition > max {
				max = e.QueuePosition
			}
		}
		return nil
	})
	return max + 1, err
}

func (r *queueRepository) Head(ctx context.Context) (*model.QueueItem, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, repository.ErrNotFound
	}
	return items[0], nil
}

func (r *queueRepository) GetItem(ctx context.Context, queueID uuid.UUID) (*model.QueueItem, error) {
	var out *model.QueueItem
	err := r.do(func(st *state, _ time.Time) error {
		e, ok := st.queue[queueID]
		if !ok {
			return repository.ErrNotFound
		}
		out = queueItem(st, e)
		return nil
	})
	return out, err
}

func (r *queueRepository) List(ctx context.Context) ([]*model.QueueItem, error) {
	var out []*model.QueueItem
	err := r.do(func(st *state, _ time.Time) error {
		for _, e := range sortedEntries(st) {
			item := queueItem(st, e)
			if item.Status == model.AppointmentStatusScheduled {
				out = append(out, item)
			}
		}
		return nil
	})
	return out, err
}

func (r *queueRepository) Entries(ctx context.Context) ([]*model.QueueEntry, error) {
	var out []*model.QueueEntry
	err := r.do(func(st *state, _ time.Time) error {
		for _, e := range sortedEntries(st) {
			e := e
			out = append(out, &e)
		}
		return nil
	})
	return out, err
}

func (r *queueRepository) UpdatePosition(ctx context.Context, id uuid.UUID, position int) error {
	return r.do(func(st *state, _ time.Time) error {
		e, ok := st.queue[id]
		if !ok {
			return repository.ErrNotFound
		}
		e.QueuePosition = position
		st.queue[id] = e
		return nil
	})
}

func (r *queueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do(func(st *state, _ time.Time) error {
		if _, ok := st.queue[id]; !ok {
			return repository.ErrNotFound
		}
		delete(st.queue, id)
		return nil
	})
}

func (r *queueRepository) DeleteByAppointment(ctx context.Context, appointmentID uuid.UUID) (bool, error) {
	var deleted bool
	err := r.do(func(st *state, _ time.Time) error {
		for id, e := range st.queue {
			if e.AppointmentID == appointmentID {
				delete(st.queue, id)
				deleted = true
			}
		}
		return nil
	})
	return deleted, err
}

func (r *queueRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.do(func(st *state, _ time.Time) error {
		n = len(st.queue)
		return nil
	})
	return n, err
}

func sortedEntries(st *state) []model.QueueEntry {
	entries := make([]model.QueueEntry, 0, len(st.queue))
	for _, e := range st.queue {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].QueuePosition != entries[j].QueuePosition {
			return entries[i].QueuePosition < entries[j].QueuePosition
		}
		return entries[i].AddedAt.Before(entries[j].AddedAt)
	})
	return entries
}

func queueItem(st *state, e model.QueueEntry) *model.QueueItem {
	a := st.appointments[e.AppointmentID]
	svc := st.services[a.ServiceID]
	return &model.QueueItem{
		QueueID:           e.ID,
		AppointmentID:     e.AppointmentID,
		CustomerName:      a.CustomerName,
		ServiceID:         a.ServiceID,
		ServiceName:       svc.ServiceName,
		RequiredStaffType: svc.RequiredStaffType,
		ServiceDuration:   svc.Duration,
		AppointmentDate:   a.AppointmentDate,
		AppointmentTime:   a.AppointmentTime,
		Status:            a.Status,
		QueuePosition:     e.QueuePosition,
		AddedAt:           e.AddedAt,
	}
}
