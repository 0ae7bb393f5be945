package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
)

type staffRepository struct{ base }

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	return r.do(func(st *state, now time.Time) error {
		if staff.ID == uuid.Nil {
			staff.ID = uuid.New()
		}
		staff.CreatedAt = now
		staff.UpdatedAt = now
		st.staff[staff.ID] = *staff
		return nil
	})
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	var out *model.Staff
	err := r.do(func(st *state, _ time.Time) error {
		s, ok := st.staff[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	return r.do(func(st *state, now time.Time) error {
		if _, ok := st.staff[staff.ID]; !ok {
			return repository.ErrNotFound
		}
		staff.UpdatedAt = now
		st.staff[staff.ID] = *staff
		return nil
	})
}

func (r *staffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do(func(st *state, _ time.Time) error {
		if _, ok := st.staff[id]; !ok {
			return repository.ErrNotFound
		}
		for _, a := range st.appointments {
			if a.StaffID != nil && *a.StaffID == id {
				return repository.ErrReferenced
			}
		}
		delete(st.staff, id)
		return nil
	})
}

func (r *staffRepository) List(ctx context.Context) ([]*model.Staff, error) {
	return r.list(func(*model.Staff) bool { return true })
}

func (r *staffRepository) ListEligible(ctx context.Context, staffType model.StaffType) ([]*model.Staff, error) {
	return r.list(func(s *model.Staff) bool {
		return s.StaffType == staffType && s.IsAvailable()
	})
}

func (r *staffRepository) Count(ctx context.Context) (int, int, error) {
	var total, available int
	err := r.do(func(st *state, _ time.Time) error {
		for _, s := range st.staff {
			total++
			if s.IsAvailable() {
				available++
			}
		}
		return nil
	})
	return total, available, err
}

func (r *staffRepository) list(keep func(*model.Staff) bool) ([]*model.Staff, error) {
	var out []*model.Staff
	err := r.do(func(st *state, _ time.Time) error {
		for _, s := range st.staff {
			s := s
			if keep(&s) {
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}
