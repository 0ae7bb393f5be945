package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
)

type serviceRepository struct{ base }

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	return r.do(func(st *state, now time.Time) error {
		if service.ID == uuid.Nil {
			service.ID = uuid.New()
		}
		service.CreatedAt = now
		service.UpdatedAt = now
		st.services[service.ID] = *service
		return nil
	})
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	var out *model.Service
	err := r.do(func(st *state, _ time.Time) error {
		s, ok := st.services[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &s
		return nil
	})
	return out, err
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	return r.do(func(st *state, now time.Time) error {
		if _, ok := st.services[service.ID]; !ok {
			return repository.ErrNotFound
		}
		service.UpdatedAt = now
		st.services[service.ID] = *service
		return nil
	})
}

func (r *serviceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.do(func(st *state, _ time.Time) error {
		if _, ok := st.services[id]; !ok {
			return repository.ErrNotFound
		}
		for _, a := range st.appointments {
			if a.ServiceID == id {
				return repository.ErrReferenced
			}
		}
		delete(st.services, id)
		return nil
	})
}

func (r *serviceRepository) List(ctx context.Context) ([]*model.Service, error) {
	var out []*model.Service
	err := r.do(func(st *state, _ time.Time) error {
		for _, s := range st.services {
			s := s
			out = append(out, &s)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ServiceName != out[j].ServiceName {
			return out[i].ServiceName < out[j].ServiceName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}
