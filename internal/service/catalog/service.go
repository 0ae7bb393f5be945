// Package catalog manages the bookable services.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
	"github.com/jwalitptl/apptqueue/internal/service/activity"
	apperrors "github.com/jwalitptl/apptqueue/pkg/errors"
)

type Service struct {
	repo     repository.ServiceRepository
	activity activity.Logger
}

func NewService(repo repository.ServiceRepository, activityLog activity.Logger) *Service {
	return &Service{repo: repo, activity: activityLog}
}

func (s *Service) Create(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error) {
	svc := &model.Service{
		ServiceName:       req.ServiceName,
		Duration:          req.Duration,
		RequiredStaffType: req.RequiredStaffType,
	}
	if err := validate(svc); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.activity.Log(ctx, "Service created", model.JSONMap{
		"serviceId":   svc.ID,
		"serviceName": svc.ServiceName,
	})
	return svc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Service", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return svc, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Service, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	if list == nil {
		list = []*model.Service{}
	}
	return list, nil
}

// Update applies the non-nil fields of req. Existing appointments keep
// their slot and are not re-checked against a changed duration.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.ServiceName != nil {
		svc.ServiceName = *req.ServiceName
	}
	if req.Duration != nil {
		svc.Duration = *req.Duration
	}
	if req.RequiredStaffType != nil {
		svc.RequiredStaffType = *req.RequiredStaffType
	}
	if err := validate(svc); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Service", nil)
		}
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	s.activity.Log(ctx, "Service updated", model.JSONMap{"serviceId": svc.ID})
	return svc, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("Service", nil)
	case errors.Is(err, repository.ErrReferenced):
		return apperrors.InvalidState("Service has appointments and cannot be deleted")
	case err != nil:
		return fmt.Errorf("failed to delete service: %w", err)
	}

	s.activity.Log(ctx, "Service deleted", model.JSONMap{"serviceId": id})
	return nil
}

// validate accepts any positive duration; the HTTP layer narrows it to
// 15, 30 or 60.
func validate(svc *model.Service) error {
	if svc.ServiceName == "" {
		return apperrors.Validation("Service name is required", nil)
	}
	if svc.Duration <= 0 {
		return apperrors.Validation("Duration must be positive", nil)
	}
	if !svc.RequiredStaffType.Valid() {
		return apperrors.Validation(fmt.Sprintf("Invalid staff type %q", svc.RequiredStaffType), nil)
	}
	return nil
}
