package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
	"github.com/jwalitptl/apptqueue/internal/service/activity"
	"github.com/jwalitptl/apptqueue/internal/service/availability"
	apperrors "github.com/jwalitptl/apptqueue/pkg/errors"
)

type StaffServicer interface {
	Create(ctx context.Context, req *model.CreateStaffRequest) (*model.Staff, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
	List(ctx context.Context) ([]*model.Staff, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateStaffRequest) (*model.Staff, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Availability(ctx context.Context, id uuid.UUID, date string) (*model.StaffAvailability, error)
	AvailabilityAll(ctx context.Context, date string) ([]*model.StaffAvailability, error)
}

type Service struct {
	store    repository.Store
	activity activity.Logger
}

func NewService(store repository.Store, activityLog activity.Logger) *Service {
	return &Service{store: store, activity: activityLog}
}

func (s *Service) Create(ctx context.Context, req *model.CreateStaffRequest) (*model.Staff, error) {
	staff := &model.Staff{
		Name:               req.Name,
		StaffType:          req.StaffType,
		DailyCapacity:      req.DailyCapacity,
		AvailabilityStatus: req.AvailabilityStatus,
	}
	if staff.DailyCapacity == 0 {
		staff.DailyCapacity = model.DefaultDailyCapacity
	}
	if staff.AvailabilityStatus == "" {
		staff.AvailabilityStatus = model.AvailabilityAvailable
	}
	if err := validate(staff); err != nil {
		return nil, err
	}

	if err := s.store.Repositories().Staff.Create(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}

	s.activity.Log(ctx, "Staff created", model.JSONMap{
		"staffId":   staff.ID,
		"name":      staff.Name,
		"staffType": staff.StaffType,
	})
	return staff, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	staff, err := s.store.Repositories().Staff.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("Staff", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return staff, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Staff, error) {
	list, err := s.store.Repositories().Staff.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	if list == nil {
		list = []*model.Staff{}
	}
	return list, nil
}

// Update applies the non-nil fields of req. Lowering capacity does not
// touch appointments that are already assigned.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateStaffRequest) (*model.Staff, error) {
	staff, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.StaffType != nil {
		staff.StaffType = *req.StaffType
	}
	if req.DailyCapacity != nil {
		staff.DailyCapacity = *req.DailyCapacity
	}
	if req.AvailabilityStatus != nil {
		staff.AvailabilityStatus = *req.AvailabilityStatus
	}
	if err := validate(staff); err != nil {
		return nil, err
	}

	if err := s.store.Repositories().Staff.Update(ctx, staff); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Staff", nil)
		}
		return nil, fmt.Errorf("failed to update staff: %w", err)
	}

	s.activity.Log(ctx, "Staff updated", model.JSONMap{
		"staffId":            staff.ID,
		"availabilityStatus": staff.AvailabilityStatus,
		"dailyCapacity":      staff.DailyCapacity,
	})
	return staff, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.store.Repositories().Staff.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound("Staff", nil)
	case errors.Is(err, repository.ErrReferenced):
		return apperrors.InvalidState("Staff has appointments and cannot be deleted")
	case err != nil:
		return fmt.Errorf("failed to delete staff: %w", err)
	}

	s.activity.Log(ctx, "Staff deleted", model.JSONMap{"staffId": id})
	return nil
}

// Availability reports how loaded one staff member is on date.
func (s *Service) Availability(ctx context.Context, id uuid.UUID, date string) (*model.StaffAvailability, error) {
	staff, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := availability.CountScheduled(ctx, s.store.Repositories().Appointments, staff.ID, date)
	if err != nil {
		return nil, err
	}
	return availability.Describe(staff, date, n), nil
}

// AvailabilityAll reports every staff member on date, ordered by name.
func (s *Service) AvailabilityAll(ctx context.Context, date string) ([]*model.StaffAvailability, error) {
	repos := s.store.Repositories()
	list, err := repos.Staff.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	counts, err := repos.Appointments.CountScheduledByStaff(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count scheduled appointments: %w", err)
	}

	out := make([]*model.StaffAvailability, 0, len(list))
	for _, staff := range list {
		out = append(out, availability.Describe(staff, date, counts[staff.ID]))
	}
	return out, nil
}

func validate(staff *model.Staff) error {
	if staff.Name == "" {
		return apperrors.Validation("Name is required", nil)
	}
	if !staff.StaffType.Valid() {
		return apperrors.Validation(fmt.Sprintf("Invalid staff type %q", staff.StaffType), nil)
	}
	if staff.DailyCapacity < 1 || staff.DailyCapacity > 50 {
		return apperrors.Validation("Daily capacity must be between 1 and 50", nil)
	}
	if !staff.AvailabilityStatus.Valid() {
		return apperrors.Validation(fmt.Sprintf("Invalid availability status %q", staff.AvailabilityStatus), nil)
	}
	return nil
}
