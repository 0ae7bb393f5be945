// Package dashboard builds read-only aggregates over appointments, staff
// and the waiting queue.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
)

type Service struct {
	store repository.Store
	now   func() time.Time
}

func NewService(store repository.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Today is the current local date in the wire format.
func (s *Service) Today() string {
	return s.now().Format(model.DateLayout)
}

func (s *Service) Stats(ctx context.Context) (*model.DashboardStats, error) {
	repos := s.store.Repositories()
	today := s.Today()

	byStatus, err := repos.Appointments.CountByStatus(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to count appointments: %w", err)
	}
	waiting, err := repos.Queue.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count queue: %w", err)
	}
	total, available, err := repos.Staff.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count staff: %w", err)
	}

	stats := &model.DashboardStats{
		Today:             today,
		Completed:         byStatus[model.AppointmentStatusCompleted],
		Pending:           byStatus[model.AppointmentStatusScheduled],
		Cancelled:         byStatus[model.AppointmentStatusCancelled],
		NoShow:            byStatus[model.AppointmentStatusNoShow],
		WaitingQueueCount: waiting,
		TotalStaff:        total,
		AvailableStaff:    available,
	}
	for _, n := range byStatus {
		stats.TotalAppointments += n
	}
	return stats, nil
}

// StaffLoad lists every staff member with their Scheduled count on date.
// An empty date means today.
func (s *Service) StaffLoad(ctx context.Context, date string) ([]*model.StaffLoad, error) {
	if date == "" {
		date = s.Today()
	}
	repos := s.store.Repositories()

	staff, err := repos.Staff.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	counts, err := repos.Appointments.CountScheduledByStaff(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to count scheduled appointments: %w", err)
	}

	out := make([]*model.StaffLoad, 0, len(staff))
	for _, st := range staff {
		n := counts[st.ID]
		load := &model.StaffLoad{
			ID:                  st.ID,
			Name:                st.Name,
			StaffType:           st.StaffType,
			CurrentAppointments: n,
			DailyCapacity:       st.DailyCapacity,
			AvailabilityStatus:  st.AvailabilityStatus,
			IsAtCapacity:        n >= st.DailyCapacity,
			LoadStatus:          model.LoadStatusOK,
		}
		if load.IsAtCapacity {
			load.LoadStatus = model.LoadStatusBooked
		}
		out = append(out, load)
	}
	return out, nil
}
