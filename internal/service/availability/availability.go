// Package availability answers the two questions every assignment path
// asks: does a slot overlap the staff member's schedule, and does the
// staff member have capacity left on that date.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/apptqueue/internal/model"
	"github.com/jwalitptl/apptqueue/internal/repository"
)

const slotLayout = model.DateLayout + " " + model.TimeLayout

// ParseSlot reads a naive date and HH:MM time as a UTC wall-clock instant.
// UTC is only used so that arithmetic never crosses a DST shift.
func ParseSlot(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(slotLayout, date+" "+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid slot %q %q: %w", date, clock, err)
	}
	return t, nil
}

// Overlaps reports whether [aStart, aStart+aMinutes) and [bStart,
// bStart+bMinutes) intersect. Touching endpoints do not overlap and an
// empty interval overlaps nothing.
func Overlaps(aStart time.Time, aMinutes int, bStart time.Time, bMinutes int) bool {
	if aMinutes <= 0 || bMinutes <= 0 {
		return false
	}
	aEnd := aStart.Add(time.Duration(aMinutes) * time.Minute)
	bEnd := bStart.Add(time.Duration(bMinutes) * time.Minute)
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// HasConflict reports whether a slot of durationMinutes starting at date
// clock overlaps any Scheduled appointment of staffID on that date. exclude
// skips one appointment so an appointment never conflicts with itself.
func HasConflict(ctx context.Context, repo repository.AppointmentRepository, staffID uuid.UUID, date, clock string, durationMinutes int, exclude *uuid.UUID) (bool, error) {
	if durationMinutes <= 0 {
		return false, nil
	}
	start, err := ParseSlot(date, clock)
	if err != nil {
		return false, err
	}

	slots, err := repo.ListScheduledForStaff(ctx, staffID, date, exclude)
	if err != nil {
		return false, fmt.Errorf("failed to load staff schedule: %w", err)
	}

	for _, slot := range slots {
		existing, err := ParseSlot(date, slot.AppointmentTime)
		if err != nil {
			return false, err
		}
		if Overlaps(start, durationMinutes, existing, slot.Duration) {
			return true, nil
		}
	}
	return false, nil
}

// CountScheduled is the number of Scheduled appointments staffID holds on date.
func CountScheduled(ctx context.Context, repo repository.AppointmentRepository, staffID uuid.UUID, date string) (int, error) {
	n, err := repo.CountScheduled(ctx, staffID, date)
	if err != nil {
		return 0, fmt.Errorf("failed to count scheduled appointments: %w", err)
	}
	return n, nil
}

// HasCapacity reports whether staff can take one more appointment on date,
// along with the current count.
func HasCapacity(ctx context.Context, repo repository.AppointmentRepository, staff *model.Staff, date string) (bool, int, error) {
	n, err := CountScheduled(ctx, repo, staff.ID, date)
	if err != nil {
		return false, 0, err
	}
	return n < staff.DailyCapacity, n, nil
}

// Describe builds the capacity view of staff on date from a known count.
func Describe(staff *model.Staff, date string, current int) *model.StaffAvailability {
	return &model.StaffAvailability{
		StaffID:             staff.ID,
		StaffName:           staff.Name,
		StaffType:           staff.StaffType,
		Date:                date,
		CurrentAppointments: current,
		DailyCapacity:       staff.DailyCapacity,
		IsAvailable:         staff.IsAvailable() && current < staff.DailyCapacity,
		AvailabilityStatus:  staff.AvailabilityStatus,
	}
}
