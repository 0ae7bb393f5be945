package model

import "github.com/google/uuid"

type StaffType string

const (
	StaffTypeDoctor       StaffType = "Doctor"
	StaffTypeConsultant   StaffType = "Consultant"
	StaffTypeSupportAgent StaffType = "Support Agent"
)

func (t StaffType) Valid() bool {
	switch t {
	case StaffTypeDoctor, StaffTypeConsultant, StaffTypeSupportAgent:
		return true
	}
	return false
}

type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "Available"
	AvailabilityOnLeave   AvailabilityStatus = "On Leave"
)

func (s AvailabilityStatus) Valid() bool {
	return s == AvailabilityAvailable || s == AvailabilityOnLeave
}

const DefaultDailyCapacity = 5

type Staff struct {
	Base
	Name               string             `json:"name" db:"name"`
	StaffType          StaffType          `json:"staffType" db:"staff_type"`
	DailyCapacity      int                `json:"dailyCapacity" db:"daily_capacity"`
	AvailabilityStatus AvailabilityStatus `json:"availabilityStatus" db:"availability_status"`
}

func (s *Staff) IsAvailable() bool {
	return s.AvailabilityStatus == AvailabilityAvailable
}

type CreateStaffRequest struct {
	Name               string             `json:"name" binding:"required,min=1,max=255"`
	StaffType          StaffType          `json:"staffType" binding:"required,stafftype"`
	DailyCapacity      int                `json:"dailyCapacity" binding:"omitempty,min=1,max=50"`
	AvailabilityStatus AvailabilityStatus `json:"availabilityStatus" binding:"omitempty,availability"`
}

type UpdateStaffRequest struct {
	Name               *string             `json:"name" binding:"omitempty,min=1,max=255"`
	StaffType          *StaffType          `json:"staffType" binding:"omitempty,stafftype"`
	DailyCapacity      *int                `json:"dailyCapacity" binding:"omitempty,min=1,max=50"`
	AvailabilityStatus *AvailabilityStatus `json:"availabilityStatus" binding:"omitempty,availability"`
}

// StaffAvailability is the capacity view of one staff member on one date.
type StaffAvailability struct {
	StaffID             uuid.UUID          `json:"staffId"`
	StaffName           string             `json:"staffName"`
	StaffType           StaffType          `json:"staffType"`
	Date                string             `json:"date"`
	CurrentAppointments int                `json:"currentAppointments"`
	DailyCapacity       int                `json:"dailyCapacity"`
	IsAvailable         bool               `json:"isAvailable"`
	AvailabilityStatus  AvailabilityStatus `json:"availabilityStatus"`
}
