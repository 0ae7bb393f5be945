package model

import (
	"time"

	"github.com/google/uuid"
)

// QueueEntry is a row of the waiting queue. Positions are 1-based and
// gapless across all present entries.
type QueueEntry struct {
	ID            uuid.UUID `json:"id" db:"id"`
	AppointmentID uuid.UUID `json:"appointmentId" db:"appointment_id"`
	QueuePosition int       `json:"queuePosition" db:"queue_position"`
	AddedAt       time.Time `json:"addedAt" db:"added_at"`
}

// QueueItem is a queue entry joined with its appointment and service.
type QueueItem struct {
	QueueID           uuid.UUID         `json:"queueId" db:"queue_id"`
	AppointmentID     uuid.UUID         `json:"appointmentId" db:"appointment_id"`
	CustomerName      string            `json:"customerName" db:"customer_name"`
	ServiceID         uuid.UUID         `json:"serviceId" db:"service_id"`
	ServiceName       string            `json:"serviceName" db:"service_name"`
	RequiredStaffType StaffType         `json:"requiredStaffType" db:"required_staff_type"`
	ServiceDuration   int               `json:"serviceDuration" db:"service_duration"`
	AppointmentDate   string            `json:"appointmentDate" db:"appointment_date"`
	AppointmentTime   string            `json:"appointmentTime" db:"appointment_time"`
	Status            AppointmentStatus `json:"-" db:"status"`
	QueuePosition     int               `json:"queuePosition" db:"queue_position"`
	AddedAt           time.Time         `json:"addedAt" db:"added_at"`
}

type AutoAssignResult struct {
	Assigned      bool       `json:"assigned"`
	Message       string     `json:"message"`
	StaffID       *uuid.UUID `json:"staffId,omitempty"`
	StaffName     string     `json:"staffName,omitempty"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
}

type ManualAssignResult struct {
	Message       string    `json:"message"`
	StaffID       uuid.UUID `json:"staffId"`
	StaffName     string    `json:"staffName"`
	AppointmentID uuid.UUID `json:"appointmentId"`
}

type DrainResult struct {
	Assigned []AutoAssignResult `json:"assigned"`
	Stopped  string             `json:"stopped"`
}
